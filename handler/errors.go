package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/MangKong-coder/rest-api/domain"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Message string              `json:"message"`
	Data    []domain.FieldError `json:"data,omitempty"`
}

// ErrorHandler turns every error returned by a handler or middleware into a
// JSON {message} body with the matching status code.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	resp := errorResponse{Message: http.StatusText(code)}
	var de *domain.Error
	var he *echo.HTTPError
	switch {
	case errors.As(err, &de):
		code = de.Kind.StatusCode()
		resp.Message = de.Message
		resp.Data = de.Data
	case errors.As(err, &he):
		code = he.Code
		resp.Message = fmt.Sprint(he.Message)
	}
	if code != http.StatusNotFound {
		c.Logger().Error(err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, resp)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}
