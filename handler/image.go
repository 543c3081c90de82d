package handler

import (
	"errors"
	"net/http"

	"github.com/MangKong-coder/rest-api/domain"
	"github.com/MangKong-coder/rest-api/storage"
	"github.com/labstack/echo/v4"
)

// ServeImage streams a stored image read-only under /images/*.
func (h *Handler) ServeImage(c echo.Context) error {
	rc, contentType, err := h.Images.Open(c.Request().Context(), storage.Prefix+"/"+c.Param("*"))
	if errors.Is(err, storage.ErrNotFound) {
		return domain.NotFound("Image not found.")
	}
	if err != nil {
		return err
	}
	defer rc.Close()
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, contentType, rc)
}
