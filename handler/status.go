package handler

import (
	"errors"
	"net/http"

	"github.com/MangKong-coder/rest-api/domain"
	"github.com/labstack/echo/v4"
)

type statusRequest struct {
	Status string `json:"status" form:"status"`
}

// currentUser loads the authenticated user. A token for an account that no
// longer exists is treated as unauthenticated.
func (h *Handler) currentUser(c echo.Context) (*domain.User, error) {
	user, err := h.Users.UserByID(c.Request().Context(), UserID(c))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Authentication("Not authenticated.")
	}
	return user, err
}

func (h *Handler) GetStatus(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": user.Status})
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	err = h.Users.UpdateUserStatus(c.Request().Context(), user.ID, req.Status)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Authentication("Not authenticated.")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "Status updated."})
}
