package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Register mounts the JSON API and image routes on e.
func (h *Handler) Register(e *echo.Echo) {
	requireAuth := h.RequireAuth()

	feed := e.Group("/feed")
	feed.GET("/posts", h.GetPosts)
	feed.POST("/post", h.CreatePost, requireAuth)
	feed.GET("/post/:postId", h.GetPost)
	feed.PUT("/post/:postId", h.UpdatePost, requireAuth)
	feed.DELETE("/post/:postId", h.DeletePost, requireAuth)
	feed.GET("/status", h.GetStatus, requireAuth)
	feed.PATCH("/status", h.UpdateStatus, requireAuth)

	auth := e.Group("/auth")
	auth.POST("/signup", h.Signup)
	auth.PUT("/signup", h.Signup)
	auth.POST("/login", h.Login)

	e.GET("/images/*", h.ServeImage)
	e.GET("/healthz", h.Healthz)
}

func (h *Handler) Healthz(c echo.Context) error {
	if p, ok := h.Users.(pinger); ok {
		if err := p.Ping(c.Request().Context()); err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
