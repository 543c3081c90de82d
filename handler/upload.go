package handler

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const imageField = "image"

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
}

// imageFile returns the uploaded image part of a multipart request. Parts
// that are not png or jpeg images are ignored as if absent.
func imageFile(c echo.Context) (*multipart.FileHeader, bool, error) {
	fh, err := c.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read image upload: %w", err)
	}
	contentType := strings.ToLower(strings.TrimSpace(fh.Header.Get(echo.HeaderContentType)))
	if !allowedImageTypes[contentType] {
		return nil, false, nil
	}
	return fh, true, nil
}

// storeImage copies the upload into image storage and returns its key.
func (h *Handler) storeImage(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open image upload: %w", err)
	}
	defer f.Close()
	return h.Images.Save(ctx, fh.Filename, fh.Header.Get(echo.HeaderContentType), fh.Size, f)
}

// clearImage removes a stored image. Failures are only logged.
func (h *Handler) clearImage(c echo.Context, key string) {
	if key == "" {
		return
	}
	if err := h.Images.Remove(c.Request().Context(), key); err != nil {
		c.Logger().Warnf("clear image %s: %v", key, err)
	}
}
