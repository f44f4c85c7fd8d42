package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/umai/recipe-api/internal/core/domain"
)

// maxImageBytes caps a single uploaded image.
const maxImageBytes = 5 << 20

var errImageTooLarge = echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image is too large")

// formImage reads an optional single file field. It returns nil when the
// field is absent.
func formImage(c echo.Context, field string) (*domain.Image, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return readImage(fh)
}

// formImages reads every file sent under field, in order.
func formImages(c echo.Context, field string) ([]*domain.Image, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	files := form.File[field]
	out := make([]*domain.Image, 0, len(files))
	for _, fh := range files {
		img, err := readImage(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

func readImage(fh *multipart.FileHeader) (*domain.Image, error) {
	if fh.Size > maxImageBytes {
		return nil, errImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	if len(data) > maxImageBytes {
		return nil, errImageTooLarge
	}
	if len(data) == 0 {
		return nil, nil
	}

	return &domain.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	}, nil
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}
