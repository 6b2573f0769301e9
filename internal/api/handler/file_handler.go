package handler

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// FileHandler uploads and serves files from the configured store.
type FileHandler struct {
	store ports.FileStore
}

func NewFileHandler(store ports.FileStore) *FileHandler {
	return &FileHandler{store: store}
}

// Upload handles POST /api/v2/files/upload.
//
// @Summary      Upload a single file
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "File to upload"
// @Success      200   {object}  fileResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/v2/files/upload [post]
func (h *FileHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return domain.NewValidationError("", domain.FieldError{Field: "file", Message: "file is required"})
	}
	name, err := cleanFilename(fh.Filename)
	if err != nil {
		return err
	}

	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	size, err := h.store.Save(c.Request().Context(), name, src)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fileResponse{Filename: name, Size: size})
}

// Download handles GET /api/v2/files/download/:filename.
//
// @Summary      Download a file
// @Tags         files
// @Produce      octet-stream
// @Param        filename  path      string  true  "File name"
// @Success      200       {file}    file
// @Failure      404       {object}  errorResponse
// @Router       /api/v2/files/download/{filename} [get]
func (h *FileHandler) Download(c echo.Context) error {
	name, err := cleanFilename(c.Param("filename"))
	if err != nil {
		return domain.ErrFileNotFound
	}

	rc, err := h.store.Open(c.Request().Context(), name)
	if err != nil {
		return err
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	return c.Stream(http.StatusOK, contentType, rc)
}

// List handles GET /api/v2/files/list.
//
// @Summary      List uploaded files
// @Tags         files
// @Produce      json
// @Success      200  {array}  fileResponse
// @Router       /api/v2/files/list [get]
func (h *FileHandler) List(c echo.Context) error {
	files, err := h.store.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]fileResponse, len(files))
	for i, f := range files {
		out[i] = fileResponse{Filename: f.Name, Size: f.Size}
	}
	return c.JSON(http.StatusOK, out)
}

// cleanFilename keeps only the final path element so names can never
// address anything outside the store.
func cleanFilename(raw string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(raw, `\`, "/"))
	if name == "." || name == ".." || name == "/" || strings.TrimSpace(name) == "" {
		return "", domain.NewValidationError("", domain.FieldError{Field: "filename", Message: "filename is invalid"})
	}
	return name, nil
}
