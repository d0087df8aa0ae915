package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/potonglab/barbershop/internal/storage"
	"github.com/potonglab/barbershop/internal/webserver"
)

// UploadHandler exposes the object-storage gateway directly for admin
// tooling that manages image assets outside the catalog endpoints.
type UploadHandler struct {
	store storage.ObjectStore
}

func NewUploadHandler(store storage.ObjectStore) *UploadHandler {
	return &UploadHandler{store: store}
}

type deleteUploadPayload struct {
	Key string `json:"key" validate:"required"`
}

func (h *UploadHandler) Upload(c echo.Context) error {
	folder := strings.TrimSpace(c.FormValue("folder"))
	file, err := c.FormFile("image")
	if folder == "" || err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "All fields are required: folder, image")
	}

	src, err := file.Open()
	if err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "Image upload failed")
	}
	defer src.Close()

	result, err := h.store.Upload(c.Request().Context(), folder, file.Filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Image upload failed")
	}

	return webserver.Created(c, result, "Image uploaded successfully")
}

func (h *UploadHandler) Delete(c echo.Context) error {
	var payload deleteUploadPayload
	if err := c.Bind(&payload); err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "Request body is empty")
	}
	if err := c.Validate(&payload); err != nil {
		return webserver.FailValidation(c, err)
	}

	if err := h.store.Delete(c.Request().Context(), payload.Key); err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Image delete failed")
	}

	return webserver.Ok(c, echo.Map{"key": payload.Key}, "Image deleted successfully")
}
