package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/potonglab/barbershop/internal/domain"
	"github.com/potonglab/barbershop/internal/storage"
	"github.com/potonglab/barbershop/internal/webserver"
)

type HaircutHandler struct {
	db    *gorm.DB
	store storage.ObjectStore
}

func NewHaircutHandler(db *gorm.DB, store storage.ObjectStore) *HaircutHandler {
	return &HaircutHandler{db: db, store: store}
}

// List orders by popularity so the most chosen styles come first.
func (h *HaircutHandler) List(c echo.Context) error {
	page, limit := parsePagination(c)

	db := h.db.Model(&domain.Haircut{})
	if q := foldSearch(c.QueryParam("q")); q != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+q+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	var haircuts []domain.Haircut
	if err := db.Order("choosen_count DESC").Offset((page - 1) * limit).Limit(limit).Find(&haircuts).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Paged(c, haircuts, total, page, limit, "Successfully retrieved haircuts")
}

func (h *HaircutHandler) Get(c echo.Context) error {
	var haircut domain.Haircut
	err := h.db.First(&haircut, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return webserver.Fail(c, http.StatusNotFound, "Haircut not found")
	} else if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}
	return webserver.Ok(c, haircut, "Successfully retrieved haircut")
}

func (h *HaircutHandler) Create(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	description := strings.TrimSpace(c.FormValue("description"))
	file, err := c.FormFile("image")

	if name == "" || err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "All fields are required: name, image")
	}

	src, err := file.Open()
	if err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "Image upload failed")
	}
	defer src.Close()

	upload, err := h.store.Upload(c.Request().Context(), "haircuts", file.Filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "Image upload failed")
	}

	haircut := domain.Haircut{
		Name:        name,
		Description: description,
		ImageURL:    upload.URL,
		ImageKey:    upload.Key,
	}
	if err := h.db.Create(&haircut).Error; err != nil {
		if derr := h.store.Delete(c.Request().Context(), upload.Key); derr != nil {
			zap.L().Warn("failed to clean up orphan image", zap.String("key", upload.Key), zap.Error(derr))
		}
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Created(c, haircut, "Haircut created successfully")
}

func (h *HaircutHandler) Update(c echo.Context) error {
	var haircut domain.Haircut
	err := h.db.First(&haircut, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return webserver.Fail(c, http.StatusNotFound, "Haircut not found")
	} else if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	if name := strings.TrimSpace(c.FormValue("name")); name != "" {
		haircut.Name = name
	}
	if description := strings.TrimSpace(c.FormValue("description")); description != "" {
		haircut.Description = description
	}

	if file, err := c.FormFile("image"); err == nil {
		src, err := file.Open()
		if err != nil {
			return webserver.Fail(c, http.StatusBadRequest, "Image upload failed")
		}
		defer src.Close()

		upload, err := h.store.Upload(c.Request().Context(), "haircuts", file.Filename, src, file.Size, file.Header.Get("Content-Type"))
		if err != nil {
			return webserver.Fail(c, http.StatusBadRequest, "Image upload failed")
		}
		if derr := h.store.Delete(c.Request().Context(), haircut.ImageKey); derr != nil {
			zap.L().Warn("failed to delete replaced image", zap.String("key", haircut.ImageKey), zap.Error(derr))
		}
		haircut.ImageURL = upload.URL
		haircut.ImageKey = upload.Key
	}

	if err := h.db.Save(&haircut).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Ok(c, haircut, "Haircut updated successfully")
}

func (h *HaircutHandler) Delete(c echo.Context) error {
	var haircut domain.Haircut
	err := h.db.First(&haircut, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return webserver.Fail(c, http.StatusNotFound, "Haircut not found")
	} else if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	if derr := h.store.Delete(c.Request().Context(), haircut.ImageKey); derr != nil {
		zap.L().Warn("failed to delete haircut image", zap.String("key", haircut.ImageKey), zap.Error(derr))
	}

	if err := h.db.Delete(&haircut).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Ok(c, echo.Map{"id": haircut.ID}, "Haircut deleted successfully")
}
