package api

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/potonglab/barbershop/internal/domain"
	"github.com/potonglab/barbershop/internal/storage"
	"github.com/potonglab/barbershop/internal/webserver"
)

type ProductHandler struct {
	db    *gorm.DB
	store storage.ObjectStore
}

func NewProductHandler(db *gorm.DB, store storage.ObjectStore) *ProductHandler {
	return &ProductHandler{db: db, store: store}
}

func (h *ProductHandler) List(c echo.Context) error {
	page, limit := parsePagination(c)

	db := h.db.Model(&domain.Product{})
	if q := foldSearch(c.QueryParam("q")); q != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+q+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	var products []domain.Product
	if err := db.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&products).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Paged(c, products, total, page, limit, "Successfully retrieved products")
}

func (h *ProductHandler) Get(c echo.Context) error {
	var product domain.Product
	err := h.db.First(&product, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return webserver.Fail(c, http.StatusNotFound, "Product not found")
	} else if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}
	return webserver.Ok(c, product, "Successfully retrieved product")
}

func (h *ProductHandler) Create(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	description := strings.TrimSpace(c.FormValue("description"))
	price := cast.ToFloat64(c.FormValue("price"))
	stock := cast.ToInt(c.FormValue("stock"))
	file, err := c.FormFile("image")

	if name == "" || description == "" || c.FormValue("price") == "" || err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "All fields are required: name, price, description, image")
	}
	if price < 0 || stock < 0 {
		return webserver.Fail(c, http.StatusBadRequest, "Price and stock must not be negative")
	}

	upload, err := h.uploadImage(c.Request().Context(), file, "products")
	if err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "Image upload failed")
	}

	product := domain.Product{
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		ImageURL:    upload.URL,
		ImageKey:    upload.Key,
	}
	if err := h.db.Create(&product).Error; err != nil {
		// Orphan cleanup; the row never landed so the object must go too.
		if derr := h.store.Delete(c.Request().Context(), upload.Key); derr != nil {
			zap.L().Warn("failed to clean up orphan image", zap.String("key", upload.Key), zap.Error(derr))
		}
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Created(c, product, "Product created successfully")
}

func (h *ProductHandler) Update(c echo.Context) error {
	var product domain.Product
	err := h.db.First(&product, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return webserver.Fail(c, http.StatusNotFound, "Product not found")
	} else if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	if name := strings.TrimSpace(c.FormValue("name")); name != "" {
		product.Name = name
	}
	if description := strings.TrimSpace(c.FormValue("description")); description != "" {
		product.Description = description
	}
	if v := c.FormValue("price"); v != "" {
		price := cast.ToFloat64(v)
		if price < 0 {
			return webserver.Fail(c, http.StatusBadRequest, "Price must not be negative")
		}
		product.Price = price
	}
	if v := c.FormValue("stock"); v != "" {
		stock := cast.ToInt(v)
		if stock < 0 {
			return webserver.Fail(c, http.StatusBadRequest, "Stock must not be negative")
		}
		product.Stock = stock
	}

	if file, err := c.FormFile("image"); err == nil {
		upload, err := h.uploadImage(c.Request().Context(), file, "products")
		if err != nil {
			return webserver.Fail(c, http.StatusBadRequest, "Image upload failed")
		}
		if derr := h.store.Delete(c.Request().Context(), product.ImageKey); derr != nil {
			zap.L().Warn("failed to delete replaced image", zap.String("key", product.ImageKey), zap.Error(derr))
		}
		product.ImageURL = upload.URL
		product.ImageKey = upload.Key
	}

	if err := h.db.Save(&product).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Ok(c, product, "Product updated successfully")
}

func (h *ProductHandler) Delete(c echo.Context) error {
	var product domain.Product
	err := h.db.First(&product, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return webserver.Fail(c, http.StatusNotFound, "Product not found")
	} else if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	if derr := h.store.Delete(c.Request().Context(), product.ImageKey); derr != nil {
		zap.L().Warn("failed to delete product image", zap.String("key", product.ImageKey), zap.Error(derr))
	}

	// Soft delete keeps the row resolvable from historical order lines.
	if err := h.db.Delete(&product).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Ok(c, echo.Map{"id": product.ID}, "Product deleted successfully")
}

func (h *ProductHandler) uploadImage(ctx context.Context, file *multipart.FileHeader, folder string) (*storage.UploadResult, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return h.store.Upload(ctx, folder, file.Filename, src, file.Size, file.Header.Get("Content-Type"))
}
