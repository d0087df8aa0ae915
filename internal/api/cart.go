package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/potonglab/barbershop/internal/domain"
	"github.com/potonglab/barbershop/internal/webserver"
)

type CartHandler struct {
	db *gorm.DB
}

func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

type cartAddPayload struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

type cartUpdatePayload struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type cartLine struct {
	CartID       string  `json:"cart_id"`
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	ProductImage string  `json:"product_image"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	Subtotal     float64 `json:"subtotal"`
	MaxStock     int     `json:"max_stock"`
}

// Get returns the caller's cart lines with a grand total summary. Rows
// whose product has since been removed are skipped.
func (h *CartHandler) Get(c echo.Context) error {
	uid := webserver.CurrentUserID(c)

	var rows []domain.CartItem
	err := h.db.Preload("Product").Where("user_id = ?", uid).Find(&rows).Error
	if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	lines := make([]cartLine, 0, len(rows))
	var grandTotal float64
	var totalItems int
	for _, row := range rows {
		if row.Product == nil {
			continue
		}
		subtotal := row.Subtotal()
		grandTotal += subtotal
		totalItems += row.Quantity
		lines = append(lines, cartLine{
			CartID:       row.ID,
			ProductID:    row.ProductID,
			ProductName:  row.Product.Name,
			ProductImage: row.Product.ImageURL,
			Price:        row.Product.Price,
			Quantity:     row.Quantity,
			Subtotal:     subtotal,
			MaxStock:     row.Product.Stock,
		})
	}

	return webserver.Ok(c, echo.Map{
		"items": lines,
		"summary": echo.Map{
			"total_items": totalItems,
			"grand_total": grandTotal,
		},
	}, "Successfully retrieved cart")
}

// Add upserts a cart line: adding a product already in the cart raises its
// quantity instead of inserting a second row. The resulting quantity may
// never exceed the product's current stock.
func (h *CartHandler) Add(c echo.Context) error {
	uid := webserver.CurrentUserID(c)

	var payload cartAddPayload
	if err := c.Bind(&payload); err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "Request body is empty")
	}
	if err := c.Validate(&payload); err != nil {
		return webserver.FailValidation(c, err)
	}
	if payload.Quantity == 0 {
		payload.Quantity = 1
	}
	if payload.Quantity < 1 {
		return webserver.Fail(c, http.StatusBadRequest, "Quantity must be at least 1")
	}

	var product domain.Product
	err := h.db.First(&product, "id = ?", payload.ProductID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return webserver.Fail(c, http.StatusNotFound, "Product not found")
	} else if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	var existing domain.CartItem
	err = h.db.Where("user_id = ? AND product_id = ?", uid, payload.ProductID).First(&existing).Error
	switch {
	case err == nil:
		newQuantity := existing.Quantity + payload.Quantity
		if newQuantity > product.Stock {
			return webserver.Fail(c, http.StatusBadRequest,
				fmt.Sprintf("Stock insufficient. Max available: %d", product.Stock))
		}
		existing.Quantity = newQuantity
		if err := h.db.Save(&existing).Error; err != nil {
			return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
		}
		existing.Product = &product
		return webserver.Ok(c, existing, "Cart updated successfully")

	case errors.Is(err, gorm.ErrRecordNotFound):
		if payload.Quantity > product.Stock {
			return webserver.Fail(c, http.StatusBadRequest,
				fmt.Sprintf("Stock insufficient. Max available: %d", product.Stock))
		}
		item := domain.CartItem{
			UserID:    uid,
			ProductID: payload.ProductID,
			Quantity:  payload.Quantity,
		}
		if err := h.db.Create(&item).Error; err != nil {
			return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
		}
		item.Product = &product
		return webserver.Ok(c, item, "Product added to cart")

	default:
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *CartHandler) Update(c echo.Context) error {
	uid := webserver.CurrentUserID(c)

	var payload cartUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "Request body is empty")
	}
	if err := c.Validate(&payload); err != nil {
		return webserver.FailValidation(c, err)
	}

	var item domain.CartItem
	err := h.db.Preload("Product").Where("id = ? AND user_id = ?", c.Param("id"), uid).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return webserver.Fail(c, http.StatusNotFound, "Cart item not found")
	} else if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	if item.Product != nil && payload.Quantity > item.Product.Stock {
		return webserver.Fail(c, http.StatusBadRequest,
			fmt.Sprintf("Stock insufficient. Max available: %d", item.Product.Stock))
	}

	item.Quantity = payload.Quantity
	if err := h.db.Save(&item).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Ok(c, item, "Cart quantity updated")
}

func (h *CartHandler) Delete(c echo.Context) error {
	uid := webserver.CurrentUserID(c)

	var item domain.CartItem
	err := h.db.Where("id = ? AND user_id = ?", c.Param("id"), uid).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return webserver.Fail(c, http.StatusNotFound, "Cart item not found")
	} else if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	if err := h.db.Delete(&item).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Ok(c, nil, "Item removed from cart")
}
