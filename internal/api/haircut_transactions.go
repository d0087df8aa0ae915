package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/potonglab/barbershop/internal/domain"
	"github.com/potonglab/barbershop/internal/transform"
	"github.com/potonglab/barbershop/internal/webserver"
)

type HaircutTransactionHandler struct {
	db *gorm.DB
}

func NewHaircutTransactionHandler(db *gorm.DB) *HaircutTransactionHandler {
	return &HaircutTransactionHandler{db: db}
}

type haircutTransactionPayload struct {
	HaircutID       string  `json:"haircut_id" validate:"required"`
	Hairwash        *bool   `json:"hairwash" validate:"required"`
	TotalPrice      float64 `json:"total_price" validate:"required,gt=0"`
	ReservationTime string  `json:"reservation_time" validate:"required"`
	PaymentMethod   string  `json:"payment_method"`
}

type reservationStatusPayload struct {
	ReservationStatus *string `json:"reservation_status" validate:"omitempty,oneof=pending confirmed done cancelled"`
	PaymentStatus     *string `json:"payment_status" validate:"omitempty,oneof=unpaid paid"`
}

var bookingRelations = map[string][]string{
	"user":    {"name", "email"},
	"haircut": {"name", "image_url"},
}

func (h *HaircutTransactionHandler) List(c echo.Context) error {
	page, limit := parsePagination(c)
	return h.list(c, h.db.Model(&domain.HaircutTransaction{}), page, limit,
		"Successfully retrieved haircut transactions")
}

func (h *HaircutTransactionHandler) ListMine(c echo.Context) error {
	page, limit := parsePagination(c)
	uid := webserver.CurrentUserID(c)
	return h.list(c, h.db.Model(&domain.HaircutTransaction{}).Where("user_id = ?", uid), page, limit,
		"Successfully retrieved haircut transactions for user")
}

func (h *HaircutTransactionHandler) list(c echo.Context, q *gorm.DB, page, limit int, message string) error {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	var rows []*domain.HaircutTransaction
	err := q.
		Preload("User").
		Preload("Haircut").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	data := transform.Flatten(rows, bookingRelations)
	return webserver.Paged(c, data, total, page, limit, message)
}

func (h *HaircutTransactionHandler) Get(c echo.Context) error {
	var booking domain.HaircutTransaction
	err := h.db.Preload("User").Preload("Haircut").First(&booking, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return webserver.Fail(c, http.StatusNotFound, "Haircut transaction not found")
	} else if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	data := transform.FlattenOne(&booking, bookingRelations)
	return webserver.Ok(c, data, "Successfully retrieved haircut transaction")
}

// Create books a haircut and bumps that haircut's own popularity counter
// in the same transaction.
func (h *HaircutTransactionHandler) Create(c echo.Context) error {
	uid := webserver.CurrentUserID(c)

	var payload haircutTransactionPayload
	if err := c.Bind(&payload); err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "Request body is empty")
	}
	if err := c.Validate(&payload); err != nil {
		return webserver.FailValidation(c, err)
	}

	reservedAt, err := dateparse.ParseAny(payload.ReservationTime)
	if err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "Invalid reservation_time")
	}

	var haircut domain.Haircut
	err = h.db.First(&haircut, "id = ?", payload.HaircutID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return webserver.Fail(c, http.StatusNotFound, "Haircut not found")
	} else if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	booking := domain.HaircutTransaction{
		UserID:            uid,
		HaircutID:         payload.HaircutID,
		Hairwash:          *payload.Hairwash,
		TotalPrice:        payload.TotalPrice,
		ReservationTime:   reservedAt,
		ReservationStatus: domain.ReservationStatusPending,
		PaymentMethod:     defaultedPayment(payload.PaymentMethod),
		PaymentStatus:     domain.PaymentStatusUnpaid,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Haircut{}).
			Where("id = ?", haircut.ID).
			UpdateColumn("choosen_count", gorm.Expr("choosen_count + 1")).Error
	})
	if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Created(c, booking, "Haircut transaction created successfully")
}

func (h *HaircutTransactionHandler) UpdateStatus(c echo.Context) error {
	var payload reservationStatusPayload
	if err := c.Bind(&payload); err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "Request body is empty")
	}
	if err := c.Validate(&payload); err != nil {
		return webserver.FailValidation(c, err)
	}

	var booking domain.HaircutTransaction
	err := h.db.First(&booking, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return webserver.Fail(c, http.StatusNotFound, "Haircut transaction not found")
	} else if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	if payload.ReservationStatus != nil {
		booking.ReservationStatus = *payload.ReservationStatus
	}
	if payload.PaymentStatus != nil {
		booking.PaymentStatus = *payload.PaymentStatus
	}

	if err := h.db.Save(&booking).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Ok(c, booking, "Haircut transaction updated successfully")
}

func (h *HaircutTransactionHandler) Delete(c echo.Context) error {
	var booking domain.HaircutTransaction
	err := h.db.First(&booking, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return webserver.Fail(c, http.StatusNotFound, "Haircut transaction not found")
	} else if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	if err := h.db.Delete(&booking).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Ok(c, echo.Map{}, "Haircut transaction deleted successfully")
}

func defaultedPayment(method string) string {
	if strings.TrimSpace(method) == "" {
		return "cash"
	}
	return method
}
