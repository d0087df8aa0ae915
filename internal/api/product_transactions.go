package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/potonglab/barbershop/internal/checkout"
	"github.com/potonglab/barbershop/internal/domain"
	"github.com/potonglab/barbershop/internal/transform"
	"github.com/potonglab/barbershop/internal/webserver"
	"github.com/potonglab/barbershop/pkg/metrics"
)

// CheckoutService is the workflow surface this handler drives.
type CheckoutService interface {
	Checkout(ctx context.Context, userID string, in checkout.Input) (*domain.ProductTransaction, error)
	Delete(ctx context.Context, orderID string) error
	UpdateStatus(ctx context.Context, orderID string, in checkout.StatusInput) (*domain.ProductTransaction, error)
}

type TransactionHandler struct {
	svc  CheckoutService
	repo checkout.Repository
}

func NewTransactionHandler(svc CheckoutService, repo checkout.Repository) *TransactionHandler {
	return &TransactionHandler{svc: svc, repo: repo}
}

type checkoutPayload struct {
	ProductID         string `json:"product_id"`
	Quantity          int    `json:"quantity"`
	ExpeditionService string `json:"expedition_service"`
	PaymentMethod     string `json:"payment_method"`
}

type orderStatusPayload struct {
	PaymentStatus    *string `json:"payment_status" validate:"omitempty,oneof=unpaid paid"`
	ExpeditionStatus *string `json:"expedition_status" validate:"omitempty,oneof=pending shipped delivered"`
}

var orderRelations = map[string][]string{
	"user":  {"name", "email"},
	"items": {},
}

func (h *TransactionHandler) List(c echo.Context) error {
	page, limit := parsePagination(c)

	rows, total, err := h.repo.List(c.Request().Context(), page, limit)
	if err != nil {
		return webserver.FailErr(c, err)
	}

	data := transform.Flatten(rows, orderRelations)
	return webserver.Paged(c, data, total, page, limit, "Successfully retrieved product transactions")
}

func (h *TransactionHandler) ListMine(c echo.Context) error {
	page, limit := parsePagination(c)
	uid := webserver.CurrentUserID(c)

	rows, total, err := h.repo.ListByUser(c.Request().Context(), uid, page, limit)
	if err != nil {
		return webserver.FailErr(c, err)
	}

	data := transform.Flatten(rows, orderRelations)
	return webserver.Paged(c, data, total, page, limit, "Successfully retrieved product transactions for user")
}

func (h *TransactionHandler) Get(c echo.Context) error {
	order, err := h.repo.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return webserver.FailErr(c, err)
	}

	data := transform.FlattenOne(order, orderRelations)
	return webserver.Ok(c, data, "Successfully retrieved product transaction")
}

// Checkout converts the caller's cart (or an explicit direct-buy line)
// into an order.
func (h *TransactionHandler) Checkout(c echo.Context) error {
	uid := webserver.CurrentUserID(c)

	var payload checkoutPayload
	if err := c.Bind(&payload); err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "Request body is empty")
	}

	order, err := h.svc.Checkout(c.Request().Context(), uid, checkout.Input{
		ProductID:         payload.ProductID,
		Quantity:          payload.Quantity,
		ExpeditionService: payload.ExpeditionService,
		PaymentMethod:     payload.PaymentMethod,
	})
	if err != nil {
		metrics.Inc(metrics.MetricCheckoutRejected)
		return webserver.FailErr(c, err)
	}

	metrics.Inc(metrics.MetricOrdersCreated)
	return webserver.Created(c, order, "Product transaction created successfully")
}

func (h *TransactionHandler) UpdateStatus(c echo.Context) error {
	var payload orderStatusPayload
	if err := c.Bind(&payload); err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "Request body is empty")
	}
	if err := c.Validate(&payload); err != nil {
		return webserver.FailValidation(c, err)
	}

	order, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("id"), checkout.StatusInput{
		PaymentStatus:    payload.PaymentStatus,
		ExpeditionStatus: payload.ExpeditionStatus,
	})
	if err != nil {
		return webserver.FailErr(c, err)
	}

	return webserver.Ok(c, order, "Product transaction updated successfully")
}

// Delete removes an order and restocks every line (inverse of checkout).
func (h *TransactionHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return webserver.FailErr(c, err)
	}
	return webserver.Ok(c, echo.Map{}, "Product transaction deleted successfully")
}
