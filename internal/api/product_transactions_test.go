package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/potonglab/barbershop/internal/checkout"
	"github.com/potonglab/barbershop/internal/domain"
	"github.com/potonglab/barbershop/internal/errs"
	"github.com/potonglab/barbershop/internal/webserver"
)

type mockCheckoutService struct {
	checkoutFn func(ctx context.Context, userID string, in checkout.Input) (*domain.ProductTransaction, error)
	deleteFn   func(ctx context.Context, orderID string) error
	updateFn   func(ctx context.Context, orderID string, in checkout.StatusInput) (*domain.ProductTransaction, error)
}

func (m *mockCheckoutService) Checkout(ctx context.Context, userID string, in checkout.Input) (*domain.ProductTransaction, error) {
	return m.checkoutFn(ctx, userID, in)
}

func (m *mockCheckoutService) Delete(ctx context.Context, orderID string) error {
	return m.deleteFn(ctx, orderID)
}

func (m *mockCheckoutService) UpdateStatus(ctx context.Context, orderID string, in checkout.StatusInput) (*domain.ProductTransaction, error) {
	return m.updateFn(ctx, orderID, in)
}

type mockOrderRepo struct {
	listFn       func(ctx context.Context, page, pageSize int) ([]*domain.ProductTransaction, int64, error)
	listByUserFn func(ctx context.Context, userID string, page, pageSize int) ([]*domain.ProductTransaction, int64, error)
	getFn        func(ctx context.Context, id string) (*domain.ProductTransaction, error)
}

func (m *mockOrderRepo) List(ctx context.Context, page, pageSize int) ([]*domain.ProductTransaction, int64, error) {
	return m.listFn(ctx, page, pageSize)
}

func (m *mockOrderRepo) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]*domain.ProductTransaction, int64, error) {
	return m.listByUserFn(ctx, userID, page, pageSize)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*domain.ProductTransaction, error) {
	return m.getFn(ctx, id)
}

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func asUser(c echo.Context, userID, role string) {
	c.Set("user", &jwt.Token{Claims: &webserver.Claims{UserID: userID, Role: role}})
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) webserver.Envelope {
	t.Helper()
	var env webserver.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v\n%s", err, rec.Body.String())
	}
	return env
}

func TestTransactionCheckoutSuccess(t *testing.T) {
	var gotUser string
	var gotInput checkout.Input
	svc := &mockCheckoutService{
		checkoutFn: func(ctx context.Context, userID string, in checkout.Input) (*domain.ProductTransaction, error) {
			gotUser = userID
			gotInput = in
			return &domain.ProductTransaction{ID: "ord-1", UserID: userID, TotalPrice: 42}, nil
		},
	}
	h := NewTransactionHandler(svc, &mockOrderRepo{})

	c, rec := newTestContext(t, http.MethodPost, "/api/product-transactions",
		`{"product_id":"prd-1","quantity":2}`)
	asUser(c, "usr-1", domain.RoleUser)

	if err := h.Checkout(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if gotUser != "usr-1" {
		t.Errorf("user = %q, want usr-1", gotUser)
	}
	if gotInput.ProductID != "prd-1" || gotInput.Quantity != 2 {
		t.Errorf("input = %+v", gotInput)
	}
	env := decodeEnvelope(t, rec)
	if env.Status != "success" {
		t.Errorf("envelope status = %q", env.Status)
	}
}

func TestTransactionCheckoutRejected(t *testing.T) {
	svc := &mockCheckoutService{
		checkoutFn: func(ctx context.Context, userID string, in checkout.Input) (*domain.ProductTransaction, error) {
			return nil, errs.New(errs.KindValidation, "Insufficient stock for pomade. Max available: 5")
		},
	}
	h := NewTransactionHandler(svc, &mockOrderRepo{})

	c, rec := newTestContext(t, http.MethodPost, "/api/product-transactions", `{"product_id":"prd-1","quantity":8}`)
	asUser(c, "usr-1", domain.RoleUser)

	if err := h.Checkout(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Status != "error" {
		t.Errorf("envelope status = %q", env.Status)
	}
	if !strings.Contains(env.Message, "Insufficient stock") {
		t.Errorf("message = %q", env.Message)
	}
}

func TestTransactionGetFlattensRelations(t *testing.T) {
	repo := &mockOrderRepo{
		getFn: func(ctx context.Context, id string) (*domain.ProductTransaction, error) {
			return &domain.ProductTransaction{
				ID:         id,
				TotalPrice: 99,
				User:       &domain.User{ID: "usr-1", Name: "ani", Email: "ani@example.com", Role: domain.RoleUser},
				Items: []domain.TransactionItem{
					{ID: "itm-1", ProductID: "prd-1", Quantity: 1, PriceAtPurchase: 99},
				},
			}, nil
		},
	}
	h := NewTransactionHandler(&mockCheckoutService{}, repo)

	c, rec := newTestContext(t, http.MethodGet, "/api/product-transactions/ord-1", "")
	c.SetParamNames("id")
	c.SetParamValues("ord-1")
	asUser(c, "usr-1", domain.RoleUser)

	if err := h.Get(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	data, ok := env.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data shape: %v", env.Data)
	}
	user, ok := data["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("user relation missing: %v", data)
	}
	if len(user) != 2 || user["name"] != "ani" || user["email"] != "ani@example.com" {
		t.Errorf("user should carry only name and email: %v", user)
	}
	items, ok := data["items"].([]interface{})
	if !ok || len(items) != 1 {
		t.Fatalf("items relation: %v", data["items"])
	}
}

func TestTransactionGetNotFound(t *testing.T) {
	repo := &mockOrderRepo{
		getFn: func(ctx context.Context, id string) (*domain.ProductTransaction, error) {
			return nil, errs.New(errs.KindNotFound, "Product transaction not found")
		},
	}
	h := NewTransactionHandler(&mockCheckoutService{}, repo)

	c, rec := newTestContext(t, http.MethodGet, "/api/product-transactions/nope", "")
	c.SetParamNames("id")
	c.SetParamValues("nope")

	if err := h.Get(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestTransactionListMineScopedToCaller(t *testing.T) {
	var gotUser string
	repo := &mockOrderRepo{
		listByUserFn: func(ctx context.Context, userID string, page, pageSize int) ([]*domain.ProductTransaction, int64, error) {
			gotUser = userID
			return []*domain.ProductTransaction{{ID: "ord-1", UserID: userID}}, 1, nil
		},
	}
	h := NewTransactionHandler(&mockCheckoutService{}, repo)

	c, rec := newTestContext(t, http.MethodGet, "/api/product-transactions/mine", "")
	asUser(c, "usr-7", domain.RoleUser)

	if err := h.ListMine(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUser != "usr-7" {
		t.Errorf("repo queried for %q, want usr-7", gotUser)
	}
}

func TestTransactionUpdateStatusRejectsUnknownValue(t *testing.T) {
	called := false
	svc := &mockCheckoutService{
		updateFn: func(ctx context.Context, orderID string, in checkout.StatusInput) (*domain.ProductTransaction, error) {
			called = true
			return &domain.ProductTransaction{ID: orderID}, nil
		},
	}
	h := NewTransactionHandler(svc, &mockOrderRepo{})

	c, rec := newTestContext(t, http.MethodPut, "/api/product-transactions/ord-1",
		`{"payment_status":"refunded"}`)
	c.SetParamNames("id")
	c.SetParamValues("ord-1")

	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if called {
		t.Error("service must not be called on invalid payload")
	}
}

func TestTransactionUpdateStatusSuccess(t *testing.T) {
	var gotInput checkout.StatusInput
	svc := &mockCheckoutService{
		updateFn: func(ctx context.Context, orderID string, in checkout.StatusInput) (*domain.ProductTransaction, error) {
			gotInput = in
			return &domain.ProductTransaction{ID: orderID, PaymentStatus: domain.PaymentStatusPaid}, nil
		},
	}
	h := NewTransactionHandler(svc, &mockOrderRepo{})

	c, rec := newTestContext(t, http.MethodPut, "/api/product-transactions/ord-1",
		`{"payment_status":"paid"}`)
	c.SetParamNames("id")
	c.SetParamValues("ord-1")

	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotInput.PaymentStatus == nil || *gotInput.PaymentStatus != "paid" {
		t.Errorf("input = %+v", gotInput)
	}
	if gotInput.ExpeditionStatus != nil {
		t.Error("expedition status must stay nil when not sent")
	}
}

func TestTransactionDelete(t *testing.T) {
	var gotID string
	svc := &mockCheckoutService{
		deleteFn: func(ctx context.Context, orderID string) error {
			gotID = orderID
			return nil
		},
	}
	h := NewTransactionHandler(svc, &mockOrderRepo{})

	c, rec := newTestContext(t, http.MethodDelete, "/api/product-transactions/ord-1", "")
	c.SetParamNames("id")
	c.SetParamValues("ord-1")
	asUser(c, "adm-1", domain.RoleAdmin)

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotID != "ord-1" {
		t.Errorf("deleted id = %q", gotID)
	}
}
