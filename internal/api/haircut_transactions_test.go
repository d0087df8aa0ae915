package api

import (
	"net/http"
	"testing"

	"github.com/potonglab/barbershop/internal/domain"
)

func TestBookingCreateBumpsOwnCounter(t *testing.T) {
	db := newTestDB(t)
	h := NewHaircutTransactionHandler(db)
	fade := &domain.Haircut{Name: "mid fade"}
	mullet := &domain.Haircut{Name: "mullet"}
	mustCreate(t, db, fade)
	mustCreate(t, db, mullet)

	body := `{"haircut_id":"` + fade.ID + `","hairwash":true,"total_price":50000,"reservation_time":"2026-09-01 14:00"}`
	c, rec := newTestContext(t, http.MethodPost, "/api/haircut-transactions", body)
	asUser(c, "usr-1", domain.RoleUser)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var reloadedFade, reloadedMullet domain.Haircut
	db.First(&reloadedFade, "id = ?", fade.ID)
	db.First(&reloadedMullet, "id = ?", mullet.ID)
	if reloadedFade.ChoosenCount != 1 {
		t.Errorf("booked haircut count = %d, want 1", reloadedFade.ChoosenCount)
	}
	if reloadedMullet.ChoosenCount != 0 {
		t.Errorf("other haircut count = %d, must stay 0", reloadedMullet.ChoosenCount)
	}

	var booking domain.HaircutTransaction
	if err := db.First(&booking, "user_id = ?", "usr-1").Error; err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if booking.ReservationStatus != domain.ReservationStatusPending {
		t.Errorf("reservation status = %q", booking.ReservationStatus)
	}
	if booking.PaymentMethod != "cash" {
		t.Errorf("payment method = %q, want cash default", booking.PaymentMethod)
	}
	if !booking.Hairwash {
		t.Error("hairwash flag lost")
	}
}

func TestBookingCreateCounterAccumulates(t *testing.T) {
	db := newTestDB(t)
	h := NewHaircutTransactionHandler(db)
	fade := &domain.Haircut{Name: "mid fade"}
	mustCreate(t, db, fade)

	body := `{"haircut_id":"` + fade.ID + `","hairwash":false,"total_price":35000,"reservation_time":"2026-09-02T10:30:00Z"}`
	for i := 0; i < 3; i++ {
		c, rec := newTestContext(t, http.MethodPost, "/api/haircut-transactions", body)
		asUser(c, "usr-1", domain.RoleUser)
		if err := h.Create(c); err != nil {
			t.Fatalf("handler: %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
	}

	var reloaded domain.Haircut
	db.First(&reloaded, "id = ?", fade.ID)
	if reloaded.ChoosenCount != 3 {
		t.Errorf("count = %d, want 3", reloaded.ChoosenCount)
	}
}

func TestBookingCreateInvalidTime(t *testing.T) {
	db := newTestDB(t)
	h := NewHaircutTransactionHandler(db)
	fade := &domain.Haircut{Name: "mid fade"}
	mustCreate(t, db, fade)

	body := `{"haircut_id":"` + fade.ID + `","hairwash":false,"total_price":35000,"reservation_time":"not a time"}`
	c, rec := newTestContext(t, http.MethodPost, "/api/haircut-transactions", body)
	asUser(c, "usr-1", domain.RoleUser)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var reloaded domain.Haircut
	db.First(&reloaded, "id = ?", fade.ID)
	if reloaded.ChoosenCount != 0 {
		t.Errorf("count = %d, failed booking must not bump it", reloaded.ChoosenCount)
	}
}

func TestBookingCreateUnknownHaircut(t *testing.T) {
	db := newTestDB(t)
	h := NewHaircutTransactionHandler(db)

	body := `{"haircut_id":"no-such-cut","hairwash":false,"total_price":35000,"reservation_time":"2026-09-02T10:30:00Z"}`
	c, rec := newTestContext(t, http.MethodPost, "/api/haircut-transactions", body)
	asUser(c, "usr-1", domain.RoleUser)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestBookingUpdateStatus(t *testing.T) {
	db := newTestDB(t)
	h := NewHaircutTransactionHandler(db)
	fade := &domain.Haircut{Name: "mid fade"}
	mustCreate(t, db, fade)
	booking := &domain.HaircutTransaction{
		UserID: "usr-1", HaircutID: fade.ID, TotalPrice: 35000,
		ReservationStatus: domain.ReservationStatusPending,
		PaymentStatus:     domain.PaymentStatusUnpaid,
	}
	mustCreate(t, db, booking)

	c, rec := newTestContext(t, http.MethodPut, "/api/haircut-transactions/"+booking.ID,
		`{"reservation_status":"confirmed"}`)
	c.SetParamNames("id")
	c.SetParamValues(booking.ID)
	asUser(c, "adm-1", domain.RoleAdmin)

	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var reloaded domain.HaircutTransaction
	db.First(&reloaded, "id = ?", booking.ID)
	if reloaded.ReservationStatus != domain.ReservationStatusConfirmed {
		t.Errorf("reservation status = %q", reloaded.ReservationStatus)
	}
	if reloaded.PaymentStatus != domain.PaymentStatusUnpaid {
		t.Errorf("payment status = %q, must stay unpaid", reloaded.PaymentStatus)
	}
}

func TestBookingUpdateStatusRejectsUnknownValue(t *testing.T) {
	db := newTestDB(t)
	h := NewHaircutTransactionHandler(db)

	c, rec := newTestContext(t, http.MethodPut, "/api/haircut-transactions/bkg-1",
		`{"reservation_status":"teleported"}`)
	c.SetParamNames("id")
	c.SetParamValues("bkg-1")

	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
