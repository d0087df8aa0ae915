package api

import (
	"net/http"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/potonglab/barbershop/internal/domain"
)

const testJwtSecret = "test-secret"

func TestUserRegister(t *testing.T) {
	db := newTestDB(t)
	h := NewUserHandler(db, testJwtSecret)

	c, rec := newTestContext(t, http.MethodPost, "/api/users/register",
		`{"name":"Ani","email":"Ani@Example.COM","password":"secret123"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var user domain.User
	if err := db.First(&user, "email = ?", "ani@example.com").Error; err != nil {
		t.Fatalf("email must be stored lowercased: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("role = %q, want user", user.Role)
	}
	if user.Password == "secret123" {
		t.Error("password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")) != nil {
		t.Error("stored hash does not verify")
	}
}

func TestUserRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	h := NewUserHandler(db, testJwtSecret)
	mustCreate(t, db, &domain.User{Name: "first", Email: "ani@example.com"})

	c, rec := newTestContext(t, http.MethodPost, "/api/users/register",
		`{"name":"Ani","email":"ANI@example.com","password":"secret123"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUserRegisterWeakPassword(t *testing.T) {
	db := newTestDB(t)
	h := NewUserHandler(db, testJwtSecret)

	c, rec := newTestContext(t, http.MethodPost, "/api/users/register",
		`{"name":"Ani","email":"ani@example.com","password":"abc"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUserLogin(t *testing.T) {
	db := newTestDB(t)
	h := NewUserHandler(db, testJwtSecret)
	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	mustCreate(t, db, &domain.User{Name: "ani", Email: "ani@example.com", Password: string(hashed)})

	c, rec := newTestContext(t, http.MethodPost, "/api/users/login",
		`{"email":"ani@example.com","password":"secret123"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]interface{})
	if token, _ := data["token"].(string); token == "" {
		t.Error("login must return a token")
	}
}

func TestUserLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	h := NewUserHandler(db, testJwtSecret)
	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	mustCreate(t, db, &domain.User{Name: "ani", Email: "ani@example.com", Password: string(hashed)})

	c, rec := newTestContext(t, http.MethodPost, "/api/users/login",
		`{"email":"ani@example.com","password":"wrong-pass"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestUserLoginUnknownEmail(t *testing.T) {
	db := newTestDB(t)
	h := NewUserHandler(db, testJwtSecret)

	c, rec := newTestContext(t, http.MethodPost, "/api/users/login",
		`{"email":"ghost@example.com","password":"whatever"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestUserMe(t *testing.T) {
	db := newTestDB(t)
	h := NewUserHandler(db, testJwtSecret)
	user := &domain.User{Name: "ani", Email: "ani@example.com"}
	mustCreate(t, db, user)

	c, rec := newTestContext(t, http.MethodGet, "/api/users/me", "")
	asUser(c, user.ID, domain.RoleUser)

	if err := h.Me(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]interface{})
	if data["email"] != "ani@example.com" {
		t.Errorf("data = %v", data)
	}
	if _, leaked := data["password"]; leaked {
		t.Error("password must never appear in a profile response")
	}
}
