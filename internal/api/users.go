package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/potonglab/barbershop/internal/domain"
	"github.com/potonglab/barbershop/internal/webserver"
)

type UserHandler struct {
	db        *gorm.DB
	jwtSecret string
}

func NewUserHandler(db *gorm.DB, jwtSecret string) *UserHandler {
	return &UserHandler{db: db, jwtSecret: jwtSecret}
}

type registerPayload struct {
	Name     string `json:"name" validate:"required,min=1,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userUpdatePayload struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=64"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

func (h *UserHandler) Register(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "Request body is empty")
	}
	if err := c.Validate(&payload); err != nil {
		return webserver.FailValidation(c, err)
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))

	var exists int64
	h.db.Model(&domain.User{}).Where("email = ?", email).Count(&exists)
	if exists > 0 {
		return webserver.Fail(c, http.StatusBadRequest, "Email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	user := domain.User{
		Name:     strings.TrimSpace(payload.Name),
		Email:    email,
		Password: string(hashed),
		Role:     domain.RoleUser,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Created(c, echo.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	}, "Register success")
}

func (h *UserHandler) Login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "Request body is empty")
	}
	if err := c.Validate(&payload); err != nil {
		return webserver.FailValidation(c, err)
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))

	var user domain.User
	err := h.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return webserver.Fail(c, http.StatusUnauthorized, "Invalid email or password")
	} else if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)) != nil {
		return webserver.Fail(c, http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := webserver.CreateToken(h.jwtSecret, user.ID, user.Name, user.Role)
	if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Ok(c, echo.Map{"token": token}, "Login success")
}

func (h *UserHandler) Me(c echo.Context) error {
	uid := webserver.CurrentUserID(c)

	var user domain.User
	err := h.db.First(&user, "id = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return webserver.Fail(c, http.StatusNotFound, "User not found")
	} else if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Ok(c, echo.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	}, "Successfully retrieved profile")
}

func (h *UserHandler) List(c echo.Context) error {
	page, limit := parsePagination(c)

	db := h.db.Model(&domain.User{})
	if q := foldSearch(c.QueryParam("q")); q != "" {
		db = db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", "%"+q+"%", "%"+q+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	var users []domain.User
	if err := db.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Paged(c, users, total, page, limit, "Successfully retrieved users")
}

func (h *UserHandler) Update(c echo.Context) error {
	uid := webserver.CurrentUserID(c)

	var payload userUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "Request body is empty")
	}
	if err := c.Validate(&payload); err != nil {
		return webserver.FailValidation(c, err)
	}

	var user domain.User
	err := h.db.First(&user, "id = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return webserver.Fail(c, http.StatusNotFound, "User not found")
	} else if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	if payload.Name != nil {
		user.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*payload.Password), bcrypt.DefaultCost)
		if err != nil {
			return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
		}
		user.Password = string(hashed)
	}

	if err := h.db.Save(&user).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Ok(c, echo.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	}, "User updated successfully")
}

func (h *UserHandler) Delete(c echo.Context) error {
	id := c.Param("id")

	var user domain.User
	err := h.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return webserver.Fail(c, http.StatusNotFound, "User not found")
	} else if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	if err := h.db.Delete(&user).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return webserver.Ok(c, echo.Map{"id": id}, "User deleted successfully")
}
