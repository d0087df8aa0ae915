package webserver

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/potonglab/barbershop/internal/errs"
)

// Envelope is the uniform response body. Clients branch on Status alone.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type PagedData struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

func Ok(c echo.Context, data interface{}, message string) error {
	return c.JSON(http.StatusOK, Envelope{Status: "success", Message: message, Data: data})
}

func Created(c echo.Context, data interface{}, message string) error {
	return c.JSON(http.StatusCreated, Envelope{Status: "success", Message: message, Data: data})
}

func Paged(c echo.Context, data interface{}, total int64, page, limit int, message string) error {
	return Ok(c, PagedData{
		Data:       data,
		Pagination: Pagination{Page: page, Limit: limit, Total: total},
	}, message)
}

func Fail(c echo.Context, code int, message string) error {
	return c.JSON(code, Envelope{Status: "error", Message: message, Data: nil})
}

// FailErr maps a tagged workflow error to its HTTP status exactly once.
// Untagged errors surface as a generic 500.
func FailErr(c echo.Context, err error) error {
	switch errs.KindOf(err) {
	case errs.KindValidation:
		return Fail(c, http.StatusBadRequest, errs.MessageOf(err))
	case errs.KindUnauthorized:
		return Fail(c, http.StatusUnauthorized, errs.MessageOf(err))
	case errs.KindNotFound:
		return Fail(c, http.StatusNotFound, errs.MessageOf(err))
	case errs.KindConflict:
		return Fail(c, http.StatusConflict, errs.MessageOf(err))
	default:
		return Fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

// FailValidation turns validator field errors into a 400 that enumerates
// the offending fields.
func FailValidation(c echo.Context, err error) error {
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		msg := "Missing or invalid fields:"
		for i, fe := range fieldErrs {
			if i > 0 {
				msg += ","
			}
			msg += " " + fe.Field()
		}
		return Fail(c, http.StatusBadRequest, msg)
	}
	return Fail(c, http.StatusBadRequest, "Invalid request payload")
}
