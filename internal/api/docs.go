package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/potonglab/barbershop/internal/webserver"
)

const docsAuthKey = "is_docs_authenticated"

// DocsHandler gates the swagger UI behind a shared password so the API
// reference is not world-readable on public deployments.
type DocsHandler struct {
	password string
}

func NewDocsHandler(password string) *DocsHandler {
	return &DocsHandler{password: password}
}

type docsAuthPayload struct {
	Password string `json:"password" validate:"required"`
}

func (h *DocsHandler) Auth(c echo.Context) error {
	var payload docsAuthPayload
	if err := c.Bind(&payload); err != nil {
		return webserver.Fail(c, http.StatusBadRequest, "Request body is empty")
	}
	if err := c.Validate(&payload); err != nil {
		return webserver.FailValidation(c, err)
	}

	if h.password == "" || payload.Password != h.password {
		return webserver.Fail(c, http.StatusUnauthorized, "Invalid Password")
	}

	sess, _ := session.Get("session", c)
	sess.Values[docsAuthKey] = true
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}
	return webserver.Ok(c, echo.Map{"authenticated": true}, "Docs access granted")
}

func (h *DocsHandler) Gate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, _ := session.Get("session", c)
		if ok, _ := sess.Values[docsAuthKey].(bool); ok {
			return next(c)
		}
		return webserver.Fail(c, http.StatusUnauthorized, "Unauthorized docs access. Please login first.")
	}
}
