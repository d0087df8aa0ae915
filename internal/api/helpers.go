// Package api holds the HTTP-facing controllers. Handlers validate input,
// delegate to persistence and workflow services, and map outcomes onto the
// uniform response envelope.
package api

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"golang.org/x/text/cases"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

func parsePagination(c echo.Context) (page, limit int) {
	page = cast.ToInt(c.QueryParam("page"))
	if page < 1 {
		page = defaultPage
	}
	limit = cast.ToInt(c.QueryParam("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

var searchFolder = cases.Fold()

// foldSearch normalizes a free-text search term for case-insensitive
// matching across scripts.
func foldSearch(q string) string {
	return searchFolder.String(strings.TrimSpace(q))
}
