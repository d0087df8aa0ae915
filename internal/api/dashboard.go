package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"
	"github.com/nakabonne/tstorage"
	"gorm.io/gorm"

	"github.com/potonglab/barbershop/internal/domain"
	"github.com/potonglab/barbershop/internal/webserver"
	"github.com/potonglab/barbershop/pkg/metrics"
)

type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// Summary aggregates headline numbers for the admin live view: entity
// counts, revenue statistics over the order ledger, and the most recent
// system samples.
func (h *DashboardHandler) Summary(c echo.Context) error {
	var userCount, productCount, orderCount, bookingCount int64
	h.db.Model(&domain.User{}).Count(&userCount)
	h.db.Model(&domain.Product{}).Count(&productCount)
	h.db.Model(&domain.ProductTransaction{}).Count(&orderCount)
	h.db.Model(&domain.HaircutTransaction{}).Count(&bookingCount)

	var totals []float64
	if err := h.db.Model(&domain.ProductTransaction{}).Pluck("total_price", &totals).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	revenue := echo.Map{"sum": 0.0, "mean": 0.0, "median": 0.0}
	if len(totals) > 0 {
		sum, _ := stats.Sum(totals)
		mean, _ := stats.Mean(totals)
		median, _ := stats.Median(totals)
		revenue = echo.Map{"sum": sum, "mean": mean, "median": median}
	}

	now := time.Now().Unix()
	system := echo.Map{
		"cpu_percent": lastValue(metrics.Select(metrics.MetricSystemCPU, now-3600, now)),
		"mem_percent": lastValue(metrics.Select(metrics.MetricSystemMem, now-3600, now)),
	}

	return webserver.Ok(c, echo.Map{
		"counts": echo.Map{
			"users":                userCount,
			"products":             productCount,
			"product_transactions": orderCount,
			"haircut_transactions": bookingCount,
		},
		"revenue": revenue,
		"system":  system,
	}, "Successfully retrieved dashboard summary")
}

func lastValue(points []*tstorage.DataPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	return points[len(points)-1].Value
}
