package api

import (
	"fmt"
	"net/http"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/potonglab/barbershop/internal/domain"
	"github.com/potonglab/barbershop/internal/webserver"
)

// ReportHandler produces admin exports of the transaction ledger and the
// product catalog.
type ReportHandler struct {
	db *gorm.DB
}

func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{db: db}
}

// TransactionsXLSX streams the full product-transaction ledger as a
// spreadsheet, one row per order line.
func (h *ReportHandler) TransactionsXLSX(c echo.Context) error {
	var orders []domain.ProductTransaction
	err := h.db.Preload("User").Preload("Items").Preload("Items.Product").
		Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	xlsx := excelize.NewFile()
	const sheet = "Sheet1"
	headers := []string{"Order No", "Order ID", "Customer", "Product", "Quantity", "Price At Purchase", "Subtotal", "Total", "Payment", "Expedition", "Created At"}
	for i, title := range headers {
		xlsx.SetCellValue(sheet, fmt.Sprintf("%c1", 'A'+i), title)
	}

	row := 2
	for _, order := range orders {
		customer := ""
		if order.User != nil {
			customer = order.User.Name
		}
		for _, item := range order.Items {
			productName := item.ProductID
			if item.Product != nil {
				productName = item.Product.Name
			}
			xlsx.SetCellValue(sheet, fmt.Sprintf("A%d", row), order.OrderNo)
			xlsx.SetCellValue(sheet, fmt.Sprintf("B%d", row), order.ID)
			xlsx.SetCellValue(sheet, fmt.Sprintf("C%d", row), customer)
			xlsx.SetCellValue(sheet, fmt.Sprintf("D%d", row), productName)
			xlsx.SetCellValue(sheet, fmt.Sprintf("E%d", row), item.Quantity)
			xlsx.SetCellValue(sheet, fmt.Sprintf("F%d", row), item.PriceAtPurchase)
			xlsx.SetCellValue(sheet, fmt.Sprintf("G%d", row), item.Subtotal())
			xlsx.SetCellValue(sheet, fmt.Sprintf("H%d", row), order.TotalPrice)
			xlsx.SetCellValue(sheet, fmt.Sprintf("I%d", row), order.PaymentStatus)
			xlsx.SetCellValue(sheet, fmt.Sprintf("J%d", row), order.ExpeditionStatus)
			xlsx.SetCellValue(sheet, fmt.Sprintf("K%d", row), order.CreatedAt.Format("2006-01-02 15:04:05"))
			row++
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="transactions.xlsx"`)
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	return xlsx.Write(c.Response())
}

type productCSVRow struct {
	ID          string  `csv:"id"`
	Name        string  `csv:"name"`
	Description string  `csv:"description"`
	Price       float64 `csv:"price"`
	Stock       int     `csv:"stock"`
	ImageURL    string  `csv:"image_url"`
	CreatedAt   string  `csv:"created_at"`
}

// ProductsCSV exports the active product catalog.
func (h *ReportHandler) ProductsCSV(c echo.Context) error {
	var products []domain.Product
	if err := h.db.Order("created_at DESC").Find(&products).Error; err != nil {
		return webserver.Fail(c, http.StatusInternalServerError, "Internal server error")
	}

	rows := make([]*productCSVRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, &productCSVRow{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Stock:       p.Stock,
			ImageURL:    p.ImageURL,
			CreatedAt:   p.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().WriteHeader(http.StatusOK)
	return gocsv.Marshal(rows, c.Response())
}
