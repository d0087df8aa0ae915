package api

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"gorm.io/gorm"

	"github.com/potonglab/barbershop/config"
	_ "github.com/potonglab/barbershop/docs"
	"github.com/potonglab/barbershop/internal/checkout"
	"github.com/potonglab/barbershop/internal/storage"
	"github.com/potonglab/barbershop/internal/webserver"
)

// Deps carries the injected collaborators for route registration. There
// are no package-level singletons; every handler gets its handles here.
type Deps struct {
	Cfg      *config.AppConfig
	DB       *gorm.DB
	Store    storage.ObjectStore
	Checkout CheckoutService
	Orders   checkout.Repository
}

func Register(e *echo.Echo, deps Deps) {
	auth := webserver.JWTMiddleware(deps.Cfg.Web.JwtSecret)

	users := NewUserHandler(deps.DB, deps.Cfg.Web.JwtSecret)
	products := NewProductHandler(deps.DB, deps.Store)
	haircuts := NewHaircutHandler(deps.DB, deps.Store)
	cart := NewCartHandler(deps.DB)
	orders := NewTransactionHandler(deps.Checkout, deps.Orders)
	bookings := NewHaircutTransactionHandler(deps.DB)
	uploads := NewUploadHandler(deps.Store)
	reports := NewReportHandler(deps.DB)
	dashboard := NewDashboardHandler(deps.DB)
	docs := NewDocsHandler(deps.Cfg.Web.DocsPassword)

	api := e.Group("/api")

	ug := api.Group("/users")
	ug.POST("/register", users.Register)
	ug.POST("/login", users.Login)
	ug.GET("/me", users.Me, auth)
	ug.PUT("/me", users.Update, auth)
	ug.GET("", users.List, auth, webserver.AdminOnly)
	ug.DELETE("/:id", users.Delete, auth, webserver.AdminOnly)

	pg := api.Group("/products")
	pg.GET("", products.List)
	pg.GET("/:id", products.Get)
	pg.POST("", products.Create, auth, webserver.AdminOnly)
	pg.PUT("/:id", products.Update, auth, webserver.AdminOnly)
	pg.DELETE("/:id", products.Delete, auth, webserver.AdminOnly)

	hg := api.Group("/haircuts")
	hg.GET("", haircuts.List)
	hg.GET("/:id", haircuts.Get)
	hg.POST("", haircuts.Create, auth, webserver.AdminOnly)
	hg.PUT("/:id", haircuts.Update, auth, webserver.AdminOnly)
	hg.DELETE("/:id", haircuts.Delete, auth, webserver.AdminOnly)

	cg := api.Group("/carts", auth)
	cg.GET("", cart.Get)
	cg.POST("", cart.Add)
	cg.PUT("/:id", cart.Update)
	cg.DELETE("/:id", cart.Delete)

	og := api.Group("/product-transactions", auth)
	og.GET("", orders.List, webserver.AdminOnly)
	og.GET("/mine", orders.ListMine)
	og.GET("/:id", orders.Get)
	og.POST("", orders.Checkout)
	og.PUT("/:id", orders.UpdateStatus, webserver.AdminOnly)
	og.DELETE("/:id", orders.Delete, webserver.AdminOnly)

	bg := api.Group("/haircut-transactions", auth)
	bg.GET("", bookings.List, webserver.AdminOnly)
	bg.GET("/mine", bookings.ListMine)
	bg.GET("/:id", bookings.Get)
	bg.POST("", bookings.Create)
	bg.PUT("/:id", bookings.UpdateStatus, webserver.AdminOnly)
	bg.DELETE("/:id", bookings.Delete, webserver.AdminOnly)

	upg := api.Group("/uploads", auth, webserver.AdminOnly)
	upg.POST("", uploads.Upload)
	upg.DELETE("", uploads.Delete)

	ag := api.Group("/admin", auth, webserver.AdminOnly)
	ag.GET("/dashboard", dashboard.Summary)
	ag.GET("/reports/transactions.xlsx", reports.TransactionsXLSX)
	ag.GET("/reports/products.csv", reports.ProductsCSV)

	api.POST("/docs-auth", docs.Auth)
	e.GET("/swagger/*", echoSwagger.WrapHandler, docs.Gate)
}
