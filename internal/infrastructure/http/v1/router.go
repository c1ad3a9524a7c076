// Package v1 provides HTTP API version 1.
package v1

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	appctx "vendorbook/internal/core/context"
	"vendorbook/internal/domain/catalogs/vendor"
	"vendorbook/internal/domain/settlement"
	"vendorbook/internal/infrastructure/http/v1/handlers"
	"vendorbook/internal/infrastructure/http/v1/middleware"
	"vendorbook/internal/obs"
	"vendorbook/pkg/logger"
)

// RouterConfig holds the router's dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	Items       handlers.ItemService
	Vendors     handlers.CatalogService[*vendor.Vendor]
	Settlement  *settlement.Service
	Sales       handlers.SalesService
	VendorSales handlers.VendorSalesSource
	Reports     handlers.ReportsService

	// HealthChecks are pinged by /health/ready
	HealthChecks map[string]handlers.Pinger

	// Metrics and MetricsHandler are optional
	Metrics        *obs.HTTPMetrics
	MetricsHandler http.Handler

	// CORSAllowedOrigins; empty disables CORS handling
	CORSAllowedOrigins []string

	// Debug switches gin to debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
	}
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}
	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTValidator))
	{
		base := handlers.NewBaseHandler()
		registerCatalogRoutes(v1, base, cfg)
		registerSessionRoutes(v1, base, cfg)
		registerSalesRoutes(v1, base, cfg)
		registerReportRoutes(v1, base, cfg)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID, middleware.HeaderTraceID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = origins
	}
	return c
}

// registerCatalogRoutes registers item and vendor endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	owner := middleware.RequireRole(appctx.RoleOwner)

	if cfg.Items != nil {
		h := handlers.NewItemHandler(base, cfg.Items)
		items := rg.Group("/items")
		items.GET("/low-stock", h.LowStock)
		items.PUT("/:id/stock", owner, h.SetStock)
		RegisterCatalogRoutes(items, h)
	}

	if cfg.Vendors != nil {
		h := handlers.NewVendorHandler(base, cfg.Vendors, cfg.VendorSales)
		vendors := rg.Group("/vendors")
		vendors.GET("/:id/sales", h.Sales)
		RegisterCatalogRoutes(vendors, h)
	}
}

// registerSessionRoutes registers the settlement session workflow.
func registerSessionRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Settlement == nil {
		return
	}

	h := handlers.NewSessionHandler(base, cfg.Settlement)
	sessions := rg.Group("/sessions")
	{
		sessions.POST("", h.Start)
		sessions.GET("/:id", h.Get)
		sessions.POST("/:id/vendors", h.SelectVendor)
		sessions.DELETE("/:id/vendors/:vendorId", h.DeselectVendor)
		sessions.PUT("/:id/vendors/:vendorId/items/:itemId/taken", h.SetTaken)
		sessions.POST("/:id/lock", h.Lock)
		sessions.PUT("/:id/vendors/:vendorId/items/:itemId/returned", h.SetReturned)
		sessions.GET("/:id/totals", h.Totals)
		sessions.POST("/:id/submit", h.Submit)
	}
}

// registerSalesRoutes registers submitted-record and dashboard endpoints.
func registerSalesRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Sales == nil {
		return
	}

	h := handlers.NewSalesHandler(base, cfg.Sales)
	salesGroup := rg.Group("/sales")
	{
		salesGroup.GET("", h.List)
		salesGroup.GET("/daily/:date", h.Daily)
		salesGroup.GET("/:id", h.Get)
	}
	rg.GET("/dashboard/stats", middleware.RequireRole(appctx.RoleOwner), h.DashboardStats)
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Reports == nil {
		return
	}

	owner := middleware.RequireRole(appctx.RoleOwner)
	h := handlers.NewReportsHandler(base, cfg.Reports)
	reportsGroup := rg.Group("/reports", owner)
	{
		reportsGroup.POST("/monthly", h.GenerateMonthly)
		reportsGroup.GET("/monthly/:month", h.GetMonthly)
	}
}
