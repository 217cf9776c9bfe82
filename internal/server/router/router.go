package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/autoshop/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Catalog *handlers.CatalogHandler
	Stock   *handlers.StockHandler
	Reports *handlers.ReportHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	inventory := api.Group("/inventory")
	inventory.POST("/stock/deduct", h.Stock.Deduct)
	inventory.POST("/stock/add", h.Stock.Add)
	inventory.GET("/stock/low", h.Reports.LowStock)
	inventory.GET("/stock/low/export", h.Reports.LowStockWorkbook)
	inventory.GET("/movements", h.Reports.Movements)
	inventory.GET("/movements/summary", h.Reports.Summary)
	inventory.GET("/movements/daily", h.Reports.DailySummary)

	inventory.POST("/products", h.Catalog.CreateProduct)
	inventory.GET("/products", h.Catalog.ListProducts)
	inventory.GET("/products/:id", h.Catalog.GetProduct)
	inventory.PATCH("/products/:id", h.Catalog.UpdateProduct)

	inventory.POST("/brands", h.Catalog.CreateBrand)
	inventory.GET("/brands", h.Catalog.ListBrands)
	inventory.POST("/models", h.Catalog.CreateVehicleModel)
	inventory.GET("/models", h.Catalog.ListVehicleModels)
	inventory.POST("/variants", h.Catalog.CreateVariant)
	inventory.GET("/variants", h.Catalog.ListVariants)
	inventory.POST("/categories", h.Catalog.CreateCategory)
	inventory.GET("/categories", h.Catalog.ListCategories)
	inventory.POST("/ranges", h.Catalog.CreateRange)
	inventory.GET("/ranges", h.Catalog.ListRanges)
	inventory.POST("/vendors", h.Catalog.CreateVendor)
	inventory.GET("/vendors", h.Catalog.ListVendors)

	api.POST("/users", h.Catalog.CreateUser)
	api.GET("/users", h.Catalog.ListUsers)
	api.GET("/notifications", h.Reports.Notifications)
	api.POST("/alerts/sweep", h.Reports.SweepAlerts)
	api.POST("/reports/daily/export", h.Reports.ExportDailySummary)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

// requestIDMiddleware reuses the caller's request id or assigns a new one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
