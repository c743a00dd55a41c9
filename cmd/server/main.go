package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	inventoryapp "github.com/stockadoodle/backend/internal/application/inventory"
	salesapp "github.com/stockadoodle/backend/internal/application/sales"
	domainsales "github.com/stockadoodle/backend/internal/domain/sales"
	"github.com/stockadoodle/backend/internal/infrastructure/cache"
	"github.com/stockadoodle/backend/internal/infrastructure/config"
	"github.com/stockadoodle/backend/internal/infrastructure/logger"
	"github.com/stockadoodle/backend/internal/infrastructure/persistence"
	"github.com/stockadoodle/backend/internal/interfaces/http/handler"
	"github.com/stockadoodle/backend/internal/interfaces/http/middleware"
	"github.com/stockadoodle/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting stockadoodle backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	batchRepo := persistence.NewGormStockBatchRepository(db.DB)
	saleLedger := persistence.NewGormSaleLedger(db.DB)
	metricsRepo := persistence.NewGormRetailerMetricsRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	retailerDirectory := persistence.NewGormRetailerDirectory(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	defaultQuota, err := decimal.NewFromString(cfg.Sales.DefaultDailyQuota)
	if err != nil {
		log.Fatal("Invalid default daily quota", zap.String("value", cfg.Sales.DefaultDailyQuota), zap.Error(err))
	}

	// Initialize application services
	salesService := salesapp.NewSalesService(
		txScope,
		batchRepo,
		saleLedger,
		metricsRepo,
		productRepo,
		retailerDirectory,
		salesapp.Config{
			QuotaMeasure:      domainsales.QuotaMeasure(cfg.Sales.QuotaMeasure),
			DefaultDailyQuota: defaultQuota,
			ExpiryWindowDays:  cfg.Alerts.ExpiryWindowDays,
			MaxCommitAttempts: cfg.Sales.MaxCommitAttempts,
			LeaderboardSize:   cfg.Sales.LeaderboardSize,
		},
		log,
	)
	inventoryService := inventoryapp.NewInventoryService(batchRepo, productRepo, log)

	// Attach the Redis leaderboard cache when Redis is reachable. The
	// service works without it; reads fall back to the metrics store.
	leaderboardCache, err := cache.NewRedisLeaderboardCache(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn("Redis unavailable, leaderboard cache disabled", zap.Error(err))
	} else {
		salesService.SetLeaderboardCache(leaderboardCache)
		log.Info("Leaderboard cache enabled", zap.String("addr", cfg.Redis.Addr()))
	}

	// Initialize handlers
	salesHandler := handler.NewSalesHandler(salesService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, cfg.Alerts.ExpiryWindowDays)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Sales domain (sale posting, retailer metrics, leaderboard)
	salesRoutes := router.NewDomainGroup("sales", "/sales")
	salesRoutes.POST("", salesHandler.PostSale)
	salesRoutes.GET("", salesHandler.ListSales)
	salesRoutes.GET("/:id", salesHandler.GetSale)
	r.Register(salesRoutes)

	retailerRoutes := router.NewDomainGroup("retailers", "/retailers")
	retailerRoutes.GET("/:id/metrics", salesHandler.GetRetailerMetrics)
	retailerRoutes.GET("/:id/sales", salesHandler.ListRetailerSales)
	retailerRoutes.PUT("/:id/quota", salesHandler.UpdateRetailerQuota)
	r.Register(retailerRoutes)

	leaderboardRoutes := router.NewDomainGroup("leaderboard", "/leaderboard")
	leaderboardRoutes.GET("", salesHandler.Leaderboard)
	r.Register(leaderboardRoutes)

	// Inventory domain (batches, stock levels, alerts)
	batchRoutes := router.NewDomainGroup("batches", "/batches")
	batchRoutes.POST("", inventoryHandler.ReceiveBatch)
	batchRoutes.GET("/:id", inventoryHandler.GetBatch)
	batchRoutes.POST("/:id/dispose", inventoryHandler.DisposeBatch)
	r.Register(batchRoutes)

	productRoutes := router.NewDomainGroup("products", "/products")
	productRoutes.GET("/:id/stock", inventoryHandler.GetStock)
	productRoutes.GET("/:id/alerts", inventoryHandler.GetProductAlerts)
	r.Register(productRoutes)

	stockRoutes := router.NewDomainGroup("stock", "/stock")
	stockRoutes.GET("", inventoryHandler.GetStockOverview)
	r.Register(stockRoutes)

	alertRoutes := router.NewDomainGroup("alerts", "/alerts")
	alertRoutes.GET("", inventoryHandler.GetAllAlerts)
	r.Register(alertRoutes)

	// Admin operations (daily rollover, expiry sweep)
	adminRoutes := router.NewDomainGroup("admin", "/admin")
	adminRoutes.POST("/rollover", salesHandler.RunDailyRollover)
	adminRoutes.POST("/sweep", inventoryHandler.SweepExpired)
	r.Register(adminRoutes)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}
