package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/auth"
	"github.com/junaidrashid-git/restaurant-pos-api/config"
	inventoryControllers "github.com/junaidrashid-git/restaurant-pos-api/controllers/inventory"
	menuControllers "github.com/junaidrashid-git/restaurant-pos-api/controllers/menu"
	orderControllers "github.com/junaidrashid-git/restaurant-pos-api/controllers/order"
	paymentControllers "github.com/junaidrashid-git/restaurant-pos-api/controllers/payment"
	reportControllers "github.com/junaidrashid-git/restaurant-pos-api/controllers/report"
	tableControllers "github.com/junaidrashid-git/restaurant-pos-api/controllers/table"
	userControllers "github.com/junaidrashid-git/restaurant-pos-api/controllers/user"
	"github.com/junaidrashid-git/restaurant-pos-api/gateway"
	"github.com/junaidrashid-git/restaurant-pos-api/metrics"
	"github.com/junaidrashid-git/restaurant-pos-api/middleware"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/realtime"
	"github.com/junaidrashid-git/restaurant-pos-api/routes"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	logger := newLogger(cfg)
	defer logger.Sync()

	if cfg.JWT.Secret == "" {
		logger.Fatal("JWT_SECRET must be set")
	}

	// Money goes over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	db, err := models.Open(cfg.Database, cfg.IsDevelopment())
	if err != nil {
		logger.Fatalw("database connection failed", "error", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		logger.Fatalw("auto-migrate failed", "error", err)
	}

	m := metrics.New()
	hub := realtime.NewHub(logger, cfg.CORSOrigin)
	gateways := gateway.NewRegistryFromConfig(cfg.Payments, logger)

	deps := routes.Deps{
		Config:  cfg,
		DB:      db,
		Logger:  logger,
		Issuer:  auth.NewIssuer(cfg.JWT),
		Metrics: m,
		Hub:     hub,
		Started: time.Now(),

		Orders:    orderControllers.NewService(db, logger, hub, m, cfg.TaxRate),
		Payments:  paymentControllers.NewService(db, logger, hub, m, gateways, cfg.Payments),
		Tables:    tableControllers.NewService(db, logger),
		Menu:      menuControllers.NewService(db, logger),
		Inventory: inventoryControllers.NewService(db, logger),
		Reports:   reportControllers.NewService(db, logger),
		Users:     userControllers.NewService(db, logger),
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// Spreadsheet uploads stay small
	r.MaxMultipartMemory = 8 << 20

	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	// Outermost first: the logger and metrics observe the status that
	// ErrorHandler writes.
	r.Use(middleware.RequestLogger(logger))
	r.Use(m.Middleware())
	r.Use(middleware.ErrorHandler(logger))
	r.Use(middleware.NewRateLimiter(cfg.RateLimit.Window, cfg.RateLimit.MaxRequests).Middleware())

	routes.SetupRoutes(r, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infow("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		hub.Close()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Errorw("server stopped with error", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func newLogger(cfg config.Config) *zap.SugaredLogger {
	build := zap.NewProduction
	if cfg.IsDevelopment() {
		build = zap.NewDevelopment
	}
	l, err := build()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	return l.Sugar()
}
