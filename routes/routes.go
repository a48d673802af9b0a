package routes

import (
	"net/http"
	"time"

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
	"github.com/junaidrashid-git/restaurant-pos-api/metrics"
	"github.com/junaidrashid-git/restaurant-pos-api/middleware"
	"github.com/junaidrashid-git/restaurant-pos-api/realtime"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps is everything the route groups need, built once in main.
type Deps struct {
	Config  config.Config
	DB      *gorm.DB
	Logger  *zap.SugaredLogger
	Issuer  *auth.Issuer
	Metrics *metrics.Metrics
	Hub     *realtime.Hub
	Started time.Time

	Orders    *orderControllers.Service
	Payments  *paymentControllers.Service
	Tables    *tableControllers.Service
	Menu      *menuControllers.Service
	Inventory *inventoryControllers.Service
	Reports   *reportControllers.Service
	Users     *userControllers.Service
}

// SetupRoutes is the single entry point that wires every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    time.Since(d.Started).Seconds(),
		})
	})
	r.GET("/metrics", middleware.ValidateAPIKey(d.Config.MetricsAPIKey), d.Metrics.Handler())

	authenticate := middleware.Authenticate(d.DB, d.Issuer)
	r.GET("/ws", authenticate, d.Hub.ServeWS)

	api := r.Group("/api")

	// Public: login and the gateway callback
	SetupAuthRoutes(api, d, authenticate)
	api.POST("/payments/telr/webhook",
		middleware.TelrWebhookAuth(d.Config.Payments.TelrWebhookSecret, d.Logger),
		d.Payments.TelrWebhookHandler())

	// Everything else needs a valid token
	protected := api.Group("", authenticate)
	SetupOrderRoutes(protected, d)
	SetupPaymentRoutes(protected, d)
	SetupTableRoutes(protected, d)
	SetupMenuRoutes(protected, d)
	SetupInventoryRoutes(protected, d)
	SetupReportRoutes(protected, d)
	SetupUserRoutes(protected, d)
}
