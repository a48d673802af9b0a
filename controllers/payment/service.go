// Package paymentControllers records payments against orders, issues refunds
// and reports on what was taken.
package paymentControllers

import (
	"time"

	"github.com/junaidrashid-git/restaurant-pos-api/config"
	"github.com/junaidrashid-git/restaurant-pos-api/gateway"
	"github.com/junaidrashid-git/restaurant-pos-api/metrics"
	"github.com/junaidrashid-git/restaurant-pos-api/realtime"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db        *gorm.DB
	logger    *zap.SugaredLogger
	publisher realtime.Publisher
	metrics   *metrics.Metrics
	gateways  *gateway.Registry
	cfg       config.Payments
	now       func() time.Time
}

func NewService(db *gorm.DB, logger *zap.SugaredLogger, publisher realtime.Publisher, m *metrics.Metrics, gateways *gateway.Registry, cfg config.Payments) *Service {
	return &Service{
		db:        db,
		logger:    logger,
		publisher: publisher,
		metrics:   m,
		gateways:  gateways,
		cfg:       cfg,
		now:       time.Now,
	}
}

func paymentDetail(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Order.Table").
		Preload("Order.Items.MenuItem").
		Preload("Processor")
}
