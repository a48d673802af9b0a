// Package orderControllers owns the order lifecycle: creation with table
// claiming, status transitions, cancellation and the kitchen queue.
package orderControllers

import (
	"time"

	"github.com/junaidrashid-git/restaurant-pos-api/metrics"
	"github.com/junaidrashid-git/restaurant-pos-api/realtime"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db        *gorm.DB
	logger    *zap.SugaredLogger
	publisher realtime.Publisher
	metrics   *metrics.Metrics
	taxRate   decimal.Decimal
	now       func() time.Time
}

func NewService(db *gorm.DB, logger *zap.SugaredLogger, publisher realtime.Publisher, m *metrics.Metrics, taxRate decimal.Decimal) *Service {
	return &Service{
		db:        db,
		logger:    logger,
		publisher: publisher,
		metrics:   m,
		taxRate:   taxRate,
		now:       time.Now,
	}
}

// orderDetail preloads everything the order screens render.
func orderDetail(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Table").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.MenuItem.Category").
		Preload("Creator")
}
