// Package reportControllers aggregates sales, staff and inventory figures for
// managers, and the at-a-glance dashboard every role sees.
package reportControllers

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewService(db *gorm.DB, logger *zap.SugaredLogger) *Service {
	return &Service{db: db, logger: logger, now: time.Now}
}
