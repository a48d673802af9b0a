// Package inventoryControllers tracks ingredient stock and how much of each
// ingredient a menu item consumes.
package inventoryControllers

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewService(db *gorm.DB, logger *zap.SugaredLogger) *Service {
	return &Service{db: db, logger: logger}
}
