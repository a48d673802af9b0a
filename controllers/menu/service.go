// Package menuControllers serves the menu catalog: categories, items and
// modifiers, plus spreadsheet import and export of items.
package menuControllers

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
