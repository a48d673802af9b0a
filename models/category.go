package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string     `gorm:"uniqueIndex;not null" json:"name"`
	Description string     `json:"description"`
	SortOrder   int        `gorm:"not null;default:0" json:"sortOrder"`
	IsActive    bool       `gorm:"not null;default:true" json:"isActive"`
	MenuItems   []MenuItem `gorm:"foreignKey:CategoryID" json:"menuItems,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// Modifier is an optional add-on offered with menu items (extra cheese, no onion).
type Modifier struct {
	ID        string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string          `gorm:"uniqueIndex;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	IsActive  bool            `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (m *Modifier) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
