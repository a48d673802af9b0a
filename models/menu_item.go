package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MenuItem struct {
	ID              string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name            string            `gorm:"uniqueIndex;not null" json:"name"`
	Description     string            `json:"description"`
	Price           decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"price"`
	CategoryID      string            `gorm:"type:varchar(36);index;not null" json:"categoryId"`
	Category        *Category         `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	IsActive        bool              `gorm:"not null;default:true" json:"isActive"`
	IsVegetarian    bool              `json:"isVegetarian"`
	IsSpicy         bool              `json:"isSpicy"`
	PreparationTime int               `json:"preparationTime"` // minutes
	Modifiers       []Modifier        `gorm:"many2many:menu_item_modifiers" json:"modifiers"`
	Usages          []IngredientUsage `gorm:"foreignKey:MenuItemID" json:"ingredients,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
