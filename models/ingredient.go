package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Ingredient struct {
	ID           string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name         string            `gorm:"uniqueIndex;not null" json:"name"`
	Description  string            `json:"description"`
	Unit         string            `gorm:"size:20;not null" json:"unit"`
	CurrentStock decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"currentStock"`
	MinStock     decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"minStock"`
	CostPerUnit  decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"costPerUnit"`
	Supplier     string            `json:"supplier"`
	IsActive     bool              `gorm:"not null;default:true" json:"isActive"`
	Usages       []IngredientUsage `gorm:"foreignKey:IngredientID" json:"usages,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// IsLowStock is derived, never stored.
func (i Ingredient) IsLowStock() bool {
	return i.CurrentStock.LessThanOrEqual(i.MinStock)
}

// IngredientUsage is how much of an ingredient one portion of a menu item uses.
type IngredientUsage struct {
	ID           string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	MenuItemID   string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_usage_item_ingredient" json:"menuItemId"`
	MenuItem     *MenuItem       `gorm:"foreignKey:MenuItemID" json:"menuItem,omitempty"`
	IngredientID string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_usage_item_ingredient" json:"ingredientId"`
	Ingredient   *Ingredient     `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	Quantity     decimal.Decimal `gorm:"type:decimal(10,3);not null" json:"quantity"`
}

func (u *IngredientUsage) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
