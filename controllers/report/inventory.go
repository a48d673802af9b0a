package reportControllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/response"
	"github.com/shopspring/decimal"
)

type IngredientLine struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	CurrentStock decimal.Decimal `json:"currentStock"`
	MinStock     decimal.Decimal `json:"minStock"`
	Unit         string          `json:"unit"`
	CostPerUnit  decimal.Decimal `json:"costPerUnit"`
	StockValue   decimal.Decimal `json:"stockValue"`
	TotalUsage   decimal.Decimal `json:"totalUsage"`
	MenuItems    []string        `json:"menuItems"`
	IsLowStock   bool            `json:"isLowStock"`
	Supplier     string          `json:"supplier"`
}

type InventorySummary struct {
	TotalItems      int             `json:"totalItems"`
	LowStockItems   int             `json:"lowStockItems"`
	TotalStockValue decimal.Decimal `json:"totalStockValue"`
}

type InventoryReport struct {
	Summary         InventorySummary `json:"summary"`
	InventoryReport []IngredientLine `json:"inventoryReport"`
}

// Inventory values active stock at cost. TotalUsage is the per-portion
// quantity summed across the menu items that use the ingredient.
func (s *Service) Inventory(ctx context.Context) (InventoryReport, error) {
	var ingredients []models.Ingredient
	if err := s.db.WithContext(ctx).
		Preload("Usages.MenuItem").
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&ingredients).Error; err != nil {
		return InventoryReport{}, err
	}

	report := InventoryReport{InventoryReport: make([]IngredientLine, 0, len(ingredients))}
	for _, ing := range ingredients {
		line := IngredientLine{
			ID:           ing.ID,
			Name:         ing.Name,
			CurrentStock: ing.CurrentStock,
			MinStock:     ing.MinStock,
			Unit:         ing.Unit,
			CostPerUnit:  ing.CostPerUnit,
			StockValue:   ing.CurrentStock.Mul(ing.CostPerUnit).Round(2),
			MenuItems:    []string{},
			IsLowStock:   ing.IsLowStock(),
			Supplier:     ing.Supplier,
		}
		for _, u := range ing.Usages {
			line.TotalUsage = line.TotalUsage.Add(u.Quantity)
			if u.MenuItem != nil {
				line.MenuItems = append(line.MenuItems, u.MenuItem.Name)
			}
		}
		if line.IsLowStock {
			report.Summary.LowStockItems++
		}
		report.Summary.TotalStockValue = report.Summary.TotalStockValue.Add(line.StockValue)
		report.InventoryReport = append(report.InventoryReport, line)
	}
	report.Summary.TotalItems = len(ingredients)
	return report, nil
}

// GET /api/reports/inventory
func (s *Service) InventoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := s.Inventory(c.Request.Context())
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, report)
	}
}
