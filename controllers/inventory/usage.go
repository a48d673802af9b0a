package inventoryControllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/apperror"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/response"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrMenuItemNotFound = apperror.NotFound("Menu item not found")
	ErrUsageExists      = apperror.Conflict("Ingredient usage already exists")
	ErrUsageNotFound    = apperror.NotFound("Ingredient usage not found")
	ErrUsageQuantity    = apperror.BadRequest("Quantity must be at least 0.01")
)

var minUsage = decimal.RequireFromString("0.01")

type UsageRequest struct {
	IngredientID string           `json:"ingredientId" binding:"required,uuid"`
	Quantity     *decimal.Decimal `json:"quantity" binding:"required"`
}

func (s *Service) AddUsage(ctx context.Context, menuItemID string, req UsageRequest) (models.IngredientUsage, error) {
	if req.Quantity.LessThan(minUsage) {
		return models.IngredientUsage{}, ErrUsageQuantity
	}

	var usage models.IngredientUsage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.MenuItem
		err := tx.Select("id").First(&item, "id = ?", menuItemID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMenuItemNotFound
		}
		if err != nil {
			return err
		}
		if _, err := s.find(tx, req.IngredientID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.IngredientUsage{}).
			Where("menu_item_id = ? AND ingredient_id = ?", menuItemID, req.IngredientID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUsageExists
		}

		usage = models.IngredientUsage{
			MenuItemID:   menuItemID,
			IngredientID: req.IngredientID,
			Quantity:     req.Quantity.Round(3),
		}
		if err := tx.Create(&usage).Error; err != nil {
			return err
		}
		return tx.Preload("Ingredient").Preload("MenuItem.Category").First(&usage, "id = ?", usage.ID).Error
	})
	return usage, err
}

func (s *Service) RemoveUsage(ctx context.Context, menuItemID, ingredientID string) error {
	res := s.db.WithContext(ctx).
		Where("menu_item_id = ? AND ingredient_id = ?", menuItemID, ingredientID).
		Delete(&models.IngredientUsage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUsageNotFound
	}
	return nil
}

// POST /api/inventory/menu-items/:id/ingredients
func (s *Service) AddUsageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UsageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		usage, err := s.AddUsage(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusCreated, "Ingredient usage added successfully", gin.H{"usage": usage})
	}
}

// DELETE /api/inventory/menu-items/:id/ingredients/:ingredientId
func (s *Service) RemoveUsageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.RemoveUsage(c.Request.Context(), c.Param("id"), c.Param("ingredientId")); err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusOK, "Ingredient usage removed successfully", nil)
	}
}
