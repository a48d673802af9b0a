package inventoryControllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/apperror"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/response"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrIngredientNotFound = apperror.NotFound("Ingredient not found")
	ErrIngredientExists   = apperror.Conflict("Ingredient already exists")
	ErrIngredientInUse    = apperror.Conflict("Cannot delete ingredient with existing usages")
	ErrNegativeQuantity   = apperror.BadRequest("Stock values and cost cannot be negative")
	ErrNegativeStock      = apperror.BadRequest("Stock cannot be negative")
	ErrAdjustmentRequired = apperror.BadRequest("Adjustment must be non-zero")
)

// -------- Request Structs --------

type IngredientRequest struct {
	Name         string           `json:"name" binding:"required,min=1,max=100"`
	Description  string           `json:"description" binding:"max=500"`
	Unit         string           `json:"unit" binding:"required,min=1,max=20"`
	CurrentStock *decimal.Decimal `json:"currentStock" binding:"required"`
	MinStock     *decimal.Decimal `json:"minStock" binding:"required"`
	CostPerUnit  *decimal.Decimal `json:"costPerUnit" binding:"required"`
	Supplier     string           `json:"supplier" binding:"max=100"`
}

type UpdateIngredientRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string          `json:"description" binding:"omitempty,max=500"`
	Unit        *string          `json:"unit" binding:"omitempty,min=1,max=20"`
	MinStock    *decimal.Decimal `json:"minStock"`
	CostPerUnit *decimal.Decimal `json:"costPerUnit"`
	Supplier    *string          `json:"supplier" binding:"omitempty,max=100"`
	IsActive    *bool            `json:"isActive"`
}

type AdjustStockRequest struct {
	Adjustment *decimal.Decimal `json:"adjustment" binding:"required"`
	Reason     string           `json:"reason" binding:"max=200"`
}

type IngredientFilter struct {
	IsActive *bool
	LowStock bool
}

// IngredientView adds the derived low-stock flag and usage count.
type IngredientView struct {
	models.Ingredient
	IsLowStock bool  `json:"isLowStock"`
	UsageCount int64 `json:"usageCount"`
}

// -------- Helpers --------

func anyNegative(values ...*decimal.Decimal) bool {
	for _, v := range values {
		if v != nil && v.IsNegative() {
			return true
		}
	}
	return false
}

func (s *Service) find(tx *gorm.DB, id string) (models.Ingredient, error) {
	var ing models.Ingredient
	err := tx.First(&ing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ing, ErrIngredientNotFound
	}
	return ing, err
}

func nameTaken(tx *gorm.DB, name, exceptID string) (bool, error) {
	q := tx.Model(&models.Ingredient{}).Where("name = ?", name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

// -------- Core Logic --------

func (s *Service) ListIngredients(ctx context.Context, f IngredientFilter) ([]IngredientView, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&models.Ingredient{})
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.LowStock {
		q = q.Where("current_stock <= min_stock")
	}

	var ingredients []models.Ingredient
	if err := q.Order("name ASC").Find(&ingredients).Error; err != nil {
		return nil, err
	}

	type usageCount struct {
		IngredientID string
		Count        int64
	}
	var counts []usageCount
	if err := db.Model(&models.IngredientUsage{}).
		Select("ingredient_id, COUNT(*) AS count").
		Group("ingredient_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]int64, len(counts))
	for _, c := range counts {
		byID[c.IngredientID] = c.Count
	}

	views := make([]IngredientView, 0, len(ingredients))
	for _, ing := range ingredients {
		views = append(views, IngredientView{Ingredient: ing, IsLowStock: ing.IsLowStock(), UsageCount: byID[ing.ID]})
	}
	return views, nil
}

func (s *Service) GetIngredient(ctx context.Context, id string) (models.Ingredient, error) {
	var ing models.Ingredient
	err := s.db.WithContext(ctx).
		Preload("Usages.MenuItem.Category").
		First(&ing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ing, ErrIngredientNotFound
	}
	return ing, err
}

func (s *Service) CreateIngredient(ctx context.Context, req IngredientRequest) (models.Ingredient, error) {
	if anyNegative(req.CurrentStock, req.MinStock, req.CostPerUnit) {
		return models.Ingredient{}, ErrNegativeQuantity
	}
	db := s.db.WithContext(ctx)
	name := strings.TrimSpace(req.Name)

	taken, err := nameTaken(db, name, "")
	if err != nil {
		return models.Ingredient{}, err
	}
	if taken {
		return models.Ingredient{}, ErrIngredientExists
	}

	ing := models.Ingredient{
		Name:         name,
		Description:  strings.TrimSpace(req.Description),
		Unit:         strings.TrimSpace(req.Unit),
		CurrentStock: req.CurrentStock.Round(2),
		MinStock:     req.MinStock.Round(2),
		CostPerUnit:  req.CostPerUnit.Round(2),
		Supplier:     strings.TrimSpace(req.Supplier),
		IsActive:     true,
	}
	err = db.Create(&ing).Error
	return ing, err
}

// UpdateIngredient edits descriptive fields. Stock levels only move through
// AdjustStock.
func (s *Service) UpdateIngredient(ctx context.Context, id string, req UpdateIngredientRequest) (models.Ingredient, error) {
	if anyNegative(req.MinStock, req.CostPerUnit) {
		return models.Ingredient{}, ErrNegativeQuantity
	}
	db := s.db.WithContext(ctx)

	ing, err := s.find(db, id)
	if err != nil {
		return ing, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != ing.Name {
			taken, err := nameTaken(db, name, id)
			if err != nil {
				return ing, err
			}
			if taken {
				return ing, ErrIngredientExists
			}
			updates["name"] = name
		}
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Unit != nil {
		updates["unit"] = strings.TrimSpace(*req.Unit)
	}
	if req.MinStock != nil {
		updates["min_stock"] = req.MinStock.Round(2)
	}
	if req.CostPerUnit != nil {
		updates["cost_per_unit"] = req.CostPerUnit.Round(2)
	}
	if req.Supplier != nil {
		updates["supplier"] = strings.TrimSpace(*req.Supplier)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := db.Model(&ing).Updates(updates).Error; err != nil {
			return ing, err
		}
	}
	return s.find(db, id)
}

func (s *Service) DeleteIngredient(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ing, err := s.find(tx, id)
		if err != nil {
			return err
		}
		var usages int64
		if err := tx.Model(&models.IngredientUsage{}).Where("ingredient_id = ?", id).Count(&usages).Error; err != nil {
			return err
		}
		if usages > 0 {
			return ErrIngredientInUse
		}
		return tx.Delete(&ing).Error
	})
}

// AdjustStock applies a signed delta in a single conditional UPDATE so that
// concurrent adjustments can never drive stock below zero.
func (s *Service) AdjustStock(ctx context.Context, id string, req AdjustStockRequest) (models.Ingredient, error) {
	delta := req.Adjustment.Round(2)
	if delta.IsZero() {
		return models.Ingredient{}, ErrAdjustmentRequired
	}

	var ing models.Ingredient
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.find(tx, id); err != nil {
			return err
		}
		res := tx.Model(&models.Ingredient{}).
			Where("id = ? AND current_stock + ? >= 0", id, delta).
			Update("current_stock", gorm.Expr("current_stock + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNegativeStock
		}
		var err error
		ing, err = s.find(tx, id)
		return err
	})
	if err != nil {
		return ing, err
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "Manual adjustment"
	}
	s.logger.Infow("stock adjusted", "ingredient", ing.Name, "adjustment", delta.String(), "stock", ing.CurrentStock.String(), "reason", reason)
	return ing, nil
}

func (s *Service) LowStock(ctx context.Context) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND current_stock <= min_stock", true).
		Order("current_stock ASC, name ASC").
		Find(&ingredients).Error
	return ingredients, err
}

// -------- Handlers --------

// GET /api/inventory/ingredients
func (s *Service) ListIngredientsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var f IngredientFilter
		if v, ok := c.GetQuery("isActive"); ok {
			active := v == "true"
			f.IsActive = &active
		}
		f.LowStock = c.Query("lowStock") == "true"

		ingredients, err := s.ListIngredients(c.Request.Context(), f)
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"ingredients": ingredients})
	}
}

// GET /api/inventory/ingredients/:id
func (s *Service) GetIngredientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ing, err := s.GetIngredient(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"ingredient": ing})
	}
}

// POST /api/inventory/ingredients
func (s *Service) CreateIngredientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IngredientRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		ing, err := s.CreateIngredient(c.Request.Context(), req)
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusCreated, "Ingredient created successfully", gin.H{"ingredient": ing})
	}
}

// PUT /api/inventory/ingredients/:id
func (s *Service) UpdateIngredientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateIngredientRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		ing, err := s.UpdateIngredient(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusOK, "Ingredient updated successfully", gin.H{"ingredient": ing})
	}
}

// DELETE /api/inventory/ingredients/:id
func (s *Service) DeleteIngredientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.DeleteIngredient(c.Request.Context(), c.Param("id")); err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusOK, "Ingredient deleted successfully", nil)
	}
}

// POST /api/inventory/ingredients/:id/adjust-stock
func (s *Service) AdjustStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AdjustStockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		ing, err := s.AdjustStock(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			c.Error(err)
			return
		}
		reason := req.Reason
		if reason == "" {
			reason = "Manual adjustment"
		}
		response.Message(c, http.StatusOK, "Stock adjusted successfully", gin.H{
			"ingredient": ing,
			"adjustment": req.Adjustment,
			"reason":     reason,
		})
	}
}

// GET /api/inventory/low-stock
func (s *Service) LowStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ingredients, err := s.LowStock(c.Request.Context())
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"lowStockIngredients": ingredients, "count": len(ingredients)})
	}
}
