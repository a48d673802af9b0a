package menuControllers

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
	ErrItemNotFound     = apperror.NotFound("Menu item not found")
	ErrItemExists       = apperror.Conflict("Menu item already exists")
	ErrItemHasOrders    = apperror.Conflict("Cannot delete item with existing orders")
	ErrNegativePrice    = apperror.BadRequest("Price cannot be negative")
	ErrModifierNotFound = apperror.NotFound("Modifier not found")
)

// -------- Request Structs --------

type MenuItemRequest struct {
	Name            string           `json:"name" binding:"required,min=1,max=100"`
	Description     string           `json:"description" binding:"max=500"`
	Price           *decimal.Decimal `json:"price" binding:"required"`
	CategoryID      string           `json:"categoryId" binding:"required,uuid"`
	IsVegetarian    bool             `json:"isVegetarian"`
	IsSpicy         bool             `json:"isSpicy"`
	PreparationTime int              `json:"preparationTime" binding:"omitempty,min=1,max=120"`
	ModifierIDs     []string         `json:"modifierIds" binding:"omitempty,dive,uuid"`
}

type UpdateMenuItemRequest struct {
	Name            *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Description     *string          `json:"description" binding:"omitempty,max=500"`
	Price           *decimal.Decimal `json:"price"`
	CategoryID      *string          `json:"categoryId" binding:"omitempty,uuid"`
	IsActive        *bool            `json:"isActive"`
	IsVegetarian    *bool            `json:"isVegetarian"`
	IsSpicy         *bool            `json:"isSpicy"`
	PreparationTime *int             `json:"preparationTime" binding:"omitempty,min=1,max=120"`
	ModifierIDs     []string         `json:"modifierIds" binding:"omitempty,dive,uuid"`
}

type ItemFilter struct {
	CategoryID string
	Search     string
	IsActive   *bool
}

// -------- Helpers --------

func itemDetail(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").Preload("Modifiers")
}

func categoryExists(tx *gorm.DB, id string) error {
	var count int64
	if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func loadModifiers(tx *gorm.DB, ids []string) ([]models.Modifier, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var mods []models.Modifier
	if err := tx.Where("id IN ?", ids).Find(&mods).Error; err != nil {
		return nil, err
	}
	if len(mods) != len(ids) {
		return nil, ErrModifierNotFound
	}
	return mods, nil
}

// -------- Core Logic --------

func (s *Service) ListItems(ctx context.Context, f ItemFilter) ([]models.MenuItem, error) {
	q := itemDetail(s.db.WithContext(ctx)).
		Joins("JOIN categories ON categories.id = menu_items.category_id")
	if f.CategoryID != "" {
		q = q.Where("menu_items.category_id = ?", f.CategoryID)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(menu_items.name) LIKE ? OR LOWER(menu_items.description) LIKE ?", like, like)
	}
	if f.IsActive != nil {
		q = q.Where("menu_items.is_active = ?", *f.IsActive)
	}

	var items []models.MenuItem
	err := q.Order("categories.sort_order ASC, menu_items.name ASC").Find(&items).Error
	return items, err
}

func (s *Service) GetItem(ctx context.Context, id string) (models.MenuItem, error) {
	var item models.MenuItem
	err := itemDetail(s.db.WithContext(ctx)).
		Preload("Usages.Ingredient").
		First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, ErrItemNotFound
	}
	return item, err
}

func (s *Service) CreateItem(ctx context.Context, req MenuItemRequest) (models.MenuItem, error) {
	if req.Price.IsNegative() {
		return models.MenuItem{}, ErrNegativePrice
	}

	var id string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := categoryExists(tx, req.CategoryID); err != nil {
			return err
		}
		name := strings.TrimSpace(req.Name)
		var count int64
		if err := tx.Model(&models.MenuItem{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrItemExists
		}
		mods, err := loadModifiers(tx, req.ModifierIDs)
		if err != nil {
			return err
		}

		item := models.MenuItem{
			Name:            name,
			Description:     strings.TrimSpace(req.Description),
			Price:           req.Price.Round(2),
			CategoryID:      req.CategoryID,
			IsActive:        true,
			IsVegetarian:    req.IsVegetarian,
			IsSpicy:         req.IsSpicy,
			PreparationTime: req.PreparationTime,
			Modifiers:       mods,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		id = item.ID
		return nil
	})
	if err != nil {
		return models.MenuItem{}, err
	}
	return s.GetItem(ctx, id)
}

func (s *Service) UpdateItem(ctx context.Context, id string, req UpdateMenuItemRequest) (models.MenuItem, error) {
	if req.Price != nil && req.Price.IsNegative() {
		return models.MenuItem{}, ErrNegativePrice
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.MenuItem
		err := tx.First(&item, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name != item.Name {
				var count int64
				if err := tx.Model(&models.MenuItem{}).Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					return ErrItemExists
				}
				updates["name"] = name
			}
		}
		if req.Description != nil {
			updates["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Price != nil {
			updates["price"] = req.Price.Round(2)
		}
		if req.CategoryID != nil {
			if err := categoryExists(tx, *req.CategoryID); err != nil {
				return err
			}
			updates["category_id"] = *req.CategoryID
		}
		if req.IsActive != nil {
			updates["is_active"] = *req.IsActive
		}
		if req.IsVegetarian != nil {
			updates["is_vegetarian"] = *req.IsVegetarian
		}
		if req.IsSpicy != nil {
			updates["is_spicy"] = *req.IsSpicy
		}
		if req.PreparationTime != nil {
			updates["preparation_time"] = *req.PreparationTime
		}
		if len(updates) > 0 {
			if err := tx.Model(&item).Updates(updates).Error; err != nil {
				return err
			}
		}

		switch {
		case req.ModifierIDs == nil:
		case len(req.ModifierIDs) == 0:
			if err := tx.Model(&item).Association("Modifiers").Clear(); err != nil {
				return err
			}
		default:
			mods, err := loadModifiers(tx, req.ModifierIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(&item).Association("Modifiers").Replace(mods); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.MenuItem{}, err
	}
	return s.GetItem(ctx, id)
}

// DeleteItem removes an item that no order line refers to.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.MenuItem
		err := tx.First(&item, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		if err != nil {
			return err
		}

		var lines int64
		if err := tx.Model(&models.OrderItem{}).Where("menu_item_id = ?", id).Count(&lines).Error; err != nil {
			return err
		}
		if lines > 0 {
			return ErrItemHasOrders
		}

		if err := tx.Model(&item).Association("Modifiers").Clear(); err != nil {
			return err
		}
		if err := tx.Where("menu_item_id = ?", id).Delete(&models.IngredientUsage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
}

// -------- Handlers --------

// GET /api/menu/items
func (s *Service) ListItemsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		f := ItemFilter{CategoryID: c.Query("categoryId"), Search: strings.TrimSpace(c.Query("search"))}
		if v, ok := c.GetQuery("isActive"); ok {
			active := v == "true"
			f.IsActive = &active
		}
		items, err := s.ListItems(c.Request.Context(), f)
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"items": items})
	}
}

// GET /api/menu/items/:id
func (s *Service) GetItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := s.GetItem(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"item": item})
	}
}

// POST /api/menu/items
func (s *Service) CreateItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MenuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		item, err := s.CreateItem(c.Request.Context(), req)
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusCreated, "Menu item created successfully", gin.H{"item": item})
	}
}

// PUT /api/menu/items/:id
func (s *Service) UpdateItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateMenuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		item, err := s.UpdateItem(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusOK, "Menu item updated successfully", gin.H{"item": item})
	}
}

// DELETE /api/menu/items/:id
func (s *Service) DeleteItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusOK, "Menu item deleted successfully", nil)
	}
}
