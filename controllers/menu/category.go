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
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound  = apperror.NotFound("Category not found")
	ErrCategoryExists    = apperror.Conflict("Category already exists")
	ErrCategoryNameTaken = apperror.Conflict("Category name already exists")
	ErrCategoryHasItems  = apperror.Conflict("Cannot delete category with existing items")
)

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
	SortOrder   int    `json:"sortOrder" binding:"min=0"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	SortOrder   *int    `json:"sortOrder" binding:"omitempty,min=0"`
	IsActive    *bool   `json:"isActive"`
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).
		Preload("MenuItems", "is_active = ?", true).
		Preload("MenuItems.Modifiers").
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	return categories, err
}

func (s *Service) CreateCategory(ctx context.Context, req CategoryRequest) (models.Category, error) {
	db := s.db.WithContext(ctx)
	name := strings.TrimSpace(req.Name)

	var count int64
	if err := db.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return models.Category{}, err
	}
	if count > 0 {
		return models.Category{}, ErrCategoryExists
	}

	category := models.Category{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}
	if err := db.Create(&category).Error; err != nil {
		return models.Category{}, err
	}
	return category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, req UpdateCategoryRequest) (models.Category, error) {
	db := s.db.WithContext(ctx)

	var category models.Category
	err := db.First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return category, ErrCategoryNotFound
	}
	if err != nil {
		return category, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != category.Name {
			var count int64
			if err := db.Model(&models.Category{}).Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
				return category, err
			}
			if count > 0 {
				return category, ErrCategoryNameTaken
			}
			updates["name"] = name
		}
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := db.Model(&category).Updates(updates).Error; err != nil {
			return category, err
		}
	}
	err = db.First(&category, "id = ?", id).Error
	return category, err
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		err := tx.First(&category, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		if err != nil {
			return err
		}

		var items int64
		if err := tx.Model(&models.MenuItem{}).Where("category_id = ?", id).Count(&items).Error; err != nil {
			return err
		}
		if items > 0 {
			return ErrCategoryHasItems
		}
		return tx.Delete(&category).Error
	})
}

// GET /api/menu/categories
func (s *Service) ListCategoriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := s.ListCategories(c.Request.Context())
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"categories": categories})
	}
}

// POST /api/menu/categories
func (s *Service) CreateCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		category, err := s.CreateCategory(c.Request.Context(), req)
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusCreated, "Category created successfully", gin.H{"category": category})
	}
}

// PUT /api/menu/categories/:id
func (s *Service) UpdateCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		category, err := s.UpdateCategory(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusOK, "Category updated successfully", gin.H{"category": category})
	}
}

// DELETE /api/menu/categories/:id
func (s *Service) DeleteCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusOK, "Category deleted successfully", nil)
	}
}
