package menuControllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/apperror"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/response"
	"github.com/shopspring/decimal"
)

var ErrModifierExists = apperror.Conflict("Modifier already exists")

type ModifierRequest struct {
	Name  string           `json:"name" binding:"required,min=1,max=100"`
	Price *decimal.Decimal `json:"price" binding:"required"`
}

func (s *Service) ListModifiers(ctx context.Context) ([]models.Modifier, error) {
	var mods []models.Modifier
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&mods).Error
	return mods, err
}

func (s *Service) CreateModifier(ctx context.Context, req ModifierRequest) (models.Modifier, error) {
	if req.Price.IsNegative() {
		return models.Modifier{}, ErrNegativePrice
	}
	db := s.db.WithContext(ctx)
	name := strings.TrimSpace(req.Name)

	var count int64
	if err := db.Model(&models.Modifier{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return models.Modifier{}, err
	}
	if count > 0 {
		return models.Modifier{}, ErrModifierExists
	}

	mod := models.Modifier{Name: name, Price: req.Price.Round(2), IsActive: true}
	err := db.Create(&mod).Error
	return mod, err
}

// GET /api/menu/modifiers
func (s *Service) ListModifiersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		mods, err := s.ListModifiers(c.Request.Context())
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"modifiers": mods})
	}
}

// POST /api/menu/modifiers
func (s *Service) CreateModifierHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ModifierRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		mod, err := s.CreateModifier(c.Request.Context(), req)
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusCreated, "Modifier created successfully", gin.H{"modifier": mod})
	}
}
