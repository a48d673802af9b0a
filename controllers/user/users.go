// Package userControllers manages staff accounts. Every route is ADMIN only.
package userControllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/apperror"
	"github.com/junaidrashid-git/restaurant-pos-api/auth"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/response"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound   = apperror.NotFound("User not found")
	ErrEmailTaken     = apperror.Conflict("User with this email already exists")
	ErrUsernameTaken  = apperror.Conflict("Username already taken")
	ErrSelfDeactivate = apperror.BadRequest("You cannot deactivate your own account")
	ErrInvalidRole    = apperror.BadRequest("Invalid role")
)

type Service struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
	cost   int
}

func NewService(db *gorm.DB, logger *zap.SugaredLogger) *Service {
	return &Service{db: db, logger: logger, cost: bcrypt.DefaultCost}
}

// -------- Request Structs --------

type CreateUserRequest struct {
	Email     string      `json:"email" binding:"required,email"`
	Username  string      `json:"username" binding:"required,min=3,max=50"`
	Password  string      `json:"password" binding:"required,min=6"`
	FirstName string      `json:"firstName" binding:"required,min=1,max=50"`
	LastName  string      `json:"lastName" binding:"required,min=1,max=50"`
	Role      models.Role `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	Email     *string      `json:"email" binding:"omitempty,email"`
	Username  *string      `json:"username" binding:"omitempty,min=3,max=50"`
	Password  *string      `json:"password" binding:"omitempty,min=6"`
	FirstName *string      `json:"firstName" binding:"omitempty,min=1,max=50"`
	LastName  *string      `json:"lastName" binding:"omitempty,min=1,max=50"`
	Role      *models.Role `json:"role"`
}

type StatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

type ListFilter struct {
	Role     string
	IsActive *bool
	Search   string
	Page     int
	Limit    int
}

// -------- Helpers --------

func (s *Service) find(tx *gorm.DB, id string) (models.User, error) {
	var user models.User
	err := tx.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrUserNotFound
	}
	return user, err
}

func taken(tx *gorm.DB, column, value, exceptID string) (bool, error) {
	q := tx.Model(&models.User{}).Where(column+" = ?", value)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

// -------- Core Logic --------

func (s *Service) ListUsers(ctx context.Context, f ListFilter) ([]models.User, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(username) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := q.Order("created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&users).Error
	return users, total, err
}

func (s *Service) GetUser(ctx context.Context, id string) (models.User, error) {
	return s.find(s.db.WithContext(ctx), id)
}

func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (models.User, error) {
	if _, ok := models.ParseRole(string(req.Role)); !ok {
		return models.User{}, ErrInvalidRole
	}
	db := s.db.WithContext(ctx)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if ok, err := taken(db, "email", email, ""); err != nil {
		return models.User{}, err
	} else if ok {
		return models.User{}, ErrEmailTaken
	}
	if ok, err := taken(db, "username", username, ""); err != nil {
		return models.User{}, err
	} else if ok {
		return models.User{}, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{
		Email:     email,
		Username:  username,
		Password:  string(hash),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      req.Role,
		IsActive:  true,
	}
	if err := db.Create(&user).Error; err != nil {
		return models.User{}, err
	}
	s.logger.Infow("user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (models.User, error) {
	db := s.db.WithContext(ctx)
	user, err := s.find(db, id)
	if err != nil {
		return user, err
	}

	updates := map[string]any{}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if ok, err := taken(db, "email", email, id); err != nil {
			return user, err
		} else if ok {
			return user, ErrEmailTaken
		}
		updates["email"] = email
	}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if ok, err := taken(db, "username", username, id); err != nil {
			return user, err
		} else if ok {
			return user, ErrUsernameTaken
		}
		updates["username"] = username
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.cost)
		if err != nil {
			return user, err
		}
		updates["password"] = string(hash)
	}
	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Role != nil {
		if _, ok := models.ParseRole(string(*req.Role)); !ok {
			return user, ErrInvalidRole
		}
		updates["role"] = *req.Role
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return user, err
		}
	}
	return s.find(db, id)
}

// SetStatus activates or deactivates an account. Admins cannot lock
// themselves out.
func (s *Service) SetStatus(ctx context.Context, actorID, id string, active bool) (models.User, error) {
	if !active && actorID == id {
		return models.User{}, ErrSelfDeactivate
	}
	db := s.db.WithContext(ctx)
	user, err := s.find(db, id)
	if err != nil {
		return user, err
	}
	if err := db.Model(&user).Update("is_active", active).Error; err != nil {
		return user, err
	}
	user.IsActive = active
	s.logger.Infow("user status changed", "user_id", id, "active", active, "by", actorID)
	return user, nil
}

// -------- Handlers --------

// GET /api/users
func (s *Service) ListUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := response.Page(c)
		f := ListFilter{Role: c.Query("role"), Search: strings.TrimSpace(c.Query("search")), Page: page, Limit: limit}
		if v, ok := c.GetQuery("isActive"); ok {
			active := v == "true"
			f.IsActive = &active
		}
		users, total, err := s.ListUsers(c.Request.Context(), f)
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{
			"users":      users,
			"pagination": response.NewPagination(page, limit, total),
		})
	}
}

// GET /api/users/:id
func (s *Service) GetUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.GetUser(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"user": user})
	}
}

// POST /api/users
func (s *Service) CreateUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		user, err := s.CreateUser(c.Request.Context(), req)
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusCreated, "User created successfully", gin.H{"user": user})
	}
}

// PUT /api/users/:id
func (s *Service) UpdateUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		user, err := s.UpdateUser(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusOK, "User updated successfully", gin.H{"user": user})
	}
}

// PATCH /api/users/:id/status
func (s *Service) SetStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		actor, _ := auth.CurrentUser(c)
		user, err := s.SetStatus(c.Request.Context(), actor.ID, c.Param("id"), *req.IsActive)
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusOK, "User status updated successfully", gin.H{"user": user})
	}
}

// DELETE /api/users/:id deactivates rather than deletes, so order and
// payment history keeps its authors.
func (s *Service) DeleteUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, _ := auth.CurrentUser(c)
		if _, err := s.SetStatus(c.Request.Context(), actor.ID, c.Param("id"), false); err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusOK, "User deactivated successfully", nil)
	}
}
