// Package auth handles staff sign-in and the JWTs that authenticate every
// other API call.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/apperror"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/response"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = apperror.Unauthorized("Invalid credentials")

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginResponse struct {
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Login checks credentials of an active user and issues a token.
func Login(db *gorm.DB, issuer *Issuer, req LoginRequest) (LoginResponse, error) {
	var user models.User
	err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LoginResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResponse{}, err
	}
	if !user.IsActive {
		return LoginResponse{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return LoginResponse{}, ErrInvalidCredentials
	}

	token, expiresAt, err := issuer.Issue(user)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// POST /api/auth/login
func LoginHandler(db *gorm.DB, issuer *Issuer, logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}

		res, err := Login(db, issuer, req)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				logger.Infow("rejected login", "email", req.Email, "ip", c.ClientIP())
			}
			c.Error(err)
			return
		}

		logger.Infow("user logged in", "user_id", res.User.ID, "role", res.User.Role)
		response.Message(c, http.StatusOK, "Login successful", res)
	}
}

// POST /api/auth/logout
//
// Tokens are stateless; the client drops its copy.
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Message(c, http.StatusOK, "Logout successful", nil)
	}
}

// GET /api/auth/me
func MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Error(apperror.Unauthorized("Authentication required"))
			return
		}
		response.OK(c, http.StatusOK, gin.H{"user": user})
	}
}
