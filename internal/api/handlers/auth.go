package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Asmaa63/Shop-Website-sub001/internal/api/middleware"
	"github.com/Asmaa63/Shop-Website-sub001/internal/domain"
	"github.com/Asmaa63/Shop-Website-sub001/internal/repository"
	"github.com/Asmaa63/Shop-Website-sub001/pkg/errors"
)

const sessionLifetime = 30 * 24 * time.Hour

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// HandleRegister handles POST /v1/auth/register
func HandleRegister(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		user := &domain.User{
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: string(hash),
		}
		if err := repos.User.Create(c.Request.Context(), user); err != nil {
			respondError(c, logger, err)
			return
		}

		logger.Info("User registered", zap.String("user_id", user.ID.String()))
		c.JSON(http.StatusCreated, authResponse{User: toUserResponse(user)})
	}
}

// HandleLogin handles POST /v1/auth/login; on success it issues an opaque
// bearer token whose SHA256 is stored server-side.
func HandleLogin(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		user, err := repos.User.GetByEmail(c.Request.Context(), req.Email)
		if err != nil {
			// Same response as a wrong password; do not reveal which
			respondError(c, logger, &errors.ErrUnauthorized{Message: "invalid credentials"})
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			respondError(c, logger, &errors.ErrUnauthorized{Message: "invalid credentials"})
			return
		}

		token := uuid.NewString() + uuid.NewString()
		session := &domain.Session{
			UserID:    user.ID,
			TokenHash: middleware.HashToken(token),
			ExpiresAt: time.Now().Add(sessionLifetime),
		}
		if err := repos.Session.Create(c.Request.Context(), session); err != nil {
			respondError(c, logger, err)
			return
		}

		logger.Info("User logged in", zap.String("user_id", user.ID.String()))
		c.JSON(http.StatusOK, authResponse{Token: token, User: toUserResponse(user)})
	}
}

// HandleLogout handles POST /v1/auth/logout
func HandleLogout(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if len(authHeader) <= len(prefix) {
			c.Status(http.StatusNoContent)
			return
		}
		token := authHeader[len(prefix):]

		session, err := repos.Session.GetByTokenHash(c.Request.Context(), middleware.HashToken(token))
		if err == nil {
			if err := repos.Session.Delete(c.Request.Context(), session.ID); err != nil {
				logger.Warn("Failed to delete session", zap.Error(err))
			}
		}
		c.Status(http.StatusNoContent)
	}
}

func toUserResponse(user *domain.User) userResponse {
	return userResponse{
		ID:      user.ID.String(),
		Email:   user.Email,
		Name:    user.Name,
		IsAdmin: user.IsAdmin,
	}
}
