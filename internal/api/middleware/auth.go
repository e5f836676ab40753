package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Asmaa63/Shop-Website-sub001/internal/domain"
	"github.com/Asmaa63/Shop-Website-sub001/internal/repository"
)

const UserContextKey = "user"

// AuthMiddleware authenticates requests using a bearer session token. The
// token is looked up by its SHA256 hex; expired sessions never resolve.
func AuthMiddleware(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolveUser(c, repos, logger)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			c.Abort()
			return
		}

		c.Set(UserContextKey, user)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the user when a token is present but lets
// anonymous requests through (guest carts and guest checkout).
func OptionalAuthMiddleware(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if user, ok := resolveUser(c, repos, logger); ok {
				c.Set(UserContextKey, user)
			}
		}
		c.Next()
	}
}

// AdminRequired gates admin routes; it must run after AuthMiddleware
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUserFromContext(c)
		if !ok || !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func resolveUser(c *gin.Context, repos *repository.Repositories, logger *zap.Logger) (*domain.User, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return nil, false
	}

	session, err := repos.Session.GetByTokenHash(c.Request.Context(), HashToken(token))
	if err != nil {
		logger.Warn("Failed to resolve session token", zap.Error(err))
		return nil, false
	}

	user, err := repos.User.GetByID(c.Request.Context(), session.UserID)
	if err != nil {
		logger.Warn("Session references unknown user", zap.Error(err))
		return nil, false
	}
	return user, true
}

// GetUserFromContext retrieves the authenticated user from the Gin context
func GetUserFromContext(c *gin.Context) (*domain.User, bool) {
	user, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}

	u, ok := user.(*domain.User)
	return u, ok
}

// HashToken returns the SHA256 hex of a session token for storage/lookup
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
