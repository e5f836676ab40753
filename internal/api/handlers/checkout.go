package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Asmaa63/Shop-Website-sub001/internal/api/middleware"
	"github.com/Asmaa63/Shop-Website-sub001/internal/config"
	"github.com/Asmaa63/Shop-Website-sub001/internal/repository"
	"github.com/Asmaa63/Shop-Website-sub001/internal/service"
)

// HandleCreateCheckoutSession handles POST /v1/checkout/session. The cart
// lines in the request are re-priced against the catalog before the hosted
// session is created; on success the cart is cleared.
func HandleCreateCheckoutSession(
	cfg *config.Config,
	repos *repository.Repositories,
	carts repository.CartStore,
	provider service.ProviderClient,
	logger *zap.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		var userID *uuid.UUID
		if user, ok := middleware.GetUserFromContext(c); ok {
			userID = &user.ID
		}

		checkoutService := service.NewCheckoutService(repos, provider, cfg.Payment, logger)
		result, err := checkoutService.CreateSession(c.Request.Context(), userID, req)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		// The session now owns the purchase; drop the cart so a back-button
		// visit starts clean. Best effort only.
		if sid, sidErr := cartSessionID(c); sidErr == nil {
			if err := carts.Delete(c.Request.Context(), sid); err != nil {
				logger.Warn("Failed to clear cart after checkout", zap.Error(err))
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"session_id":   result.SessionID,
			"redirect_url": result.RedirectURL,
		})
	}
}
