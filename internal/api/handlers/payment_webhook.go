package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Asmaa63/Shop-Website-sub001/internal/config"
	"github.com/Asmaa63/Shop-Website-sub001/internal/events"
	"github.com/Asmaa63/Shop-Website-sub001/internal/payment"
	"github.com/Asmaa63/Shop-Website-sub001/internal/repository"
	"github.com/Asmaa63/Shop-Website-sub001/internal/service"
	"github.com/Asmaa63/Shop-Website-sub001/pkg/errors"
)

type paymentWebhookBody struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		SessionID string `json:"session_id"`
	} `json:"data"`
}

// HandlePaymentWebhook handles POST /webhooks/payment.
// The provider delivers at least once and retries on 5xx only, so:
// signature failure is a terminal 400, a duplicate session id is a 200,
// and a persistence failure is a 500 so the delivery is retried.
func HandlePaymentWebhook(
	cfg *config.Config,
	repos *repository.Repositories,
	provider service.ProviderClient,
	producer *events.Producer,
	logger *zap.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := strings.TrimSpace(cfg.Payment.WebhookSecret)
		if secret == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment webhook not configured"})
			return
		}

		// Read raw body (the HMAC is computed over raw bytes)
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}

		sigHeader := c.GetHeader(payment.SignatureHeader)
		if !payment.VerifySignature(secret, bodyBytes, sigHeader) {
			logger.Warn("Webhook signature verification failed")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook signature"})
			return
		}

		var body paymentWebhookBody
		if err := json.Unmarshal(bodyBytes, &body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
			return
		}

		if body.Type != "checkout.completed" {
			// Unknown event types are acknowledged so the provider stops
			// redelivering them
			c.JSON(http.StatusOK, gin.H{"ok": true, "status": "ignored", "type": body.Type})
			return
		}

		orderService := service.NewOrderService(repos, provider, producer, logger)
		order, err := orderService.HandleCheckoutCompleted(c.Request.Context(), body.ID, body.Data.SessionID)
		if err != nil {
			switch e := err.(type) {
			case *errors.ErrValidation:
				c.JSON(http.StatusBadRequest, gin.H{"error": e.Error()})
			case *errors.ErrUpstream:
				if e.ClientAttributable {
					c.JSON(http.StatusBadRequest, gin.H{"error": "unknown checkout session"})
				} else {
					logger.Error("Webhook processing failed upstream", zap.Error(err))
					c.JSON(http.StatusInternalServerError, gin.H{"error": "provider unavailable"})
				}
			default:
				logger.Error("Webhook processing failed", zap.Error(err), zap.String("session_id", body.Data.SessionID))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
			}
			return
		}

		resp := gin.H{"ok": true, "status": "processed"}
		if order != nil {
			resp["order_id"] = order.ID.String()
		}
		c.JSON(http.StatusOK, resp)
	}
}
