package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Asmaa63/Shop-Website-sub001/pkg/errors"
)

// respondError maps internal errors to the HTTP boundary. Internal detail
// (driver errors, upstream bodies) never reaches the response.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch e := err.(type) {
	case *errors.ErrValidation:
		body := gin.H{"error": e.Error()}
		if len(e.Fields) > 0 {
			body["fields"] = e.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case *errors.ErrUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": e.Error()})
	case *errors.ErrForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": e.Error()})
	case *errors.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": e.Error()})
	case *errors.ErrConflict:
		c.JSON(http.StatusConflict, gin.H{"error": e.Error()})
	case *errors.ErrInvalidStateTransition:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": e.Error()})
	case *errors.ErrUpstream:
		if e.ClientAttributable {
			c.JSON(http.StatusBadRequest, gin.H{"error": "payment provider rejected the request"})
		} else {
			logger.Error("Upstream failure", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
		}
	default:
		logger.Error("Internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
