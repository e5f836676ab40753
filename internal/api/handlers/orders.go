package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Asmaa63/Shop-Website-sub001/internal/api/middleware"
	"github.com/Asmaa63/Shop-Website-sub001/internal/domain"
	"github.com/Asmaa63/Shop-Website-sub001/internal/events"
	"github.com/Asmaa63/Shop-Website-sub001/internal/repository"
	"github.com/Asmaa63/Shop-Website-sub001/internal/service"
	"github.com/Asmaa63/Shop-Website-sub001/pkg/errors"
)

type orderResponse struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"user_id,omitempty"`
	Items           []orderItemResponse    `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	TotalAmount     decimal.Decimal        `json:"total_amount"`
	PaymentMethod   string                 `json:"payment_method,omitempty"`
	Status          domain.OrderStatus     `json:"status"`
	CreatedAt       time.Time              `json:"created_at"`
}

type orderItemResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"image_url,omitempty"`
	Color     string          `json:"color,omitempty"`
	Size      string          `json:"size,omitempty"`
}

func toOrderResponse(order *domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
			Color:     item.Color,
			Size:      item.Size,
		})
	}

	resp := orderResponse{
		ID:              order.ID.String(),
		Items:           items,
		ShippingAddress: order.ShippingAddress,
		TotalAmount:     order.TotalAmount,
		PaymentMethod:   order.PaymentMethod,
		Status:          order.Status,
		CreatedAt:       order.CreatedAt,
	}
	if order.UserID != nil {
		resp.UserID = order.UserID.String()
	}
	return resp
}

func toOrderListResponse(orders []*domain.Order) []orderResponse {
	resp := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderResponse(order))
	}
	return resp
}

// HandleListMyOrders handles GET /v1/orders — the caller's own orders,
// newest first.
func HandleListMyOrders(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		limit, offset := pagination(c)

		orders, err := repos.Order.ListByUserID(c.Request.Context(), user.ID, limit, offset)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": toOrderListResponse(orders)})
	}
}

// HandleGetOrder handles GET /v1/orders/:id; owners and admins only
func HandleGetOrder(repos *repository.Repositories, provider service.ProviderClient, producer *events.Producer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondError(c, logger, &errors.ErrValidation{Message: "invalid order id"})
			return
		}

		orderService := service.NewOrderService(repos, provider, producer, logger)
		order, err := orderService.Get(c.Request.Context(), id, user)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(order))
	}
}

// HandleAdminListOrders handles GET /v1/admin/orders — all orders, newest
// first.
func HandleAdminListOrders(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pagination(c)

		orders, err := repos.Order.ListAll(c.Request.Context(), limit, offset)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": toOrderListResponse(orders)})
	}
}

// HandleAdminCreateOrder handles POST /v1/admin/orders
func HandleAdminCreateOrder(repos *repository.Repositories, provider service.ProviderClient, producer *events.Producer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		orderService := service.NewOrderService(repos, provider, producer, logger)
		order, err := orderService.CreateOrder(c.Request.Context(), req)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, toOrderResponse(order))
	}
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

// HandleAdminUpdateOrderStatus handles PATCH /v1/admin/orders/:id/status
func HandleAdminUpdateOrderStatus(repos *repository.Repositories, provider service.ProviderClient, producer *events.Producer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondError(c, logger, &errors.ErrValidation{Message: "invalid order id"})
			return
		}

		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		orderService := service.NewOrderService(repos, provider, producer, logger)
		order, err := orderService.UpdateStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(order))
	}
}
