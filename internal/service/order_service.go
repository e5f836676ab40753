package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Asmaa63/Shop-Website-sub001/internal/domain"
	"github.com/Asmaa63/Shop-Website-sub001/internal/events"
	"github.com/Asmaa63/Shop-Website-sub001/internal/repository"
	"github.com/Asmaa63/Shop-Website-sub001/pkg/errors"
)

type orderService struct {
	repos    *repository.Repositories
	provider ProviderClient
	producer *events.Producer
	logger   *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repos *repository.Repositories, provider ProviderClient, producer *events.Producer, logger *zap.Logger) *orderService {
	return &orderService{
		repos:    repos,
		provider: provider,
		producer: producer,
		logger:   logger,
	}
}

// HandleCheckoutCompleted processes a verified checkout.completed webhook.
// Delivery is at-least-once, so the provider session id is claimed in the
// dedup table before any order insert; a duplicate delivery returns the
// already-created order without inserting a second one.
func (s *orderService) HandleCheckoutCompleted(ctx context.Context, eventID, sessionID string) (*domain.Order, error) {
	if sessionID == "" {
		return nil, &errors.ErrValidation{Message: "missing session id"}
	}

	firstSeen, err := s.repos.WebhookEvent.Insert(ctx, &domain.WebhookEvent{
		EventID:           eventID,
		ProviderSessionID: sessionID,
		EventType:         "checkout.completed",
	})
	if err != nil {
		return nil, err
	}
	if !firstSeen {
		order, err := s.repos.Order.GetByProviderSessionID(ctx, sessionID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				// A claim with no order means an earlier delivery died between
				// claim and insert. Release the claim and fail retryable so
				// the provider's redelivery reprocesses instead of being
				// acknowledged with nothing persisted.
				s.logger.Warn("Webhook claim exists without an order, releasing",
					zap.String("session_id", sessionID))
				if delErr := s.repos.WebhookEvent.Delete(ctx, sessionID); delErr != nil {
					s.logger.Error("Failed to release orphaned webhook claim",
						zap.Error(delErr), zap.String("session_id", sessionID))
				}
				return nil, &errors.ErrPersistence{Operation: "recover webhook claim", Err: err}
			}
			return nil, err
		}
		s.logger.Info("Duplicate webhook delivery, returning existing order",
			zap.String("session_id", sessionID))
		return order, nil
	}

	order, err := s.createOrderFromSession(ctx, sessionID)
	if err != nil {
		// Release the dedup claim so the provider's retry can be reprocessed
		if delErr := s.repos.WebhookEvent.Delete(ctx, sessionID); delErr != nil {
			s.logger.Error("Failed to release webhook dedup claim",
				zap.Error(delErr), zap.String("session_id", sessionID))
		}
		return nil, err
	}

	if err := s.repos.WebhookEvent.AttachOrder(ctx, sessionID, order.ID); err != nil {
		s.logger.Warn("Failed to attach order to webhook event", zap.Error(err))
	}

	if err := s.producer.Publish(ctx, events.OrderEvent{
		Type:        events.TypeOrderCreated,
		OrderID:     order.ID.String(),
		UserID:      userIDString(order.UserID),
		Status:      order.Status,
		TotalAmount: order.TotalAmount.String(),
	}); err != nil {
		s.logger.Error("Failed to publish order created event", zap.Error(err), zap.String("order_id", order.ID.String()))
	}

	return order, nil
}

// createOrderFromSession builds the order from the provider's finalized
// session record rather than anything the client submitted.
func (s *orderService) createOrderFromSession(ctx context.Context, sessionID string) (*domain.Order, error) {
	session, err := s.provider.GetSession(ctx, sessionID)
	if err != nil {
		s.logger.Error("Failed to fetch session from provider", zap.Error(err), zap.String("session_id", sessionID))
		return nil, err
	}

	addressJSON, ok := session.Metadata["shipping_address"]
	if !ok || addressJSON == "" {
		return nil, &errors.ErrValidation{Message: "session metadata missing shipping address"}
	}
	var address domain.ShippingAddress
	if err := json.Unmarshal([]byte(addressJSON), &address); err != nil {
		return nil, &errors.ErrValidation{Message: "malformed shipping address metadata"}
	}

	var userID *uuid.UUID
	if raw := session.Metadata["user_id"]; raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, &errors.ErrValidation{Message: "malformed user id metadata"}
		}
		userID = &parsed
	}

	variants := map[string]cartVariant{}
	if raw := session.Metadata["variants"]; raw != "" {
		var list []cartVariant
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			for _, v := range list {
				variants[v.ProductID] = v
			}
		}
	}

	paymentMethod := session.Metadata["payment_method"]
	if paymentMethod == "" {
		paymentMethod = "card"
	}

	items := make([]domain.OrderItem, 0, len(session.LineItems))
	for _, line := range session.LineItems {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, &errors.ErrValidation{Message: "malformed product id in session line items"}
		}
		item := domain.OrderItem{
			ProductID: productID,
			Name:      line.Name,
			UnitPrice: decimal.New(line.UnitAmount, -2),
			Quantity:  line.Quantity,
			ImageURL:  line.ImageURL,
		}
		if v, ok := variants[line.ProductID]; ok {
			item.Color = v.Color
			item.Size = v.Size
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, &errors.ErrValidation{Message: "session has no line items"}
	}

	order := &domain.Order{
		UserID:            userID,
		Items:             items,
		ShippingAddress:   address,
		PaymentMethod:     paymentMethod,
		Status:            domain.OrderStatusPaid,
		ProviderSessionID: sessionID,
	}
	// Total is always the exact sum over lines; the provider's amount_total
	// is cross-checked, never trusted as the stored value.
	order.TotalAmount = order.ItemsTotal()
	if providerTotal := decimal.New(session.AmountTotal, -2); !providerTotal.Equal(order.TotalAmount) {
		s.logger.Warn("Provider amount_total differs from line item sum",
			zap.String("session_id", sessionID),
			zap.String("provider_total", providerTotal.String()),
			zap.String("items_total", order.TotalAmount.String()),
		)
	}

	if err := s.repos.Order.Create(ctx, order); err != nil {
		// A concurrent delivery may have won the unique provider_session_id
		// index; if so its order is the one to return.
		if existing, getErr := s.repos.Order.GetByProviderSessionID(ctx, sessionID); getErr == nil {
			return existing, nil
		}
		s.logger.Error("Failed to persist order from webhook", zap.Error(err), zap.String("session_id", sessionID))
		return nil, err
	}

	// Stock was checked at session creation; decrement now that payment is
	// confirmed. Failures are logged, not fatal to the order.
	for _, item := range order.Items {
		if err := s.repos.Product.UpdateStock(ctx, item.ProductID, -item.Quantity); err != nil {
			s.logger.Warn("Failed to decrement stock",
				zap.Error(err),
				zap.String("product_id", item.ProductID.String()),
			)
		}
	}

	s.logger.Info("Order created from checkout session",
		zap.String("order_id", order.ID.String()),
		zap.String("session_id", sessionID),
		zap.String("total", order.TotalAmount.String()),
	)
	return order, nil
}

// CreateOrder creates an order directly (admin flow, e.g. phone orders).
// The total is computed from the line items, never taken from the request.
func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, &errors.ErrValidation{Message: "order must have at least one item"}
	}
	if fields := req.ShippingAddress.Validate(); fields != nil {
		return nil, &errors.ErrValidation{Message: "invalid shipping address", Fields: fields}
	}

	var userID *uuid.UUID
	if req.UserEmail != "" {
		user, err := s.repos.User.GetByEmail(ctx, req.UserEmail)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); !ok {
				return nil, err
			}
			// Unknown email: keep as guest order, address carries the contact
		} else {
			userID = &user.ID
		}
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, reqItem := range req.Items {
		if reqItem.Quantity < 1 {
			return nil, &errors.ErrValidation{Message: "item quantity must be positive"}
		}
		productID, err := uuid.Parse(reqItem.ProductID)
		if err != nil {
			return nil, &errors.ErrValidation{Message: "malformed product id: " + reqItem.ProductID}
		}
		items = append(items, domain.OrderItem{
			ProductID: productID,
			Name:      reqItem.Name,
			UnitPrice: reqItem.UnitPrice,
			Quantity:  reqItem.Quantity,
			ImageURL:  reqItem.ImageURL,
			Color:     reqItem.Color,
			Size:      reqItem.Size,
		})
	}

	order := &domain.Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Status:          domain.OrderStatusPending,
	}
	order.TotalAmount = order.ItemsTotal()

	if err := s.repos.Order.Create(ctx, order); err != nil {
		return nil, err
	}

	if err := s.producer.Publish(ctx, events.OrderEvent{
		Type:        events.TypeOrderCreated,
		OrderID:     order.ID.String(),
		UserID:      userIDString(order.UserID),
		Status:      order.Status,
		TotalAmount: order.TotalAmount.String(),
	}); err != nil {
		s.logger.Error("Failed to publish order created event", zap.Error(err), zap.String("order_id", order.ID.String()))
	}
	return order, nil
}

// UpdateStatus transitions an order to a new status, enforcing the
// transition table.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus domain.OrderStatus) (*domain.Order, error) {
	if !newStatus.IsValid() {
		return nil, &errors.ErrValidation{Message: "unknown order status: " + string(newStatus)}
	}

	order, err := s.repos.Order.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(newStatus) {
		return nil, &errors.ErrInvalidStateTransition{From: order.Status, To: newStatus}
	}

	updated, err := s.repos.Order.UpdateStatus(ctx, id, newStatus)
	if err != nil {
		return nil, err
	}

	if err := s.producer.Publish(ctx, events.OrderEvent{
		Type:        events.TypeOrderStatusChanged,
		OrderID:     updated.ID.String(),
		UserID:      userIDString(updated.UserID),
		Status:      updated.Status,
		PrevStatus:  order.Status,
		TotalAmount: updated.TotalAmount.String(),
	}); err != nil {
		s.logger.Error("Failed to publish status changed event", zap.Error(err), zap.String("order_id", updated.ID.String()))
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", id.String()),
		zap.String("from", string(order.Status)),
		zap.String("to", string(newStatus)),
	)
	return updated, nil
}

// Get returns an order visible to the caller: owners see their own orders,
// admins see everything.
func (s *orderService) Get(ctx context.Context, id uuid.UUID, caller *domain.User) (*domain.Order, error) {
	order, err := s.repos.Order.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.IsAdmin {
		return order, nil
	}
	if order.UserID == nil || *order.UserID != caller.ID {
		return nil, &errors.ErrForbidden{Message: "order belongs to another user"}
	}
	return order, nil
}

// ListForUser returns the caller's orders, newest first
func (s *orderService) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	return s.repos.Order.ListByUserID(ctx, userID, limit, offset)
}

// ListAll returns all orders, newest first; callers must be admins
func (s *orderService) ListAll(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	return s.repos.Order.ListAll(ctx, limit, offset)
}

func userIDString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
