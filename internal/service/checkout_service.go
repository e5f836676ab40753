package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Asmaa63/Shop-Website-sub001/internal/config"
	"github.com/Asmaa63/Shop-Website-sub001/internal/payment"
	"github.com/Asmaa63/Shop-Website-sub001/internal/repository"
	"github.com/Asmaa63/Shop-Website-sub001/pkg/errors"
)

type checkoutService struct {
	repos    *repository.Repositories
	provider ProviderClient
	cfg      config.PaymentConfig
	logger   *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(repos *repository.Repositories, provider ProviderClient, cfg config.PaymentConfig, logger *zap.Logger) *checkoutService {
	return &checkoutService{
		repos:    repos,
		provider: provider,
		cfg:      cfg,
		logger:   logger,
	}
}

// CreateSession validates the cart and address, re-prices every line against
// the catalog of record, and creates a hosted checkout session. Client
// submitted prices are never used for the manifest.
func (s *checkoutService) CreateSession(ctx context.Context, userID *uuid.UUID, req CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Items) == 0 {
		return nil, &errors.ErrValidation{Message: "cart is empty"}
	}
	if fields := req.ShippingAddress.Validate(); fields != nil {
		return nil, &errors.ErrValidation{Message: "invalid shipping address", Fields: fields}
	}

	// Quantities aggregate per product; two variant lines of one product
	// draw from the same stock.
	productIDs := make([]uuid.UUID, 0, len(req.Items))
	needed := make(map[uuid.UUID]int, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, &errors.ErrValidation{Message: "item quantity must be positive"}
		}
		if _, seen := needed[item.ProductID]; !seen {
			productIDs = append(productIDs, item.ProductID)
		}
		needed[item.ProductID] += item.Quantity
	}

	products, err := s.repos.Product.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error("Failed to load products for checkout", zap.Error(err))
		return nil, &errors.ErrPersistence{Operation: "load products", Err: err}
	}

	lineItems := make([]payment.SessionLineItem, 0, len(req.Items))
	variants := make([]cartVariant, 0, len(req.Items))
	for _, item := range req.Items {
		product, ok := products[item.ProductID]
		if !ok || !product.IsActive {
			return nil, &errors.ErrValidation{Message: "unknown product: " + item.ProductID.String()}
		}
		if product.Stock < needed[item.ProductID] {
			return nil, &errors.ErrConflict{Message: "insufficient stock for " + product.Name}
		}

		lineItems = append(lineItems, payment.SessionLineItem{
			Name:       product.Name,
			UnitAmount: product.Price.Round(2).Shift(2).IntPart(), // minor units, catalog prices are 2dp
			Quantity:   item.Quantity,
			ProductID:  product.ID.String(),
			ImageURL:   product.ImageURL,
		})
		if item.Color != "" || item.Size != "" {
			variants = append(variants, cartVariant{
				ProductID: product.ID.String(),
				Color:     item.Color,
				Size:      item.Size,
			})
		}
	}

	addressJSON, err := json.Marshal(req.ShippingAddress)
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{
		"shipping_address": string(addressJSON),
	}
	if userID != nil {
		metadata["user_id"] = userID.String()
	}
	if req.PaymentMethod != "" {
		metadata["payment_method"] = req.PaymentMethod
	}
	if len(variants) > 0 {
		variantsJSON, err := json.Marshal(variants)
		if err != nil {
			return nil, err
		}
		metadata["variants"] = string(variantsJSON)
	}

	session, err := s.provider.CreateCheckoutSession(ctx, &payment.CreateSessionRequest{
		LineItems:  lineItems,
		Currency:   s.cfg.Currency,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
		Metadata:   metadata,
	})
	if err != nil {
		s.logger.Error("Failed to create checkout session", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Checkout session created",
		zap.String("session_id", session.ID),
		zap.Int("line_count", len(lineItems)),
	)

	return &CheckoutResult{
		SessionID:   session.ID,
		RedirectURL: session.URL,
	}, nil
}
