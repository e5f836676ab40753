package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Asmaa63/Shop-Website-sub001/internal/domain"
	"github.com/Asmaa63/Shop-Website-sub001/internal/payment"
)

// ProviderClient is the slice of the payment provider API the services use
type ProviderClient interface {
	CreateCheckoutSession(ctx context.Context, req *payment.CreateSessionRequest) (*payment.CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (*payment.CheckoutSession, error)
}

// CheckoutRequest carries the cart lines and shipping address submitted at
// checkout. Prices inside Items are advisory; the checkout service re-prices
// every line against the catalog of record.
type CheckoutRequest struct {
	Items           []domain.CartItem      `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method"`
}

// CheckoutResult is returned to the storefront after session creation
type CheckoutResult struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// CreateOrderRequest is the admin-facing direct order creation payload
// (e.g. phone orders, cash on delivery)
type CreateOrderRequest struct {
	UserEmail       string                 `json:"user_email"`
	Items           []CreateOrderItem      `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method"`
}

type CreateOrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"image_url"`
	Color     string          `json:"color,omitempty"`
	Size      string          `json:"size,omitempty"`
}

// cartVariant is stashed in session metadata so variant selectors survive
// the round trip through the provider's line items.
type cartVariant struct {
	ProductID string `json:"product_id"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
}
