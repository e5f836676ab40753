package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents a registered storefront customer (or admin)
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is a server-side login session; the bearer token itself is never
// stored, only its SHA256 hex for lookup.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Product is the catalog of record. Checkout re-prices every cart line
// against this table; client-submitted prices are never authoritative.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Stock       int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ShippingAddress is the delivery destination captured at checkout and
// snapshotted onto the order.
type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Country    string `json:"country"`
	Region     string `json:"region"`
	City       string `json:"city"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	Village    string `json:"village,omitempty"` // optional sub-locality qualifier
}

// Validate checks that every required field is present. Village is the only
// optional field.
func (a ShippingAddress) Validate() map[string]string {
	fields := map[string]string{}
	required := map[string]string{
		"full_name":   a.FullName,
		"phone":       a.Phone,
		"email":       a.Email,
		"country":     a.Country,
		"region":      a.Region,
		"city":        a.City,
		"street":      a.Street,
		"postal_code": a.PostalCode,
	}
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			fields[name] = "required"
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Order is the persisted record of a completed (or pending) purchase.
// Items and the shipping address are snapshots taken at creation time and
// never mutated afterwards.
type Order struct {
	ID                uuid.UUID
	UserID            *uuid.UUID // nil for guest checkouts
	Items             []OrderItem
	ShippingAddress   ShippingAddress
	TotalAmount       decimal.Decimal
	PaymentMethod     string
	Status            OrderStatus
	ProviderSessionID string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderItem is one immutable line of an order. Name, price and image are
// copied from the catalog at creation, not live references.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	ImageURL  string
	Color     string
	Size      string
}

// ItemsTotal sums unit price times quantity over the order's lines.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// WebhookEvent records a processed payment notification. The unique index on
// ProviderSessionID is what makes duplicate webhook delivery idempotent.
type WebhookEvent struct {
	ID                uuid.UUID
	EventID           string
	ProviderSessionID string
	EventType         string
	OrderID           *uuid.UUID
	CreatedAt         time.Time
}
