package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line of a session cart. UnitPrice is a snapshot of the
// catalog price at add time; checkout re-prices against the catalog anyway.
type CartItem struct {
	ID        string          `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"image_url"`
	Color     string          `json:"color,omitempty"`
	Size      string          `json:"size,omitempty"`
}

// lineKey identifies a cart line: same product with the same variant
// selectors merges into one line.
func (i CartItem) lineKey() string {
	return i.ProductID.String() + "|" + i.Color + "|" + i.Size
}

// Cart is a session-scoped collection of selected items. It lives in the
// cart store for the duration of the session and is not durable across
// devices. Totals are always derived from the lines, never cached.
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
}

// NewCart returns an empty cart for a session
func NewCart(sessionID string) *Cart {
	return &Cart{SessionID: sessionID}
}

// AddItem merges the item into an existing line with the same product and
// variant selectors, or appends a new line. Quantities below one are
// normalized to one.
func (c *Cart) AddItem(item CartItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	key := item.lineKey()
	for idx := range c.Items {
		if c.Items[idx].lineKey() == key {
			c.Items[idx].Quantity += item.Quantity
			return
		}
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	c.Items = append(c.Items, item)
}

// RemoveItem deletes the line with the given id; unknown ids are a no-op
func (c *Cart) RemoveItem(id string) {
	for idx := range c.Items {
		if c.Items[idx].ID == id {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the quantity of a line; qty <= 0 removes the line
// entirely. Returns false if no line has the given id.
func (c *Cart) UpdateQuantity(id string, qty int) bool {
	for idx := range c.Items {
		if c.Items[idx].ID == id {
			if qty <= 0 {
				c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			} else {
				c.Items[idx].Quantity = qty
			}
			return true
		}
	}
	return false
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = nil
}

// TotalPrice is the sum of unit price times quantity over all lines
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// TotalItems is the sum of quantities over all lines
func (c *Cart) TotalItems() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}
