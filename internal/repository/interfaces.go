package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Asmaa63/Shop-Website-sub001/internal/domain"
)

// UserRepository defines user data access methods
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// SessionRepository defines login session data access methods
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository defines catalog data access methods
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Product, error)
	UpdateStock(ctx context.Context, id uuid.UUID, delta int) error
}

// OrderRepository defines order data access methods
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByProviderSessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, error)
	ListAll(ctx context.Context, limit, offset int) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
}

// WebhookEventRepository records processed payment notifications for dedup
type WebhookEventRepository interface {
	// Insert stores the event and reports whether this provider session id
	// was seen for the first time. A false result means a duplicate delivery.
	Insert(ctx context.Context, event *domain.WebhookEvent) (bool, error)
	AttachOrder(ctx context.Context, providerSessionID string, orderID uuid.UUID) error
	// Delete releases the dedup record after a failed order insert so the
	// provider's retry can be reprocessed.
	Delete(ctx context.Context, providerSessionID string) error
}

// CartStore holds session carts with get/set/subscribe capability, scoped to
// a session rather than a process-wide global.
type CartStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Set(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
	Subscribe(ctx context.Context, sessionID string) (<-chan *domain.Cart, func(), error)
}

// Repositories aggregates all repositories
type Repositories struct {
	User         UserRepository
	Session      SessionRepository
	Product      ProductRepository
	Order        OrderRepository
	WebhookEvent WebhookEventRepository
}
