package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Asmaa63/Shop-Website-sub001/internal/config"
	"github.com/Asmaa63/Shop-Website-sub001/internal/domain"
	"github.com/Asmaa63/Shop-Website-sub001/pkg/errors"
)

const (
	cartKeyPrefix     = "cart:"
	cartChannelPrefix = "cart-updates:"
	defaultCartTTL    = 72 * time.Hour
)

// CartStore holds session carts in redis, keyed per session with a TTL.
// Every Set also publishes the cart on a per-session channel so Subscribe
// can feed live cart views.
type CartStore struct {
	client *goredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCartStore creates a cart store backed by the configured redis instance
func NewCartStore(cfg config.RedisConfig, logger *zap.Logger) *CartStore {
	ttl := defaultCartTTL
	if parsed, err := time.ParseDuration(cfg.CartTTL); err == nil && parsed > 0 {
		ttl = parsed
	}

	return &CartStore{
		client: goredis.NewClient(&goredis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl:    ttl,
		logger: logger,
	}
}

// Ping checks connectivity; called at startup
func (s *CartStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Get returns the session's cart, or a new empty cart if none is stored
func (s *CartStore) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	data, err := s.client.Get(ctx, cartKeyPrefix+sessionID).Bytes()
	if err == goredis.Nil {
		return domain.NewCart(sessionID), nil
	}
	if err != nil {
		s.logger.Error("Failed to get cart", zap.Error(err), zap.String("session_id", sessionID))
		return nil, &errors.ErrPersistence{Operation: "get cart", Err: err}
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, &errors.ErrPersistence{Operation: "decode cart", Err: err}
	}
	return &cart, nil
}

// Set stores the cart with the configured TTL and publishes the update
func (s *CartStore) Set(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return &errors.ErrPersistence{Operation: "encode cart", Err: err}
	}

	if err := s.client.Set(ctx, cartKeyPrefix+cart.SessionID, data, s.ttl).Err(); err != nil {
		s.logger.Error("Failed to set cart", zap.Error(err), zap.String("session_id", cart.SessionID))
		return &errors.ErrPersistence{Operation: "set cart", Err: err}
	}

	// Subscribers tolerate missed updates; publish errors are not fatal
	if err := s.client.Publish(ctx, cartChannelPrefix+cart.SessionID, data).Err(); err != nil {
		s.logger.Warn("Failed to publish cart update", zap.Error(err), zap.String("session_id", cart.SessionID))
	}
	return nil
}

// Delete removes the session's cart
func (s *CartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKeyPrefix+sessionID).Err(); err != nil {
		s.logger.Error("Failed to delete cart", zap.Error(err), zap.String("session_id", sessionID))
		return &errors.ErrPersistence{Operation: "delete cart", Err: err}
	}
	return nil
}

// Subscribe returns a channel of cart updates for a session. The cancel
// function must be called to release the underlying pubsub connection.
func (s *CartStore) Subscribe(ctx context.Context, sessionID string) (<-chan *domain.Cart, func(), error) {
	pubsub := s.client.Subscribe(ctx, cartChannelPrefix+sessionID)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, &errors.ErrPersistence{Operation: "subscribe cart", Err: err}
	}

	updates := make(chan *domain.Cart)
	go func() {
		defer close(updates)
		for msg := range pubsub.Channel() {
			var cart domain.Cart
			if err := json.Unmarshal([]byte(msg.Payload), &cart); err != nil {
				s.logger.Warn("Failed to decode cart update", zap.Error(err), zap.String("session_id", sessionID))
				continue
			}
			select {
			case updates <- &cart:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() { _ = pubsub.Close() }
	return updates, cancel, nil
}

// Close releases the redis client
func (s *CartStore) Close() error {
	return s.client.Close()
}
