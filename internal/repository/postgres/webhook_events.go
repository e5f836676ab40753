package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Asmaa63/Shop-Website-sub001/internal/domain"
	"github.com/Asmaa63/Shop-Website-sub001/pkg/errors"
)

type webhookEventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWebhookEventRepository creates a new webhook event repository
func NewWebhookEventRepository(db *sql.DB, logger *zap.Logger) *webhookEventRepository {
	return &webhookEventRepository{
		db:     db,
		logger: logger,
	}
}

// Insert records the event keyed by provider session id. The unique index on
// provider_session_id plus ON CONFLICT DO NOTHING makes duplicate webhook
// delivery a no-op; the bool result is false for duplicates.
func (r *webhookEventRepository) Insert(ctx context.Context, event *domain.WebhookEvent) (bool, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO webhook_events (id, event_id, provider_session_id, event_type, order_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (provider_session_id) DO NOTHING
	`,
		event.ID,
		event.EventID,
		event.ProviderSessionID,
		event.EventType,
		event.OrderID,
		event.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert webhook event", zap.Error(err))
		return false, &errors.ErrPersistence{Operation: "insert webhook event", Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// AttachOrder links the created order back to the dedup record
func (r *webhookEventRepository) AttachOrder(ctx context.Context, providerSessionID string, orderID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE webhook_events
		SET order_id = $2
		WHERE provider_session_id = $1
	`, providerSessionID, orderID)
	if err != nil {
		r.logger.Error("Failed to attach order to webhook event", zap.Error(err))
		return &errors.ErrPersistence{Operation: "attach webhook order", Err: err}
	}
	return nil
}

// Delete removes the dedup record so a provider retry can be reprocessed
// after a failed order insert.
func (r *webhookEventRepository) Delete(ctx context.Context, providerSessionID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM webhook_events
		WHERE provider_session_id = $1
	`, providerSessionID)
	if err != nil {
		r.logger.Error("Failed to delete webhook event", zap.Error(err))
		return &errors.ErrPersistence{Operation: "delete webhook event", Err: err}
	}
	return nil
}
