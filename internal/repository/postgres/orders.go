package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Asmaa63/Shop-Website-sub001/internal/domain"
	"github.com/Asmaa63/Shop-Website-sub001/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

const orderColumns = `id, user_id, shipping_address, total_amount, payment_method, status, provider_session_id, created_at, updated_at`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}

	shippingAddressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &errors.ErrPersistence{Operation: "begin order create", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, shipping_address, total_amount, payment_method, status, provider_session_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		order.ID,
		order.UserID,
		shippingAddressJSON,
		order.TotalAmount,
		order.PaymentMethod,
		order.Status,
		order.ProviderSessionID,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create order", zap.Error(err))
		return &errors.ErrPersistence{Operation: "insert order", Err: err}
	}

	for i := range order.Items {
		item := &order.Items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = order.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, name, unit_price, quantity, image_url, color, size)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.UnitPrice,
			item.Quantity,
			item.ImageURL,
			item.Color,
			item.Size,
		)
		if err != nil {
			r.logger.Error("Failed to create order item", zap.Error(err))
			return &errors.ErrPersistence{Operation: "insert order item", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &errors.ErrPersistence{Operation: "commit order create", Err: err}
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id)

	order, err := r.scanOrderRow(row)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.Error(err))
		return nil, err
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByProviderSessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	if sessionID == "" {
		return nil, &errors.ErrNotFound{Resource: "order", ID: "provider_session_id empty"}
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE provider_session_id = $1
		LIMIT 1
	`, sessionID)

	order, err := r.scanOrderRow(row)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: sessionID}
	}
	if err != nil {
		r.logger.Error("Failed to get order by provider session ID", zap.Error(err), zap.String("provider_session_id", sessionID))
		return nil, err
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list orders by user ID", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return r.collectOrders(ctx, rows)
}

func (r *orderRepository) ListAll(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return r.collectOrders(ctx, rows)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, id, status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order status", zap.Error(err))
		return nil, &errors.ErrPersistence{Operation: "update order status", Err: err}
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}

	return r.GetByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *orderRepository) scanOrderRow(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var userID uuid.NullUUID
	var shippingAddressJSON []byte
	var paymentMethod sql.NullString
	var providerSessionID sql.NullString

	err := row.Scan(
		&order.ID,
		&userID,
		&shippingAddressJSON,
		&order.TotalAmount,
		&paymentMethod,
		&order.Status,
		&providerSessionID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		order.UserID = &userID.UUID
	}
	if paymentMethod.Valid {
		order.PaymentMethod = paymentMethod.String
	}
	if providerSessionID.Valid {
		order.ProviderSessionID = providerSessionID.String
	}
	if err := json.Unmarshal(shippingAddressJSON, &order.ShippingAddress); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) collectOrders(ctx context.Context, rows *sql.Rows) ([]*domain.Order, error) {
	var orders []*domain.Order
	for rows.Next() {
		order, err := r.scanOrderRow(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, name, unit_price, quantity, image_url, color, size
		FROM order_items
		WHERE order_id = $1
		ORDER BY name
	`, order.ID)
	if err != nil {
		r.logger.Error("Failed to load order items", zap.Error(err), zap.String("order_id", order.ID.String()))
		return err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		var imageURL, color, size sql.NullString
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&item.UnitPrice,
			&item.Quantity,
			&imageURL,
			&color,
			&size,
		); err != nil {
			return err
		}
		item.ImageURL = imageURL.String
		item.Color = color.String
		item.Size = size.String
		items = append(items, item)
	}
	order.Items = items
	return rows.Err()
}
