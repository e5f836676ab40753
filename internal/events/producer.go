package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Asmaa63/Shop-Website-sub001/internal/domain"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the message published on order lifecycle changes
type OrderEvent struct {
	Type        string             `json:"type"`
	OrderID     string             `json:"order_id"`
	UserID      string             `json:"user_id,omitempty"`
	Status      domain.OrderStatus `json:"status"`
	PrevStatus  domain.OrderStatus `json:"prev_status,omitempty"`
	TotalAmount string             `json:"total_amount"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// Producer publishes order lifecycle events to kafka. A nil *Producer is
// safe to call; publishing is then a no-op (events disabled).
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a producer, or nil when no brokers are configured
func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 {
		return nil
	}
	return &Producer{
		topic: topic,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           100 * time.Millisecond,
		},
	}
}

// Publish sends an event keyed by order id
func (p *Producer) Publish(ctx context.Context, event OrderEvent) error {
	if p == nil {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
	})
}

// Close flushes and closes the underlying writer
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
