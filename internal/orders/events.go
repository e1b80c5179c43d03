package orders

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/rabbitmq"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	EventOrderCommitted = "OrderCommitted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type ItemQty struct {
	ProductID string       `json:"product_id"`
	Size      catalog.Size `json:"size"`
	Qty       int          `json:"qty"`
}

type OrderCommittedPayload struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Items       []ItemQty `json:"items"`
	Total       string    `json:"total"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewOrderCommittedEnvelope(o Order, producer string) Envelope {
	items := make([]ItemQty, 0, len(o.Items))
	for _, l := range o.Items {
		items = append(items, ItemQty{ProductID: l.ProductID, Size: l.Size, Qty: l.Quantity})
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderCommitted,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(OrderCommittedPayload{
			OrderID:     o.ID,
			OrderNumber: o.Number,
			Items:       items,
			Total:       o.Total.StringFixed(2),
			CreatedAt:   o.CreatedAt,
		}),
	}
}

// EventSink receives committed orders. A sink error never undoes a commit.
type EventSink interface {
	OrderCommitted(ctx context.Context, o Order) error
}

type NopSink struct{}

func (NopSink) OrderCommitted(context.Context, Order) error { return nil }

// KafkaSink publishes through the buffered producer; delivery errors surface in the producer loop.
type KafkaSink struct {
	Producer    *kafkax.Producer
	ServiceName string
}

func (s *KafkaSink) OrderCommitted(_ context.Context, o Order) error {
	ev := NewOrderCommittedEnvelope(o, s.ServiceName)
	s.Producer.Publish(PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderCommitted)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	return nil
}

type RabbitSink struct {
	Publisher   *rabbitmq.Publisher
	ServiceName string
}

func (s *RabbitSink) OrderCommitted(ctx context.Context, o Order) error {
	ev := NewOrderCommittedEnvelope(o, s.ServiceName)
	return s.Publisher.Publish(ctx, EventOrderCommitted, kafkax.MustMarshal(ev))
}
