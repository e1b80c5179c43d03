package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type fakeChannel struct {
	PublishFn func(exchange, key string, msg amqp.Publishing) error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	return f.PublishFn(exchange, key, msg)
}

func newTestPublisher(ch publishChannel, released *int) *Publisher {
	return &Publisher{
		acquire: func() (publishChannel, func(), error) {
			return ch, func() { *released++ }, nil
		},
		queueName: "storefront_orders",
		timeout:   time.Second,
		log:       zap.NewNop(),
	}
}

func TestPublish_PersistentJSONToQueue(t *testing.T) {
	var gotKey, gotExchange string
	var got amqp.Publishing
	ch := &fakeChannel{PublishFn: func(exchange, key string, msg amqp.Publishing) error {
		gotExchange, gotKey, got = exchange, key, msg
		return nil
	}}
	released := 0
	p := newTestPublisher(ch, &released)

	if err := p.Publish(context.Background(), "OrderCommitted", []byte(`{"order_id":"o-1"}`)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if gotExchange != "" || gotKey != "storefront_orders" {
		t.Fatalf("exchange=%q key=%q", gotExchange, gotKey)
	}
	if got.DeliveryMode != amqp.Persistent || got.ContentType != "application/json" || got.Type != "OrderCommitted" {
		t.Fatalf("unexpected publishing %+v", got)
	}
	if string(got.Body) != `{"order_id":"o-1"}` {
		t.Fatalf("body=%s", got.Body)
	}
	if released != 1 {
		t.Fatalf("channel not returned, released=%d", released)
	}
}

func TestPublish_ErrorIsWrapped(t *testing.T) {
	boom := errors.New("channel closed")
	ch := &fakeChannel{PublishFn: func(string, string, amqp.Publishing) error { return boom }}
	released := 0
	p := newTestPublisher(ch, &released)

	err := p.Publish(context.Background(), "OrderCommitted", []byte("{}"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if released != 1 {
		t.Fatalf("channel must be returned on failure")
	}
}

func TestPublish_AcquireFailure(t *testing.T) {
	p := &Publisher{
		acquire: func() (publishChannel, func(), error) { return nil, nil, ErrPoolExhausted },
		timeout: time.Second,
		log:     zap.NewNop(),
	}
	if err := p.Publish(context.Background(), "OrderCommitted", nil); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
}
