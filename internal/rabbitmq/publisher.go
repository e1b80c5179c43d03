package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher sends JSON messages to a single durable queue on the default exchange.
type Publisher struct {
	acquire   func() (publishChannel, func(), error)
	queueName string
	timeout   time.Duration
	log       *zap.Logger
}

func NewPublisher(pool *ChannelPool, queueName string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		acquire: func() (publishChannel, func(), error) {
			ch, err := pool.GetChannel()
			if err != nil {
				return nil, nil, err
			}
			return ch, func() { pool.ReturnChannel(ch) }, nil
		},
		queueName: queueName,
		timeout:   5 * time.Second,
		log:       log,
	}
}

// Publish sends body as a persistent message; eventType goes into the Type property.
func (p *Publisher) Publish(ctx context.Context, eventType string, body []byte) error {
	ch, release, err := p.acquire()
	if err != nil {
		return fmt.Errorf("get channel: %w", err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = ch.PublishWithContext(ctx,
		"",          // default exchange
		p.queueName, // routing key = queue
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Type:         eventType,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	p.log.Debug("published", zap.String("queue", p.queueName), zap.String("type", eventType))
	return nil
}
