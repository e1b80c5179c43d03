package redisx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ariefcatur/go-storefront/internal/notify"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type relayMessage struct {
	Origin string       `json:"origin"`
	Topic  notify.Topic `json:"topic"`
}

// Relay is a notify.Publisher that delivers to the local bus and forwards to
// every other process on the same Redis. Run re-publishes remote notifications
// on the local bus only, so nothing bounces back.
type Relay struct {
	rdb    *redis.Client
	bus    *notify.Bus
	origin string
	log    *zap.Logger
}

var _ notify.Publisher = (*Relay)(nil)

func NewRelay(rdb *redis.Client, bus *notify.Bus, log *zap.Logger) *Relay {
	if log == nil {
		log = zap.NewNop()
	}
	return &Relay{rdb: rdb, bus: bus, origin: uuid.NewString(), log: log}
}

func (r *Relay) Publish(t notify.Topic) {
	r.bus.Publish(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, _ := json.Marshal(relayMessage{Origin: r.origin, Topic: t})
	if err := r.rdb.Publish(ctx, ChannelNotify, b).Err(); err != nil {
		r.log.Warn("relay publish", zap.String("topic", string(t)), zap.Error(err))
	}
}

// Run listens for remote notifications until ctx is done. ready, if not nil,
// is closed once the subscription is active.
func (r *Relay) Run(ctx context.Context, ready chan<- struct{}) error {
	sub := r.rdb.Subscribe(ctx, ChannelNotify)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	if ready != nil {
		close(ready)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var m relayMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				r.log.Warn("relay: bad message", zap.Error(err))
				continue
			}
			if m.Origin == r.origin {
				continue
			}
			r.bus.Publish(m.Topic)
		}
	}
}
