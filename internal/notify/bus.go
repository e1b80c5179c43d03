package notify

import "sync"

type Topic string

const (
	// TopicCartUpdated carries no payload: cart or stock may have changed, re-read state.
	TopicCartUpdated Topic = "cartUpdated"
	// TopicCurrencyChanged signals a new display currency selection.
	TopicCurrencyChanged Topic = "currencyChanged"
)

type Handler func(Topic)

type subscription struct {
	id uint64
	fn Handler
}

// Bus delivers each Publish synchronously, in subscription order, to the
// subscribers registered at the time of the call. Nothing is queued or replayed.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Topic][]subscription
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscription)}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(t Topic, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[t] = append(b.subs[t], subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			list := b.subs[t]
			for i, s := range list {
				if s.id == id {
					b.subs[t] = append(list[:i:i], list[i+1:]...)
					return
				}
			}
		})
	}
}

func (b *Bus) Publish(t Topic) {
	b.mu.RLock()
	list := make([]subscription, len(b.subs[t]))
	copy(list, b.subs[t])
	b.mu.RUnlock()

	for _, s := range list {
		s.fn(t)
	}
}

// Publisher is the narrow side of Bus the stores depend on.
type Publisher interface {
	Publish(Topic)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Publish(Topic) {}
