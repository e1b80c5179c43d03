package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("storage: key not found")
	ErrLockTimeout = errors.New("storage: lock not acquired")
)

// Store is the persistence port shared by every component. Values are opaque bytes,
// JSON by convention (see GetJSON / SetJSON).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Locker serializes read-modify-write cycles on a single key across every
// process that shares the backend.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Backend is what the stores are built on.
type Backend interface {
	Store
	Locker
}

// GetJSON decodes the value stored under key into out. found is false when the key is absent.
func GetJSON(ctx context.Context, s Store, key string, out any) (found bool, err error) {
	b, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, b)
}

// WithLock runs fn while holding the lock on key.
func WithLock(ctx context.Context, l Locker, key string, fn func() error) error {
	unlock, err := l.Lock(ctx, key)
	if err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	defer unlock()
	return fn()
}
