package redisx

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ariefcatur/go-storefront/internal/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// release deletes the lock only while it still holds our token.
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extend pushes the lock expiry out only while it still holds our token.
var extend = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Storage is a storage.Backend on Redis. Values are plain strings; locks are
// SET NX PX with a random owner token.
type Storage struct {
	rdb     *redis.Client
	ttl     time.Duration
	retries int
	delay   time.Duration
}

type Option func(*Storage)

func WithLockTTL(d time.Duration) Option { return func(s *Storage) { s.ttl = d } }

func WithLockRetries(n int) Option { return func(s *Storage) { s.retries = n } }

func NewStorage(rdb *redis.Client, opts ...Option) *Storage {
	s := &Storage{rdb: rdb, ttl: TTLLock, retries: 50, delay: LockRetryDelay}
	for _, o := range opts {
		o(s)
	}
	return s
}

var _ storage.Backend = (*Storage)(nil)

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, nil
}

func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, KeyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, KeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Lock retries SET NX until it wins, the retries run out or ctx ends.
func (s *Storage) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := fmt.Sprintf(KeyLock, key)
	token := uuid.NewString()
	for i := 0; ; i++ {
		ok, err := s.rdb.SetNX(ctx, lockKey, token, s.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		if i >= s.retries {
			return nil, storage.ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	go s.keepAlive(lockKey, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// pakai context baru, ctx pemanggil bisa sudah cancel
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = release.Run(rctx, s.rdb, []string{lockKey}, token).Err()
		})
	}, nil
}

// keepAlive renews the lock every ttl/3 while it is held, so a holder that
// runs past the TTL keeps exclusivity. It gives up once the token is gone.
func (s *Storage) keepAlive(lockKey, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	every := s.ttl / 3
	if every <= 0 {
		return
	}
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tick.C:
			ctx, cancel := context.WithTimeout(context.Background(), every)
			n, err := extend.Run(ctx, s.rdb, []string{lockKey}, token, s.ttl.Milliseconds()).Int()
			cancel()
			if err == nil && n == 0 {
				return
			}
		}
	}
}
