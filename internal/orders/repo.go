package orders

import (
	"context"

	"github.com/ariefcatur/go-storefront/internal/storage"
)

// Repo is the order ledger, kept most-recent-first under a single key.
type Repo struct{ Backend storage.Backend }

func (r *Repo) List(ctx context.Context) ([]Order, error) {
	var out []Order
	if _, err := storage.GetJSON(ctx, r.Backend, storage.KeyOrders, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Order{}
	}
	return out, nil
}

// save replaces the whole ledger. Callers hold the ledger lock.
func (r *Repo) save(ctx context.Context, list []Order) error {
	return storage.SetJSON(ctx, r.Backend, storage.KeyOrders, list)
}

// Clear drops the whole ledger. Dev use only.
func (r *Repo) Clear(ctx context.Context) error {
	return storage.WithLock(ctx, r.Backend, storage.KeyOrders, func() error {
		return r.Backend.Delete(ctx, storage.KeyOrders)
	})
}
