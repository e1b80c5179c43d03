package inventory

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/notify"
	"github.com/ariefcatur/go-storefront/internal/storage"
	"go.uber.org/zap"
)

// Service owns the stock ledger, the single source of truth for availability.
type Service struct {
	backend  storage.Backend
	catalog  *catalog.Catalog
	notifier notify.Publisher
	log      *zap.Logger
}

func NewService(backend storage.Backend, cat *catalog.Catalog, notifier notify.Publisher, log *zap.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{backend: backend, catalog: cat, notifier: notifier, log: log}
}

// Snapshot returns the persisted ledger, or catalog defaults when none was written yet.
// Defaults are not persisted here; only Commit writes the ledger.
func (s *Service) Snapshot(ctx context.Context) (Ledger, error) {
	var l Ledger
	found, err := storage.GetJSON(ctx, s.backend, storage.KeyStock, &l)
	if err != nil {
		return nil, err
	}
	if !found {
		return LedgerFromProducts(s.catalog.Defaults()), nil
	}
	return l, nil
}

func (s *Service) Available(ctx context.Context, productID string, size catalog.Size) (int, error) {
	l, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return l.Available(productID, size), nil
}

// Check validates updates against the current ledger without reserving anything.
func (s *Service) Check(ctx context.Context, updates []StockUpdate) error {
	l, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	return l.validate(updates)
}

// Commit validates and decrements the whole batch under the ledger lock.
// Either every line is decremented or nothing is written.
func (s *Service) Commit(ctx context.Context, updates []StockUpdate) error {
	err := storage.WithLock(ctx, s.backend, storage.KeyStock, func() error {
		l, err := s.Snapshot(ctx)
		if err != nil {
			return err
		}
		if err := l.validate(updates); err != nil {
			return err
		}
		next := l.Clone()
		next.apply(updates)
		return storage.SetJSON(ctx, s.backend, storage.KeyStock, next)
	})
	if err != nil {
		s.log.Info("stock commit rejected", zap.Int("lines", len(updates)), zap.Error(err))
		return err
	}
	s.log.Info("stock committed", zap.Int("lines", len(updates)))
	s.notifier.Publish(notify.TopicCartUpdated)
	return nil
}

// Reset restores catalog defaults. Meant for dev and test recovery.
func (s *Service) Reset(ctx context.Context) error {
	err := storage.WithLock(ctx, s.backend, storage.KeyStock, func() error {
		return s.backend.Delete(ctx, storage.KeyStock)
	})
	if err != nil {
		return fmt.Errorf("reset stock: %w", err)
	}
	s.log.Info("stock reset to catalog defaults")
	s.notifier.Publish(notify.TopicCartUpdated)
	return nil
}

func wrapNotFound(base error, k lineKey) error {
	if base == ErrSizeNotFound {
		return fmt.Errorf("%w: size %s for product %s", base, k.size, k.productID)
	}
	return fmt.Errorf("%w: %s", base, k.productID)
}
