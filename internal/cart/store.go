package cart

import (
	"context"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/inventory"
	"github.com/ariefcatur/go-storefront/internal/notify"
	"github.com/ariefcatur/go-storefront/internal/storage"
	"go.uber.org/zap"
)

// StockReader is the part of the stock ledger the cart validates against.
type StockReader interface {
	Available(ctx context.Context, productID string, size catalog.Size) (int, error)
}

// Store keeps the shopper's cart. Lines are reservation requests only: stock is
// read fresh on every mutation and never held.
type Store struct {
	backend  storage.Backend
	stock    StockReader
	notifier notify.Publisher
	log      *zap.Logger
}

func NewStore(backend storage.Backend, stock StockReader, notifier notify.Publisher, log *zap.Logger) *Store {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{backend: backend, stock: stock, notifier: notifier, log: log}
}

func (s *Store) Lines(ctx context.Context) (Lines, error) {
	var ls Lines
	if _, err := storage.GetJSON(ctx, s.backend, storage.KeyCart, &ls); err != nil {
		return nil, err
	}
	if ls == nil {
		ls = Lines{}
	}
	return ls, nil
}

func (s *Store) save(ctx context.Context, ls Lines) error {
	return storage.SetJSON(ctx, s.backend, storage.KeyCart, ls)
}

// mutate runs a read-modify-write of the whole cart under the cart lock.
// fn reports whether it changed anything worth persisting.
func (s *Store) mutate(ctx context.Context, fn func(Lines) (Lines, bool, error)) (Lines, error) {
	var out Lines
	changed := false
	err := storage.WithLock(ctx, s.backend, storage.KeyCart, func() error {
		current, err := s.Lines(ctx)
		if err != nil {
			return err
		}
		next, ok, err := fn(current)
		if err != nil {
			out = current
			return err
		}
		out = next
		if !ok {
			return nil
		}
		changed = true
		return s.save(ctx, next)
	})
	if err != nil {
		return out, err
	}
	if changed {
		s.notifier.Publish(notify.TopicCartUpdated)
	}
	return out, nil
}

// Add puts one more unit of (product, size) in the cart.
func (s *Store) Add(ctx context.Context, product catalog.Product, size catalog.Size) (Lines, error) {
	ls, err := s.mutate(ctx, func(ls Lines) (Lines, bool, error) {
		available, err := s.stock.Available(ctx, product.ID, size)
		if err != nil {
			return nil, false, err
		}
		if available <= 0 {
			return nil, false, inventory.ErrOutOfStock
		}

		i := ls.index(product.ID, size)
		qty := 1
		if i >= 0 {
			qty = ls[i].Quantity + 1
		}
		if qty > available {
			return nil, false, &inventory.InsufficientStockError{
				ProductID: product.ID, Size: size, Available: available, Requested: qty,
			}
		}

		if i >= 0 {
			ls[i].Quantity = qty
		} else {
			ls = append(ls, Line{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
				Image:     product.Image,
				Size:      size,
				Quantity:  1,
			})
		}
		return ls, true, nil
	})
	if err != nil {
		s.log.Debug("add to cart rejected", zap.String("product_id", product.ID), zap.String("size", string(size)), zap.Error(err))
	}
	return ls, err
}

// SetQuantity sets the line to qty. qty <= 0 removes the line without a stock check.
// Setting a line that is not in the cart changes nothing.
func (s *Store) SetQuantity(ctx context.Context, productID string, size catalog.Size, qty int) (Lines, error) {
	if qty <= 0 {
		return s.Remove(ctx, productID, size)
	}
	return s.mutate(ctx, func(ls Lines) (Lines, bool, error) {
		available, err := s.stock.Available(ctx, productID, size)
		if err != nil {
			return nil, false, err
		}
		if qty > available {
			return nil, false, &inventory.InsufficientStockError{
				ProductID: productID, Size: size, Available: available, Requested: qty,
			}
		}
		i := ls.index(productID, size)
		if i < 0 {
			return ls, false, nil
		}
		ls[i].Quantity = qty
		return ls, true, nil
	})
}

func (s *Store) Remove(ctx context.Context, productID string, size catalog.Size) (Lines, error) {
	return s.mutate(ctx, func(ls Lines) (Lines, bool, error) {
		return ls.without(productID, size), true, nil
	})
}

func (s *Store) Clear(ctx context.Context) error {
	err := storage.WithLock(ctx, s.backend, storage.KeyCart, func() error {
		return s.backend.Delete(ctx, storage.KeyCart)
	})
	if err != nil {
		return err
	}
	s.notifier.Publish(notify.TopicCartUpdated)
	return nil
}

func (s *Store) TotalItemCount(ctx context.Context) (int, error) {
	ls, err := s.Lines(ctx)
	if err != nil {
		return 0, err
	}
	return ls.TotalItems(), nil
}

func (s *Store) Quantity(ctx context.Context, productID string, size catalog.Size) (int, error) {
	ls, err := s.Lines(ctx)
	if err != nil {
		return 0, err
	}
	return ls.Quantity(productID, size), nil
}

// CanAdd reports whether qty more units fit under current availability.
func (s *Store) CanAdd(ctx context.Context, productID string, size catalog.Size, qty int) (bool, error) {
	available, inCart, err := s.stockAndCart(ctx, productID, size)
	if err != nil {
		return false, err
	}
	return available > 0 && inCart+qty <= available, nil
}

// RemainingStock is availability minus what this cart already holds, floored at 0.
func (s *Store) RemainingStock(ctx context.Context, productID string, size catalog.Size) (int, error) {
	available, inCart, err := s.stockAndCart(ctx, productID, size)
	if err != nil {
		return 0, err
	}
	return max(0, available-inCart), nil
}

func (s *Store) Contains(ctx context.Context, productID string) (bool, error) {
	ls, err := s.Lines(ctx)
	if err != nil {
		return false, err
	}
	for _, l := range ls {
		if l.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) stockAndCart(ctx context.Context, productID string, size catalog.Size) (int, int, error) {
	available, err := s.stock.Available(ctx, productID, size)
	if err != nil {
		return 0, 0, err
	}
	inCart, err := s.Quantity(ctx, productID, size)
	if err != nil {
		return 0, 0, err
	}
	return available, inCart, nil
}
