package cart

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/inventory"
	"github.com/ariefcatur/go-storefront/internal/notify"
	"github.com/ariefcatur/go-storefront/internal/storage"
	"github.com/shopspring/decimal"
)

// ---- fakeStock implementing StockReader ----
type fakeStock struct {
	AvailableFn func(productID string, size catalog.Size) (int, error)
}

func (f *fakeStock) Available(_ context.Context, productID string, size catalog.Size) (int, error) {
	return f.AvailableFn(productID, size)
}

func fixedStock(n int) *fakeStock {
	return &fakeStock{AvailableFn: func(string, catalog.Size) (int, error) { return n, nil }}
}

var p1 = catalog.Product{ID: "P1", Name: "Shorts", Price: decimal.RequireFromString("50.00"), Image: "/p1.png"}

func newStore(stock StockReader) (*Store, *notify.Bus, *atomic.Int32) {
	bus := notify.NewBus()
	calls := new(atomic.Int32)
	bus.Subscribe(notify.TopicCartUpdated, func(notify.Topic) { calls.Add(1) })
	return NewStore(storage.NewMemory(), stock, bus, nil), bus, calls
}

func TestAdd_SameLineTwiceIncrements(t *testing.T) {
	ctx := context.Background()
	s, _, calls := newStore(fixedStock(8))

	if _, err := s.Add(ctx, p1, catalog.SizeM); err != nil {
		t.Fatalf("first add: %v", err)
	}
	ls, err := s.Add(ctx, p1, catalog.SizeM)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(ls) != 1 || ls[0].Quantity != 2 {
		t.Fatalf("expected one line with quantity 2, got %+v", ls)
	}
	if ls[0].Name != "Shorts" || !ls[0].Price.Equal(p1.Price) {
		t.Fatalf("display fields not copied: %+v", ls[0])
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 notifications, got %d", calls.Load())
	}

	// a different size is a separate line
	ls, _ = s.Add(ctx, p1, catalog.SizeL)
	if len(ls) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(ls))
	}
}

func TestAdd_OutOfStock(t *testing.T) {
	ctx := context.Background()
	s, _, calls := newStore(fixedStock(0))

	for i := 0; i < 2; i++ {
		if _, err := s.Add(ctx, p1, catalog.SizeM); !errors.Is(err, inventory.ErrOutOfStock) {
			t.Fatalf("add %d: expected ErrOutOfStock, got %v", i, err)
		}
	}
	n, _ := s.TotalItemCount(ctx)
	if n != 0 {
		t.Fatalf("cart should stay empty, got %d items", n)
	}
	if calls.Load() != 0 {
		t.Fatalf("failed adds must not notify")
	}
}

func TestAdd_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newStore(fixedStock(1))

	if _, err := s.Add(ctx, p1, catalog.SizeM); err != nil {
		t.Fatalf("add: %v", err)
	}
	ls, err := s.Add(ctx, p1, catalog.SizeM)
	var ise *inventory.InsufficientStockError
	if !errors.As(err, &ise) || ise.Available != 1 || ise.Requested != 2 {
		t.Fatalf("expected insufficient stock 1/2, got %v", err)
	}
	if len(ls) != 1 || ls[0].Quantity != 1 {
		t.Fatalf("failed add should return unchanged cart, got %+v", ls)
	}
}

func TestSetQuantity(t *testing.T) {
	ctx := context.Background()
	s, _, calls := newStore(fixedStock(8))

	if _, err := s.Add(ctx, p1, catalog.SizeM); err != nil {
		t.Fatalf("add: %v", err)
	}
	ls, err := s.SetQuantity(ctx, "P1", catalog.SizeM, 8)
	if err != nil || ls[0].Quantity != 8 {
		t.Fatalf("set 8: %+v %v", ls, err)
	}

	_, err = s.SetQuantity(ctx, "P1", catalog.SizeM, 9)
	var ise *inventory.InsufficientStockError
	if !errors.As(err, &ise) || ise.Available != 8 || ise.Requested != 9 {
		t.Fatalf("expected InsufficientStock{8,9}, got %v", err)
	}
	if q, _ := s.Quantity(ctx, "P1", catalog.SizeM); q != 8 {
		t.Fatalf("quantity should stay 8, got %d", q)
	}

	before := calls.Load()
	ls, err = s.SetQuantity(ctx, "P2", catalog.SizeM, 3)
	if err != nil || len(ls) != 1 {
		t.Fatalf("setting an absent line should be a no-op: %+v %v", ls, err)
	}
	if calls.Load() != before {
		t.Fatalf("no-op must not notify")
	}

	ls, err = s.SetQuantity(ctx, "P1", catalog.SizeM, 0)
	if err != nil || len(ls) != 0 {
		t.Fatalf("quantity 0 should remove the line: %+v %v", ls, err)
	}
}

func TestSetQuantity_ZeroSkipsStockCheck(t *testing.T) {
	ctx := context.Background()
	stockCalls := 0
	s, _, _ := newStore(&fakeStock{AvailableFn: func(string, catalog.Size) (int, error) {
		stockCalls++
		return 5, nil
	}})
	_, _ = s.Add(ctx, p1, catalog.SizeM)
	stockCalls = 0

	if _, err := s.SetQuantity(ctx, "P1", catalog.SizeM, -1); err != nil {
		t.Fatalf("remove via negative quantity: %v", err)
	}
	if stockCalls != 0 {
		t.Fatalf("removal must not read stock, got %d reads", stockCalls)
	}
}

func TestStockErrorPropagates(t *testing.T) {
	boom := errors.New("backend down")
	s, _, _ := newStore(&fakeStock{AvailableFn: func(string, catalog.Size) (int, error) { return 0, boom }})
	if _, err := s.Add(context.Background(), p1, catalog.SizeM); !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestRemoveClearAndCount(t *testing.T) {
	ctx := context.Background()
	s, _, calls := newStore(fixedStock(5))

	_, _ = s.Add(ctx, p1, catalog.SizeM)
	_, _ = s.Add(ctx, p1, catalog.SizeM)
	_, _ = s.Add(ctx, p1, catalog.SizeS)

	if n, _ := s.TotalItemCount(ctx); n != 3 {
		t.Fatalf("expected 3 items, got %d", n)
	}
	if ok, _ := s.Contains(ctx, "P1"); !ok {
		t.Fatalf("expected cart to contain P1")
	}

	ls, err := s.Remove(ctx, "P1", catalog.SizeS)
	if err != nil || len(ls) != 1 {
		t.Fatalf("remove: %+v %v", ls, err)
	}
	// unconditional: removing an absent line succeeds
	if _, err := s.Remove(ctx, "nope", catalog.SizeS); err != nil {
		t.Fatalf("remove absent: %v", err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n, _ := s.TotalItemCount(ctx); n != 0 {
		t.Fatalf("expected empty cart, got %d", n)
	}
	if calls.Load() != 6 {
		t.Fatalf("expected 6 notifications, got %d", calls.Load())
	}
}

func TestCanAddAndRemaining(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newStore(fixedStock(3))
	_, _ = s.Add(ctx, p1, catalog.SizeM)
	_, _ = s.Add(ctx, p1, catalog.SizeM)

	if ok, _ := s.CanAdd(ctx, "P1", catalog.SizeM, 1); !ok {
		t.Fatalf("expected room for one more")
	}
	if ok, _ := s.CanAdd(ctx, "P1", catalog.SizeM, 2); ok {
		t.Fatalf("expected no room for two more")
	}
	if n, _ := s.RemainingStock(ctx, "P1", catalog.SizeM); n != 1 {
		t.Fatalf("expected 1 remaining, got %d", n)
	}

	empty, _, _ := newStore(fixedStock(0))
	if ok, _ := empty.CanAdd(ctx, "P1", catalog.SizeM, 0); ok {
		t.Fatalf("nothing can be added when stock is 0")
	}
}

func TestCartMutationsDoNotTouchStock(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	stock := inventory.NewService(mem, catalog.New(mem, nil), nil, nil)
	s := NewStore(mem, stock, nil, nil)

	product, _ := catalog.Find(catalog.Defaults(), "1")
	if _, err := s.Add(ctx, product, catalog.SizeM); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.SetQuantity(ctx, "1", catalog.SizeM, 8); err != nil {
		t.Fatalf("set: %v", err)
	}
	if n, _ := stock.Available(ctx, "1", catalog.SizeM); n != 8 {
		t.Fatalf("stock should still read 8, got %d", n)
	}
	if _, err := s.SetQuantity(ctx, "1", catalog.SizeM, 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if n, _ := stock.Available(ctx, "1", catalog.SizeM); n != 8 {
		t.Fatalf("stock should still read 8 after removal, got %d", n)
	}
}

func TestConcurrentAddsDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	s, _, calls := newStore(fixedStock(1000))

	products := []catalog.Product{
		{ID: "A", Price: decimal.NewFromInt(1)},
		{ID: "B", Price: decimal.NewFromInt(1)},
	}
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Add(ctx, products[i%2], catalog.SizeM); err != nil {
				t.Errorf("add: %v", err)
			}
		}(i)
	}
	wg.Wait()

	ls, _ := s.Lines(ctx)
	if ls.Quantity("A", catalog.SizeM) != 20 || ls.Quantity("B", catalog.SizeM) != 20 {
		t.Fatalf("lost updates: %+v", ls)
	}
	if n := calls.Load(); n != 40 {
		t.Fatalf("expected 40 notifications, got %d", n)
	}
}
