package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/inventory"
	"github.com/ariefcatur/go-storefront/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxNumberAttempts = 20

type StockLedger interface {
	Check(ctx context.Context, updates []inventory.StockUpdate) error
	Commit(ctx context.Context, updates []inventory.StockUpdate) error
}

type CartClearer interface {
	Clear(ctx context.Context) error
}

// PriceBook resolves the catalog price of a product at commit time.
type PriceBook interface {
	Product(ctx context.Context, id string) (catalog.Product, error)
}

// CheckoutInput is everything the shopper entered across the checkout steps.
type CheckoutInput struct {
	Details          Details
	ShippingMethodID string
	Payment          Payment
}

type Recorder struct {
	Repo   *Repo
	Stock  StockLedger
	Cart   CartClearer
	Prices PriceBook
	Events EventSink
	Log    *zap.Logger

	Now    func() time.Time
	Number func() int
}

func NewRecorder(backend storage.Backend, stock StockLedger, c CartClearer, prices PriceBook, events EventSink, log *zap.Logger) *Recorder {
	if events == nil {
		events = NopSink{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{
		Repo:   &Repo{Backend: backend},
		Stock:  stock,
		Cart:   c,
		Prices: prices,
		Events: events,
		Log:    log,
		Now:    time.Now,
		Number: randomNumber,
	}
}

func (r *Recorder) List(ctx context.Context) ([]Order, error) { return r.Repo.List(ctx) }

func (r *Recorder) Clear(ctx context.Context) error { return r.Repo.Clear(ctx) }

// Commit turns the cart lines into an order. Stock is re-validated against the
// live ledger and decremented as one batch; on any failure no order is written
// and the cart is left as it was.
func (r *Recorder) Commit(ctx context.Context, lines cart.Lines, in CheckoutInput) (Order, error) {
	if len(lines) == 0 {
		return Order{}, ErrEmptyCart
	}
	method, ok := FindShippingMethod(in.ShippingMethodID)
	if !ok {
		return Order{}, fmt.Errorf("%w: %q", ErrUnknownShippingMethod, in.ShippingMethodID)
	}
	if err := in.Details.Validate(); err != nil {
		return Order{}, err
	}
	if err := in.Payment.Validate(); err != nil {
		return Order{}, err
	}

	var order Order
	err := storage.WithLock(ctx, r.Repo.Backend, storage.KeyOrders, func() error {
		updates := make([]inventory.StockUpdate, 0, len(lines))
		for _, l := range lines {
			updates = append(updates, inventory.StockUpdate{ProductID: l.ProductID, Size: l.Size, Quantity: l.Quantity})
		}
		// final check against live stock; the cart's earlier checks may be stale
		if err := r.Stock.Check(ctx, updates); err != nil {
			return err
		}

		previous, err := r.Repo.List(ctx)
		if err != nil {
			return err
		}
		number, err := r.freeNumber(previous)
		if err != nil {
			return err
		}
		subtotal, err := r.subtotal(ctx, lines)
		if err != nil {
			return err
		}

		order = Order{
			ID:              uuid.NewString(),
			Number:          number,
			Items:           append(cart.Lines(nil), lines...),
			Contact:         in.Details.Contact,
			ShippingAddress: in.Details.ShippingAddress,
			ShippingMethod:  method,
			Payment: PaymentSummary{
				CardNumber: MaskCardNumber(in.Payment.CardNumber),
				HolderName: in.Payment.HolderName,
			},
			Subtotal:     subtotal,
			ShippingCost: method.Price,
			Total:        subtotal.Add(method.Price),
			Status:       StatusCompleted,
			CreatedAt:    r.Now().UTC(),
		}

		// order dulu, baru stok: kalau stok gagal, ledger dikembalikan
		if err := r.Repo.save(ctx, append([]Order{order}, previous...)); err != nil {
			return err
		}
		if err := r.Stock.Commit(ctx, updates); err != nil {
			if rbErr := r.Repo.save(ctx, previous); rbErr != nil {
				r.Log.Error("restore order ledger", zap.String("order_id", order.ID), zap.Error(rbErr))
			}
			return err
		}
		return nil
	})
	if err != nil {
		r.Log.Info("order commit rejected", zap.Int("lines", len(lines)), zap.Error(err))
		return Order{}, err
	}

	if err := r.Cart.Clear(ctx); err != nil {
		r.Log.Error("clear cart after commit", zap.String("order_id", order.ID), zap.Error(err))
	}
	if err := r.Events.OrderCommitted(ctx, order); err != nil {
		r.Log.Error("publish order committed", zap.String("order_id", order.ID), zap.Error(err))
	}
	r.Log.Info("order committed",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.Number),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}

// freeNumber draws order numbers until one is not used by the ledger.
func (r *Recorder) freeNumber(existing []Order) (string, error) {
	used := make(map[string]bool, len(existing))
	for _, o := range existing {
		used[o.Number] = true
	}
	for i := 0; i < maxNumberAttempts; i++ {
		n := FormatNumber(r.Number())
		if !used[n] {
			return n, nil
		}
	}
	return "", ErrOrderNumberExhausted
}

// subtotal prices every line from the catalog, falling back to the price
// captured on the line when the product left the catalog.
func (r *Recorder) subtotal(ctx context.Context, lines cart.Lines) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range lines {
		price := l.Price
		if r.Prices != nil {
			p, err := r.Prices.Product(ctx, l.ProductID)
			if err == nil {
				price = p.Price
			} else if !errors.Is(err, catalog.ErrProductNotFound) {
				return decimal.Zero, err
			}
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total, nil
}

// ComputeTotals is the pre-commit view of an order's money fields.
func ComputeTotals(lines cart.Lines, method ShippingMethod) (subtotal, shipping, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return subtotal, method.Price, subtotal.Add(method.Price)
}
