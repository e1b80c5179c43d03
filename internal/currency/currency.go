package currency

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront/internal/notify"
	"github.com/ariefcatur/go-storefront/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Code string

const (
	USD Code = "USD"
	EUR Code = "EUR"
	JPY Code = "JPY"

	// Default is also the reference currency every catalog price is stated in.
	Default = USD
)

var ErrUnsupported = errors.New("unsupported currency")

type Info struct {
	Code     Code            `json:"code"`
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name"`
	Decimals int32           `json:"decimals"`
	Rate     decimal.Decimal `json:"rate"`
}

var currencies = map[Code]Info{
	USD: {Code: USD, Symbol: "$", Name: "US Dollar", Decimals: 2, Rate: decimal.NewFromInt(1)},
	EUR: {Code: EUR, Symbol: "€", Name: "Euro", Decimals: 2, Rate: decimal.RequireFromString("0.85")},
	JPY: {Code: JPY, Symbol: "¥", Name: "Japanese Yen", Decimals: 0, Rate: decimal.NewFromInt(110)},
}

// Supported lists the selectable currencies in display order.
func Supported() []Info {
	return []Info{currencies[USD], currencies[EUR], currencies[JPY]}
}

func Lookup(c Code) (Info, bool) {
	info, ok := currencies[c]
	return info, ok
}

// Convert converts a price in the reference currency. The result is not rounded.
func Convert(price decimal.Decimal, to Code) (decimal.Decimal, error) {
	info, ok := currencies[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnsupported, to)
	}
	return price.Mul(info.Rate), nil
}

// Store keeps the shopper's selected display currency.
type Store struct {
	backend  storage.Store
	notifier notify.Publisher
	log      *zap.Logger
}

func NewStore(backend storage.Store, notifier notify.Publisher, log *zap.Logger) *Store {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{backend: backend, notifier: notifier, log: log}
}

// Selected returns the stored currency, or USD when nothing valid is stored.
func (s *Store) Selected(ctx context.Context) (Code, error) {
	var c Code
	found, err := storage.GetJSON(ctx, s.backend, storage.KeyCurrency, &c)
	if err != nil {
		return Default, err
	}
	if _, ok := currencies[c]; !found || !ok {
		return Default, nil
	}
	return c, nil
}

func (s *Store) Select(ctx context.Context, c Code) error {
	if _, ok := currencies[c]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupported, c)
	}
	if err := storage.SetJSON(ctx, s.backend, storage.KeyCurrency, c); err != nil {
		return err
	}
	s.log.Debug("currency selected", zap.String("currency", string(c)))
	s.notifier.Publish(notify.TopicCurrencyChanged)
	return nil
}
