package currency

import (
	"context"
	"errors"
	"testing"

	"github.com/ariefcatur/go-storefront/internal/notify"
	"github.com/ariefcatur/go-storefront/internal/storage"
	"github.com/shopspring/decimal"
)

func TestConvert(t *testing.T) {
	price := decimal.RequireFromString("50.00")
	cases := map[Code]string{USD: "50", EUR: "42.5", JPY: "5500"}
	for code, want := range cases {
		got, err := Convert(price, code)
		if err != nil {
			t.Fatalf("convert %s: %v", code, err)
		}
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("convert %s = %s, want %s", code, got, want)
		}
	}
	if _, err := Convert(price, "GBP"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestStore_DefaultsToUSD(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := NewStore(mem, nil, nil)

	c, err := s.Selected(ctx)
	if err != nil || c != USD {
		t.Fatalf("selected=%s err=%v", c, err)
	}

	// garbage from an older client is ignored
	if err := mem.Set(ctx, storage.KeyCurrency, []byte(`"XYZ"`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if c, _ := s.Selected(ctx); c != USD {
		t.Fatalf("selected=%s, want USD", c)
	}
}

func TestStore_SelectPersistsAndNotifies(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	bus := notify.NewBus()
	calls := 0
	bus.Subscribe(notify.TopicCurrencyChanged, func(notify.Topic) { calls++ })
	s := NewStore(mem, bus, nil)

	if err := s.Select(ctx, EUR); err != nil {
		t.Fatalf("select: %v", err)
	}
	// a second store on the same backend sees the choice
	if c, _ := NewStore(mem, nil, nil).Selected(ctx); c != EUR {
		t.Fatalf("selected=%s, want EUR", c)
	}
	if calls != 1 {
		t.Fatalf("notifications=%d", calls)
	}

	if err := s.Select(ctx, "GBP"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("rejected select must not notify")
	}
}
