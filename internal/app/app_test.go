package app

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/notify"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"go.uber.org/zap/zaptest"
)

func TestOpen_MemoryWiring(t *testing.T) {
	ctx := context.Background()
	a, err := Open(ctx, config.Config{StorageBackend: "memory", EventsSink: "none"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer a.Close()

	changes := 0
	a.Bus.Subscribe(notify.TopicCartUpdated, func(notify.Topic) { changes++ })

	p, err := a.Catalog.Product(ctx, "5")
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	if _, err := a.Cart.Add(ctx, p, catalog.SizeS); err != nil {
		t.Fatalf("add: %v", err)
	}
	lines, _ := a.Cart.Lines(ctx)
	in := orders.CheckoutInput{
		Details: orders.Details{
			Contact:         "dev@example.com",
			ShippingAddress: orders.ShippingAddress{Name: "Dev", Address: "Street 1", City: "Town"},
		},
		ShippingMethodID: "standard",
		Payment:          orders.Payment{CardNumber: "4000000000000002", HolderName: "Dev", Expiration: "02/31", CVV: "321"},
	}
	if _, err := a.Orders.Commit(ctx, lines, in); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if n, _ := a.Stock.Available(ctx, "5", catalog.SizeS); n != 1 {
		t.Fatalf("stock=%d want 1", n)
	}
	// add, stock commit, cart clear
	if changes != 3 {
		t.Fatalf("cart notifications=%d want 3", changes)
	}

	if err := a.ClearAll(ctx); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	if n, _ := a.Stock.Available(ctx, "5", catalog.SizeS); n != 2 {
		t.Fatalf("stock after reset=%d", n)
	}
	if list, _ := a.Orders.List(ctx); len(list) != 0 {
		t.Fatalf("orders after clear=%d", len(list))
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), config.Config{StorageBackend: "etcd"}, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if _, err := Open(context.Background(), config.Config{StorageBackend: "memory", EventsSink: "nats"}, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for unknown sink")
	}
}
