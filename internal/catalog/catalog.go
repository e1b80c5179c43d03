package catalog

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-storefront/internal/storage"
	"go.uber.org/zap"
)

// Catalog serves the product snapshot persisted in the storage area.
type Catalog struct {
	store    storage.Store
	log      *zap.Logger
	defaults []Product
}

func New(store storage.Store, log *zap.Logger) *Catalog {
	return NewWithProducts(store, Defaults(), log)
}

// NewWithProducts uses products instead of the built-in catalog as the seed.
func NewWithProducts(store storage.Store, products []Product, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{store: store, log: log, defaults: products}
}

// Init seeds the catalog snapshot once. Later calls are no-ops while the marker exists.
func (c *Catalog) Init(ctx context.Context) error {
	var marker bool
	found, err := storage.GetJSON(ctx, c.store, storage.KeyInitialized, &marker)
	if err != nil {
		return err
	}
	if found && marker {
		return nil
	}
	if err := storage.SetJSON(ctx, c.store, storage.KeyProducts, c.defaults); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if err := storage.SetJSON(ctx, c.store, storage.KeyInitialized, true); err != nil {
		return fmt.Errorf("mark catalog seeded: %w", err)
	}
	c.log.Info("catalog seeded", zap.Int("products", len(c.defaults)))
	return nil
}

// Products returns the stored snapshot, falling back to the seed catalog.
func (c *Catalog) Products(ctx context.Context) ([]Product, error) {
	var out []Product
	found, err := storage.GetJSON(ctx, c.store, storage.KeyProducts, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return c.Defaults(), nil
	}
	return out, nil
}

// Defaults returns a copy of the seed products, full stock.
func (c *Catalog) Defaults() []Product {
	out := make([]Product, len(c.defaults))
	for i, p := range c.defaults {
		out[i] = p.clone()
	}
	return out
}

func (c *Catalog) Product(ctx context.Context, id string) (Product, error) {
	products, err := c.Products(ctx)
	if err != nil {
		return Product{}, err
	}
	p, ok := Find(products, id)
	if !ok {
		return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return p, nil
}

// ByCategory filters the snapshot; an empty category returns everything.
func (c *Catalog) ByCategory(ctx context.Context, cat Category) ([]Product, error) {
	products, err := c.Products(ctx)
	if err != nil {
		return nil, err
	}
	if cat == "" {
		return products, nil
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == cat {
			out = append(out, p)
		}
	}
	return out, nil
}
