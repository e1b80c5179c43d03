package inventory

import "github.com/ariefcatur/go-storefront/internal/catalog"

// Ledger maps product id -> size -> remaining count.
type Ledger map[string]map[catalog.Size]int

type StockUpdate struct {
	ProductID string       `json:"product_id"`
	Size      catalog.Size `json:"size"`
	Quantity  int          `json:"quantity"`
}

func LedgerFromProducts(products []catalog.Product) Ledger {
	l := make(Ledger, len(products))
	for _, p := range products {
		sizes := make(map[catalog.Size]int, len(p.Sizes))
		for _, s := range p.Sizes {
			sizes[s.Size] = s.Stock
		}
		l[p.ID] = sizes
	}
	return l
}

// Available is 0 for unknown products or sizes.
func (l Ledger) Available(productID string, size catalog.Size) int {
	return l[productID][size]
}

func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for id, sizes := range l {
		cp := make(map[catalog.Size]int, len(sizes))
		for s, n := range sizes {
			cp[s] = n
		}
		out[id] = cp
	}
	return out
}

type lineKey struct {
	productID string
	size      catalog.Size
}

// validate checks the whole batch against l without touching it. Updates naming
// the same product and size are checked against their combined quantity.
func (l Ledger) validate(updates []StockUpdate) error {
	requested := make(map[lineKey]int, len(updates))
	order := make([]lineKey, 0, len(updates))
	for _, u := range updates {
		if u.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		k := lineKey{u.ProductID, u.Size}
		if _, seen := requested[k]; !seen {
			order = append(order, k)
		}
		requested[k] += u.Quantity
	}

	for _, k := range order {
		sizes, ok := l[k.productID]
		if !ok {
			return wrapNotFound(ErrProductNotFound, k)
		}
		stock, ok := sizes[k.size]
		if !ok {
			return wrapNotFound(ErrSizeNotFound, k)
		}
		if stock < requested[k] {
			return &InsufficientStockError{
				ProductID: k.productID,
				Size:      k.size,
				Available: stock,
				Requested: requested[k],
			}
		}
	}
	return nil
}

func (l Ledger) apply(updates []StockUpdate) {
	for _, u := range updates {
		l[u.ProductID][u.Size] -= u.Quantity
	}
}
