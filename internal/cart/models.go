package cart

import (
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

// Line is one (product, size) entry. Name, Price and Image are copied from the
// catalog when the line is created.
type Line struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Size      catalog.Size    `json:"size"`
	Quantity  int             `json:"quantity"`
}

type Lines []Line

func (ls Lines) index(productID string, size catalog.Size) int {
	for i, l := range ls {
		if l.ProductID == productID && l.Size == size {
			return i
		}
	}
	return -1
}

// Quantity of (productID, size) in the cart, 0 if absent.
func (ls Lines) Quantity(productID string, size catalog.Size) int {
	if i := ls.index(productID, size); i >= 0 {
		return ls[i].Quantity
	}
	return 0
}

func (ls Lines) TotalItems() int {
	n := 0
	for _, l := range ls {
		n += l.Quantity
	}
	return n
}

func (ls Lines) without(productID string, size catalog.Size) Lines {
	out := make(Lines, 0, len(ls))
	for _, l := range ls {
		if l.ProductID == productID && l.Size == size {
			continue
		}
		out = append(out, l)
	}
	return out
}
