package inventory

import (
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront/internal/catalog"
)

var (
	ErrOutOfStock        = errors.New("this item is out of stock")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be > 0")

	ErrProductNotFound = catalog.ErrProductNotFound
	ErrSizeNotFound    = catalog.ErrSizeNotFound
)

// InsufficientStockError reports the line that failed and the live counts.
// It matches ErrInsufficientStock with errors.Is.
type InsufficientStockError struct {
	ProductID string       `json:"product_id"`
	Size      catalog.Size `json:"size"`
	Available int          `json:"available"`
	Requested int          `json:"requested"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s size %s. Available: %d, Requested: %d",
		e.ProductID, e.Size, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }
