package catalog

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSizeNotFound    = errors.New("size not found")
)

type Size string

const (
	SizeXS Size = "XS"
	SizeS  Size = "S"
	SizeM  Size = "M"
	SizeL  Size = "L"
)

var Sizes = []Size{SizeXS, SizeS, SizeM, SizeL}

func (s Size) Valid() bool {
	for _, v := range Sizes {
		if s == v {
			return true
		}
	}
	return false
}

type Category string

const (
	CategoryWomen Category = "WOMEN"
	CategoryMen   Category = "MEN"
	CategoryKids  Category = "KIDS"
)

type SizeStock struct {
	Size  Size `json:"size"`
	Stock int  `json:"stock"`
}

// Product prices are in the reference currency (USD).
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Sizes       []SizeStock     `json:"sizes"`
}

// StockFor returns the catalog default stock for size.
func (p Product) StockFor(size Size) (int, bool) {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Stock, true
		}
	}
	return 0, false
}

func (p Product) clone() Product {
	p.Sizes = append([]SizeStock(nil), p.Sizes...)
	return p
}

func Find(products []Product, id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
