package orders

import (
	"time"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/shopspring/decimal"
)

type ShippingAddress struct {
	Name         string `json:"name" validate:"required"`
	SecondName   string `json:"second_name"`
	Address      string `json:"address" validate:"required"`
	ShippingNote string `json:"shipping_note"`
	City         string `json:"city" validate:"required"`
	PostalCode   string `json:"postal_code"`
	Province     string `json:"province"`
	Country      string `json:"country"`
}

type ShippingMethod struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// PaymentSummary is what an order keeps of the card: masked number and holder.
type PaymentSummary struct {
	CardNumber string `json:"card_number"`
	HolderName string `json:"holder_name"`
}

// Order is an immutable snapshot taken at checkout completion.
type Order struct {
	ID              string          `json:"id"`
	Number          string          `json:"order_number"`
	Items           cart.Lines      `json:"items"`
	Contact         string          `json:"contact"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	ShippingMethod  ShippingMethod  `json:"shipping_method"`
	Payment         PaymentSummary  `json:"payment_info"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	Total           decimal.Decimal `json:"total"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

var (
	ShippingStandard = ShippingMethod{ID: "standard", Name: "Standard Shipping", Price: decimal.Zero}
	ShippingExpress  = ShippingMethod{ID: "express", Name: "Express Shipping", Price: decimal.RequireFromString("4.99")}
)

var ShippingMethods = []ShippingMethod{ShippingStandard, ShippingExpress}

func FindShippingMethod(id string) (ShippingMethod, bool) {
	for _, m := range ShippingMethods {
		if m.ID == id {
			return m, true
		}
	}
	return ShippingMethod{}, false
}
