package storage

const (
	// KeyProducts holds the catalog snapshot seeded on first start.
	KeyProducts = "ecommerce-products"
	// KeyInitialized guards the one-time catalog seeding.
	KeyInitialized = "ecommerce-initialized"
	// KeyStock holds the ledger: product id -> size -> remaining count.
	KeyStock = "ecommerce-stock"
	// KeyCart holds the list of cart lines.
	KeyCart = "ecommerce-cart"
	// KeyCurrency holds the selected display currency code.
	KeyCurrency = "ecommerce-currency"
	// KeyOrders holds the order ledger, most recent first.
	KeyOrders = "ecommerce-orders"

	// KeyCheckout is a template: checkout:{session_id}
	KeyCheckout = "checkout:%s"
)
