package catalog

import "github.com/shopspring/decimal"

func sizes(xs, s, m, l int) []SizeStock {
	return []SizeStock{{SizeXS, xs}, {SizeS, s}, {SizeM, m}, {SizeL, l}}
}

var defaults = []Product{
	{ID: "1", Name: "Women's Running Shorts", Price: decimal.RequireFromString("50.00"), Image: "/product_1.png",
		Description: "Comfortable running shorts for women.", Category: CategoryWomen, Sizes: sizes(3, 5, 8, 2)},
	{ID: "2", Name: "Women's Running Shorts out of stock", Price: decimal.RequireFromString("50.00"), Image: "/product_1.png",
		Description: "Comfortable running shorts for women.", Category: CategoryWomen, Sizes: sizes(0, 0, 0, 0)},
	{ID: "3", Name: "Women's Yoga Leggings", Price: decimal.RequireFromString("65.00"), Image: "/product_2.png",
		Description: "High-waisted yoga leggings.", Category: CategoryWomen, Sizes: sizes(0, 0, 1, 0)},
	{ID: "4", Name: "Men's Athletic T-Shirt", Price: decimal.RequireFromString("35.00"), Image: "/product_3.png",
		Description: "Breathable athletic shirt for men.", Category: CategoryMen, Sizes: sizes(1, 4, 6, 7)},
	{ID: "5", Name: "Men's Training Shorts", Price: decimal.RequireFromString("45.00"), Image: "/product_4.png",
		Description: "Durable training shorts for men.", Category: CategoryMen, Sizes: sizes(0, 2, 0, 1)},
	{ID: "6", Name: "Kids' Fun T-Shirt", Price: decimal.RequireFromString("25.00"), Image: "/product_1.png",
		Description: "Colorful and comfortable t-shirt for kids.", Category: CategoryKids, Sizes: sizes(5, 8, 3, 4)},
	{ID: "7", Name: "Kids' Play Shorts", Price: decimal.RequireFromString("30.00"), Image: "/product_2.png",
		Description: "Comfortable shorts for active kids.", Category: CategoryKids, Sizes: sizes(2, 6, 4, 3)},
	{ID: "8", Name: "Women's Sports Bra", Price: decimal.RequireFromString("40.00"), Image: "/product_3.png",
		Description: "Supportive sports bra for workouts.", Category: CategoryWomen, Sizes: sizes(4, 7, 5, 6)},
	{ID: "9", Name: "Men's Jogger Pants", Price: decimal.RequireFromString("55.00"), Image: "/product_4.png",
		Description: "Comfortable jogger pants for men.", Category: CategoryMen, Sizes: sizes(1, 3, 9, 4)},
}

// Defaults returns a fresh copy of the static catalog with full stock.
func Defaults() []Product {
	out := make([]Product, len(defaults))
	for i, p := range defaults {
		out[i] = p.clone()
	}
	return out
}
