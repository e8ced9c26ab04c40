package model

// Product is a catalog entry as supplied by the storefront when the
// shopper adds it to the cart. It carries no quantity.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image,omitempty"`
}

// CartItem is one line of the cart: a product plus the selected quantity.
type CartItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image,omitempty"`
	Quantity    int     `json:"quantity"`
}

// Cart is an ordered sequence of line items, unique by product ID.
// Order is insertion order.
type Cart []CartItem

// TotalItems returns the sum of all line quantities.
func (c Cart) TotalItems() int {
	total := 0
	for _, item := range c {
		total += item.Quantity
	}
	return total
}

// TotalPrice returns the sum of price times quantity over all lines.
func (c Cart) TotalPrice() float64 {
	total := 0.0
	for _, item := range c {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
