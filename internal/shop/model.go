// Package shop provides the merchandise catalog, member carts, and Stripe
// checkout.
package shop

import (
	"github.com/turnpage/turnpage/internal/cms"
)

// Product is a merchandise item projected from the Merchandise collection.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
	InStock  bool    `json:"in_stock"`
	Featured bool    `json:"featured"`
}

// CartItem is one line of a member's cart, identified by product ID for
// merge-on-add semantics. Quantity is always >= 1.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category,omitempty"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
}

// Cart is a member's full cart.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Total returns the cart total in the catalog currency.
func (c Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Add merges an item into the cart. Adding an existing product ID
// accumulates quantity; the stored quantity never drops below 1.
func (c *Cart) Add(item CartItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// SetQuantity sets the quantity of a line, clamping to a minimum of 1.
// Returns false if the product is not in the cart.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return true
		}
	}
	return false
}

// RemoveItem deletes a line by product ID. Returns false if absent.
func (c *Cart) RemoveItem(productID string) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// ProductFromRecord decodes a CMS record into a Product with defensive
// defaulting.
func ProductFromRecord(rec cms.Record) Product {
	return Product{
		ID:       rec.ID(),
		Name:     rec.Str("name"),
		Category: rec.Str("category"),
		Price:    rec.Float("price"),
		Image:    rec.Str("image"),
		InStock:  rec.Bool("inStock"),
		Featured: rec.Bool("featured"),
	}
}

// LineForProduct builds a cart line from a product.
func LineForProduct(p Product, quantity int) CartItem {
	if quantity < 1 {
		quantity = 1
	}
	return CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  quantity,
	}
}
