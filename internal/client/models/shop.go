// Package models defines the storefront view models returned by the API
// client. They mirror the backend's JSON shapes.
package models

import "time"

// CartItem is one line of the shopping cart.
type CartItem struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Cart is the current cart contents.
type Cart struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}

// WishlistItem is one saved product.
type WishlistItem struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
}

// Wishlist is the user's saved products.
type Wishlist struct {
	Items []WishlistItem `json:"items"`
}

// Order is a placed order summary.
type Order struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile is the account view returned by /profile.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
