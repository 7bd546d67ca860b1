package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
)

// reportShopError prints a storefront call failure in user terms.
func (a *App) reportShopError(err error) {
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		printlnFn("Please log in first.")
	case errors.Is(err, common.ErrUnavailable):
		printlnFn("Server unavailable, try again later.")
	default:
		printlnFn("Request failed:", err.Error())
	}
}

// Cart prints the current shopping cart.
func (a *App) Cart(ctx context.Context) error {
	cart, err := a.shopService.Cart(ctx)
	if err != nil {
		a.reportShopError(err)
		return err
	}

	if len(cart.Items) == 0 {
		printlnFn("Your cart is empty.")
		return nil
	}
	for _, item := range cart.Items {
		printlnFn(fmt.Sprintf("%dx %-30s %8.2f", item.Quantity, item.Title, item.Price))
	}
	printlnFn(fmt.Sprintf("Total: %.2f", cart.Total))
	return nil
}

// Wishlist prints the saved products.
func (a *App) Wishlist(ctx context.Context) error {
	wl, err := a.shopService.Wishlist(ctx)
	if err != nil {
		a.reportShopError(err)
		return err
	}

	if len(wl.Items) == 0 {
		printlnFn("Your wishlist is empty.")
		return nil
	}
	for _, item := range wl.Items {
		printlnFn(fmt.Sprintf("%-30s %8.2f", item.Title, item.Price))
	}
	return nil
}

// Orders prints the placed orders.
func (a *App) Orders(ctx context.Context) error {
	orders, err := a.shopService.Orders(ctx)
	if err != nil {
		a.reportShopError(err)
		return err
	}

	if len(orders) == 0 {
		printlnFn("No orders yet.")
		return nil
	}
	for _, o := range orders {
		printlnFn(fmt.Sprintf("%s  %-10s %8.2f  %s", o.ID, o.Status, o.Total, o.CreatedAt.Format("2006-01-02")))
	}
	return nil
}

// Profile prints the account profile.
func (a *App) Profile(ctx context.Context) error {
	p, err := a.shopService.Profile(ctx)
	if err != nil {
		a.reportShopError(err)
		return err
	}

	printlnFn(fmt.Sprintf("Name:  %s", p.Name))
	printlnFn(fmt.Sprintf("Email: %s", p.Email))
	return nil
}
