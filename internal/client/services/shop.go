package services

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
)

// ShopService exposes the authorized storefront reads to the CLI. Every call
// goes through the client's session pipeline, so an expired access token is
// refreshed and the call replayed transparently.
type ShopService interface {
	Cart(ctx context.Context) (*models.Cart, error)
	Wishlist(ctx context.Context) (*models.Wishlist, error)
	Orders(ctx context.Context) ([]models.Order, error)
	Profile(ctx context.Context) (*models.Profile, error)
}

type shopService struct {
	client client.Client
}

// NewShopService constructs a ShopService bound to the given API client.
func NewShopService(client client.Client) ShopService {
	return &shopService{client: client}
}

func (s *shopService) Cart(ctx context.Context) (*models.Cart, error) {
	return s.client.Cart(ctx)
}

func (s *shopService) Wishlist(ctx context.Context) (*models.Wishlist, error) {
	return s.client.Wishlist(ctx)
}

func (s *shopService) Orders(ctx context.Context) ([]models.Order, error) {
	return s.client.Orders(ctx)
}

func (s *shopService) Profile(ctx context.Context) (*models.Profile, error) {
	return s.client.Profile(ctx)
}
