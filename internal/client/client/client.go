package client

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/client/session"
)

type Client interface {
	Close() error
	Register(ctx context.Context, email string, password []byte, name string) (*session.User, error)
	Login(ctx context.Context, email string, password []byte) (*session.User, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*session.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Ping(ctx context.Context) error
	Cart(ctx context.Context) (*models.Cart, error)
	Wishlist(ctx context.Context) (*models.Wishlist, error)
	Orders(ctx context.Context) ([]models.Order, error)
	Profile(ctx context.Context) (*models.Profile, error)
}
