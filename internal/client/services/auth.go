// Package services contains application services for the Shopkeeper client.
// This file defines the authentication service: login, register, logout, and
// reporting of the current session state.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/session"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

// Status describes the current session as seen by the local store.
type Status struct {
	Authenticated bool
	User          *session.User
	// AccessExpiry is the access token's expiry claim; zero when the token
	// carries none or cannot be parsed.
	AccessExpiry time.Time
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server; the session record is persisted
//     by the client as part of the exchange.
//   - Register: create an account and open a session.
//   - Logout: revoke the refresh token server-side (best effort) and clear
//     the local session.
//   - Status: report the locally stored session state.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) (*session.User, error)
	Register(ctx context.Context, email string, password []byte, name string) (*session.User, error)
	Logout(ctx context.Context) error
	Status(ctx context.Context) (*Status, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// authService is the concrete AuthService backed by the remote Client and the
// local session store.
type authService struct {
	client client.Client
	store  session.Store
	log    logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client and
// session store. log may be nil.
func NewAuthService(client client.Client, store session.Store, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{client: client, store: store, log: log}
}

func (a *authService) Login(ctx context.Context, email string, password []byte) (*session.User, error) {
	return a.client.Login(ctx, email, password)
}

func (a *authService) Register(ctx context.Context, email string, password []byte, name string) (*session.User, error) {
	return a.client.Register(ctx, email, password, name)
}

// Logout ends the session deliberately. Server-side revocation is best
// effort: a dead backend must never trap the user in a logged-in state, so
// the local record is cleared regardless of the revoke outcome.
func (a *authService) Logout(ctx context.Context) error {
	rec, err := a.store.Read(ctx)
	if err != nil {
		return err
	}
	if rec == nil {
		return common.ErrNoSession
	}

	if rec.RefreshToken != "" {
		if err := a.client.Logout(ctx, rec.RefreshToken); err != nil {
			a.log.Warn(ctx, "server-side logout failed", "err", err)
		}
	}

	return a.store.Clear(ctx)
}

// Status reports the stored session. The expiry claim is read without
// verifying the token signature; the client holds no signing key and the
// value is informational only.
func (a *authService) Status(ctx context.Context) (*Status, error) {
	rec, err := a.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &Status{}, nil
	}

	st := &Status{Authenticated: rec.IsAuthenticated, User: rec.User}
	if exp, err := session.TokenExpiry(rec.AccessToken); err == nil {
		st.AccessExpiry = exp
	}
	return st, nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
