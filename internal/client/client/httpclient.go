package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/client/session"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

// DefaultRequestTimeout bounds every HTTP exchange issued by the client.
const DefaultRequestTimeout = 15 * time.Second

// Options configures an HTTPClient.
type Options struct {
	// BaseURL of the Shopline backend, e.g. "https://api.shopline.example".
	BaseURL string

	// Store holds the persisted session. Defaults to an in-memory store.
	Store session.Store

	// Redirect fires exactly once when the session is conclusively invalid.
	Redirect func()

	// RequestTimeout bounds every call; 0 selects DefaultRequestTimeout.
	RequestTimeout time.Duration

	// RefreshTimeout bounds the refresh exchange; 0 selects the session
	// layer's default.
	RefreshTimeout time.Duration

	// Base is the underlying transport, http.DefaultTransport if nil.
	Base http.RoundTripper

	// Logger may be nil.
	Logger logging.Logger
}

// HTTPClient talks to the Shopline backend over REST. Application calls go
// through the session pipeline (token attach + refresh-and-replay); the auth
// endpoints use a plain client so the refresh protocol never recurses into
// itself.
type HTTPClient struct {
	baseURL string
	store   session.Store
	term    *session.Terminator
	auth    *http.Client
	app     *http.Client
	log     logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// New wires the full stack: store → terminator → coordinator → transport.
func New(opts Options) (*HTTPClient, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("client: base URL is required")
	}
	if opts.Store == nil {
		opts.Store = session.NewMemoryStore()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		store:   opts.Store,
		log:     log,
	}

	c.term = session.NewTerminator(opts.Store, opts.Redirect, log)
	coord := session.NewCoordinator(opts.Store, c.RefreshTokens, c.term, opts.RefreshTimeout, log)

	c.auth = &http.Client{Timeout: opts.RequestTimeout, Transport: opts.Base}
	c.app = &http.Client{
		Timeout:   opts.RequestTimeout,
		Transport: session.NewTransport(opts.Base, opts.Store, coord, log),
	}

	return c, nil
}

// Close releases idle connections held by the underlying clients.
func (c *HTTPClient) Close() error {
	c.auth.CloseIdleConnections()
	c.app.CloseIdleConnections()
	return nil
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authEnvelope struct {
	User   session.User      `json:"user"`
	Tokens session.TokenPair `json:"tokens"`
}

type tokensEnvelope struct {
	Tokens session.TokenPair `json:"tokens"`
}

// Register creates an account and opens a session with the returned pair.
func (c *HTTPClient) Register(ctx context.Context, email string, password []byte, name string) (*session.User, error) {
	return c.authenticate(ctx, "/auth/register", credentialsRequest{Email: email, Password: string(password), Name: name})
}

// Login authenticates and persists the session record. A 401 from the login
// endpoint means bad credentials and is surfaced immediately; it never
// engages the refresh protocol.
func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (*session.User, error) {
	return c.authenticate(ctx, "/auth/login", credentialsRequest{Email: email, Password: string(password)})
}

func (c *HTTPClient) authenticate(ctx context.Context, path string, payload credentialsRequest) (*session.User, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.auth.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var out authEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("decode auth response: %w", err)
		}
		if err := c.openSession(ctx, &out); err != nil {
			return nil, err
		}
		return &out.User, nil
	case http.StatusUnauthorized:
		return nil, common.ErrInvalidCredentials
	default:
		return nil, unexpectedStatus(path, resp)
	}
}

// openSession replaces the whole session record in one write and re-arms the
// terminator so a future terminal episode can redirect again.
func (c *HTTPClient) openSession(ctx context.Context, env *authEnvelope) error {
	rec := &session.Record{
		User:            &env.User,
		TokenPair:       env.Tokens,
		IsAuthenticated: true,
	}
	if err := c.store.Write(ctx, rec); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	c.term.Rearm()
	c.log.Info(ctx, "session opened", "user", env.User.Email)
	return nil
}

// RefreshTokens exchanges refreshToken for a fresh pair. It reports an error
// wrapping common.ErrSessionRejected only when the server explicitly answers
// 401 or 403; a transport failure is returned as-is so the session layer
// classifies it as a network fault.
func (c *HTTPClient) RefreshTokens(ctx context.Context, refreshToken string) (*session.TokenPair, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/auth/refresh", refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}

	resp, err := c.auth.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out tokensEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("decode refresh response: %w", err)
		}
		return &out.Tokens, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("refresh rejected (%s): %w", resp.Status, common.ErrSessionRejected)
	default:
		return nil, unexpectedStatus("/auth/refresh", resp)
	}
}

// Logout revokes refreshToken on the server. Best effort: callers proceed
// with local teardown regardless of the result.
func (c *HTTPClient) Logout(ctx context.Context, refreshToken string) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/auth/logout", refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}

	resp, err := c.auth.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	drainBody(resp)
	if resp.StatusCode >= 300 {
		return unexpectedStatus("/auth/logout", resp)
	}
	return nil
}

// Ping checks backend liveness.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.auth.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	drainBody(resp)
	if resp.StatusCode != http.StatusOK {
		return common.ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) Cart(ctx context.Context) (*models.Cart, error) {
	var out models.Cart
	if err := c.getApp(ctx, "/cart", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Wishlist(ctx context.Context) (*models.Wishlist, error) {
	var out models.Wishlist
	if err := c.getApp(ctx, "/wishlist", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Orders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if err := c.getApp(ctx, "/orders", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Profile(ctx context.Context) (*models.Profile, error) {
	var out models.Profile
	if err := c.getApp(ctx, "/profile", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// getApp issues an authorized GET through the session pipeline and maps the
// outcome to the shared sentinels.
func (c *HTTPClient) getApp(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.app.Do(req)
	if err != nil {
		return c.mapError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return common.ErrUnauthorized
	default:
		return unexpectedStatus(path, resp)
	}
}

// mapError converts pipeline failures into the sentinels callers match on.
func (c *HTTPClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrSessionRejected) {
		return fmt.Errorf("%w: session expired", common.ErrUnauthorized)
	}
	return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
}

func (c *HTTPClient) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func unexpectedStatus(path string, resp *http.Response) error {
	return fmt.Errorf("%s: unexpected status %s", path, resp.Status)
}

func drainBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
