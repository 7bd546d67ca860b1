package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
)

// httpRefresher mirrors the API client's refresh exchange for pipeline tests:
// POST the refresh token, map an explicit 401/403 to ErrSessionRejected and
// anything without a response to a plain error.
func httpRefresher(baseURL string) RefreshFunc {
	return func(ctx context.Context, refreshToken string) (*TokenPair, error) {
		body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/auth/refresh", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			var out struct {
				Tokens TokenPair `json:"tokens"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return nil, err
			}
			return &out.Tokens, nil
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("refresh rejected: %w", common.ErrSessionRejected)
		default:
			return nil, fmt.Errorf("refresh failed: %s", resp.Status)
		}
	}
}

type stack struct {
	store     *MemoryStore
	client    *http.Client
	redirects atomic.Int64
}

// newStack wires store → terminator → coordinator → transport against the
// given backend, refreshing via refreshURL (defaults to the backend itself).
func newStack(t *testing.T, backendURL, refreshURL string) *stack {
	t.Helper()
	if refreshURL == "" {
		refreshURL = backendURL
	}

	s := &stack{store: authedStore(t)}
	term := NewTerminator(s.store, func() { s.redirects.Add(1) }, nil)
	coord := NewCoordinator(s.store, httpRefresher(refreshURL), term, 2*time.Second, nil)
	s.client = &http.Client{Transport: NewTransport(nil, s.store, coord, nil)}
	return s
}

// authAwareMux answers application paths with 401 until the request carries
// wantToken, and serves a refresh endpoint that hands out wantToken.
func authAwareMux(t *testing.T, refreshCalls *atomic.Int64, pair TokenPair, appPaths ...string) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	for _, p := range appPaths {
		p := p
		mux.HandleFunc(p, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+pair.AccessToken {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			fmt.Fprintf(w, `{"path":%q}`, p)
		})
	}
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		// Give concurrent app calls time to fail and queue behind this one.
		time.Sleep(50 * time.Millisecond)
		var in struct {
			RefreshToken string `json:"refreshToken"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "refresh-1", in.RefreshToken)
		_ = json.NewEncoder(w).Encode(map[string]any{"tokens": pair})
	})
	return mux
}

func TestTransport_AttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-Id")
	}))
	defer srv.Close()

	s := newStack(t, srv.URL, "")
	resp, err := s.client.Get(srv.URL + "/cart")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "Bearer access-1", gotAuth)
	require.NotEmpty(t, gotReqID)
}

func TestTransport_NoTokenNoAuthorizationHeader(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
	}))
	defer srv.Close()

	s := newStack(t, srv.URL, "")
	require.NoError(t, s.store.Clear(context.Background()))

	resp, err := s.client.Get(srv.URL + "/catalog")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.False(t, sawAuth, "no stored token means no Authorization header")
}

// Scenario: access token expired; cart fetch 401s; refresh succeeds; the
// original fetch is replayed with the new token and succeeds.
func TestTransport_ExpiredTokenRecovers(t *testing.T) {
	var refreshCalls atomic.Int64
	pair := TokenPair{AccessToken: "new-a", RefreshToken: "new-r"}
	srv := httptest.NewServer(authAwareMux(t, &refreshCalls, pair, "/cart"))
	defer srv.Close()

	s := newStack(t, srv.URL, "")
	resp, err := s.client.Get(srv.URL + "/cart")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"path":"/cart"}`, string(body))
	require.Equal(t, int64(1), refreshCalls.Load())

	rec, err := s.store.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, pair, rec.TokenPair)
	require.True(t, rec.IsAuthenticated)
}

// Scenario: two simultaneous calls both 401 → exactly one refresh POST, and
// both calls resolve with the same new token.
func TestTransport_ConcurrentCallsShareOneRefresh(t *testing.T) {
	var refreshCalls atomic.Int64
	pair := TokenPair{AccessToken: "new-a", RefreshToken: "new-r"}
	srv := httptest.NewServer(authAwareMux(t, &refreshCalls, pair, "/orders", "/wishlist"))
	defer srv.Close()

	s := newStack(t, srv.URL, "")

	var wg sync.WaitGroup
	codes := make([]int, 2)
	for i, path := range []string{"/orders", "/wishlist"} {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			resp, err := s.client.Get(srv.URL + path)
			if err != nil {
				t.Errorf("call %s: %v", path, err)
				return
			}
			defer resp.Body.Close()
			codes[i] = resp.StatusCode
		}(i, path)
	}
	wg.Wait()

	require.Equal(t, []int{http.StatusOK, http.StatusOK}, codes)
	require.Equal(t, int64(1), refreshCalls.Load(), "overlapping 401s must share one refresh")
}

// Scenario: the refresh call itself dies with no response. Queued callers
// see the network error and the stored session survives.
func TestTransport_RefreshNetworkFailureKeepsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	// A refresh endpoint that is already gone.
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	s := newStack(t, srv.URL, deadURL)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.client.Get(srv.URL + "/cart") //nolint:bodyclose // no response on error
		}(i)
	}
	wg.Wait()

	for i := range errs {
		require.Error(t, errs[i], "caller %d", i)
		require.NotErrorIs(t, errs[i], common.ErrSessionRejected)
	}

	rec, err := s.store.Read(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.True(t, rec.IsAuthenticated, "a network blip must not log the user out")
	require.Equal(t, int64(0), s.redirects.Load())
}

// Scenario: refresh answers 403 → every caller fails, the store is cleared,
// and exactly one redirect fires.
func TestTransport_RefreshRejectedTerminatesOnce(t *testing.T) {
	const n = 5

	mux := http.NewServeMux()
	mux.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	var refreshCalls atomic.Int64
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		// Hold the exchange open long enough for every caller to fail its
		// first attempt and join the queue.
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusForbidden)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := newStack(t, srv.URL, "")

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.client.Get(srv.URL + "/cart") //nolint:bodyclose // no response on error
		}(i)
	}
	wg.Wait()

	for i := range errs {
		require.ErrorIs(t, errs[i], common.ErrSessionRejected, "caller %d", i)
	}
	require.Equal(t, int64(1), s.redirects.Load(), "exactly one redirect")

	rec, err := s.store.Read(context.Background())
	require.NoError(t, err)
	require.Nil(t, rec, "store must be cleared")
}

// Scenario: bad credentials on /auth/login surface immediately; the refresh
// protocol must not engage.
func TestTransport_LoginUnauthorizedPassesThrough(t *testing.T) {
	var refreshCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := newStack(t, srv.URL, "")
	resp, err := s.client.Post(srv.URL+"/auth/login", "application/json", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, int64(0), refreshCalls.Load(), "auth endpoints never trigger refresh")
	require.Equal(t, int64(0), s.redirects.Load())
}

// A request that 401s even after one replay is not queued again.
func TestTransport_NoDoubleRetry(t *testing.T) {
	var refreshCalls, cartCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		cartCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized) // 401 regardless of token
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		pair := TokenPair{AccessToken: "new-a", RefreshToken: "new-r"}
		_ = json.NewEncoder(w).Encode(map[string]any{"tokens": pair})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := newStack(t, srv.URL, "")
	resp, err := s.client.Get(srv.URL + "/cart")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "the second 401 surfaces to the caller")
	require.Equal(t, int64(1), refreshCalls.Load())
	require.Equal(t, int64(2), cartCalls.Load(), "original call plus exactly one replay")
}

func TestTransport_ReplaysRequestBody(t *testing.T) {
	const payload = `{"productId":"p-1","qty":2}`

	var refreshCalls atomic.Int64
	var bodies []string
	var mu sync.Mutex
	mux := http.NewServeMux()
	mux.HandleFunc("/cart/items", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer new-a" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		pair := TokenPair{AccessToken: "new-a", RefreshToken: "new-r"}
		_ = json.NewEncoder(w).Encode(map[string]any{"tokens": pair})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := newStack(t, srv.URL, "")
	resp, err := s.client.Post(srv.URL+"/cart/items", "application/json", bytes.NewReader([]byte(payload)))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, []string{payload, payload}, bodies, "the replay must carry the full body again")
}

func TestTransport_NetworkErrorPropagatesUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	s := newStack(t, url, "")
	_, err := s.client.Get(url + "/cart") //nolint:bodyclose // no response on error
	require.Error(t, err)

	rec, readErr := s.store.Read(context.Background())
	require.NoError(t, readErr)
	require.NotNil(t, rec, "network failure must not mutate the session")
	require.Equal(t, int64(0), s.redirects.Load())
}

func TestTransport_DoesNotMutateCallerRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	s := newStack(t, srv.URL, "")
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/cart", nil)
	require.NoError(t, err)

	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Empty(t, req.Header.Get("Authorization"), "the caller's request object stays clean")
	require.Empty(t, req.Header.Get("X-Request-Id"))
}
