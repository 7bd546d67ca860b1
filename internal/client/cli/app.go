package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/config"
	"github.com/dmitrijs2005/shopkeeper/internal/client/services"
	"github.com/dmitrijs2005/shopkeeper/internal/client/session"
	"github.com/dmitrijs2005/shopkeeper/internal/cryptox"
	"github.com/dmitrijs2005/shopkeeper/internal/filex"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"

	_ "modernc.org/sqlite"
)

// App holds the wired services and the interactive state of the CLI.
type App struct {
	config      *config.Config
	authService services.AuthService
	shopService services.ShopService
	userEmail   string
	reader      *bufio.Reader
	log         logging.Logger
}

// NewApp builds the full client stack: local data directory, sealed SQLite
// session store, API client with the refresh pipeline, and the services the
// REPL commands call.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	dataDir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dataDir, "session.db"))
	if err != nil {
		return nil, err
	}

	key, err := cryptox.LoadOrCreateKey(filepath.Join(dataDir, "session.key"))
	if err != nil {
		return nil, err
	}
	box, err := cryptox.NewBox(key)
	if err != nil {
		return nil, err
	}
	store := session.NewSQLiteStore(db, box)

	log := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	a := &App{config: c, reader: bufio.NewReader(os.Stdin), log: log}

	apiClient, err := client.New(client.Options{
		BaseURL:        c.BaseURL,
		Store:          store,
		Redirect:       a.sessionExpired,
		RequestTimeout: c.RequestTimeout,
		RefreshTimeout: c.RefreshTimeout,
		Logger:         log,
	})
	if err != nil {
		return nil, err
	}

	a.authService = services.NewAuthService(apiClient, store, log)
	a.shopService = services.NewShopService(apiClient)

	return a, nil
}

// sessionExpired is the terminal-episode callback: the server conclusively
// rejected the refresh token, so the user is sent back to the login prompt.
func (a *App) sessionExpired() {
	a.userEmail = ""
	printlnFn("Your session has expired, please log in again.")
}

func (a *App) isLoggedIn() bool {
	return a.userEmail != ""
}

// restoreSession picks up a session persisted by a previous run.
func (a *App) restoreSession(ctx context.Context) {
	st, err := a.authService.Status(ctx)
	if err != nil {
		a.log.Warn(ctx, "failed to read stored session", "err", err)
		return
	}
	if st.Authenticated && st.User != nil {
		a.userEmail = st.User.Email
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.authService.Close(ctx)
	a.Root(ctx)
}
