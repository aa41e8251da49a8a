package cvsuite

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/cvsuite/browser"
	"github.com/networkteam/cvsuite/config"
	"github.com/networkteam/cvsuite/session"
)

// Instance ties configuration, the session cache and the browser together.
// It is shared by all tests of a run.
type Instance struct {
	Config   *config.Config
	Store    *session.Store
	Timeouts browser.Timeouts

	logger  *slog.Logger
	launch  func(browser.Options) (*browser.Fixture, error)
	slowMo  time.Duration
	mu      sync.Mutex
	fixture *browser.Fixture
}

type Options struct {
	// Config is the resolved configuration.
	// Default: nil, will use config.Load with LoadOptions
	Config *config.Config
	// LoadOptions are used when Config is nil.
	LoadOptions config.LoadOptions
	// Logger receives session cache and login logs.
	// Default: slog.Default()
	Logger *slog.Logger
	// SlowMo slows down browser operations.
	// Default: 0
	SlowMo time.Duration
}

// New creates an instance from the environment.
func New() (*Instance, error) {
	return NewWithOptions(Options{})
}

// NewWithOptions creates an instance. The browser is launched on first use,
// so an instance that only serves cached sessions never starts Chromium.
func NewWithOptions(options Options) (*Instance, error) {
	cfg := options.Config
	if cfg == nil {
		var err error
		cfg, err = config.Load(options.LoadOptions)
		if err != nil {
			return nil, err
		}
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Instance{
		Config:   cfg,
		Store:    session.NewStore(session.StoreOptions{Dir: cfg.AuthDir, Logger: logger}),
		Timeouts: browser.DefaultTimeouts().Scaled(cfg.TimeoutScale),
		logger:   logger,
		launch:   browser.Launch,
		slowMo:   options.SlowMo,
	}, nil
}

// Browser returns the shared browser fixture, launching it if needed.
func (i *Instance) Browser() (*browser.Fixture, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.fixture != nil {
		return i.fixture, nil
	}
	timeouts := i.Timeouts
	opts := browser.Options{
		Headless: i.Config.Headless,
		BaseURL:  i.Config.BaseURL,
		Timeouts: &timeouts,
		SlowMo:   i.slowMo,
	}
	fixture, err := i.launch(opts)
	if err != nil {
		return nil, err
	}
	i.logger.Debug("Browser launched", slog.Bool("headless", opts.Headless))
	i.fixture = fixture
	return fixture, nil
}

// NewContext implements session.ContextFactory on the shared browser.
func (i *Instance) NewContext(storageStatePath string) (playwright.BrowserContext, error) {
	fixture, err := i.Browser()
	if err != nil {
		return nil, err
	}
	return fixture.NewContext(storageStatePath)
}

// SessionKey returns the cache key of role in the configured environment.
func (i *Instance) SessionKey(role config.Role) session.Key {
	return session.Key{Role: role.String(), Environment: i.Config.EnvironmentKey()}
}

// EnsureSession makes sure a cached login exists for role.
func (i *Instance) EnsureSession(ctx context.Context, role config.Role) (session.Result, error) {
	if err := i.Config.Require(role); err != nil {
		return session.Result{}, err
	}
	creds := i.Config.Credentials(role)
	login := session.BrowserLogin(session.LoginOptions{
		Contexts:    i,
		BaseURL:     i.Config.BaseURL,
		Email:       creds.Email,
		Password:    creds.Password,
		DisplayName: creds.Name,
		Timeouts:    &i.Timeouts,
		Logger:      i.logger,
	})
	return i.Store.Ensure(ctx, i.SessionKey(role), login)
}

// ContextFor returns a browser context that is already signed in as role.
func (i *Instance) ContextFor(ctx context.Context, role config.Role) (playwright.BrowserContext, error) {
	res, err := i.EnsureSession(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("ensuring session for %s: %w", role, err)
	}
	return i.NewContext(res.Path)
}

// Close stops the browser if it was launched.
func (i *Instance) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.fixture == nil {
		return nil
	}
	err := i.fixture.Close()
	i.fixture = nil
	return err
}
