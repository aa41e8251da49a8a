package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/cvsuite/browser"
	"github.com/networkteam/cvsuite/pages"
)

// ContextFactory creates browser contexts. *browser.Fixture implements it.
type ContextFactory interface {
	NewContext(storageStatePath string) (playwright.BrowserContext, error)
}

// LoginOptions configures BrowserLogin.
type LoginOptions struct {
	Contexts ContextFactory
	BaseURL  string
	Email    string
	Password string
	// DisplayName is awaited after login if set. Not finding it is not an error.
	DisplayName string
	// Default: browser.DefaultTimeouts()
	Timeouts *browser.Timeouts
	// Default: slog.Default()
	Logger *slog.Logger
}

// BrowserLogin returns a LoginFunc that signs in through the login page in a
// fresh context and captures the resulting storage state.
func BrowserLogin(opts LoginOptions) LoginFunc {
	timeouts := browser.DefaultTimeouts()
	if opts.Timeouts != nil {
		timeouts = *opts.Timeouts
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context) ([]byte, error) {
		if opts.Contexts == nil {
			return nil, fmt.Errorf("no browser to log in with")
		}
		bctx, err := opts.Contexts.NewContext("")
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = bctx.Close()
		}()

		page, err := bctx.NewPage()
		if err != nil {
			return nil, fmt.Errorf("opening page: %w", err)
		}

		login := pages.NewLogin(page, timeouts)
		if err := login.Open(opts.BaseURL); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := login.SignInAs(opts.Email, opts.Password); err != nil {
			return nil, err
		}
		if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State: playwright.LoadStateDomcontentloaded,
		}); err != nil {
			return nil, fmt.Errorf("waiting for dom: %w", err)
		}
		if err := login.WaitForIdle(); err != nil {
			return nil, fmt.Errorf("waiting for network idle: %w", err)
		}

		if opts.DisplayName != "" {
			name := pages.NewElement(page.GetByText(opts.DisplayName).First(), timeouts)
			if !name.Visible() {
				logger.Debug("Display name not shown after login", slog.String("name", opts.DisplayName))
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		state, err := bctx.StorageState()
		if err != nil {
			return nil, fmt.Errorf("reading storage state: %w", err)
		}
		data, err := json.Marshal(state)
		if err != nil {
			return nil, fmt.Errorf("encoding storage state: %w", err)
		}
		return data, nil
	}
}
