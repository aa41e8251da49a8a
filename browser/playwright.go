package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Fixture manages the Playwright driver and one shared Chromium instance.
// Tests get isolated cookies and storage through NewContext.
type Fixture struct {
	PW       *playwright.Playwright
	Browser  playwright.Browser
	BaseURL  string
	Timeouts Timeouts
}

// Options configures Launch.
type Options struct {
	// Headless runs without a visible window.
	Headless bool
	// SlowMo slows every operation down, useful with a visible browser.
	SlowMo time.Duration
	// BaseURL is applied to every context so relative navigation works.
	BaseURL string
	// Timeouts become the context defaults.
	// Default: DefaultTimeouts()
	Timeouts *Timeouts
}

// Install downloads the Chromium build used by the suite.
func Install() error {
	return playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
}

// Launch starts Playwright and a Chromium browser.
func Launch(opts Options) (*Fixture, error) {
	timeouts := DefaultTimeouts()
	if opts.Timeouts != nil {
		timeouts = *opts.Timeouts
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.SlowMo > 0 {
		launchOpts.SlowMo = Ms(opts.SlowMo)
	}
	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	return &Fixture{
		PW:       pw,
		Browser:  browser,
		BaseURL:  opts.BaseURL,
		Timeouts: timeouts,
	}, nil
}

// NewContext creates a browser context with isolated cookies and storage.
// When storageStatePath is set, the context starts from that snapshot and is
// already authenticated.
func (f *Fixture) NewContext(storageStatePath string) (playwright.BrowserContext, error) {
	opts := playwright.BrowserNewContextOptions{
		AcceptDownloads: playwright.Bool(true),
	}
	if f.BaseURL != "" {
		opts.BaseURL = playwright.String(f.BaseURL)
	}
	if storageStatePath != "" {
		opts.StorageStatePath = playwright.String(storageStatePath)
	}

	ctx, err := f.Browser.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	ctx.SetDefaultTimeout(*Ms(f.Timeouts.Long))
	ctx.SetDefaultNavigationTimeout(*Ms(f.Timeouts.Navigation))
	return ctx, nil
}

// Close releases the browser and stops the driver.
func (f *Fixture) Close() error {
	return errors.Join(f.Browser.Close(), f.PW.Stop())
}
