package pages

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/cvsuite/browser"
)

// UnauthorizedPath is the fragment the portal redirects to on denied access.
var UnauthorizedPath = regexp.MustCompile(`unauthorized`)

// Base is embedded by every page object. It holds the page handle and
// builds Elements with the suite timeouts.
type Base struct {
	Page     playwright.Page
	Timeouts browser.Timeouts
}

func newBase(page playwright.Page, timeouts browser.Timeouts) Base {
	return Base{Page: page, Timeouts: timeouts}
}

func (b Base) el(loc playwright.Locator) Element {
	return NewElement(loc, b.Timeouts)
}

// first avoids strict mode failures when a label is rendered more than once.
func (b Base) first(loc playwright.Locator) Element {
	return b.el(loc.First())
}

func (b Base) css(selector string) Element {
	return b.el(b.Page.Locator(selector))
}

func (b Base) byRole(role *playwright.AriaRole, name any) Element {
	return b.first(b.Page.GetByRole(*role, playwright.PageGetByRoleOptions{Name: name}))
}

func (b Base) byRoleExact(role *playwright.AriaRole, name string) Element {
	return b.first(b.Page.GetByRole(*role, playwright.PageGetByRoleOptions{
		Name:  name,
		Exact: playwright.Bool(true),
	}))
}

func (b Base) byText(text any) Element {
	return b.first(b.Page.GetByText(text))
}

func (b Base) byTextExact(text string) Element {
	return b.first(b.Page.GetByText(text, playwright.PageGetByTextOptions{Exact: playwright.Bool(true)}))
}

func (b Base) sidebarLink(name string) Element {
	return b.first(b.Page.GetByRole(*playwright.AriaRoleNavigation).
		GetByRole(*playwright.AriaRoleLink, playwright.LocatorGetByRoleOptions{Name: name}))
}

// Goto navigates to url and waits for the DOM to load.
func (b Base) Goto(url string) error {
	_, err := b.Page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   browser.Ms(b.Timeouts.Navigation),
	})
	if err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// WaitForIdle waits for network quiescence.
func (b Base) WaitForIdle() error {
	return b.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: browser.Ms(b.Timeouts.Navigation),
	})
}

// Reload reloads the page and waits for network quiescence.
func (b Base) Reload() error {
	if _, err := b.Page.Reload(); err != nil {
		return err
	}
	return b.WaitForIdle()
}

// URL returns the current page URL.
func (b Base) URL() string {
	return b.Page.URL()
}

// WaitForUnauthorized waits until the URL contains the unauthorized path.
func (b Base) WaitForUnauthorized() error {
	return b.Page.WaitForURL(UnauthorizedPath, playwright.PageWaitForURLOptions{
		Timeout: browser.Ms(b.Timeouts.Long),
	})
}

// UnauthorizedHeading is the heading rendered on denied access.
func (b Base) UnauthorizedHeading() Element {
	return b.byRole(playwright.AriaRoleHeading, "Unauthorized")
}

// Title returns the document title.
func (b Base) Title() (string, error) {
	return b.Page.Title()
}

// xpathLiteral quotes s for use inside an XPath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}
