package pages

import (
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/cvsuite/browser"
)

// VisibilityQueryable is anything that can report whether it is shown.
type VisibilityQueryable interface {
	Visible() bool
}

// NavigableSidebarLink is a sidebar entry that can be checked and followed.
type NavigableSidebarLink interface {
	VisibilityQueryable
	Click() error
}

// Element binds a locator to the suite timeouts.
//
// Predicates (Visible, Settled, Absent) never fail: they wait up to their
// bound and report the outcome. Actions (Click, Fill, ...) return errors when
// the target cannot be interacted with.
type Element struct {
	loc      playwright.Locator
	timeouts browser.Timeouts
}

// NewElement wraps loc.
func NewElement(loc playwright.Locator, timeouts browser.Timeouts) Element {
	return Element{loc: loc, timeouts: timeouts}
}

// Locator returns the underlying locator.
func (e Element) Locator() playwright.Locator {
	return e.loc
}

// Visible waits up to the short timeout for the element to be visible.
func (e Element) Visible() bool {
	return e.VisibleWithin(e.timeouts.Short)
}

// Settled waits up to the long timeout. Use it for content that appears
// after navigation or data loading.
func (e Element) Settled() bool {
	return e.VisibleWithin(e.timeouts.Long)
}

// VisibleWithin waits up to d for the element to be visible.
func (e Element) VisibleWithin(d time.Duration) bool {
	err := e.loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: browser.Ms(d),
	})
	return err == nil
}

// Absent reports whether the element is hidden or detached within the short timeout.
func (e Element) Absent() bool {
	err := e.loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: browser.Ms(e.timeouts.Short),
	})
	return err == nil
}

// Text returns the trimmed text content, or false if the element did not show up.
func (e Element) Text() (string, bool) {
	if !e.Visible() {
		return "", false
	}
	text, err := e.loc.TextContent()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(text), true
}

// WaitVisible waits with the long timeout and returns the wait error.
func (e Element) WaitVisible() error {
	return e.loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: browser.Ms(e.timeouts.Long),
	})
}

// Or matches the first element found by either e or other.
func (e Element) Or(other Element) Element {
	return NewElement(e.loc.Or(other.loc).First(), e.timeouts)
}

func (e Element) Click() error {
	return e.loc.Click()
}

func (e Element) Hover() error {
	return e.loc.Hover()
}

// Fill replaces the current value.
func (e Element) Fill(value string) error {
	if err := e.loc.Clear(); err != nil {
		return err
	}
	return e.loc.Fill(value)
}

func (e Element) Count() (int, error) {
	return e.loc.Count()
}
