package pages

import (
	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/cvsuite/browser"
)

// Dashboard is the landing page after login.
type Dashboard struct {
	Base

	ProfileName Element
	Header      Element
	Area        Element
}

func NewDashboard(page playwright.Page, timeouts browser.Timeouts) *Dashboard {
	b := newBase(page, timeouts)
	return &Dashboard{
		Base:        b,
		ProfileName: profileName(b),
		Header:      b.byRoleExact(playwright.AriaRoleHeading, "Dashboard"),
		Area:        b.el(page.GetByRole(*playwright.AriaRoleMain)),
	}
}

// IsProfileNameVisible reports whether name is shown anywhere on the page.
func (p *Dashboard) IsProfileNameVisible(name string) bool {
	return p.el(p.Page.GetByText(name).First()).Visible()
}
