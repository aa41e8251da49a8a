package pages

import (
	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/cvsuite/browser"
)

// MyTeam shows the reporting line of the signed-in user.
type MyTeam struct {
	Base

	Sidebar       Element
	Manager       Element
	Peers         Element
	DirectReports Element
	GraphView     Element
}

func NewMyTeam(page playwright.Page, timeouts browser.Timeouts) *MyTeam {
	b := newBase(page, timeouts)
	return &MyTeam{
		Base:          b,
		Sidebar:       b.sidebarLink("My Team"),
		Manager:       b.byRoleExact(playwright.AriaRoleHeading, "Manager"),
		Peers:         b.byRole(playwright.AriaRoleHeading, "Peers"),
		DirectReports: b.byRole(playwright.AriaRoleHeading, "Direct Reports"),
		GraphView:     b.byRole(playwright.AriaRoleButton, "Graph View"),
	}
}

// Items are the team cards expected on every role.
func (p *MyTeam) Items() []Named {
	return []Named{
		{Name: "Manager label", Element: p.Manager},
		{Name: "Peers label", Element: p.Peers},
		{Name: "Direct Reports label", Element: p.DirectReports},
	}
}

// Security is the password change page.
type Security struct {
	Base

	Sidebar         Element
	CurrentPassword Element
	NewPassword     Element
	ConfirmPassword Element
	UpdatePassword  Element
}

func NewSecurity(page playwright.Page, timeouts browser.Timeouts) *Security {
	b := newBase(page, timeouts)
	return &Security{
		Base:            b,
		Sidebar:         b.sidebarLink("Security"),
		CurrentPassword: b.byRole(playwright.AriaRoleTextbox, "Current Password"),
		NewPassword:     b.css("#new-password"),
		ConfirmPassword: b.css("#confirm-password"),
		UpdatePassword:  b.byRole(playwright.AriaRoleButton, "Update Password"),
	}
}

func (p *Security) Items() []Named {
	return []Named{
		{Name: "Current Password input", Element: p.CurrentPassword},
		{Name: "New Password input", Element: p.NewPassword},
		{Name: "Confirm Password input", Element: p.ConfirmPassword},
		{Name: "Update Password button", Element: p.UpdatePassword},
	}
}

// PlatformFeedback lets users report bugs and request features.
type PlatformFeedback struct {
	Base

	Sidebar        Element
	ReportBug      Element
	RequestFeature Element
	ViewAll        Element
}

func NewPlatformFeedback(page playwright.Page, timeouts browser.Timeouts) *PlatformFeedback {
	b := newBase(page, timeouts)
	return &PlatformFeedback{
		Base:           b,
		Sidebar:        b.sidebarLink("Platform Feedback"),
		ReportBug:      b.byRole(playwright.AriaRoleButton, "Report a Bug"),
		RequestFeature: b.byRole(playwright.AriaRoleButton, "Request Feature"),
		ViewAll:        b.byRole(playwright.AriaRoleButton, "View existing feedback"),
	}
}

func (p *PlatformFeedback) Items() []Named {
	return []Named{
		{Name: "Report a Bug button", Element: p.ReportBug},
		{Name: "Request Feature button", Element: p.RequestFeature},
		{Name: "View existing feedback button", Element: p.ViewAll},
	}
}

// SignOut is the account menu entry that ends the session.
type SignOut struct {
	Base

	Menu   Element
	Button Element
}

func NewSignOut(page playwright.Page, timeouts browser.Timeouts) *SignOut {
	b := newBase(page, timeouts)
	return &SignOut{
		Base:   b,
		Menu:   profileName(b),
		Button: b.byRole(playwright.AriaRoleMenuitem, "Sign out").Or(b.byRole(playwright.AriaRoleButton, "Sign out")),
	}
}

// Run opens the account menu and signs out, waiting for the login page.
func (p *SignOut) Run() error {
	if err := p.Menu.Click(); err != nil {
		return err
	}
	if err := p.Button.Click(); err != nil {
		return err
	}
	return p.Page.WaitForURL("**"+LoginPath+"**", playwright.PageWaitForURLOptions{
		Timeout: browser.Ms(p.Timeouts.Navigation),
	})
}
