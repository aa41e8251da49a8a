//go:build acceptance
// +build acceptance

package acceptance

import (
	"context"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/cvsuite"
	"github.com/networkteam/cvsuite/browser"
	"github.com/networkteam/cvsuite/config"
	"github.com/networkteam/cvsuite/coverage"
	"github.com/networkteam/cvsuite/fixtures"
	"github.com/networkteam/cvsuite/pages"
)

// testData holds the JSON and tabular fixtures.
const testData = fixtures.Dir("testdata")

// Fixtures bundles what a test needs to act as one role.
type Fixtures struct {
	Instance *cvsuite.Instance
	Role     config.Role
	Ctx      playwright.BrowserContext
	Page     playwright.Page
	Timeouts browser.Timeouts
}

func (f *Fixtures) BaseURL() string {
	return f.Instance.Config.BaseURL
}

func (f *Fixtures) Credentials() config.Credentials {
	return f.Instance.Config.Credentials(f.Role)
}

func (f *Fixtures) Login() *pages.Login {
	return pages.NewLogin(f.Page, f.Timeouts)
}

func (f *Fixtures) Dashboard() *pages.Dashboard {
	return pages.NewDashboard(f.Page, f.Timeouts)
}

func (f *Fixtures) MyProfile() *pages.MyProfile {
	return pages.NewMyProfile(f.Page, f.Timeouts)
}

func (f *Fixtures) MyTeam() *pages.MyTeam {
	return pages.NewMyTeam(f.Page, f.Timeouts)
}

func (f *Fixtures) Security() *pages.Security {
	return pages.NewSecurity(f.Page, f.Timeouts)
}

func (f *Fixtures) PlatformFeedback() *pages.PlatformFeedback {
	return pages.NewPlatformFeedback(f.Page, f.Timeouts)
}

func (f *Fixtures) SignOut() *pages.SignOut {
	return pages.NewSignOut(f.Page, f.Timeouts)
}

func (f *Fixtures) CVDashboard() *pages.CVDashboard {
	return pages.NewCVDashboard(f.Page, f.Timeouts)
}

func (f *Fixtures) ResourceDashboard() *pages.ResourceDashboard {
	return pages.NewResourceDashboard(f.Page, f.Timeouts)
}

func (f *Fixtures) UserManagement() *pages.UserManagement {
	return pages.NewUserManagement(f.Page, f.Timeouts)
}

func (f *Fixtures) UserForm() *pages.UserForm {
	return pages.NewUserForm(f.Page, f.Timeouts)
}

func (f *Fixtures) Module(spec pages.ModuleSpec) *pages.Module {
	return pages.NewModule(f.Page, f.Timeouts, spec)
}

// WithRole runs fn with a page signed in as role on the shared suite. Tests
// are skipped when no BASE_URL is configured.
func WithRole(t *testing.T, role config.Role, fn func(t *testing.T, f *Fixtures)) {
	t.Helper()
	if suite.Config.BaseURL == "" {
		t.Skip("BASE_URL is not set")
	}
	withRole(t, suite, role, fn)
}

// withRole makes sure role has a cached session, opens a context from it and
// a page at the base URL. Coverage is recorded when enabled.
func withRole(t *testing.T, inst *cvsuite.Instance, role config.Role, fn func(t *testing.T, f *Fixtures)) {
	t.Helper()

	bctx, err := inst.ContextFor(context.Background(), role)
	require.NoError(t, err, "failed to prepare session for %s", role)
	t.Cleanup(func() { bctx.Close() })

	page, err := bctx.NewPage()
	require.NoError(t, err, "failed to open page")

	if inst.Config.EnableCoverage {
		rec, err := coverage.Start(bctx, page, coverage.DefaultDir)
		require.NoError(t, err, "failed to start coverage")
		t.Cleanup(func() {
			_, err := rec.Stop("chromium", t.Name())
			assert.NoError(t, err, "failed to write coverage")
		})
	}

	f := &Fixtures{
		Instance: inst,
		Role:     role,
		Ctx:      bctx,
		Page:     page,
		Timeouts: inst.Timeouts,
	}
	require.NoError(t, f.Dashboard().Goto(inst.Config.BaseURL))

	fn(t, f)
}

// assertVisible softly checks that every item shows up within the long timeout.
func assertVisible(t *testing.T, items []pages.Named) {
	t.Helper()
	for _, item := range items {
		assert.True(t, item.Settled(), "%s should be visible", item.Name)
	}
}

// assertSection opens s and softly checks its items.
func assertSection(t *testing.T, s pages.Section) {
	t.Helper()
	if !assert.True(t, s.Tab.Visible(), "%s tab should be visible", s.Name) {
		return
	}
	require.NoError(t, s.Open())
	assert.Empty(t, s.Missing(), "%s items should be visible", s.Name)
}

// openSidebar follows a sidebar link after checking it is shown.
func openSidebar(t *testing.T, link pages.NavigableSidebarLink, name string) {
	t.Helper()
	require.True(t, link.Visible(), "%s sidebar link should be visible", name)
	require.NoError(t, link.Click())
}
