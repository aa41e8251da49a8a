//go:build acceptance
// +build acceptance

package acceptance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/cvsuite/config"
	"github.com/networkteam/cvsuite/pages"
)

func TestShadowSBU_Dashboard(t *testing.T) {
	WithRole(t, config.RoleShadowSBU, func(t *testing.T, f *Fixtures) {
		expected, err := testData.Dashboard()
		require.NoError(t, err)

		dashboard := f.Dashboard()
		require.NoError(t, dashboard.WaitForIdle())

		if name := f.Credentials().Name; name != "" {
			profileName, _ := dashboard.ProfileName.Text()
			assert.Contains(t, profileName, name)
		}
		header, _ := dashboard.Header.Text()
		assert.Equal(t, expected.HeaderText, header)
		assert.True(t, dashboard.Area.Visible(), "dashboard area should be visible")
	})
}

func TestShadowSBU_MyProfile(t *testing.T) {
	WithRole(t, config.RoleShadowSBU, func(t *testing.T, f *Fixtures) {
		profile := f.MyProfile()
		openSidebar(t, profile.Sidebar, "My Profile")

		assertVisible(t, profile.ToolbarItems())
		if assert.True(t, profile.AuditLog.Visible(), "audit log button should be visible") {
			require.NoError(t, profile.AuditLog.Click())
			assert.True(t, profile.AuditLogModal.Visible(), "audit log modal should open")
			require.NoError(t, profile.Close.Click())
		}

		for _, section := range profile.Sections() {
			assertSection(t, section)
		}
	})
}

func TestShadowSBU_MyTeam(t *testing.T) {
	WithRole(t, config.RoleShadowSBU, func(t *testing.T, f *Fixtures) {
		team := f.MyTeam()
		openSidebar(t, team.Sidebar, "My Team")
		assertVisible(t, team.Items())
	})
}

func TestShadowSBU_Security(t *testing.T) {
	WithRole(t, config.RoleShadowSBU, func(t *testing.T, f *Fixtures) {
		security := f.Security()
		openSidebar(t, security.Sidebar, "Security")
		assertVisible(t, security.Items())
	})
}

func TestShadowSBU_PlatformFeedback(t *testing.T) {
	WithRole(t, config.RoleShadowSBU, func(t *testing.T, f *Fixtures) {
		feedback := f.PlatformFeedback()
		openSidebar(t, feedback.Sidebar, "Platform Feedback")
		assertVisible(t, feedback.Items())
	})
}

func TestShadowSBU_CVDashboard(t *testing.T) {
	WithRole(t, config.RoleShadowSBU, func(t *testing.T, f *Fixtures) {
		dashboard := f.CVDashboard()
		require.True(t, dashboard.IsSidebarVisible(), "CV Dashboard sidebar link should be visible")
		require.NoError(t, dashboard.OpenSidebar())

		assertVisible(t, dashboard.Stats())
		assertVisible(t, dashboard.CategoryFields(pages.CategoryBillable, pages.CategorySupport, pages.CategoryContractual))
		for _, field := range dashboard.CategoryFields(pages.CategoryGASM, pages.CategoryExit) {
			assert.True(t, field.Absent(), "%s should not be shown to a shadow SBU", field.Name)
		}
	})
}

func TestShadowSBU_ResourceDashboard(t *testing.T) {
	WithRole(t, config.RoleShadowSBU, func(t *testing.T, f *Fixtures) {
		dashboard := f.ResourceDashboard()
		require.True(t, dashboard.IsSidebarVisible(), "Resource Dashboard sidebar link should be visible")
		require.NoError(t, dashboard.OpenSidebar())

		for _, section := range dashboard.Sections() {
			assertSection(t, section)
		}
	})
}
