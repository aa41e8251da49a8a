package pages

import (
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/cvsuite/browser"
)

// ModuleSpec describes a portal section guarded by RBAC.
type ModuleSpec struct {
	// Key names the section in the restricted URL fixture.
	Key string
	// Group is the sidebar group, e.g. "Database" or "Admin Configuration".
	Group string
	// Sidebar is the accessible name of the sidebar link.
	Sidebar string
	// DefaultPath is used when the fixture has no entry for Key.
	DefaultPath string
}

func (s ModuleSpec) String() string {
	return s.Group + " >> " + s.Sidebar
}

var (
	CVDashboardModule         = ModuleSpec{Key: "cvdashboard", Group: "Database", Sidebar: "CV Dashboard", DefaultPath: "/cv-dashboard"}
	CVSearchModule            = ModuleSpec{Key: "cvsearchpage", Group: "Database", Sidebar: "CV Search", DefaultPath: "/cv-search"}
	TrainingCertificateModule = ModuleSpec{Key: "traininngandcertificatepage", Group: "Database", Sidebar: "Training and Certification", DefaultPath: "/training-certification"}
	CVCompletionModule        = ModuleSpec{Key: "cvcompletionpage", Group: "Database", Sidebar: "CV Completion", DefaultPath: "/cv-completion"}
	CVTemplatesModule         = ModuleSpec{Key: "cvtemplates", Group: "Database", Sidebar: "CV Templates", DefaultPath: "/cv-templates"}
	CVSettingsModule          = ModuleSpec{Key: "cvsettings", Group: "Database", Sidebar: "CV Settings", DefaultPath: "/cv-settings"}
	ResourceDashboardModule   = ModuleSpec{Key: "resourcedashboard", Group: "Resource Calendar", Sidebar: "Resource Dashboard", DefaultPath: "/resource-dashboard"}
	PlanningModule            = ModuleSpec{Key: "planningpage", Group: "Resource Calendar", Sidebar: "Planning", DefaultPath: "/planning"}
	CalendarViewModule        = ModuleSpec{Key: "calendarviewpage", Group: "Resource Calendar", Sidebar: "Calendar View", DefaultPath: "/calendar-view"}
	ResourceSettingsModule    = ModuleSpec{Key: "resourcesettingspage", Group: "Resource Calendar", Sidebar: "Resource Settings", DefaultPath: "/resource-settings"}
	HRLeaderboardModule       = ModuleSpec{Key: "hrleaderboardpage", Group: "HR", Sidebar: "HR Leaderboard", DefaultPath: "/hr-leaderboard"}
	NonBilledDashboardModule  = ModuleSpec{Key: "nonbilledpage", Group: "Non Billed Management", Sidebar: "Non-Billed Dashboard", DefaultPath: "/non-billed"}
	NonBilledReportModule     = ModuleSpec{Key: "nonbilledreportpage", Group: "Non Billed Management", Sidebar: "Non-Billed Report", DefaultPath: "/non-billed/report"}
	NonBilledSettingsModule   = ModuleSpec{Key: "nonbilledsettingpage", Group: "Non Billed Management", Sidebar: "Non-Billed Settings", DefaultPath: "/non-billed/settings"}
	UserManagementModule      = ModuleSpec{Key: "usermanagementpage", Group: "Admin Configuration", Sidebar: "User Management", DefaultPath: "/admin/users"}
	ProjectModule             = ModuleSpec{Key: "projectpage", Group: "Admin Configuration", Sidebar: "Projects", DefaultPath: "/admin/projects"}
	SystemSettingsModule      = ModuleSpec{Key: "systemsettingpage", Group: "Admin Configuration", Sidebar: "System Settings", DefaultPath: "/admin/settings"}
	RoleManagementModule      = ModuleSpec{Key: "rolemanagementpage", Group: "Admin Configuration", Sidebar: "Role Management", DefaultPath: "/admin/roles"}
	ModuleManagementModule    = ModuleSpec{Key: "modulemanagementpage", Group: "Admin Configuration", Sidebar: "Module Management", DefaultPath: "/admin/modules"}
	AuditDashboardModule      = ModuleSpec{Key: "dashboardpage", Group: "Audit", Sidebar: "Audit Dashboard", DefaultPath: "/audit/dashboard"}
	EventFlagModule           = ModuleSpec{Key: "flageventpage", Group: "Audit", Sidebar: "Flagged Events", DefaultPath: "/audit/flagged-events"}
	ProfileImageModule        = ModuleSpec{Key: "profileimagepage", Group: "Audit", Sidebar: "Profile Image", DefaultPath: "/audit/profile-images"}
)

// EmployeeRestrictedModules are the sections an employee must not reach.
func EmployeeRestrictedModules() []ModuleSpec {
	return []ModuleSpec{
		CVDashboardModule,
		CVSearchModule,
		TrainingCertificateModule,
		CVCompletionModule,
		CVTemplatesModule,
		CVSettingsModule,
		ResourceDashboardModule,
		PlanningModule,
		CalendarViewModule,
		ResourceSettingsModule,
		HRLeaderboardModule,
		NonBilledDashboardModule,
		NonBilledReportModule,
		NonBilledSettingsModule,
		UserManagementModule,
		ProjectModule,
		SystemSettingsModule,
		RoleManagementModule,
		ModuleManagementModule,
		AuditDashboardModule,
		EventFlagModule,
		ProfileImageModule,
	}
}

// Module is the page object of any section in the catalog. Dedicated page
// objects (CVDashboard, UserManagement, ...) embed it.
type Module struct {
	Base
	Spec ModuleSpec

	Sidebar      Element
	Unauthorized Element
}

func NewModule(page playwright.Page, timeouts browser.Timeouts, spec ModuleSpec) *Module {
	b := newBase(page, timeouts)
	return &Module{
		Base:         b,
		Spec:         spec,
		Sidebar:      b.sidebarLink(spec.Sidebar),
		Unauthorized: b.UnauthorizedHeading(),
	}
}

// IsSidebarVisible reports whether the sidebar link is shown.
func (m *Module) IsSidebarVisible() bool {
	return m.Sidebar.Visible()
}

// IsSidebarAbsent reports whether the sidebar link is hidden or not rendered.
func (m *Module) IsSidebarAbsent() bool {
	return m.Sidebar.Absent()
}

// OpenSidebar follows the sidebar link and waits for the page to settle.
func (m *Module) OpenSidebar() error {
	if err := m.Sidebar.Click(); err != nil {
		return err
	}
	return m.WaitForIdle()
}

// GotoDirect navigates to baseURL+path without using the sidebar.
func (m *Module) GotoDirect(baseURL, path string) error {
	if path == "" {
		path = m.Spec.DefaultPath
	}
	return m.Goto(strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/"))
}

// IsUnauthorized reports whether the current page is the unauthorized page:
// the URL was redirected and the heading is rendered.
func (m *Module) IsUnauthorized() bool {
	if err := m.WaitForUnauthorized(); err != nil {
		return false
	}
	return m.Unauthorized.Visible()
}
