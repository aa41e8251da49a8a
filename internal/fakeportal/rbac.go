package fakeportal

import (
	"github.com/samber/lo"

	"github.com/networkteam/cvsuite/config"
	"github.com/networkteam/cvsuite/pages"
)

var (
	managerGroups = []string{"Database", "Resource Calendar"}
	adminDenied   = []string{pages.RoleManagementModule.Key, pages.ModuleManagementModule.Key}
	shadowSBUKeys = []string{
		pages.CVDashboardModule.Key,
		pages.CVSearchModule.Key,
		pages.ResourceDashboardModule.Key,
	}
)

// Allowed reports whether role may open the section.
func Allowed(role config.Role, spec pages.ModuleSpec) bool {
	switch role {
	case config.RoleSuperAdmin:
		return true
	case config.RoleAdmin:
		return !lo.Contains(adminDenied, spec.Key)
	case config.RoleManager:
		return lo.Contains(managerGroups, spec.Group)
	case config.RoleShadowSBU:
		return lo.Contains(shadowSBUKeys, spec.Key)
	default:
		return false
	}
}

// Sections returns the sections shown in the sidebar of role.
func Sections(role config.Role) []pages.ModuleSpec {
	return lo.Filter(pages.EmployeeRestrictedModules(), func(spec pages.ModuleSpec, _ int) bool {
		return Allowed(role, spec)
	})
}

// VisibleCategories are the CV dashboard categories of role. A shadow SBU
// only sees the categories of its own business unit.
func VisibleCategories(role config.Role) []string {
	if role == config.RoleShadowSBU {
		return []string{pages.CategoryBillable, pages.CategorySupport, pages.CategoryContractual}
	}
	return pages.Categories
}

var roleLabels = map[config.Role]string{
	config.RoleSuperAdmin: "Super Admin",
	config.RoleAdmin:      "Admin",
	config.RoleManager:    "Manager",
	config.RoleEmployee:   "Employee",
	config.RoleShadowSBU:  "Shadow SBU",
}

func roleLabel(role config.Role) string {
	if label, ok := roleLabels[role]; ok {
		return label
	}
	return role.String()
}
