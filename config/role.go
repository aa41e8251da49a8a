package config

import (
	"fmt"
	"strings"
)

// Role is an RBAC role of the portal. The value is used in cache file names.
type Role string

const (
	RoleSuperAdmin Role = "super-admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleEmployee   Role = "employee"
	RoleShadowSBU  Role = "shadow-sbu"
)

// Roles lists every known role in a stable order.
var Roles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleManager,
	RoleEmployee,
	RoleShadowSBU,
}

// EnvPrefix returns the variable prefix holding the role's credentials,
// e.g. TEST_SHADOW_SBU for RoleShadowSBU.
func (r Role) EnvPrefix() string {
	return "TEST_" + strings.ToUpper(strings.ReplaceAll(string(r), "-", "_"))
}

func (r Role) String() string {
	return string(r)
}

// ParseRole accepts the role value in any case, with '-' or '_' separators.
func ParseRole(s string) (Role, error) {
	normalized := Role(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	for _, role := range Roles {
		if role == normalized {
			return role, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}
