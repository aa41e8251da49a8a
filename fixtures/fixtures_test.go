package fixtures_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/cvsuite/fixtures"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDir(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, fixtures.DashboardFile, `{"HeaderText": "Dashboard"}`)
	writeFixture(t, dir, fixtures.RestrictedURLsFile, `{"cvtemplates": "/cv-templates", "cvsearchpage": ""}`)
	writeFixture(t, dir, fixtures.UsersFile, `{"users": [{
		"name": "Test Automation User",
		"email": "test.automation.user1@example.com",
		"employeeId": "TA-1",
		"role": "Employee",
		"updatedValues": {"name": "Updated User", "employeeId": "TA-9", "sbu": "SBU 2"}
	}]}`)
	writeFixture(t, dir, fixtures.UserSearchFile, `{
		"searchKeyWord": {"name": "Jane", "email": "jane@example.com", "employeeID": "E-7",
			"verification": {"Expertise": "Go", "ResourceType": "Billable", "SBU": "SBU 1"}},
		"filterKeyWord": {"filterByRoles": "Manager", "advancedFilter": {"sbu": "SBU 1", "expertise": "Go"}}
	}`)

	d := fixtures.Dir(dir)

	dashboard, err := d.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, "Dashboard", dashboard.HeaderText)

	urls, err := d.RestrictedURLs()
	require.NoError(t, err)
	assert.Equal(t, "/cv-templates", urls.Path("cvtemplates", "/fallback"))
	assert.Equal(t, "/fallback", urls.Path("cvsearchpage", "/fallback"), "empty entries fall back")
	assert.Equal(t, "/fallback", urls.Path("missing", "/fallback"))

	users, err := d.Users()
	require.NoError(t, err)
	require.Len(t, users.Users, 1)
	assert.Equal(t, "TA-1", users.Users[0].EmployeeID)
	assert.Equal(t, "Updated User", users.Users[0].UpdatedValues.Name)

	search, err := d.UserSearch()
	require.NoError(t, err)
	assert.Equal(t, "E-7", search.SearchKeyWord.EmployeeID)
	assert.Equal(t, "Billable", search.SearchKeyWord.Verification.ResourceType)
	assert.Equal(t, "Manager", search.FilterKeyWord.FilterByRoles)
	assert.Equal(t, "Go", search.FilterKeyWord.AdvancedFilter.Expertise)

	assert.Equal(t, filepath.Join(dir, "bulk", "user_create.csv"), d.File("bulk", "user_create.csv"))
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "broken.json", `{"HeaderText":`)

	var v fixtures.DashboardExpected
	assert.Error(t, fixtures.Load(filepath.Join(dir, "broken.json"), &v))
	assert.Error(t, fixtures.Load(filepath.Join(dir, "missing.json"), &v))
}
