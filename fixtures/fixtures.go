// Package fixtures loads the JSON test data of the acceptance suite.
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// File names inside a fixture directory.
const (
	DashboardFile      = "dashboardExpectedData.json"
	RestrictedURLsFile = "urlExpectedData.json"
	UsersFile          = "createTestUserData.json"
	UserSearchFile     = "userSearchTestData.json"
)

// Load decodes the JSON file at path into v.
func Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading fixture: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding fixture %s: %w", path, err)
	}
	return nil
}

// DashboardExpected is the expected dashboard text.
type DashboardExpected struct {
	HeaderText string `json:"HeaderText"`
}

// RestrictedURLs maps module keys to portal paths.
type RestrictedURLs map[string]string

// Path returns the path for key or fallback if the fixture has none.
func (u RestrictedURLs) Path(key, fallback string) string {
	if p, ok := u[key]; ok && p != "" {
		return p
	}
	return fallback
}

// UserData lists users created through the single user form.
type UserData struct {
	Users []User `json:"users"`
}

type User struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	EmployeeID      string `json:"employeeId"`
	Role            string `json:"role"`
	Manager         string `json:"manager"`
	SBU             string `json:"sbu"`
	Expertise       string `json:"expertise"`
	ResourceType    string `json:"resourceType"`
	DateOfBirth     string `json:"dateOfBirth"`
	JoiningDate     string `json:"dateOfJoining"`
	CareerStartDate string `json:"careerStartDate"`

	UpdatedValues struct {
		Name       string `json:"name"`
		EmployeeID string `json:"employeeId"`
		SBU        string `json:"sbu"`
	} `json:"updatedValues"`
}

// UserSearch holds search keywords and filters with their expected results.
type UserSearch struct {
	SearchKeyWord struct {
		Name         string `json:"name"`
		Email        string `json:"email"`
		EmployeeID   string `json:"employeeID"`
		Verification struct {
			Expertise    string `json:"Expertise"`
			ResourceType string `json:"ResourceType"`
			SBU          string `json:"SBU"`
		} `json:"verification"`
	} `json:"searchKeyWord"`
	FilterKeyWord struct {
		FilterByRoles  string `json:"filterByRoles"`
		AdvancedFilter struct {
			SBU               string `json:"sbu"`
			ManagerName       string `json:"managerName"`
			ManagerEmployeeID string `json:"managerEmployeeID"`
			ResourceType      string `json:"resourceType"`
			Expertise         string `json:"expertise"`
		} `json:"advancedFilter"`
	} `json:"filterKeyWord"`
}

// Dir is a directory of fixture files.
type Dir string

func (d Dir) path(name string) string {
	return filepath.Join(string(d), name)
}

// File returns the path of a file in the directory.
func (d Dir) File(name ...string) string {
	return filepath.Join(append([]string{string(d)}, name...)...)
}

func (d Dir) Dashboard() (DashboardExpected, error) {
	var v DashboardExpected
	return v, Load(d.path(DashboardFile), &v)
}

func (d Dir) RestrictedURLs() (RestrictedURLs, error) {
	var v RestrictedURLs
	return v, Load(d.path(RestrictedURLsFile), &v)
}

func (d Dir) Users() (UserData, error) {
	var v UserData
	return v, Load(d.path(UsersFile), &v)
}

func (d Dir) UserSearch() (UserSearch, error) {
	var v UserSearch
	return v, Load(d.path(UserSearchFile), &v)
}
