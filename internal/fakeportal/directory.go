package fakeportal

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/samber/lo"
)

// User is an entry in user management.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	EmployeeID   string
	Role         string
	SBU          string
	Expertise    string
	ResourceType string
}

type directory struct {
	mu    sync.RWMutex
	users []User
}

func newDirectory(accounts []Account, extra []User) *directory {
	users := lo.Map(accounts, func(a Account, i int) User {
		return User{
			Name:       a.Name,
			Email:      a.Email,
			EmployeeID: fmt.Sprintf("EMP-%03d", i+1),
			Role:       roleLabel(a.Role),
			SBU:        a.SBU,
		}
	})
	users = append(users, extra...)
	for i := range users {
		if users[i].ID == uuid.Nil {
			users[i].ID = uuid.Must(uuid.NewV4())
		}
	}
	return &directory{users: users}
}

func (d *directory) all() []User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]User(nil), d.users...)
}

// search matches name, email or employee id case-insensitively. An empty
// query returns everyone.
func (d *directory) search(query string) []User {
	query = strings.ToLower(strings.TrimSpace(query))
	return lo.Filter(d.all(), func(u User, _ int) bool {
		if query == "" {
			return true
		}
		return lo.SomeBy([]string{u.Name, u.Email, u.EmployeeID}, func(field string) bool {
			return strings.Contains(strings.ToLower(field), query)
		})
	})
}
