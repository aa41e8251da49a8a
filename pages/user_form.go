package pages

import (
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/cvsuite/browser"
)

// UserForm is the create/edit user form of user management.
type UserForm struct {
	Base

	Name         Element
	Email        Element
	Password     Element
	EmployeeID   Element
	DateOfBirth  Element
	JoiningDate  Element
	CareerStart  Element
	Role         Element
	Manager      Element
	SBU          Element
	Expertise    Element
	ResourceType Element
	Submit       Element
}

// NewUser is the data entered in the user form. Empty fields are left untouched.
type NewUser struct {
	Name         string
	Email        string
	Password     string
	EmployeeID   string
	Role         string
	Manager      string
	SBU          string
	Expertise    string
	ResourceType string
	// Day of month picked in the date pickers.
	DateOfBirth string
	JoiningDate string
	CareerStart string
}

func NewUserForm(page playwright.Page, timeouts browser.Timeouts) *UserForm {
	b := newBase(page, timeouts)
	return &UserForm{
		Base:         b,
		Name:         b.css("#firstName"),
		Email:        b.css("#email"),
		Password:     b.css("#password"),
		EmployeeID:   b.css("#employeeId"),
		DateOfBirth:  b.byRole(playwright.AriaRoleButton, "Select date of birth"),
		JoiningDate:  b.byRole(playwright.AriaRoleButton, "Select joining date"),
		CareerStart:  b.byRole(playwright.AriaRoleButton, "Select career start date"),
		Role:         b.byRole(playwright.AriaRoleCombobox, "Role"),
		Manager:      b.byRole(playwright.AriaRoleCombobox, "Manager"),
		SBU:          b.byRole(playwright.AriaRoleCombobox, "SBU"),
		Expertise:    b.byRole(playwright.AriaRoleCombobox, "Expertise"),
		ResourceType: b.byRole(playwright.AriaRoleCombobox, "Resource Type"),
		Submit:       b.el(page.Locator("form button[type='submit']")),
	}
}

// FillIn enters u into the form without submitting.
func (f *UserForm) FillIn(u NewUser) error {
	fields := []struct {
		name  string
		value string
		fill  func(string) error
	}{
		{"name", u.Name, f.Name.Fill},
		{"date of birth", u.DateOfBirth, func(day string) error { return pickDay(f.Base, f.DateOfBirth, day) }},
		{"email", u.Email, f.Email.Fill},
		{"password", u.Password, f.Password.Fill},
		{"employee id", u.EmployeeID, f.EmployeeID.Fill},
		{"role", u.Role, func(v string) error { return selectOption(f.Base, f.Role, "Search role", v) }},
		{"manager", u.Manager, func(v string) error { return selectOption(f.Base, f.Manager, "Search manager", v) }},
		{"sbu", u.SBU, func(v string) error { return selectOption(f.Base, f.SBU, "Search SBU", v) }},
		{"expertise", u.Expertise, func(v string) error { return selectOption(f.Base, f.Expertise, "Search expertise", v) }},
		{"resource type", u.ResourceType, func(v string) error { return selectOption(f.Base, f.ResourceType, "Search resource type", v) }},
		{"joining date", u.JoiningDate, func(day string) error { return pickDay(f.Base, f.JoiningDate, day) }},
		{"career start date", u.CareerStart, func(day string) error { return pickDay(f.Base, f.CareerStart, day) }},
	}
	for _, field := range fields {
		if field.value == "" {
			continue
		}
		if err := field.fill(field.value); err != nil {
			return fmt.Errorf("entering %s: %w", field.name, err)
		}
	}
	return nil
}

// Save submits the form.
func (f *UserForm) Save() error {
	return f.Submit.Click()
}

// selectOption opens a searchable dropdown, filters it by value and picks
// the last matching option.
func selectOption(b Base, trigger Element, searchPlaceholder, value string) error {
	if err := trigger.Click(); err != nil {
		return err
	}
	if err := b.el(b.Page.GetByPlaceholder(searchPlaceholder)).Fill(value); err != nil {
		return err
	}
	option := b.el(b.Page.GetByRole(*playwright.AriaRoleOption, playwright.PageGetByRoleOptions{Name: value}).Last())
	if err := option.WaitVisible(); err != nil {
		return fmt.Errorf("no option %q: %w", value, err)
	}
	return option.Click()
}

// pickDay opens a date picker and selects the day of the shown month.
func pickDay(b Base, trigger Element, day string) error {
	if err := trigger.Click(); err != nil {
		return err
	}
	cell := b.el(b.Page.GetByRole(*playwright.AriaRoleGridcell, playwright.PageGetByRoleOptions{
		Name:  day,
		Exact: playwright.Bool(true),
	}).First())
	return cell.Click()
}
