package pages

import (
	"fmt"
	"regexp"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/cvsuite/browser"
)

var (
	validCountPattern   = regexp.MustCompile(`(?i)\d+\s+valid`)
	errorCountPattern   = regexp.MustCompile(`(?i)\d+\s+errors?`)
	bulkSubmitPattern   = regexp.MustCompile(`^(Create|Update) \d+ Users?$`)
	deleteWarnPattern   = regexp.MustCompile(`users? will be permanently deleted`)
	deleteListPattern   = regexp.MustCompile(`Users to be deleted \(\d+\)`)
	resultCountPattern  = regexp.MustCompile(`(?i)^\s*(showing\s+)?\d+\s+users?(\s+found)?\s*$`)
	downloadReportLabel = regexp.MustCompile(`(?i)download`)
)

// UserManagement is the admin screen listing portal users. It implements the
// bulk workflow UI as well as single-user operations.
type UserManagement struct {
	*Module

	AddUser      Element
	SearchInput  Element
	SearchButton Element
	NoUserFound  Element
	ResultCount  Element
	Export       Element

	Toast      Element
	ToastClose Element

	ConfirmDelete Element
	Expertise     Element
	ResourceType  Element

	RoleFilter      Element
	AdvancedFilters Element
	ApplyFilters    Element

	BulkCreate        Element
	BulkUpdate        Element
	BulkDelete        Element
	DeleteListed      Element
	FileInput         Element
	ValidCount        Element
	ErrorCount        Element
	BulkSubmit        Element
	GeneratePreview   Element
	DeleteWarning     Element
	DeleteList        Element
	DownloadReport    Element
	BulkDeleteConfirm Element
	CloseBulk         Element
}

func NewUserManagement(page playwright.Page, timeouts browser.Timeouts) *UserManagement {
	m := NewModule(page, timeouts, UserManagementModule)
	b := m.Base
	dialog := page.GetByRole(*playwright.AriaRoleDialog)
	toast := page.Locator("li[data-sonner-toast], [role='status']").First()

	return &UserManagement{
		Module:       m,
		AddUser:      b.byRole(playwright.AriaRoleButton, "Add User"),
		SearchInput:  b.el(page.GetByPlaceholder("Search by name or email")),
		SearchButton: b.byRoleExact(playwright.AriaRoleButton, "Search"),
		NoUserFound:  b.byTextExact("No users found"),
		ResultCount:  b.el(page.GetByText(resultCountPattern).First()),
		Export:       b.byRoleExact(playwright.AriaRoleButton, "Export"),

		Toast:      b.el(toast),
		ToastClose: b.el(toast.GetByRole(*playwright.AriaRoleButton).First()),

		ConfirmDelete: b.el(page.GetByRole(*playwright.AriaRoleAlertdialog).
			GetByRole(*playwright.AriaRoleButton, playwright.LocatorGetByRoleOptions{Name: "Delete", Exact: playwright.Bool(true)})),
		Expertise:    b.css("xpath=(//span[text()='Expertise:']/following-sibling::span)[1]"),
		ResourceType: b.css("xpath=(//span[text()='Resource Type:']/following-sibling::span)[1]"),

		RoleFilter:      b.byRole(playwright.AriaRoleCombobox, "Filter by role"),
		AdvancedFilters: b.byRole(playwright.AriaRoleButton, "Advanced Filters"),
		ApplyFilters:    b.byRole(playwright.AriaRoleButton, "Apply Filters"),

		BulkCreate:      b.byRole(playwright.AriaRoleButton, "Bulk Create"),
		BulkUpdate:      b.byRole(playwright.AriaRoleButton, "Bulk Update"),
		BulkDelete:      b.byRole(playwright.AriaRoleButton, "Bulk Delete"),
		DeleteListed:    b.byRole(playwright.AriaRoleRadio, "Delete listed users"),
		FileInput:       b.el(dialog.Locator("input[type='file']")),
		ValidCount:      b.el(dialog.GetByText(validCountPattern).First()),
		ErrorCount:      b.el(dialog.GetByText(errorCountPattern).First()),
		BulkSubmit:      b.el(dialog.GetByRole(*playwright.AriaRoleButton, playwright.LocatorGetByRoleOptions{Name: bulkSubmitPattern})),
		GeneratePreview: b.el(dialog.GetByRole(*playwright.AriaRoleButton, playwright.LocatorGetByRoleOptions{Name: "Generate Preview"})),
		DeleteWarning:   b.el(dialog.GetByText(deleteWarnPattern).First()),
		DeleteList:      b.el(dialog.GetByText(deleteListPattern).First()),
		DownloadReport:  b.el(dialog.GetByRole(*playwright.AriaRoleButton, playwright.LocatorGetByRoleOptions{Name: downloadReportLabel}).First()),
		BulkDeleteConfirm: b.el(dialog.GetByRole(*playwright.AriaRoleButton,
			playwright.LocatorGetByRoleOptions{Name: regexp.MustCompile(`^(Confirm Delete|Delete \d+ Users?)$`)})),
		CloseBulk: b.el(dialog.GetByRole(*playwright.AriaRoleButton, playwright.LocatorGetByRoleOptions{Name: "Close", Exact: playwright.Bool(true)}).First()),
	}
}

// Search submits keyword in the user search and waits for the result.
func (p *UserManagement) Search(keyword string) error {
	if err := p.SearchInput.Fill(keyword); err != nil {
		return fmt.Errorf("filling search: %w", err)
	}
	if err := p.SearchButton.Click(); err != nil {
		return fmt.Errorf("submitting search: %w", err)
	}
	return p.WaitForIdle()
}

// IsNoUserFound reports whether the empty result marker is shown.
func (p *UserManagement) IsNoUserFound() bool {
	return p.NoUserFound.Visible()
}

// ResultCountLabel returns the result counter text, e.g. "42 users found".
func (p *UserManagement) ResultCountLabel() (string, error) {
	return p.textOf(p.ResultCount, "result count")
}

// ToastMessage reads the notification text and dismisses it.
func (p *UserManagement) ToastMessage() (string, error) {
	text, err := p.textOf(p.Toast, "toast")
	if err != nil {
		return "", err
	}
	// Close button only appears on hover.
	if err := p.Toast.Hover(); err == nil {
		_ = p.ToastClose.Click()
	}
	return text, nil
}

// User returns the row of the user with the given email.
func (p *UserManagement) User(email string) UserRow {
	e := xpathLiteral(email)
	return UserRow{
		Expand:        p.css(fmt.Sprintf("xpath=//div[text()=%s]/../../../preceding-sibling::button", e)),
		Name:          p.css(fmt.Sprintf("xpath=//div[text()=%s]/preceding-sibling::div", e)),
		EmployeeID:    p.css(fmt.Sprintf("xpath=//div[text()=%s]/parent::div/following::div[1]", e)),
		Role:          p.css(fmt.Sprintf("xpath=//div[text()=%s]/parent::div/following::div[2]", e)),
		SBU:           p.css(fmt.Sprintf("xpath=//div[text()=%s]/parent::div/following::div[3]", e)),
		ResetPassword: p.css(fmt.Sprintf("xpath=//div[text()=%s]/parent::div/following::button[text()='Reset Password'][1]", e)),
		Edit:          p.css(fmt.Sprintf("xpath=//div[text()=%s]/parent::div/following::button[text()='Reset Password'][1]/following-sibling::button[1]", e)),
		Delete:        p.css(fmt.Sprintf("xpath=//div[text()=%s]/parent::div/following::button[text()='Reset Password'][1]/following-sibling::button[2]", e)),
	}
}

// DeleteUser deletes a single user through the row action and confirmation dialog.
func (p *UserManagement) DeleteUser(email string) error {
	if err := p.User(email).Delete.Click(); err != nil {
		return fmt.Errorf("opening delete for %s: %w", email, err)
	}
	return p.ConfirmDelete.Click()
}

// FilterByRole selects a role in the role filter.
func (p *UserManagement) FilterByRole(role string) error {
	return selectOption(p.Base, p.RoleFilter, "Search role", role)
}

// AdvancedFilter opens the advanced filters, picks value in the field and applies.
func (p *UserManagement) AdvancedFilter(field, value string) error {
	if err := p.AdvancedFilters.Click(); err != nil {
		return err
	}
	trigger := p.byRole(playwright.AriaRoleCombobox, field)
	if err := selectOption(p.Base, trigger, "Search "+field, value); err != nil {
		return fmt.Errorf("filter %s: %w", field, err)
	}
	if err := p.ApplyFilters.Click(); err != nil {
		return err
	}
	return p.WaitForIdle()
}

// Bulk workflow UI.

func (p *UserManagement) OpenBulkCreate() error { return p.BulkCreate.Click() }

func (p *UserManagement) OpenBulkUpdate() error { return p.BulkUpdate.Click() }

// OpenBulkDelete opens the bulk delete dialog in "delete listed users" mode.
func (p *UserManagement) OpenBulkDelete() error {
	if err := p.BulkDelete.Click(); err != nil {
		return err
	}
	return p.DeleteListed.Click()
}

// Upload sets the file of the open bulk dialog.
func (p *UserManagement) Upload(path string) error {
	if err := p.FileInput.Locator().SetInputFiles(path); err != nil {
		return fmt.Errorf("uploading %s: %w", path, err)
	}
	return nil
}

func (p *UserManagement) ValidCountLabel() (string, error) {
	return p.textOf(p.ValidCount, "valid count")
}

func (p *UserManagement) ErrorCountLabel() (string, error) {
	return p.textOf(p.ErrorCount, "error count")
}

func (p *UserManagement) SubmitLabel() (string, error) {
	return p.textOf(p.BulkSubmit, "submit button")
}

func (p *UserManagement) Submit() error { return p.BulkSubmit.Click() }

func (p *UserManagement) GenerateDeletePreview() error { return p.GeneratePreview.Click() }

func (p *UserManagement) DeleteWarningLabel() (string, error) {
	return p.textOf(p.DeleteWarning, "delete warning")
}

func (p *UserManagement) DeleteListLabel() (string, error) {
	return p.textOf(p.DeleteList, "delete list")
}

// DownloadDeleteReport saves the preview report of the delete dialog to path.
func (p *UserManagement) DownloadDeleteReport(path string) error {
	return p.download(p.DownloadReport, path)
}

func (p *UserManagement) CloseBulkDialog() error { return p.CloseBulk.Click() }

func (p *UserManagement) ConfirmBulkDelete() error { return p.BulkDeleteConfirm.Click() }

// ExportAll downloads the export of all listed users to path.
func (p *UserManagement) ExportAll(path string) error {
	return p.download(p.Export, path)
}

func (p *UserManagement) download(trigger Element, path string) error {
	dl, err := p.Page.ExpectDownload(trigger.Click, playwright.PageExpectDownloadOptions{
		Timeout: browser.Ms(p.Timeouts.Navigation),
	})
	if err != nil {
		return fmt.Errorf("waiting for download: %w", err)
	}
	if err := dl.SaveAs(path); err != nil {
		return fmt.Errorf("saving download to %s: %w", path, err)
	}
	return nil
}

func (p *UserManagement) textOf(e Element, what string) (string, error) {
	if err := e.WaitVisible(); err != nil {
		return "", fmt.Errorf("waiting for %s: %w", what, err)
	}
	text, ok := e.Text()
	if !ok {
		return "", fmt.Errorf("reading %s", what)
	}
	return text, nil
}

// UserRow holds the list entries of one user, located by email.
type UserRow struct {
	Expand        Element
	Name          Element
	EmployeeID    Element
	Role          Element
	SBU           Element
	ResetPassword Element
	Edit          Element
	Delete        Element
}
