package pages

import (
	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/cvsuite/browser"
)

// MyProfile is the CV editor of the signed-in user.
type MyProfile struct {
	Base

	Sidebar       Element
	Header        Element
	CVOption      Element
	PreviewCV     Element
	ExportPDF     Element
	Import        Element
	AuditLog      Element
	AuditLogModal Element
	Close         Element

	General      Section
	Skills       Section
	Experience   Section
	Education    Section
	Training     Section
	Achievements Section
	Projects     Section
}

func NewMyProfile(page playwright.Page, timeouts browser.Timeouts) *MyProfile {
	b := newBase(page, timeouts)
	main := page.GetByRole(*playwright.AriaRoleMain)
	tab := func(name string) Element {
		return b.byRole(playwright.AriaRoleTab, name)
	}
	button := func(name string) Named {
		return Named{Name: name + " button", Element: b.byRole(playwright.AriaRoleButton, name)}
	}
	activePanel := func(name string) Named {
		return Named{Name: name + " panel", Element: b.el(page.GetByRole(*playwright.AriaRoleTabpanel).First())}
	}

	return &MyProfile{
		Base:          b,
		Sidebar:       b.sidebarLink("My Profile"),
		Header:        b.el(main.GetByRole(*playwright.AriaRoleHeading, playwright.LocatorGetByRoleOptions{Name: "My Profile"})),
		CVOption:      b.byText("Sidebar - Full (Default)"),
		PreviewCV:     b.byRole(playwright.AriaRoleButton, "Preview CV"),
		ExportPDF:     b.byRole(playwright.AriaRoleButton, "Export PDF"),
		Import:        b.byRoleExact(playwright.AriaRoleButton, "Import"),
		AuditLog:      b.byRole(playwright.AriaRoleButton, "Audit Log"),
		AuditLogModal: b.byRole(playwright.AriaRoleDialog, "CV Data Audit Log"),
		Close:         b.byRole(playwright.AriaRoleButton, "Close"),

		General: Section{
			Name: "General",
			Tab:  tab("General"),
			Items: []Named{
				button("Upload Image"),
				{Name: "Full Name input", Element: b.byRole(playwright.AriaRoleTextbox, "Full Name")},
				{Name: "Professional Biography input", Element: b.byRole(playwright.AriaRoleTextbox, "Professional Biography")},
			},
		},
		Skills: Section{
			Name: "Skills",
			Tab:  tab("Skills"),
			Items: []Named{
				{Name: "Professional Skills", Element: b.byRoleExact(playwright.AriaRoleHeading, "Professional Skills")},
				{Name: "Technical Skills", Element: b.byRoleExact(playwright.AriaRoleHeading, "Technical Skills")},
			},
		},
		Experience: Section{
			Name:  "Experience",
			Tab:   tab("Experience"),
			Items: []Named{button("Add Experience"), activePanel("Experience")},
		},
		Education: Section{
			Name:  "Education",
			Tab:   tab("Education"),
			Items: []Named{button("Add Education"), activePanel("Education")},
		},
		Training: Section{
			Name:  "Training",
			Tab:   tab("Training"),
			Items: []Named{button("Add Training"), activePanel("Training")},
		},
		Achievements: Section{
			Name:  "Achievements",
			Tab:   tab("Achievements"),
			Items: []Named{button("Add Achievement"), activePanel("Achievements")},
		},
		Projects: Section{
			Name: "Projects",
			Tab:  tab("Projects"),
			Items: []Named{
				{Name: "Search projects input", Element: b.el(page.GetByPlaceholder("Search projects..."))},
				button("Add Project"),
				activePanel("Projects"),
			},
		},
	}
}

// Sections returns the profile tabs in display order.
func (p *MyProfile) Sections() []Section {
	return []Section{p.General, p.Skills, p.Experience, p.Education, p.Training, p.Achievements, p.Projects}
}

// ToolbarItems are the controls above the tabs.
func (p *MyProfile) ToolbarItems() []Named {
	return []Named{
		{Name: "CV option dropdown", Element: p.CVOption},
		{Name: "Preview CV button", Element: p.PreviewCV},
		{Name: "Import button", Element: p.Import},
		{Name: "Audit Log button", Element: p.AuditLog},
	}
}
