package pages

import (
	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/cvsuite/browser"
)

// ResourceDashboard reports billing and SBU allocation of resources.
type ResourceDashboard struct {
	*Module

	Overview        Section
	PivotAnalysis   Section
	WeeklyScoreCard Section
	BillTypeChanges Section
	SBUChanges      Section
}

func NewResourceDashboard(page playwright.Page, timeouts browser.Timeouts) *ResourceDashboard {
	m := NewModule(page, timeouts, ResourceDashboardModule)
	b := m.Base
	tab := func(name string) Element {
		return b.byRole(playwright.AriaRoleTab, name)
	}
	text := func(label string) Named {
		return Named{Name: label + " field", Element: b.el(page.GetByText(label, playwright.PageGetByTextOptions{Exact: playwright.Bool(true)}).First())}
	}
	label := func(name string) Named {
		return Named{Name: name + " field", Element: b.el(page.Locator("label").Filter(playwright.LocatorFilterOptions{HasText: name}).First())}
	}
	button := func(name string) Named {
		return Named{Name: name + " button", Element: b.byRole(playwright.AriaRoleButton, name)}
	}

	return &ResourceDashboard{
		Module: m,
		Overview: Section{
			Name: "Overview",
			Tab:  tab("Overview"),
			Items: []Named{
				text("Total Billable Resources"),
				text("Total Billed Resources"),
				text("Total Actual Billed"),
			},
		},
		PivotAnalysis: Section{
			Name:  "Pivot Analysis",
			Tab:   tab("Pivot Analysis"),
			Items: []Named{label("SBU"), text("Resource Type"), label("Bill Type"), text("Expertise")},
		},
		WeeklyScoreCard: Section{
			Name: "Weekly Score Card",
			Tab:  tab("Weekly Score Card"),
			Items: []Named{
				button("Select start date"),
				button("Select end date"),
				button("Clear Filters"),
				button("Calculate New"),
			},
		},
		BillTypeChanges: Section{
			Name: "Bill Type Changes",
			Tab:  tab("Bill Type Changes"),
			Items: []Named{
				text("Date Range"),
				text("From Bill Type"),
				text("To Bill Type"),
				text("SBUs"),
				text("Profile"),
				button("Export"),
			},
		},
		SBUChanges: Section{
			Name:  "SBU Changes",
			Tab:   tab("SBU Changes"),
			Items: []Named{button("Export")},
		},
	}
}

func (p *ResourceDashboard) Sections() []Section {
	return []Section{p.Overview, p.PivotAnalysis, p.WeeklyScoreCard, p.BillTypeChanges, p.SBUChanges}
}
