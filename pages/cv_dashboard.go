package pages

import (
	"github.com/playwright-community/playwright-go"
	"github.com/samber/lo"

	"github.com/networkteam/cvsuite/browser"
)

// Employee categories shown as filters on the CV dashboard. Which of them a
// role sees depends on the SBUs it may view.
const (
	CategoryBillable    = "Billable"
	CategorySupport     = "Support"
	CategoryContractual = "Contractual"
	CategoryGASM        = "GA & SM"
	CategoryExit        = "Exit"
)

// Categories lists all employee categories in display order.
var Categories = []string{CategoryBillable, CategorySupport, CategoryContractual, CategoryGASM, CategoryExit}

// CVDashboard is the CV progress overview.
type CVDashboard struct {
	*Module

	ProfilesCreated Element
	OverallProgress Element
	HighAchievers   Element
	SteadyProgress  Element
}

func NewCVDashboard(page playwright.Page, timeouts browser.Timeouts) *CVDashboard {
	m := NewModule(page, timeouts, CVDashboardModule)
	main := page.GetByRole(*playwright.AriaRoleMain)
	stat := func(label string) Element {
		return m.el(main.GetByText(label, playwright.LocatorGetByTextOptions{Exact: playwright.Bool(true)}).First())
	}
	return &CVDashboard{
		Module:          m,
		ProfilesCreated: stat("Profiles Created"),
		OverallProgress: stat("Overall Progress"),
		HighAchievers:   stat("High Achievers"),
		SteadyProgress:  stat("Steady Progress"),
	}
}

// Stats are the progress statistic cards.
func (p *CVDashboard) Stats() []Named {
	return []Named{
		{Name: "Profiles Created stats", Element: p.ProfilesCreated},
		{Name: "Overall Progress stats", Element: p.OverallProgress},
		{Name: "High Achievers stats", Element: p.HighAchievers},
		{Name: "Steady Progress stats", Element: p.SteadyProgress},
	}
}

// CategoryField is the filter field of an employee category.
func (p *CVDashboard) CategoryField(category string) Element {
	return p.first(p.Page.GetByRole(*playwright.AriaRoleMain).
		GetByText(category, playwright.LocatorGetByTextOptions{Exact: playwright.Bool(true)}))
}

// CategoryFields returns the named fields of the given categories.
func (p *CVDashboard) CategoryFields(categories ...string) []Named {
	return lo.Map(categories, func(c string, _ int) Named {
		return Named{Name: c + " category", Element: p.CategoryField(c)}
	})
}
