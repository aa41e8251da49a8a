package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// Timeouts are the wait bounds used by page objects. Every wait in the suite
// derives from one of these values; Scaled is the single override point.
type Timeouts struct {
	// Short bounds presence checks on elements that should already be rendered.
	Short time.Duration
	// Long bounds wait-then-check on freshly navigated content.
	Long time.Duration
	// Navigation bounds page loads and URL changes.
	Navigation time.Duration
}

// DefaultTimeouts returns the standard 5s/15s/30s tiers.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Short:      5 * time.Second,
		Long:       15 * time.Second,
		Navigation: 30 * time.Second,
	}
}

// Scaled multiplies every tier by factor. Factors <= 0 return t unchanged.
func (t Timeouts) Scaled(factor float64) Timeouts {
	if factor <= 0 {
		return t
	}
	scale := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) * factor)
	}
	return Timeouts{
		Short:      scale(t.Short),
		Long:       scale(t.Long),
		Navigation: scale(t.Navigation),
	}
}

// Ms converts d to the millisecond float pointer playwright options expect.
func Ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}
