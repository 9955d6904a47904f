// Package exchange gates bars by configured market hours and computes
// commission on a fill. It generalizes the single-timezone market-hours
// check into one parameterized by the host's configured location, and
// replaces a broker-specific brokerage schedule with the three
// commission models the host can select.
package exchange

import (
	"time"

	"github.com/backforge/backforge/internal/manifest"
	"github.com/backforge/backforge/pkg/money"
)

// Calendar gates bars by regular trading hours in one configured
// timezone. The zero value is not usable; construct with NewCalendar.
type Calendar struct {
	loc       *time.Location
	openHour  int
	openMin   int
	closeHour int
	closeMin  int
}

// NewCalendar builds a Calendar for the given IANA timezone name, using
// standard US equity regular-trading hours (9:30-16:00). Falls back to
// UTC if the timezone database entry cannot be loaded.
func NewCalendar(timezoneName string) *Calendar {
	loc, err := time.LoadLocation(timezoneName)
	if err != nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc, openHour: 9, openMin: 30, closeHour: 16, closeMin: 0}
}

// IsWithinMarketHourRestrictions returns true unconditionally when
// marketHoursOnly is false; otherwise true iff ts falls within this
// calendar's regular trading hours on a weekday.
func (c *Calendar) IsWithinMarketHourRestrictions(unixTsNs int64, marketHoursOnly bool) bool {
	if !marketHoursOnly {
		return true
	}
	t := time.Unix(0, unixTsNs).In(c.loc)

	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}

	open := time.Date(t.Year(), t.Month(), t.Day(), c.openHour, c.openMin, 0, 0, c.loc)
	close := time.Date(t.Year(), t.Month(), t.Day(), c.closeHour, c.closeMin, 0, 0, c.loc)
	return !t.Before(open) && !t.After(close)
}

// Commission computes the commission due on a fill of the given quantity
// and price, under the host's selected commission model. An unrecognized
// commission type yields zero, matching "missing configuration yields
// zero commission."
func Commission(commissionType manifest.CommissionType, rate, qty float64, price money.Money) money.Money {
	switch commissionType {
	case manifest.CommissionPerShare:
		return money.FromFloat(rate * qty)
	case manifest.CommissionPercentage:
		return price.MulFloat(rate * qty)
	case manifest.CommissionFlat:
		return money.FromFloat(rate)
	default:
		return money.Zero
	}
}
