// Package period produces the calendar labels that scope uniqueness and
// counters: calendar months for contest referrals, ISO weeks for engagement.
package period

import (
	"fmt"
	"time"
)

// Month returns the UTC calendar month label, e.g. "2026-M01".
func Month(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%d-M%02d", t.Year(), int(t.Month()))
}

// Week returns the UTC ISO-8601 week label, e.g. "2026-W05". The year is the
// ISO year, so the first days of January may belong to the previous year.
func Week(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
