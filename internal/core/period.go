package core

import "time"

// DefaultAnchorDay is the payday that opens a budgeting period.
const DefaultAnchorDay = 27

// Period is a half-open budgeting window [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// CurrentPeriod returns the budgeting period containing now for the given
// day-of-month anchor. If today's day is on or after the anchor the period
// started at this month's anchor, otherwise at last month's. Last month is
// reached via the first of this month minus one day, so month lengths are
// handled exactly.
func CurrentPeriod(now time.Time, anchorDay int) Period {
	if anchorDay < 1 || anchorDay > 28 {
		anchorDay = DefaultAnchorDay
	}

	var start time.Time
	if now.Day() >= anchorDay {
		start = time.Date(now.Year(), now.Month(), anchorDay, 0, 0, 0, 0, now.Location())
	} else {
		firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		lastMonth := firstOfMonth.AddDate(0, 0, -1)
		start = time.Date(lastMonth.Year(), lastMonth.Month(), anchorDay, 0, 0, 0, 0, now.Location())
	}

	return Period{Start: start, End: now}
}
