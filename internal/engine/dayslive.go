package engine

import (
	"math"
	"time"
)

// DaysLive reports how long a merchant has been live: the day count
// between the first offer date and the end of the latest data week
// (week start + 6 days). Dates are reduced to their civil year/month/day
// in UTC first; comparing instants across locations would shift counts
// near midnight boundaries. Either date missing means 0, never an error.
func DaysLive(firstOfferDate, latestDataWeekStart time.Time) int {
	if firstOfferDate.IsZero() || latestDataWeekStart.IsZero() {
		return 0
	}

	start := civilUTC(firstOfferDate)
	weekEnd := civilUTC(latestDataWeekStart).AddDate(0, 0, 6)

	days := weekEnd.Sub(start).Hours() / 24
	return int(math.Ceil(math.Abs(days)))
}

func civilUTC(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
