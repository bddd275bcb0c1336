package milestone

import (
	"fmt"
	"time"

	"github.com/osse101/EcoRewards_Go/internal/domain"
)

// PeriodBounds returns the key and [start, end) bounds of the period containing t.
// Weeks are ISO weeks starting Monday 00:00 UTC; months start on the 1st 00:00 UTC.
func PeriodBounds(p domain.Period, t time.Time) (key string, start, end time.Time) {
	t = t.UTC()
	switch p {
	case domain.PeriodWeekly:
		year, week := t.ISOWeek()
		offset := (int(t.Weekday()) + 6) % 7 // days since Monday
		y, m, d := t.Date()
		start = time.Date(y, m, d-offset, 0, 0, 0, 0, time.UTC)
		return fmt.Sprintf("%04d-W%02d", year, week), start, start.AddDate(0, 0, 7)
	default:
		y, m, _ := t.Date()
		start = time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		return fmt.Sprintf("%04d-%02d", y, int(m)), start, start.AddDate(0, 1, 0)
	}
}

// DaysRemaining floors the time left until end, never negative
func DaysRemaining(now, end time.Time) int {
	d := end.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
