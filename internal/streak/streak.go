// Package streak tracks consecutive calendar days with a rewarded action.
// Days are UTC calendar dates keyed as YYYY-MM-DD.
package streak

import "time"

// DateKeyLayout is the calendar-day key format
const DateKeyLayout = "2006-01-02"

// DateKey returns the UTC calendar-day key for t
func DateKey(t time.Time) string {
	return t.UTC().Format(DateKeyLayout)
}

// NextMidnight returns the start of the UTC day after t
func NextMidnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}

// NextStreak returns the streak after an action on todayKey.
// An empty lastKey means the user has never acted.
func NextStreak(previous int, lastKey, todayKey string) int {
	if lastKey == "" {
		return 1
	}
	if lastKey == todayKey {
		// a zero streak on the same day can only come from corrupted state
		if previous < 1 {
			return 1
		}
		return previous
	}
	if isYesterday(lastKey, todayKey) {
		return previous + 1
	}
	return 1
}

// ShouldReset reports whether a displayed streak is stale: the user has a
// streak but their last action was neither today nor yesterday.
func ShouldReset(streak int, lastKey, todayKey string) bool {
	if streak <= 0 || lastKey == "" {
		return false
	}
	return lastKey != todayKey && !isYesterday(lastKey, todayKey)
}

// Displayed is the streak a client should show without a new action
func Displayed(streak int, lastKey, todayKey string) int {
	if ShouldReset(streak, lastKey, todayKey) {
		return 0
	}
	return streak
}

func isYesterday(lastKey, todayKey string) bool {
	last, err := time.Parse(DateKeyLayout, lastKey)
	if err != nil {
		return false
	}
	today, err := time.Parse(DateKeyLayout, todayKey)
	if err != nil {
		return false
	}
	return last.AddDate(0, 0, 1).Equal(today)
}
