package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextStreak(t *testing.T) {
	tests := []struct {
		name     string
		previous int
		lastKey  string
		todayKey string
		want     int
	}{
		{"first ever action", 0, "", "2024-02-14", 1},
		{"same day keeps streak", 3, "2024-02-14", "2024-02-14", 3},
		{"consecutive day increments", 3, "2024-02-13", "2024-02-14", 4},
		{"skipped day resets", 3, "2024-02-12", "2024-02-14", 1},
		{"month boundary", 9, "2024-01-31", "2024-02-01", 10},
		{"leap day", 2, "2024-02-28", "2024-02-29", 3},
		{"year boundary", 5, "2023-12-31", "2024-01-01", 6},
		{"last key in the future resets", 4, "2024-02-15", "2024-02-14", 1},
		{"garbage key resets", 4, "not-a-date", "2024-02-14", 1},
		{"same day with zero streak", 0, "2024-02-14", "2024-02-14", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStreak(tt.previous, tt.lastKey, tt.todayKey))
		})
	}
}

func TestNextStreak_DayByDayNeverDecreasesWithoutGap(t *testing.T) {
	day := time.Date(2024, 12, 20, 9, 0, 0, 0, time.UTC)
	streak, last := 0, ""

	for i := 0; i < 40; i++ {
		today := DateKey(day)
		// several actions on the same day
		for j := 0; j < 3; j++ {
			next := NextStreak(streak, last, today)
			if j > 0 {
				assert.Equal(t, streak, next, "same-day calls must not increment")
			} else {
				assert.Equal(t, streak+1, next)
			}
			streak, last = next, today
		}
		day = day.AddDate(0, 0, 1)
	}
	assert.Equal(t, 40, streak)

	// one skipped day resets
	day = day.AddDate(0, 0, 1)
	assert.Equal(t, 1, NextStreak(streak, last, DateKey(day)))
}

func TestShouldReset(t *testing.T) {
	tests := []struct {
		name     string
		streak   int
		lastKey  string
		todayKey string
		want     bool
	}{
		{"no streak", 0, "2024-02-01", "2024-02-14", false},
		{"never active", 5, "", "2024-02-14", false},
		{"active today", 5, "2024-02-14", "2024-02-14", false},
		{"active yesterday", 5, "2024-02-13", "2024-02-14", false},
		{"two days ago", 5, "2024-02-12", "2024-02-14", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldReset(tt.streak, tt.lastKey, tt.todayKey))
		})
	}
}

func TestShouldReset_AgreesWithNextStreak(t *testing.T) {
	today := "2024-02-14"
	for _, last := range []string{"2024-02-14", "2024-02-13", "2024-02-12", "2024-01-01"} {
		reset := ShouldReset(6, last, today)
		next := NextStreak(6, last, today)
		assert.Equal(t, reset, next == 1, "last=%s", last)
	}
}

func TestDisplayed(t *testing.T) {
	assert.Equal(t, 0, Displayed(8, "2024-02-10", "2024-02-14"))
	assert.Equal(t, 8, Displayed(8, "2024-02-13", "2024-02-14"))
}

func TestDateKeyAndNextMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// 2024-02-15 02:00 in UTC+9 is still the 14th in UTC
	ts := time.Date(2024, 2, 15, 2, 0, 0, 0, loc)
	assert.Equal(t, "2024-02-14", DateKey(ts))
	assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), NextMidnight(ts))
}
