package scheduler

import (
	"sync"
	"time"
)

// NextBoundary returns today at hour:00 in now's location, or tomorrow at hour:00 when
// now is already past it
func NextBoundary(now time.Time, hour int) time.Time {
	boundary := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if now.After(boundary) {
		boundary = boundary.AddDate(0, 0, 1)
	}
	return boundary
}

// DailyBoundary is a cron.Schedule with two phases. The first fire lands on the next
// hour:00 boundary, every later fire is exactly Interval after the previous one.
// Later fires are not re-aligned to the boundary, so a suspended process drifts.
type DailyBoundary struct {
	Hour     int
	Interval time.Duration

	mu    sync.Mutex
	first time.Time
	fired bool
}

// NewDailyBoundary returns a schedule firing first at hour:00 then every 24 hours
func NewDailyBoundary(hour int) *DailyBoundary {
	return &DailyBoundary{Hour: hour, Interval: 24 * time.Hour}
}

// Next implements cron.Schedule
func (b *DailyBoundary) Next(now time.Time) time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.fired {
		if b.first.IsZero() {
			b.first = NextBoundary(now, b.Hour)
			return b.first
		}
		if now.Before(b.first) {
			return b.first
		}
		b.fired = true
	}
	return now.Add(b.Interval)
}

// window returns [tomorrow 00:00, the day after 00:00) in now's location
func window(now time.Time) (time.Time, time.Time) {
	tomorrowStart := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	return tomorrowStart, tomorrowStart.AddDate(0, 0, 1)
}
