package app

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"clipforge/internal/store"
)

// isDue reports whether a cron schedule has a firing time inside the
// half-open window (now-window, now]. With window equal to the tick
// interval, consecutive ticks cover disjoint intervals and every cron
// fire is consumed by exactly one tick.
func isDue(schedule string, now time.Time, window time.Duration) bool {
	spec, err := cron.ParseStandard(schedule)
	if err != nil {
		return false
	}
	next := spec.Next(now.Add(-window))
	return !next.After(now)
}

// DueChannels filters channels to those whose schedule fires inside the
// window ending at now. Channels with an empty or malformed schedule are
// skipped with a warning rather than failing the tick.
func DueChannels(channels []store.Channel, now time.Time, window time.Duration) []store.Channel {
	var due []store.Channel
	for _, ch := range channels {
		if ch.CronSchedule == "" {
			continue
		}
		if _, err := cron.ParseStandard(ch.CronSchedule); err != nil {
			slog.Warn("invalid cron schedule, skipping channel",
				"channel", ch.Name, "schedule", ch.CronSchedule, "error", err)
			continue
		}
		if isDue(ch.CronSchedule, now, window) {
			due = append(due, ch)
		}
	}
	return due
}
