package window

import (
	"context"
	"log/slog"
	"time"

	timeutils "github.com/cepro/precooler/time_utils"
)

// FixedProvider derives the monitoring window from a configured clock-time
// period (optionally restricted to weekdays or weekends), for sites that
// prefer a fixed schedule over the solar anchor. The daily reset fires at the
// configured reset clock time.
type FixedProvider struct {
	Updates chan Update

	period  timeutils.DayedPeriod
	resetAt timeutils.ClockTime
}

func NewFixedProvider(period timeutils.DayedPeriod, resetAt timeutils.ClockTime) *FixedProvider {
	return &FixedProvider{
		Updates: make(chan Update, 1),
		period:  period,
		resetAt: resetAt,
	}
}

// windowFor returns the monitoring window for the day containing t, which is
// empty if t falls on a day the period does not apply to.
func (f *FixedProvider) windowFor(t time.Time) Update {
	if !f.period.Days.Contains(t.In(f.period.Start.Location)) {
		return Update{Time: t}
	}
	period := f.period.OnDay(t)
	return Update{
		Time:     t,
		OpensAt:  period.Start,
		ClosesAt: period.End,
	}
}

// nextReset returns the first occurrence of the reset clock time strictly
// after t.
func (f *FixedProvider) nextReset(t time.Time) time.Time {
	local := t.In(f.resetAt.Location)
	reset := f.resetAt.OnDate(local.Date())
	if !reset.After(t) {
		reset = reset.AddDate(0, 0, 1)
	}
	return reset
}

// Run loops forever, emitting the window for the current day immediately and
// then a fresh window at every daily reset.
func (f *FixedProvider) Run(ctx context.Context) {
	now := time.Now()
	update := f.windowFor(now)
	slog.Info("Computed fixed monitoring window",
		"opens_at", update.OpensAt, "closes_at", update.ClosesAt)
	f.Updates <- update

	for {
		reset := f.nextReset(time.Now())
		timer := time.NewTimer(time.Until(reset))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case t := <-timer.C:
			update := f.windowFor(t)
			slog.Info("Daily reset, computed fixed monitoring window",
				"opens_at", update.OpensAt, "closes_at", update.ClosesAt)
			f.Updates <- update
		}
	}
}
