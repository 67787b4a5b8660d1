package window

import (
	"context"
	"log/slog"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// SolarProvider anchors the monitoring window to sunset: the window closes at
// sunset and opens `Lead` before it, which is when surplus solar generation is
// tailing off and pre-cooling must happen if it is going to. The daily reset
// fires at sunrise.
type SolarProvider struct {
	Updates chan Update

	latitude  float64
	longitude float64
	lead      time.Duration
	location  *time.Location
}

func NewSolarProvider(latitude, longitude float64, lead time.Duration, location *time.Location) *SolarProvider {
	return &SolarProvider{
		Updates:   make(chan Update, 1),
		latitude:  latitude,
		longitude: longitude,
		lead:      lead,
		location:  location,
	}
}

// windowFor returns the monitoring window for the day containing t.
func (s *SolarProvider) windowFor(t time.Time) Update {
	year, month, day := t.In(s.location).Date()
	_, sunset := sunrise.SunriseSunset(s.latitude, s.longitude, year, month, day)
	return Update{
		Time:     t,
		OpensAt:  sunset.Add(-s.lead),
		ClosesAt: sunset,
	}
}

// nextReset returns the first sunrise strictly after t.
func (s *SolarProvider) nextReset(t time.Time) time.Time {
	local := t.In(s.location)
	for days := 0; ; days++ {
		year, month, day := local.AddDate(0, 0, days).Date()
		rise, _ := sunrise.SunriseSunset(s.latitude, s.longitude, year, month, day)
		if rise.After(t) {
			return rise
		}
	}
}

// Run loops forever, emitting the window for the current day immediately and
// then a fresh window at every sunrise.
func (s *SolarProvider) Run(ctx context.Context) {
	now := time.Now()
	update := s.windowFor(now)
	slog.Info("Computed solar monitoring window",
		"opens_at", update.OpensAt, "closes_at", update.ClosesAt)
	s.Updates <- update

	for {
		reset := s.nextReset(time.Now())
		timer := time.NewTimer(time.Until(reset))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case t := <-timer.C:
			update := s.windowFor(t)
			slog.Info("Sunrise reset, computed solar monitoring window",
				"opens_at", update.OpensAt, "closes_at", update.ClosesAt)
			s.Updates <- update
		}
	}
}
