package timeutils

import (
	"fmt"
	"time"
)

// ClockTime represents a time of day in the given locale, without a date.
type ClockTime struct {
	Hour     int            `json:"hour"`
	Minute   int            `json:"minute"`
	Second   int            `json:"second"`
	Location *time.Location `json:"-"`
}

// OnDate returns a time with the given clock time on the given date.
func (c *ClockTime) OnDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, c.Hour, c.Minute, c.Second, 0, c.Location)
}

// SecondsIntoDay returns the number of seconds between midnight and this
// clock time.
func (c *ClockTime) SecondsIntoDay() int {
	return c.Hour*3600 + c.Minute*60 + c.Second
}

func (c *ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}
