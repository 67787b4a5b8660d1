package timeutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayedPeriodContains(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	period := ClockTimePeriod{
		Start: ClockTime{Hour: 14, Minute: 0, Second: 0, Location: london},
		End:   ClockTime{Hour: 19, Minute: 30, Second: 0, Location: london},
	}

	// 2024-06-19 is a Wednesday, 2024-06-22 is a Saturday
	wednesdayAfternoon := time.Date(2024, 6, 19, 15, 0, 0, 0, london)
	wednesdayMorning := time.Date(2024, 6, 19, 9, 0, 0, 0, london)
	saturdayAfternoon := time.Date(2024, 6, 22, 15, 0, 0, 0, london)

	tests := []struct {
		name     string
		days     Days
		at       time.Time
		expected bool
	}{
		{"all days, right time", AllDays, wednesdayAfternoon, true},
		{"all days, wrong time", AllDays, wednesdayMorning, false},
		{"weekdays, weekday afternoon", WeekdayDays, wednesdayAfternoon, true},
		{"weekdays, saturday afternoon", WeekdayDays, saturdayAfternoon, false},
		{"weekends, saturday afternoon", WeekendDays, saturdayAfternoon, true},
		{"weekends, weekday afternoon", WeekendDays, wednesdayAfternoon, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dayed := DayedPeriod{ClockTimePeriod: period, Days: tt.days}
			assert.Equal(t, tt.expected, dayed.Contains(tt.at))
		})
	}
}

func TestDaysValidate(t *testing.T) {
	assert.NoError(t, WeekdayDays.Validate())
	assert.NoError(t, WeekendDays.Validate())
	assert.NoError(t, AllDays.Validate())
	assert.Error(t, Days("tuesdays").Validate())
}
