package cron

import (
	"fmt"
	"time"
)

// Frequency is a coarse-grained publishing cadence configured by admins.
type Frequency string

const (
	FrequencyTwiceDaily    Frequency = "twice-daily"
	FrequencyDaily         Frequency = "daily"
	FrequencyEveryOtherDay Frequency = "every-other-day"
	FrequencyWeekly        Frequency = "weekly"

	// FrequencyTesting fires every five minutes regardless of the
	// configured time of day. For manual verification only.
	FrequencyTesting Frequency = "testing"
)

// Frequencies lists the accepted cadence values.
func Frequencies() []Frequency {
	return []Frequency{
		FrequencyTwiceDaily,
		FrequencyDaily,
		FrequencyEveryOtherDay,
		FrequencyWeekly,
		FrequencyTesting,
	}
}

// Valid reports whether f is one of the accepted cadence values.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyTwiceDaily, FrequencyDaily, FrequencyEveryOtherDay,
		FrequencyWeekly, FrequencyTesting:
		return true
	}
	return false
}

// ScheduleForFrequency maps a cadence to a concrete Schedule anchored at
// hour:minute. Twice-daily runs at hour:minute and twelve hours later;
// weekly runs on Monday.
func ScheduleForFrequency(f Frequency, hour, minute int) (Schedule, error) {
	switch f {
	case FrequencyTwiceDaily:
		return TimesPerDayAt([2]int{hour, minute}, [2]int{(hour + 12) % 24, minute}), nil
	case FrequencyDaily:
		return DailyAt(hour, minute), nil
	case FrequencyEveryOtherDay:
		return EveryOtherDayAt(hour, minute), nil
	case FrequencyWeekly:
		return WeeklyOn(time.Monday, hour, minute), nil
	case FrequencyTesting:
		return Every(5 * time.Minute), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrequency, f)
	}
}
