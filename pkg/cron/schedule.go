package cron

import (
	"fmt"
	"time"
)

// Schedule determines when a periodic job should run.
type Schedule interface {
	Next(from time.Time) time.Time
	String() string
}

// intervalSchedule runs at fixed intervals.
type intervalSchedule struct {
	every time.Duration
}

func (s intervalSchedule) Next(from time.Time) time.Time {
	return from.Add(s.every)
}

func (s intervalSchedule) String() string {
	return fmt.Sprintf("every %v", s.every)
}

// dailySchedule runs once per day at the specified time.
type dailySchedule struct {
	hour   int
	minute int
}

func (s dailySchedule) Next(from time.Time) time.Time {
	next := time.Date(
		from.Year(), from.Month(), from.Day(),
		s.hour, s.minute, 0, 0, from.Location(),
	)
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s dailySchedule) String() string {
	return fmt.Sprintf("daily at %02d:%02d", s.hour, s.minute)
}

// multiDailySchedule runs at several fixed times each day.
type multiDailySchedule struct {
	times []dailySchedule
}

func (s multiDailySchedule) Next(from time.Time) time.Time {
	var next time.Time
	for _, t := range s.times {
		candidate := t.Next(from)
		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}
	return next
}

func (s multiDailySchedule) String() string {
	return fmt.Sprintf("%d times per day", len(s.times))
}

// everyOtherDaySchedule runs at a fixed time every second day.
type everyOtherDaySchedule struct {
	hour   int
	minute int
}

func (s everyOtherDaySchedule) Next(from time.Time) time.Time {
	next := time.Date(
		from.Year(), from.Month(), from.Day(),
		s.hour, s.minute, 0, 0, from.Location(),
	)
	if !next.After(from) {
		next = next.AddDate(0, 0, 2)
	}
	return next
}

func (s everyOtherDaySchedule) String() string {
	return fmt.Sprintf("every other day at %02d:%02d", s.hour, s.minute)
}

// weeklySchedule runs once per week on the specified day and time.
type weeklySchedule struct {
	weekday time.Weekday
	hour    int
	minute  int
}

func (s weeklySchedule) Next(from time.Time) time.Time {
	// Days until target weekday, with modulo handling week wraparound.
	daysUntil := (int(s.weekday) - int(from.Weekday()) + 7) % 7

	next := from.AddDate(0, 0, daysUntil)
	next = time.Date(
		next.Year(), next.Month(), next.Day(),
		s.hour, s.minute, 0, 0, next.Location(),
	)

	if !next.After(from) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

func (s weeklySchedule) String() string {
	return fmt.Sprintf("weekly on %s at %02d:%02d", s.weekday, s.hour, s.minute)
}

// Factory functions for creating schedules

// Every creates a schedule that runs at fixed intervals.
func Every(d time.Duration) Schedule {
	return intervalSchedule{every: d}
}

// DailyAt creates a schedule that runs daily at the specified time.
func DailyAt(hour, minute int) Schedule {
	return dailySchedule{hour: hour, minute: minute}
}

// TimesPerDayAt creates a schedule that runs at each of the given
// hour/minute pairs every day. It panics when times is empty or not
// made of pairs, which is a programming error.
func TimesPerDayAt(times ...[2]int) Schedule {
	if len(times) == 0 {
		panic("cron: TimesPerDayAt requires at least one time")
	}
	daily := make([]dailySchedule, len(times))
	for i, t := range times {
		daily[i] = dailySchedule{hour: t[0], minute: t[1]}
	}
	return multiDailySchedule{times: daily}
}

// EveryOtherDayAt creates a schedule that runs every second day at the
// specified time.
func EveryOtherDayAt(hour, minute int) Schedule {
	return everyOtherDaySchedule{hour: hour, minute: minute}
}

// WeeklyOn creates a schedule that runs weekly on the specified day and time.
func WeeklyOn(weekday time.Weekday, hour, minute int) Schedule {
	return weeklySchedule{weekday: weekday, hour: hour, minute: minute}
}
