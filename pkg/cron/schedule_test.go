package cron_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-labs/harmonia/pkg/cron"
)

func TestEvery(t *testing.T) {
	t.Parallel()

	from := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s := cron.Every(5 * time.Minute)

	assert.Equal(t, from.Add(5*time.Minute), s.Next(from))
	assert.Equal(t, "every 5m0s", s.String())
}

func TestDailyAt(t *testing.T) {
	t.Parallel()

	s := cron.DailyAt(8, 30)

	t.Run("before todays slot runs today", func(t *testing.T) {
		t.Parallel()

		from := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC), s.Next(from))
	})

	t.Run("after todays slot runs tomorrow", func(t *testing.T) {
		t.Parallel()

		from := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2025, 3, 11, 8, 30, 0, 0, time.UTC), s.Next(from))
	})

	t.Run("exactly at slot rolls to tomorrow", func(t *testing.T) {
		t.Parallel()

		from := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2025, 3, 11, 8, 30, 0, 0, time.UTC), s.Next(from))
	})
}

func TestTimesPerDayAt(t *testing.T) {
	t.Parallel()

	s := cron.TimesPerDayAt([2]int{8, 0}, [2]int{20, 0})

	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{
			name: "morning picks first slot",
			from: time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		},
		{
			name: "midday picks evening slot",
			from: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC),
		},
		{
			name: "late evening rolls to next morning",
			from: time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, s.Next(tt.from))
		})
	}
}

func TestEveryOtherDayAt(t *testing.T) {
	t.Parallel()

	s := cron.EveryOtherDayAt(9, 0)

	t.Run("before todays slot runs today", func(t *testing.T) {
		t.Parallel()

		from := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), s.Next(from))
	})

	t.Run("after todays slot skips a day", func(t *testing.T) {
		t.Parallel()

		from := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC), s.Next(from))
	})
}

func TestWeeklyOn(t *testing.T) {
	t.Parallel()

	s := cron.WeeklyOn(time.Monday, 8, 0)

	t.Run("earlier in the week", func(t *testing.T) {
		t.Parallel()

		// 2025-03-08 is a Saturday.
		from := time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), s.Next(from))
	})

	t.Run("same day after slot wraps a full week", func(t *testing.T) {
		t.Parallel()

		// 2025-03-10 is a Monday.
		from := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2025, 3, 17, 8, 0, 0, 0, time.UTC), s.Next(from))
	})
}

func TestScheduleForFrequency(t *testing.T) {
	t.Parallel()

	t.Run("known frequencies", func(t *testing.T) {
		t.Parallel()

		for _, f := range cron.Frequencies() {
			s, err := cron.ScheduleForFrequency(f, 8, 0)
			require.NoError(t, err, "frequency %q", f)
			require.NotNil(t, s)
		}
	})

	t.Run("testing frequency fires every five minutes", func(t *testing.T) {
		t.Parallel()

		s, err := cron.ScheduleForFrequency(cron.FrequencyTesting, 8, 0)
		require.NoError(t, err)

		from := time.Date(2025, 3, 10, 13, 37, 0, 0, time.UTC)
		assert.Equal(t, from.Add(5*time.Minute), s.Next(from))
	})

	t.Run("twice daily spaces runs twelve hours apart", func(t *testing.T) {
		t.Parallel()

		s, err := cron.ScheduleForFrequency(cron.FrequencyTwiceDaily, 8, 0)
		require.NoError(t, err)

		morning := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)
		first := s.Next(morning)
		second := s.Next(first)
		assert.Equal(t, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), first)
		assert.Equal(t, time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC), second)
	})

	t.Run("unknown frequency", func(t *testing.T) {
		t.Parallel()

		_, err := cron.ScheduleForFrequency(cron.Frequency("hourly"), 8, 0)
		assert.ErrorIs(t, err, cron.ErrUnknownFrequency)
	})
}

func TestFrequencyValid(t *testing.T) {
	t.Parallel()

	for _, f := range cron.Frequencies() {
		assert.True(t, f.Valid(), "frequency %q", f)
	}
	assert.False(t, cron.Frequency("hourly").Valid())
	assert.False(t, cron.Frequency("").Valid())
}
