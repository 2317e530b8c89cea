package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCalendar(t *testing.T) *NYSECalendar {
	t.Helper()
	s, err := NewSchedule("America/New_York", "09:30", "16:00")
	require.NoError(t, err)
	return NewNYSECalendar(s)
}

func et(t *testing.T, value string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
	require.NoError(t, err)
	return ts
}

func TestIsTradingDay(t *testing.T) {
	cal := testCalendar(t)

	tests := []struct {
		date string
		want bool
	}{
		{"2026-10-19 12:00", true},  // Monday
		{"2026-10-17 12:00", false}, // Saturday
		{"2026-11-26 12:00", false}, // Thanksgiving
		{"2027-07-05 12:00", false}, // Independence Day observed
		{"2025-01-09 12:00", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cal.IsTradingDay(et(t, tt.date)), tt.date)
	}
}

func TestSessionTimesEarlyClose(t *testing.T) {
	cal := testCalendar(t)

	open, close, ok := cal.SessionTimes(et(t, "2026-11-27 08:00"))
	require.True(t, ok)
	assert.Equal(t, et(t, "2026-11-27 09:30"), open)
	assert.Equal(t, et(t, "2026-11-27 13:00"), close)

	_, close, ok = cal.SessionTimes(et(t, "2026-11-30 08:00"))
	require.True(t, ok)
	assert.Equal(t, et(t, "2026-11-30 16:00"), close)

	_, _, ok = cal.SessionTimes(et(t, "2026-12-25 10:00"))
	assert.False(t, ok)
}

func TestSessionAt(t *testing.T) {
	cal := testCalendar(t)

	tests := []struct {
		now    string
		phase  string
		isOpen bool
	}{
		{"2026-10-19 09:00", PhasePreMarket, false},
		{"2026-10-19 09:30", PhaseOpen, true},
		{"2026-10-19 15:59", PhaseOpen, true},
		{"2026-10-19 16:00", PhaseAfterHours, false},
		{"2026-10-18 11:00", PhaseWeekend, false},
		{"2026-12-25 11:00", PhaseHoliday, false},
		{"2026-12-24 13:30", PhaseAfterHours, false},
	}
	for _, tt := range tests {
		s := SessionAt(cal, et(t, tt.now))
		assert.Equal(t, tt.phase, s.Phase, tt.now)
		assert.Equal(t, tt.isOpen, s.IsOpen, tt.now)
	}

	s := SessionAt(cal, et(t, "2026-12-24 10:00"))
	assert.True(t, s.EarlyClose)
	assert.Equal(t, 3*time.Hour, s.TimeToClose())
}

func TestSessionAtConvertsZone(t *testing.T) {
	cal := testCalendar(t)
	// 14:00 UTC on a Monday in October is 10:00 ET
	s := SessionAt(cal, time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC))
	assert.True(t, s.IsOpen)
}

func TestWindowAt(t *testing.T) {
	cal := testCalendar(t)

	tests := []struct {
		now  string
		want string
	}{
		{"2026-10-20 10:00", "2026-10-19_2026-10-20"}, // Tuesday open
		{"2026-10-19 08:00", "2026-10-16_2026-10-19"}, // Monday pre-market
		{"2026-10-16 17:00", "2026-10-16_2026-10-19"}, // Friday after close
		{"2026-10-17 12:00", "2026-10-16_2026-10-19"}, // Saturday
		{"2026-11-25 16:30", "2026-11-25_2026-11-27"}, // skips Thanksgiving
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WindowAt(cal, et(t, tt.now)).Name(), tt.now)
	}
}

func TestPreviousWindow(t *testing.T) {
	cal := testCalendar(t)

	assert.Equal(t, "2026-10-16_2026-10-19", PreviousWindow(cal, et(t, "2026-10-20 10:00")).Name())
	assert.Equal(t, "2026-10-15_2026-10-16", PreviousWindow(cal, et(t, "2026-10-19 10:00")).Name())
	// after the close the previous window is the one that just finished
	assert.Equal(t, "2026-10-19_2026-10-20", PreviousWindow(cal, et(t, "2026-10-20 16:30")).Name())
}

func TestNewScheduleRejectsInvertedSession(t *testing.T) {
	_, err := NewSchedule("America/New_York", "16:00", "09:30")
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "2h 5m", FormatDuration(2*time.Hour+5*time.Minute))
	assert.Equal(t, "45m", FormatDuration(45*time.Minute))
	assert.Equal(t, "0s", FormatDuration(-time.Second))
}
