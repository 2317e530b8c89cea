package market

import (
	"fmt"
	"time"
)

// Schedule is the regular session of an exchange in its local time zone
type Schedule struct {
	Location  *time.Location
	OpenHour  int
	OpenMin   int
	CloseHour int
	CloseMin  int
}

// DefaultSchedule is the NYSE/NASDAQ regular session, 09:30-16:00 ET
func DefaultSchedule() Schedule {
	return Schedule{
		Location:  EasternLocation(),
		OpenHour:  9,
		OpenMin:   30,
		CloseHour: 16,
		CloseMin:  0,
	}
}

// NewSchedule parses a time zone name and HH:MM session bounds
func NewSchedule(tz, open, close string) (Schedule, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Schedule{}, fmt.Errorf("loading time zone %q: %w", tz, err)
	}
	o, err := time.Parse("15:04", open)
	if err != nil {
		return Schedule{}, fmt.Errorf("parsing open time: %w", err)
	}
	c, err := time.Parse("15:04", close)
	if err != nil {
		return Schedule{}, fmt.Errorf("parsing close time: %w", err)
	}
	if c.Hour()*60+c.Minute() <= o.Hour()*60+o.Minute() {
		return Schedule{}, fmt.Errorf("close %s must be after open %s", close, open)
	}
	return Schedule{
		Location:  loc,
		OpenHour:  o.Hour(),
		OpenMin:   o.Minute(),
		CloseHour: c.Hour(),
		CloseMin:  c.Minute(),
	}, nil
}

// EasternLocation returns America/New_York, or a fixed EST zone when the
// tz database is unavailable.
func EasternLocation() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("EST", -5*60*60)
	}
	return loc
}

func (s Schedule) midnight(t time.Time) time.Time {
	t = t.In(s.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.Location)
}

func (s Schedule) at(day time.Time, hour, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, s.Location)
}

// FormatDuration renders a duration as "2h 5m" or "5m"
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "0s"
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
