package market

import "time"

// Calendar answers which days the exchange trades and when
type Calendar interface {
	IsTradingDay(date time.Time) bool
	SessionTimes(date time.Time) (open, close time.Time, ok bool)
}

// NYSE holidays. Dates are exchange-local.
var holidays = map[string]string{
	"2024-01-01": "New Year's Day",
	"2024-01-15": "Martin Luther King Jr. Day",
	"2024-02-19": "Presidents Day",
	"2024-03-29": "Good Friday",
	"2024-05-27": "Memorial Day",
	"2024-06-19": "Juneteenth",
	"2024-07-04": "Independence Day",
	"2024-09-02": "Labor Day",
	"2024-11-28": "Thanksgiving",
	"2024-12-25": "Christmas",

	"2025-01-01": "New Year's Day",
	"2025-01-09": "National Day of Mourning",
	"2025-01-20": "Martin Luther King Jr. Day",
	"2025-02-17": "Presidents Day",
	"2025-04-18": "Good Friday",
	"2025-05-26": "Memorial Day",
	"2025-06-19": "Juneteenth",
	"2025-07-04": "Independence Day",
	"2025-09-01": "Labor Day",
	"2025-11-27": "Thanksgiving",
	"2025-12-25": "Christmas",

	"2026-01-01": "New Year's Day",
	"2026-01-19": "Martin Luther King Jr. Day",
	"2026-02-16": "Presidents Day",
	"2026-04-03": "Good Friday",
	"2026-05-25": "Memorial Day",
	"2026-06-19": "Juneteenth",
	"2026-07-03": "Independence Day (observed)",
	"2026-09-07": "Labor Day",
	"2026-11-26": "Thanksgiving",
	"2026-12-25": "Christmas",

	"2027-01-01": "New Year's Day",
	"2027-01-18": "Martin Luther King Jr. Day",
	"2027-02-15": "Presidents Day",
	"2027-03-26": "Good Friday",
	"2027-05-31": "Memorial Day",
	"2027-06-18": "Juneteenth (observed)",
	"2027-07-05": "Independence Day (observed)",
	"2027-09-06": "Labor Day",
	"2027-11-25": "Thanksgiving",
	"2027-12-24": "Christmas (observed)",
}

// 13:00 closes
var earlyCloses = map[string]struct{}{
	"2024-07-03": {},
	"2024-11-29": {},
	"2024-12-24": {},
	"2025-07-03": {},
	"2025-11-28": {},
	"2025-12-24": {},
	"2026-11-27": {},
	"2026-12-24": {},
	"2027-11-26": {},
}

const earlyCloseHour = 13

// NYSECalendar is the US equity calendar on a configurable schedule
type NYSECalendar struct {
	schedule Schedule
}

// NewNYSECalendar creates a calendar using schedule for regular sessions
func NewNYSECalendar(schedule Schedule) *NYSECalendar {
	return &NYSECalendar{schedule: schedule}
}

// Location returns the exchange time zone
func (c *NYSECalendar) Location() *time.Location {
	return c.schedule.Location
}

// Holiday returns the holiday name when date is a market holiday
func (c *NYSECalendar) Holiday(date time.Time) (string, bool) {
	name, ok := holidays[date.In(c.schedule.Location).Format("2006-01-02")]
	return name, ok
}

// IsTradingDay reports whether the exchange trades on date
func (c *NYSECalendar) IsTradingDay(date time.Time) bool {
	d := date.In(c.schedule.Location)
	if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		return false
	}
	_, holiday := c.Holiday(d)
	return !holiday
}

// SessionTimes returns the open and close of date's session.
// ok is false when the exchange does not trade that day.
func (c *NYSECalendar) SessionTimes(date time.Time) (open, close time.Time, ok bool) {
	if !c.IsTradingDay(date) {
		return time.Time{}, time.Time{}, false
	}
	day := c.schedule.midnight(date)
	open = c.schedule.at(day, c.schedule.OpenHour, c.schedule.OpenMin)
	close = c.schedule.at(day, c.schedule.CloseHour, c.schedule.CloseMin)
	if _, early := earlyCloses[day.Format("2006-01-02")]; early {
		close = c.schedule.at(day, earlyCloseHour, 0)
	}
	return open, close, true
}

// NextTradingDay returns the first trading day strictly after date
func NextTradingDay(cal Calendar, date time.Time) time.Time {
	return stepTradingDay(cal, date, 1)
}

// PrevTradingDay returns the last trading day strictly before date
func PrevTradingDay(cal Calendar, date time.Time) time.Time {
	return stepTradingDay(cal, date, -1)
}

func stepTradingDay(cal Calendar, date time.Time, dir int) time.Time {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	for i := 0; i < 14; i++ {
		d = d.AddDate(0, 0, dir)
		if cal.IsTradingDay(d) {
			return d
		}
	}
	return d
}
