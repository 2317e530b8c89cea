package market

import "time"

// Session phases
const (
	PhaseOpen       = "open"
	PhasePreMarket  = "pre-market"
	PhaseAfterHours = "after-hours"
	PhaseWeekend    = "weekend"
	PhaseHoliday    = "holiday"
)

// Session is the market state at one instant. It is recomputed on every tick
// and passed by value.
type Session struct {
	Now        time.Time
	TradingDay bool
	IsOpen     bool
	Phase      string
	Open       time.Time // zero on non-trading days
	Close      time.Time
	EarlyClose bool
}

// SessionAt evaluates cal at now
func SessionAt(cal Calendar, now time.Time) Session {
	now = localize(cal, now)
	s := Session{Now: now}

	open, close, ok := cal.SessionTimes(now)
	if !ok {
		s.Phase = PhaseHoliday
		if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
			s.Phase = PhaseWeekend
		}
		return s
	}

	s.TradingDay = true
	s.Open = open
	s.Close = close
	s.EarlyClose = close.Hour() == earlyCloseHour && close.Minute() == 0

	switch {
	case now.Before(open):
		s.Phase = PhasePreMarket
	case now.Before(close):
		s.Phase = PhaseOpen
		s.IsOpen = true
	default:
		s.Phase = PhaseAfterHours
	}
	return s
}

// TimeToClose returns how long the session stays open
func (s Session) TimeToClose() time.Duration {
	if !s.IsOpen {
		return 0
	}
	return s.Close.Sub(s.Now)
}

// Window is the span of trading days a comment snapshot belongs to: from
// the close of Start to the close of End.
type Window struct {
	Start time.Time
	End   time.Time
}

// Name renders the window as "2006-01-02_2006-01-02"
func (w Window) Name() string {
	return w.Start.Format("2006-01-02") + "_" + w.End.Format("2006-01-02")
}

// WindowAt returns the snapshot window containing now. Before and during a
// session it ends today; after the close, or on a non-trading day, it runs
// from the last session to the next one.
func WindowAt(cal Calendar, now time.Time) Window {
	now = localize(cal, now)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	_, close, ok := cal.SessionTimes(now)
	switch {
	case !ok:
		return Window{Start: PrevTradingDay(cal, today), End: NextTradingDay(cal, today)}
	case now.Before(close):
		return Window{Start: PrevTradingDay(cal, today), End: today}
	default:
		return Window{Start: today, End: NextTradingDay(cal, today)}
	}
}

// PreviousWindow returns the window that ended when the current one began
func PreviousWindow(cal Calendar, now time.Time) Window {
	cur := WindowAt(cal, now)
	return Window{Start: PrevTradingDay(cal, cur.Start), End: cur.Start}
}

// localize moves now into the calendar's zone when it has one, so date
// arithmetic happens on exchange days.
func localize(cal Calendar, now time.Time) time.Time {
	if l, ok := cal.(interface{ Location() *time.Location }); ok && l.Location() != nil {
		return now.In(l.Location())
	}
	return now
}
