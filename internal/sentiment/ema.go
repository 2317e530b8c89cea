package sentiment

import (
	"math"
	"time"

	"wsbtracker/pkg/model"
)

// DateLayout is the key format of EMA points
const DateLayout = "2006-01-02"

// Signal is the trading stance derived from sentiment vs its EMA
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// SignalFor compares today's ratio with its EMA
func SignalFor(ratio, ema float64) Signal {
	switch {
	case ratio > ema:
		return SignalBuy
	case ratio < ema:
		return SignalSell
	}
	return SignalHold
}

// EmaSeries is an append-only, date-keyed exponential moving average of
// the overall sentiment ratio. The first point seeds the average.
type EmaSeries struct {
	period int
	alpha  float64
	points []model.EmaPoint
}

// NewEmaSeries rebuilds a series from stored points. Stored EMA values are
// recomputed from the ratios so a changed period takes effect.
func NewEmaSeries(period int, points []model.EmaPoint) *EmaSeries {
	s := &EmaSeries{
		period: period,
		alpha:  2 / float64(period+1),
	}
	for _, p := range points {
		s.push(p.Date, p.Ratio)
	}
	return s
}

// Period returns the EMA span
func (s *EmaSeries) Period() int {
	return s.period
}

// Update appends today's ratio and returns today's EMA. Calling it again for
// a date already present leaves the series unchanged and returns the stored
// value; added reports whether a point was appended.
func (s *EmaSeries) Update(date time.Time, ratio float64) (ema float64, added bool) {
	key := date.Format(DateLayout)
	if p, ok := s.Lookup(key); ok {
		return p.EMA, false
	}
	return s.push(key, ratio), true
}

func (s *EmaSeries) push(date string, ratio float64) float64 {
	ema := ratio
	if n := len(s.points); n > 0 {
		ema = s.alpha*ratio + (1-s.alpha)*s.points[n-1].EMA
	}
	s.points = append(s.points, model.EmaPoint{Date: date, Ratio: ratio, EMA: ema})
	return ema
}

// Lookup finds the point for a date key
func (s *EmaSeries) Lookup(date string) (model.EmaPoint, bool) {
	for i := len(s.points) - 1; i >= 0; i-- {
		if s.points[i].Date == date {
			return s.points[i], true
		}
	}
	return model.EmaPoint{}, false
}

// Latest returns the most recent point
func (s *EmaSeries) Latest() (model.EmaPoint, bool) {
	if len(s.points) == 0 {
		return model.EmaPoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// Points returns a copy of the series
func (s *EmaSeries) Points() []model.EmaPoint {
	out := make([]model.EmaPoint, len(s.points))
	copy(out, s.points)
	return out
}

// Len returns the number of points
func (s *EmaSeries) Len() int {
	return len(s.points)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
