package sentiment

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsbtracker/pkg/model"
)

func day(n int) time.Time {
	return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestEmaSeedsWithFirstRatio(t *testing.T) {
	s := NewEmaSeries(10, nil)
	ema, added := s.Update(day(0), 1.8)
	assert.True(t, added)
	assert.Equal(t, 1.8, ema)
}

func TestEmaRecurrence(t *testing.T) {
	s := NewEmaSeries(10, nil)
	s.Update(day(0), 1.0)
	ema, _ := s.Update(day(1), 2.0)

	alpha := 2.0 / 11.0
	assert.InDelta(t, alpha*2.0+(1-alpha)*1.0, ema, 1e-12)
}

func TestEmaConvergesOnConstantSeries(t *testing.T) {
	const r = 1.37
	s := NewEmaSeries(10, nil)
	s.Update(day(0), 0.1)

	prevGap := math.Inf(1)
	for i := 1; i < 200; i++ {
		ema, _ := s.Update(day(i), r)
		gap := math.Abs(ema - r)
		assert.LessOrEqual(t, gap, prevGap)
		prevGap = gap
	}
	assert.Less(t, prevGap, 1e-9)
}

func TestEmaIdempotentPerDate(t *testing.T) {
	s := NewEmaSeries(10, nil)
	first, _ := s.Update(day(0), 2.0)

	again, added := s.Update(day(0), 5.0)
	assert.False(t, added)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, s.Len())
}

func TestEmaRebuildRecomputes(t *testing.T) {
	stored := []model.EmaPoint{
		{Date: "2026-03-02", Ratio: 1.0, EMA: 99},
		{Date: "2026-03-03", Ratio: 3.0, EMA: 99},
	}
	s := NewEmaSeries(3, stored)

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, 2.0, latest.EMA) // alpha 0.5
	assert.Equal(t, 3, s.Period())
}

func TestSignalFor(t *testing.T) {
	assert.Equal(t, SignalBuy, SignalFor(1.2, 1.0))
	assert.Equal(t, SignalSell, SignalFor(0.8, 1.0))
	assert.Equal(t, SignalHold, SignalFor(1.0, 1.0))
}
