package squeeze

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsbtracker/pkg/model"
)

func TestPercentChange(t *testing.T) {
	assert.Equal(t, 12.0, PercentChange(112, 100))
	assert.Equal(t, -3.333, PercentChange(29, 30))
	assert.Equal(t, 0.0, PercentChange(10, 0))
}

func TestIsPriceUptrend(t *testing.T) {
	assert.True(t, IsPriceUptrend([]float64{50, 100, 103, 106, 109}))
	assert.False(t, IsPriceUptrend([]float64{100, 103, 104, 108}))
	// only the last four closes count
	assert.True(t, IsPriceUptrend([]float64{500, 100, 103, 106, 109}))
}

func TestIncluded(t *testing.T) {
	flat := []float64{100, 100, 100, 100}
	rising := []float64{100, 103, 106, 109}

	assert.True(t, Included(5, flat))
	assert.False(t, Included(4.9, flat))
	assert.True(t, Included(0.5, rising))
	assert.False(t, Included(0, rising))
	assert.False(t, Included(-1, rising))
}

func TestNearYearlyLow(t *testing.T) {
	assert.True(t, NearYearlyLow(13.5, 10))
	assert.False(t, NearYearlyLow(13.6, 10))
}

func TestVolumeTrend(t *testing.T) {
	tests := []struct {
		name      string
		volumes   []float64
		avg       float64
		wantUp    bool
		wantAbove int
	}{
		{
			name:      "steady climb",
			volumes:   []float64{10, 10, 10, 10, 11, 12, 13, 14, 15, 16},
			avg:       9,
			wantUp:    true,
			wantAbove: 3,
		},
		{
			name:      "two falling sessions reset",
			volumes:   []float64{10, 10, 10, 10, 11, 12, 13, 12, 11, 10},
			avg:       100,
			wantUp:    false,
			wantAbove: 0,
		},
		{
			name:      "single dip keeps uptrend",
			volumes:   []float64{10, 10, 10, 10, 11, 12, 13, 12, 14, 15},
			avg:       100,
			wantUp:    true,
			wantAbove: 0,
		},
		{
			name:      "recovers after falling sessions",
			volumes:   []float64{50, 50, 50, 50, 40, 30, 31, 32, 33, 34},
			avg:       100,
			wantUp:    true,
			wantAbove: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, above := VolumeTrend(tt.volumes, tt.avg)
			assert.Equal(t, tt.wantUp, up)
			assert.Equal(t, tt.wantAbove, above)
		})
	}
}

func TestPriceTrend(t *testing.T) {
	assert.False(t, PriceTrend([]float64{100, 96, 97, 98, 99, 100, 101}))
	assert.True(t, PriceTrend([]float64{100, 106, 112, 100, 106, 112, 118}))
	assert.True(t, PriceTrend([]float64{100, 105, 111, 117, 123, 130, 137}))
}

func TestShortsBeta(t *testing.T) {
	sharesChange, shortShares, beta := ShortsBeta(model.Float(16), model.Float(1.2), 12)
	assert.True(t, sharesChange)
	assert.True(t, shortShares)
	assert.True(t, beta)

	sharesChange, shortShares, beta = ShortsBeta(model.Float(16), model.Float(0.5), 8)
	assert.False(t, sharesChange)
	assert.True(t, shortShares)
	assert.False(t, beta)

	sharesChange, shortShares, beta = ShortsBeta(nil, nil, 20)
	assert.False(t, sharesChange)
	assert.False(t, shortShares)
	assert.False(t, beta)

	_, _, beta = ShortsBeta(nil, model.Float(-1), 0)
	assert.True(t, beta)
}

func TestShortsPain(t *testing.T) {
	assert.Equal(t, 192.0, ShortsPain(model.Float(16), 12))
	assert.Equal(t, 0.0, ShortsPain(nil, 12))
}

type fakeProvider struct {
	quotes  map[string]*model.Quote
	candles map[string][]model.Candle
}

func (f *fakeProvider) Name() string      { return "fake" }
func (f *fakeProvider) IsAvailable() bool { return true }
func (f *fakeProvider) RateLimit() int    { return 60 }

func (f *fakeProvider) GetQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	q, ok := f.quotes[symbol]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	return q, nil
}

func (f *fakeProvider) GetDailyCandles(ctx context.Context, symbol string, days int) ([]model.Candle, error) {
	return f.candles[symbol], nil
}

// series builds eleven daily candles, the last one being today
func series(closes, volumes []float64) []model.Candle {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	out := make([]model.Candle, len(closes))
	for i := range closes {
		out[i] = model.Candle{Time: start.AddDate(0, 0, i), Close: closes[i], Volume: int64(volumes[i])}
	}
	return out
}

func newTestProvider() *fakeProvider {
	climbing := []float64{100, 100, 100, 100, 100, 106, 112, 118, 124, 131, 140}
	loud := []float64{10, 10, 10, 10, 11, 12, 13, 14, 16, 17, 20}
	quiet := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}

	return &fakeProvider{
		quotes: map[string]*model.Quote{
			"GME":   {Symbol: "GME", Price: 112, PreviousClose: 100, AverageVolume: 10, FiftyTwoWeekLow: 90, ShortPctFloat: model.Float(16), Beta: model.Float(1.5)},
			"AMC":   {Symbol: "AMC", Price: 106, PreviousClose: 100, AverageVolume: 10, FiftyTwoWeekLow: 20},
			"QUIET": {Symbol: "QUIET", Price: 110, PreviousClose: 100, AverageVolume: 10, FiftyTwoWeekLow: 20},
			"FLAT":  {Symbol: "FLAT", Price: 101, PreviousClose: 100, AverageVolume: 10, FiftyTwoWeekLow: 20},
		},
		candles: map[string][]model.Candle{
			"GME":   series(climbing, loud),
			"AMC":   series(climbing, loud),
			"QUIET": series(climbing, quiet),
			"FLAT":  series([]float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100}, loud),
		},
	}
}

func TestEvaluate(t *testing.T) {
	s := NewScreener(newTestProvider(), 1, time.Minute)

	c, err := s.Evaluate(context.Background(), "GME")
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, 12.0, c.PercentChange)
	assert.True(t, c.NearYearlyLow)
	assert.True(t, c.VolumeUptrend)
	assert.True(t, c.PriceUptrend)
	assert.True(t, c.HighSharesChange)
	assert.True(t, c.HighShortShares)
	assert.True(t, c.HighBeta)
	assert.Equal(t, 192.0, c.ShortsPain)
	assert.Equal(t, 2, c.DaysAboveAvgVolume)
}

func TestEvaluateDropsLowVolume(t *testing.T) {
	s := NewScreener(newTestProvider(), 1, time.Minute)

	c, err := s.Evaluate(context.Background(), "QUIET")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestEvaluateRejectsSmallGainWithoutUptrend(t *testing.T) {
	s := NewScreener(newTestProvider(), 1, time.Minute)

	c, err := s.Evaluate(context.Background(), "FLAT")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestEvaluateShortHistory(t *testing.T) {
	p := newTestProvider()
	p.candles["GME"] = p.candles["GME"][:5]
	s := NewScreener(p, 1, time.Minute)

	_, err := s.Evaluate(context.Background(), "GME")
	assert.True(t, errors.Is(err, ErrInsufficientHistory))
}

func TestScreen(t *testing.T) {
	s := NewScreener(newTestProvider(), 3, time.Minute)

	var calls int32
	s.SetProgressCallback(func(screened, total int, symbol string) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, 5, total)
	})

	wl, err := s.Screen(context.Background(), []string{"GME", "QUIET", "NOPE", "AMC", "FLAT"})
	require.NoError(t, err)

	assert.Equal(t, []string{"GME", "AMC"}, wl.Symbols())
	assert.Equal(t, 5, wl.Screened)
	assert.Equal(t, 1, wl.Failed)
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))

	assert.Equal(t, []string{"GME"}, symbolsOf(wl.HighShortShares()))
	assert.Equal(t, []string{"GME"}, symbolsOf(wl.Perfect()))
	assert.Equal(t, []string{"GME", "AMC"}, symbolsOf(wl.GreatestPain()))
}

func TestScreenEmpty(t *testing.T) {
	s := NewScreener(newTestProvider(), 3, time.Minute)
	wl, err := s.Screen(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, wl.Candidates)
}

func TestReport(t *testing.T) {
	wl := &Watchlist{Candidates: []model.SqueezeCandidate{
		{Symbol: "GME", PercentChange: 12, ShortPctFloat: model.Float(16), ShortsPain: 192, HighShortShares: true, PriceUptrend: true, VolumeUptrend: true},
		{Symbol: "AMC", PercentChange: 6, PriceUptrend: true},
	}}

	out, err := Report(wl)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, reportRule+"\n"))
	assert.Contains(t, out, "SHORT SQUEEZE REPORT")
	assert.Contains(t, out, "Ticker: GME      | Shorts % Float: 16.00    | % Change: 12.00")
	assert.Contains(t, out, "Ticker: AMC      | % Change: 6.00")
	assert.Contains(t, out, ">>> Perfect Stocks w/ Positive Price Trend, Volume Trend, and High Short Shares Float\nTicker: GME")
	assert.Contains(t, out, "Ticker: GME      | Shorts Pain: 192.00   | % Change: 12.00")
}

func symbolsOf(cs []model.SqueezeCandidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Symbol
	}
	return out
}
