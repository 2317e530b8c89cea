package squeeze

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"wsbtracker/internal/metrics"
	"wsbtracker/internal/provider"
	"wsbtracker/pkg/model"
)

// ErrInsufficientHistory is returned for tickers with too few completed
// sessions to evaluate the trend checks.
var ErrInsufficientHistory = errors.New("insufficient price history")

// ProgressCallback is called with progress updates
type ProgressCallback func(screened, total int, symbol string)

// Screener evaluates tickers for short squeeze conditions in parallel
type Screener struct {
	provider     provider.Provider
	workers      int
	timeout      time.Duration
	historyDays  int
	progressFunc ProgressCallback
	log          *zap.SugaredLogger
	metrics      *metrics.Metrics
}

// Option configures a Screener
type Option func(*Screener)

// WithLogger sets the screener logger
func WithLogger(l *zap.SugaredLogger) Option { return func(s *Screener) { s.log = l } }

// WithMetrics records screening outcomes
func WithMetrics(m *metrics.Metrics) Option { return func(s *Screener) { s.metrics = m } }

// WithHistoryDays sets how many daily candles are requested per ticker
func WithHistoryDays(days int) Option { return func(s *Screener) { s.historyDays = days } }

// NewScreener creates a new screener
func NewScreener(p provider.Provider, workers int, timeout time.Duration, opts ...Option) *Screener {
	if workers < 1 {
		workers = 1
	}
	s := &Screener{
		provider:    p,
		workers:     workers,
		timeout:     timeout,
		historyDays: 30,
		log:         zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetProgressCallback sets the progress callback function
func (s *Screener) SetProgressCallback(fn ProgressCallback) {
	s.progressFunc = fn
}

type outcome struct {
	index     int
	candidate *model.SqueezeCandidate
	err       error
}

// Screen fetches market data for every symbol and returns the tickers that
// pass the inclusion gate and the volume check, in input order.
func (s *Screener) Screen(ctx context.Context, symbols []string) (*Watchlist, error) {
	startTime := time.Now()
	wl := &Watchlist{Candidates: []model.SqueezeCandidate{}}

	if len(symbols) == 0 {
		return wl, nil
	}

	// a caching provider must not serve quotes from an earlier run
	if r, ok := s.provider.(interface{ Reset() }); ok {
		r.Reset()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type job struct {
		index  int
		symbol string
	}

	jobChan := make(chan job, len(symbols))
	resultChan := make(chan outcome, len(symbols))

	for i, sym := range symbols {
		jobChan <- job{index: i, symbol: sym}
	}
	close(jobChan)

	var screenedCount int64

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobChan {
				select {
				case <-ctx.Done():
					return
				default:
					c, err := s.Evaluate(ctx, j.symbol)
					resultChan <- outcome{index: j.index, candidate: c, err: err}

					count := atomic.AddInt64(&screenedCount, 1)
					if s.progressFunc != nil {
						s.progressFunc(int(count), len(symbols), j.symbol)
					}
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var results []outcome
	for r := range resultChan {
		switch {
		case r.err != nil:
			wl.Failed++
			s.metrics.Screened("error")
			s.log.Warnw("screening failed", "symbol", symbols[r.index], "error", r.err)
		case r.candidate == nil:
			s.metrics.Screened("dropped")
		default:
			s.metrics.Screened("kept")
			results = append(results, r)
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })
	for _, r := range results {
		wl.Candidates = append(wl.Candidates, *r.candidate)
	}

	wl.Screened = int(screenedCount)
	wl.Duration = time.Since(startTime)
	s.metrics.ScreenDuration(wl.Duration)

	if err := ctx.Err(); err != nil && wl.Screened < len(symbols) {
		return wl, fmt.Errorf("screening interrupted after %d of %d tickers: %w", wl.Screened, len(symbols), err)
	}
	return wl, nil
}

// Evaluate runs every check for one ticker. It returns nil without error
// when the ticker fails the inclusion gate or trades on too little volume.
func (s *Screener) Evaluate(ctx context.Context, symbol string) (*model.SqueezeCandidate, error) {
	quote, err := s.provider.GetQuote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", symbol, err)
	}
	if quote.PreviousClose <= 0 {
		return nil, fmt.Errorf("quote %s: no previous close", symbol)
	}

	candles, err := s.provider.GetDailyCandles(ctx, symbol, s.historyDays)
	if err != nil {
		return nil, fmt.Errorf("candles %s: %w", symbol, err)
	}

	// the last candle is the session in progress
	if len(candles) < volumeDays+1 {
		return nil, fmt.Errorf("%s: %w (%d candles)", symbol, ErrInsufficientHistory, len(candles))
	}
	history := candles[:len(candles)-1]

	closes := make([]float64, len(history))
	volumes := make([]float64, len(history))
	for i, c := range history {
		closes[i] = c.Close
		volumes[i] = float64(c.Volume)
	}

	pct := PercentChange(quote.Price, quote.PreviousClose)
	if !Included(pct, closes) {
		return nil, nil
	}

	volUp, daysAbove := VolumeTrend(volumes, quote.AverageVolume)
	if daysAbove < minDaysAboveVolume {
		s.log.Debugw("dropping from watchlist on volume", "symbol", symbol, "days_above_avg", daysAbove)
		return nil, nil
	}

	sharesChange, shortShares, beta := ShortsBeta(quote.ShortPctFloat, quote.Beta, pct)

	return &model.SqueezeCandidate{
		Symbol:             symbol,
		CurrentPrice:       quote.Price,
		PrevClose:          quote.PreviousClose,
		PercentChange:      pct,
		AvgVolume:          quote.AverageVolume,
		NearYearlyLow:      NearYearlyLow(quote.Price, quote.FiftyTwoWeekLow),
		VolumeUptrend:      volUp,
		PriceUptrend:       PriceTrend(closes),
		HighSharesChange:   sharesChange,
		HighShortShares:    shortShares,
		HighBeta:           beta,
		ShortPctFloat:      quote.ShortPctFloat,
		Beta:               quote.Beta,
		ShortsPain:         ShortsPain(quote.ShortPctFloat, pct),
		DaysAboveAvgVolume: daysAbove,
	}, nil
}
