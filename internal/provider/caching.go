package provider

import (
	"context"
	"sync"

	"wsbtracker/pkg/model"
)

// CachingProvider memoises daily candles and quotes for the lifetime of one
// screening run, where several checks read the same symbol's history.
type CachingProvider struct {
	inner   Provider
	mu      sync.Mutex
	candles map[string][]model.Candle
	quotes  map[string]*model.Quote
	minDays int
}

// NewCachingProvider creates a caching wrapper. minDays is the history
// always fetched so that later, shorter requests are served from memory.
func NewCachingProvider(inner Provider, minDays int) *CachingProvider {
	return &CachingProvider{
		inner:   inner,
		candles: make(map[string][]model.Candle),
		quotes:  make(map[string]*model.Quote),
		minDays: minDays,
	}
}

func (p *CachingProvider) Name() string      { return p.inner.Name() }
func (p *CachingProvider) IsAvailable() bool { return p.inner.IsAvailable() }
func (p *CachingProvider) RateLimit() int    { return p.inner.RateLimit() }

// GetQuote returns the cached quote or fetches it once
func (p *CachingProvider) GetQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	p.mu.Lock()
	if q, ok := p.quotes[symbol]; ok {
		p.mu.Unlock()
		return q, nil
	}
	p.mu.Unlock()

	q, err := p.inner.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.quotes[symbol] = q
	p.mu.Unlock()
	return q, nil
}

// GetDailyCandles serves the trailing days of the cached history
func (p *CachingProvider) GetDailyCandles(ctx context.Context, symbol string, days int) ([]model.Candle, error) {
	p.mu.Lock()
	cached, ok := p.candles[symbol]
	p.mu.Unlock()
	if ok {
		if len(cached) >= days {
			return cached[len(cached)-days:], nil
		}
		return cached, nil
	}

	fetchDays := p.minDays
	if days > fetchDays {
		fetchDays = days
	}

	candles, err := p.inner.GetDailyCandles(ctx, symbol, fetchDays)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.candles[symbol] = candles
	p.mu.Unlock()

	if len(candles) >= days {
		return candles[len(candles)-days:], nil
	}
	return candles, nil
}

// Reset drops every cached entry
func (p *CachingProvider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.candles = make(map[string][]model.Candle)
	p.quotes = make(map[string]*model.Quote)
}
