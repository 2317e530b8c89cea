package squeeze

import (
	"sort"
	"time"

	"wsbtracker/pkg/model"
)

const painTopN = 10

// Watchlist is the result of one screening run
type Watchlist struct {
	Candidates []model.SqueezeCandidate `json:"candidates"`
	Screened   int                      `json:"screened"`
	Failed     int                      `json:"failed"`
	Duration   time.Duration            `json:"duration"`
}

func (w *Watchlist) filter(keep func(model.SqueezeCandidate) bool) []model.SqueezeCandidate {
	var out []model.SqueezeCandidate
	for _, c := range w.Candidates {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// PriceAndVolumeUptrend lists tickers trending up on both price and volume
func (w *Watchlist) PriceAndVolumeUptrend() []model.SqueezeCandidate {
	return w.filter(func(c model.SqueezeCandidate) bool { return c.VolumeUptrend && c.PriceUptrend })
}

// HighShortShares lists tickers with at least 5% of float sold short
func (w *Watchlist) HighShortShares() []model.SqueezeCandidate {
	return w.filter(func(c model.SqueezeCandidate) bool { return c.HighShortShares })
}

// PriceUptrend lists tickers in a six-day price uptrend
func (w *Watchlist) PriceUptrend() []model.SqueezeCandidate {
	return w.filter(func(c model.SqueezeCandidate) bool { return c.PriceUptrend })
}

// ShortPain lists heavily shorted tickers in a price uptrend
func (w *Watchlist) ShortPain() []model.SqueezeCandidate {
	return w.filter(func(c model.SqueezeCandidate) bool { return c.HighShortShares && c.PriceUptrend })
}

// Perfect lists tickers meeting the short, price and volume conditions at once
func (w *Watchlist) Perfect() []model.SqueezeCandidate {
	return w.filter(func(c model.SqueezeCandidate) bool {
		return c.HighShortShares && c.PriceUptrend && c.VolumeUptrend
	})
}

// GreatestPain returns the ten tickers with the highest shorts pain
func (w *Watchlist) GreatestPain() []model.SqueezeCandidate {
	out := append([]model.SqueezeCandidate(nil), w.Candidates...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ShortsPain > out[j].ShortsPain })
	if len(out) > painTopN {
		out = out[:painTopN]
	}
	return out
}

// Symbols returns the watchlist tickers in screening order
func (w *Watchlist) Symbols() []string {
	out := make([]string, len(w.Candidates))
	for i, c := range w.Candidates {
		out[i] = c.Symbol
	}
	return out
}
