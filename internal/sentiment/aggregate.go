package sentiment

import (
	"sort"

	"wsbtracker/pkg/model"
)

// Aggregation is the derived view over a window of comment events
type Aggregation struct {
	Overall float64
	Bullish int
	Bearish int
	Tickers []model.TickerSentiment // ranked by (bullish, bearish) descending
}

// Ratio returns bull / max(bear, 1)
func Ratio(bull, bear int) float64 {
	if bear < 1 {
		bear = 1
	}
	return float64(bull) / float64(bear)
}

// Aggregate counts bullish and bearish events overall and per ticker.
// Ambiguous events are ignored; with nothing left the market reads neutral
// (overall 1.0). Tickers with equal counts keep the order in
// which they first appeared in events.
func Aggregate(events []model.CommentEvent) Aggregation {
	type tally struct{ bull, bear int }

	var (
		bull, bear int
		order      []string
		perTicker  = make(map[string]*tally)
	)

	for _, e := range events {
		bucket := e.Sentiment.Bucket()
		if bucket == model.Ambiguous {
			continue
		}
		if bucket == model.Bullish {
			bull++
		} else {
			bear++
		}

		if e.Ticker == "" {
			continue
		}
		t, ok := perTicker[e.Ticker]
		if !ok {
			t = &tally{}
			perTicker[e.Ticker] = t
			order = append(order, e.Ticker)
		}
		if bucket == model.Bullish {
			t.bull++
		} else {
			t.bear++
		}
	}

	ranked := make([]model.TickerSentiment, 0, len(order))
	for _, sym := range order {
		t := perTicker[sym]
		ranked = append(ranked, model.TickerSentiment{
			Symbol:  sym,
			Bullish: t.bull,
			Bearish: t.bear,
			Ratio:   Ratio(t.bull, t.bear),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Bullish != ranked[j].Bullish {
			return ranked[i].Bullish > ranked[j].Bullish
		}
		return ranked[i].Bearish > ranked[j].Bearish
	})

	overall := 1.0
	if bull+bear > 0 {
		overall = Ratio(bull, bear)
	}
	return Aggregation{
		Overall: overall,
		Bullish: bull,
		Bearish: bear,
		Tickers: ranked,
	}
}

// Top returns at most n entries of the ranking
func (a Aggregation) Top(n int) []model.TickerSentiment {
	if n > len(a.Tickers) {
		n = len(a.Tickers)
	}
	return a.Tickers[:n]
}

// SelectTop picks the tickers that agree with the overall mood.
// A bullish market keeps tickers with ratio > 1 in ranking order; a bearish
// one keeps tickers with ratio < 1, most bearish first. A neutral market
// (overall == 1) selects nothing.
func SelectTop(overall float64, ranked []model.TickerSentiment, n int) []model.TickerSentiment {
	var out []model.TickerSentiment
	switch {
	case overall > 1:
		for _, t := range ranked {
			if t.Ratio > 1 {
				out = append(out, t)
			}
		}
	case overall < 1:
		for _, t := range ranked {
			if t.Ratio < 1 {
				out = append(out, t)
			}
		}
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Ratio < out[j].Ratio
		})
	}

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ChangePct returns the percent change from prev to cur, or nil when prev is
// zero and the change is undefined.
func ChangePct(prev, cur float64) *float64 {
	if prev == 0 {
		return nil
	}
	return model.Float(round3((cur - prev) / prev * 100))
}

// StatusRow is one line of the periodic status report
type StatusRow struct {
	model.TickerSentiment
	RatioChangePct *float64
}

// StatusRows compares the current ranking head against the previous status
// report. Tickers absent from previous have no change.
func StatusRows(current, previous []model.TickerSentiment, n int) []StatusRow {
	prev := make(map[string]float64, len(previous))
	for _, t := range previous {
		prev[t.Symbol] = t.Ratio
	}

	if n > len(current) {
		n = len(current)
	}
	rows := make([]StatusRow, 0, n)
	for _, t := range current[:n] {
		row := StatusRow{TickerSentiment: t}
		if p, ok := prev[t.Symbol]; ok {
			row.RatioChangePct = ChangePct(p, t.Ratio)
		}
		rows = append(rows, row)
	}
	return rows
}

// EnrichTop wraps the selection as TopTickers and fills the day-over-day
// sentiment change from the previous trading day's selection.
func EnrichTop(selected []model.TickerSentiment, previous []model.TopTicker) []model.TopTicker {
	prev := make(map[string]float64, len(previous))
	for _, t := range previous {
		prev[t.Symbol] = t.Ratio
	}

	out := make([]model.TopTicker, 0, len(selected))
	for _, t := range selected {
		top := model.TopTicker{TickerSentiment: t}
		if p, ok := prev[t.Symbol]; ok {
			top.SentimentChangePct = ChangePct(p, t.Ratio)
		}
		out = append(out, top)
	}
	return out
}
