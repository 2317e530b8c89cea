package store

import (
	"strconv"

	"wsbtracker/internal/market"
	"wsbtracker/pkg/model"
)

var allHeader = []string{"ticker", "bullish", "bearish", "ratio"}

var topHeader = []string{"ticker", "bullish", "bearish", "ratio", "open", "close", "price_change_pct", "sentiment_change_pct"}

// SaveAllTickers overwrites the full ranking of a window
func (s *Store) SaveAllTickers(w market.Window, ranked []model.TickerSentiment) error {
	rows := make([][]string, 0, len(ranked))
	for _, t := range ranked {
		rows = append(rows, []string{t.Symbol, strconv.Itoa(t.Bullish), strconv.Itoa(t.Bearish), formatFloat(t.Ratio)})
	}
	return writeCSV(s.path(w, AllTickersFile), allHeader, rows)
}

// AllTickers loads the full ranking of a window
func (s *Store) AllTickers(w market.Window) ([]model.TickerSentiment, error) {
	rows, err := readCSV(s.path(w, AllTickersFile), allHeader)
	if err != nil {
		return nil, err
	}
	out := make([]model.TickerSentiment, 0, len(rows))
	for _, r := range rows {
		t, ok := parseTickerSentiment(r)
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// SaveTopTickers overwrites the selected tickers of a window
func (s *Store) SaveTopTickers(w market.Window, top []model.TopTicker) error {
	rows := make([][]string, 0, len(top))
	for _, t := range top {
		rows = append(rows, []string{
			t.Symbol,
			strconv.Itoa(t.Bullish),
			strconv.Itoa(t.Bearish),
			formatFloat(t.Ratio),
			formatOptional(t.Open),
			formatOptional(t.Close),
			formatOptional(t.PriceChangePct),
			formatOptional(t.SentimentChangePct),
		})
	}
	return writeCSV(s.path(w, TopTickersFile), topHeader, rows)
}

// TopTickers loads the selected tickers of a window
func (s *Store) TopTickers(w market.Window) ([]model.TopTicker, error) {
	rows, err := readCSV(s.path(w, TopTickersFile), topHeader)
	if err != nil {
		return nil, err
	}
	out := make([]model.TopTicker, 0, len(rows))
	for _, r := range rows {
		ts, ok := parseTickerSentiment(r[:4])
		if !ok {
			continue
		}
		out = append(out, model.TopTicker{
			TickerSentiment:    ts,
			Open:               parseOptional(r[4]),
			Close:              parseOptional(r[5]),
			PriceChangePct:     parseOptional(r[6]),
			SentimentChangePct: parseOptional(r[7]),
		})
	}
	return out, nil
}

func parseTickerSentiment(r []string) (model.TickerSentiment, bool) {
	bull, err1 := strconv.Atoi(r[1])
	bear, err2 := strconv.Atoi(r[2])
	ratio, err3 := strconv.ParseFloat(r[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return model.TickerSentiment{}, false
	}
	return model.TickerSentiment{Symbol: r[0], Bullish: bull, Bearish: bear, Ratio: ratio}, true
}
