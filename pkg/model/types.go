package model

import "time"

// Candle represents a single daily candlestick (OHLCV data)
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Quote is a point-in-time snapshot of a ticker's trading statistics.
// Statistics a provider may not publish are pointers.
type Quote struct {
	Symbol          string   `json:"symbol"`
	Price           float64  `json:"price"`
	Open            float64  `json:"open"`
	PreviousClose   float64  `json:"previous_close"`
	AverageVolume   float64  `json:"average_volume"`
	FiftyTwoWeekLow float64  `json:"fifty_two_week_low"`
	Beta            *float64 `json:"beta,omitempty"`
	ShortPctFloat   *float64 `json:"short_pct_float,omitempty"` // percent, 16 means 16%
}

// Sentiment is the marker a comment was tagged with
type Sentiment string

const (
	Bullish         Sentiment = "bullish"
	PossiblyBullish Sentiment = "(bullish)"
	Bearish         Sentiment = "bearish"
	PossiblyBearish Sentiment = "(bearish)"
	Ambiguous       Sentiment = "ambiguous"
)

// ParseSentiment maps a scraped marker token onto a Sentiment.
// Unknown tokens (including "none") are Ambiguous.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(s) {
	case Bullish, PossiblyBullish, Bearish, PossiblyBearish:
		return Sentiment(s)
	}
	return Ambiguous
}

// Bucket folds the parenthesised forms into their plain bucket.
func (s Sentiment) Bucket() Sentiment {
	switch s {
	case Bullish, PossiblyBullish:
		return Bullish
	case Bearish, PossiblyBearish:
		return Bearish
	}
	return Ambiguous
}

// CommentEvent is one (comment, ticker) pair extracted from the feed.
// A comment naming three tickers produces three events sharing CommentID.
type CommentEvent struct {
	ID        string    `json:"id"`
	CommentID string    `json:"comment_id"`
	Time      string    `json:"time"`
	Sentiment Sentiment `json:"sentiment"`
	Ticker    string    `json:"ticker,omitempty"`
	Body      string    `json:"body"`
}

// TickerSentiment is the aggregated bull/bear tally for one ticker
type TickerSentiment struct {
	Symbol  string  `json:"symbol"`
	Bullish int     `json:"bullish"`
	Bearish int     `json:"bearish"`
	Ratio   float64 `json:"ratio"` // bullish / max(bearish, 1)
}

// TopTicker is a selected ticker enriched with market prices for the day
type TopTicker struct {
	TickerSentiment
	Open               *float64 `json:"open,omitempty"`
	Close              *float64 `json:"close,omitempty"`
	PriceChangePct     *float64 `json:"price_change_pct,omitempty"`
	SentimentChangePct *float64 `json:"sentiment_change_pct,omitempty"`
}

// EmaPoint is one day of the overall-sentiment EMA series
type EmaPoint struct {
	Date  string  `json:"date"` // 2006-01-02
	Ratio float64 `json:"ratio"`
	EMA   float64 `json:"ema"`
}

// SqueezeCandidate holds the screening verdicts for one ticker.
// Produced per screening run and never persisted beyond the report.
type SqueezeCandidate struct {
	Symbol             string   `json:"symbol"`
	CurrentPrice       float64  `json:"current_price"`
	PrevClose          float64  `json:"prev_close"`
	PercentChange      float64  `json:"percent_change"`
	AvgVolume          float64  `json:"avg_volume"`
	NearYearlyLow      bool     `json:"near_yearly_low"`
	VolumeUptrend      bool     `json:"volume_uptrend"`
	PriceUptrend       bool     `json:"price_uptrend"`
	HighSharesChange   bool     `json:"high_shares_change"`
	HighShortShares    bool     `json:"high_short_shares"`
	HighBeta           bool     `json:"high_beta"`
	ShortPctFloat      *float64 `json:"short_pct_float,omitempty"`
	Beta               *float64 `json:"beta,omitempty"`
	ShortsPain         float64  `json:"shorts_pain"`
	DaysAboveAvgVolume int      `json:"days_above_avg_volume"`
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}
