package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsbtracker/pkg/model"
)

func ev(s model.Sentiment, ticker string) model.CommentEvent {
	return model.CommentEvent{Sentiment: s, Ticker: ticker}
}

func TestAggregateSingleTicker(t *testing.T) {
	agg := Aggregate([]model.CommentEvent{
		ev(model.Bullish, "AAPL"),
		ev(model.Bullish, "AAPL"),
		ev(model.Bearish, "AAPL"),
	})

	require.Len(t, agg.Tickers, 1)
	assert.Equal(t, model.TickerSentiment{Symbol: "AAPL", Bullish: 2, Bearish: 1, Ratio: 2.0}, agg.Tickers[0])
	assert.Equal(t, 2.0, agg.Overall)
}

func TestAggregateBearFloor(t *testing.T) {
	agg := Aggregate([]model.CommentEvent{
		ev(model.Bullish, "TSLA"),
		ev(model.PossiblyBullish, "TSLA"),
		ev(model.Bullish, ""),
	})

	assert.Equal(t, 3.0, agg.Overall)
	assert.Equal(t, 0, agg.Bearish)
	require.Len(t, agg.Tickers, 1)
	assert.Equal(t, 2.0, agg.Tickers[0].Ratio)
	assert.Equal(t, 0, agg.Tickers[0].Bearish)

	assert.Equal(t, 0.0, Ratio(0, 0))
	assert.Equal(t, 5.0, Ratio(5, 0))
}

func TestAggregateIgnoresAmbiguous(t *testing.T) {
	agg := Aggregate([]model.CommentEvent{
		ev(model.Ambiguous, "GME"),
		ev(model.PossiblyBearish, "AMC"),
	})

	assert.Equal(t, 0.0, agg.Overall)
	require.Len(t, agg.Tickers, 1)
	assert.Equal(t, "AMC", agg.Tickers[0].Symbol)
	assert.Equal(t, 1, agg.Tickers[0].Bearish)
}

func TestAggregateEmpty(t *testing.T) {
	only := Aggregate([]model.CommentEvent{ev(model.Ambiguous, "GME")})
	assert.Equal(t, 1.0, only.Overall)
	assert.Empty(t, only.Tickers)

	agg := Aggregate(nil)
	assert.Equal(t, 1.0, agg.Overall)
	assert.Empty(t, agg.Tickers)
}

func TestAggregateRankingStable(t *testing.T) {
	agg := Aggregate([]model.CommentEvent{
		ev(model.Bullish, "BBB"),
		ev(model.Bullish, "AAA"),
		ev(model.Bullish, "CCC"),
		ev(model.Bearish, "CCC"),
		ev(model.Bullish, "DDD"),
		ev(model.Bullish, "DDD"),
	})

	var order []string
	for _, ts := range agg.Tickers {
		order = append(order, ts.Symbol)
	}
	// DDD has the most bulls; CCC ties on bulls but has more bears; BBB before AAA by first sighting
	assert.Equal(t, []string{"DDD", "CCC", "BBB", "AAA"}, order)
	assert.Len(t, agg.Top(2), 2)
	assert.Len(t, agg.Top(10), 4)
}

func TestSelectTop(t *testing.T) {
	ranked := []model.TickerSentiment{
		{Symbol: "A", Ratio: 3},
		{Symbol: "B", Ratio: 0.5},
		{Symbol: "C", Ratio: 1},
		{Symbol: "D", Ratio: 0.2},
		{Symbol: "E", Ratio: 1.5},
	}

	bull := SelectTop(2.0, ranked, 25)
	assert.Equal(t, []string{"A", "E"}, symbolsOf(bull))

	bear := SelectTop(0.4, ranked, 25)
	assert.Equal(t, []string{"D", "B"}, symbolsOf(bear))

	assert.Empty(t, SelectTop(1.0, ranked, 25))
	assert.Len(t, SelectTop(2.0, ranked, 1), 1)
}

func TestStatusRows(t *testing.T) {
	current := []model.TickerSentiment{
		{Symbol: "A", Ratio: 3},
		{Symbol: "B", Ratio: 1},
		{Symbol: "C", Ratio: 2},
	}
	previous := []model.TickerSentiment{
		{Symbol: "A", Ratio: 2},
		{Symbol: "B", Ratio: 0},
	}

	rows := StatusRows(current, previous, 2)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].RatioChangePct)
	assert.Equal(t, 50.0, *rows[0].RatioChangePct)
	assert.Nil(t, rows[1].RatioChangePct)
}

func TestEnrichTop(t *testing.T) {
	sel := []model.TickerSentiment{{Symbol: "A", Ratio: 1.5}, {Symbol: "B", Ratio: 4}}
	prev := []model.TopTicker{{TickerSentiment: model.TickerSentiment{Symbol: "A", Ratio: 3}}}

	top := EnrichTop(sel, prev)
	require.Len(t, top, 2)
	require.NotNil(t, top[0].SentimentChangePct)
	assert.Equal(t, -50.0, *top[0].SentimentChangePct)
	assert.Nil(t, top[1].SentimentChangePct)
}

func symbolsOf(ts []model.TickerSentiment) []string {
	var out []string
	for _, t := range ts {
		out = append(out, t.Symbol)
	}
	return out
}
