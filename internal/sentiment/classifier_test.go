package sentiment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsbtracker/internal/symbols"
	"wsbtracker/pkg/model"
)

func newTestClassifier() *Classifier {
	u := symbols.NewUniverse([]string{"AAPL", "TSLA", "AMC", "GME", "CEO"}, []string{"CEO"})
	c := NewClassifier(u)
	n := 0
	c.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return c
}

func TestClassifyFanOut(t *testing.T) {
	c := newTestClassifier()

	events := c.Classify([]string{"bullish [10:15:02] dfv loading up on TSLA and AAPL today"})
	require.Len(t, events, 2)

	assert.Equal(t, "TSLA", events[0].Ticker)
	assert.Equal(t, "AAPL", events[1].Ticker)
	for _, e := range events {
		assert.Equal(t, model.Bullish, e.Sentiment)
		assert.Equal(t, "loading up on TSLA and AAPL today", e.Body)
		assert.Equal(t, "10:15:02", e.Time)
	}
	assert.Equal(t, events[0].CommentID, events[1].CommentID)
	assert.NotEqual(t, events[0].ID, events[1].ID)
}

func TestClassifyUntagged(t *testing.T) {
	c := newTestClassifier()

	events := c.Classify([]string{"bearish [10:15:02] anon this market is cooked"})
	require.Len(t, events, 1)
	assert.Equal(t, "", events[0].Ticker)
	assert.Equal(t, model.Bearish, events[0].Sentiment)
}

func TestClassifyCoalescesContinuationLines(t *testing.T) {
	c := newTestClassifier()

	lines := []string{
		"(bullish) [11:00:00] ape AMC",
		"still holding",
		"GME too",
		"bearish [11:00:05] bear puts on SPY",
	}
	events := c.Classify(lines)
	require.Len(t, events, 3)

	assert.Equal(t, model.PossiblyBullish, events[0].Sentiment)
	assert.Equal(t, "AMC", events[0].Ticker)
	assert.Equal(t, "GME", events[1].Ticker)
	assert.Equal(t, "AMC still holding GME too", events[0].Body)

	assert.Equal(t, model.Bearish, events[2].Sentiment)
	assert.Equal(t, "SPY", events[2].Ticker)
}

func TestClassifyDropsNoneAndMalformed(t *testing.T) {
	c := newTestClassifier()

	lines := []string{
		"none [11:00:00] someone TSLA",
		"bullish [11:00:01]",
		"orphan line before nothing",
	}
	assert.Empty(t, c.Classify(lines))
}

func TestClassifyKeepsTaggedCommentMentioningNone(t *testing.T) {
	c := newTestClassifier()

	events := c.Classify([]string{
		"bullish [11:00:00] dfv GME none of this matters",
		"none [11:00:01] someone AMC",
	})
	require.Len(t, events, 1)
	assert.Equal(t, model.Bullish, events[0].Sentiment)
	assert.Equal(t, "GME", events[0].Ticker)
	assert.Equal(t, "GME none of this matters", events[0].Body)
}

func TestClassifyTrailingLinesNotJoined(t *testing.T) {
	c := newTestClassifier()

	events := c.Classify([]string{"bullish [12:00:00] a TSLA", "AAPL"})
	require.Len(t, events, 1)
	assert.Equal(t, "TSLA", events[0].Body)
}

func TestTickers(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		body string
		want []string
	}{
		{"$TSLA TSLA! tsla", []string{"TSLA"}},
		{"Buy AAPL, AMC. and the CEO", []string{"AAPL", "AMC"}},
		{"SPY puts", []string{"SPY"}},
		{"Aapl GME's", nil},
		{"123 ... ", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Tickers(tt.body), tt.body)
	}
}
