package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"bullish [09:31:00] alice TSLA to the moon",
		"a\nb\nc\nb",
	}
	for _, in := range inputs {
		assert.Empty(t, Diff(in, in))
	}
}

func TestDiffReturnsNewLinesInOrder(t *testing.T) {
	prev := "one\ntwo"
	cur := "zero\none\ntwo\nthree"

	assert.Equal(t, []string{"zero", "three"}, Diff(prev, cur))
}

func TestDiffDropsRepeatedLines(t *testing.T) {
	prev := "bullish [09:31:00] bob GME"
	cur := "bullish [09:31:00] bob GME\nbullish [09:31:00] bob GME"

	assert.Empty(t, Diff(prev, cur))
}
