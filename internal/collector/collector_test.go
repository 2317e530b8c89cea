package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsbtracker/internal/sentiment"
	"wsbtracker/internal/symbols"
	"wsbtracker/pkg/model"
)

// scriptedSource replays page snapshots; after the script runs out it keeps
// returning the last entry.
type scriptedSource struct {
	mu     sync.Mutex
	pages  []string
	errs   []error
	i      int
	resets int
}

func (s *scriptedSource) Text(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.i
	if i >= len(s.pages) {
		i = len(s.pages) - 1
	} else {
		s.i++
	}
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return s.pages[i], err
}

func (s *scriptedSource) Reset() {
	s.mu.Lock()
	s.resets++
	s.mu.Unlock()
}

func (s *scriptedSource) Close() error { return nil }

type memSink struct {
	mu      sync.Mutex
	pending []model.CommentEvent
	flushed []model.CommentEvent
}

func (m *memSink) AppendComments(events ...model.CommentEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, events...)
}

func (m *memSink) FlushComments() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.pending)
	m.flushed = append(m.flushed, m.pending...)
	m.pending = nil
	return n, nil
}

func (m *memSink) all() []model.CommentEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append(append([]model.CommentEvent{}, m.flushed...), m.pending...)
}

func testClassifier() *sentiment.Classifier {
	return sentiment.NewClassifier(symbols.NewUniverse([]string{"TSLA", "AMC"}, nil))
}

func fastConfig() Config {
	return Config{PollInterval: time.Millisecond, RetryInterval: time.Millisecond, MaxRetries: 3}
}

func TestLoopCollectsNewComments(t *testing.T) {
	base := "bullish [09:30:00] old TSLA already there"
	src := &scriptedSource{pages: []string{
		base,
		base + "\nbullish [09:31:00] a TSLA calls",
		base + "\nbullish [09:31:00] a TSLA calls\nbearish [09:31:10] b AMC puts",
	}}
	sink := &memSink{}
	loop := New(fastConfig(), src, testClassifier(), sink)

	ctx, cancel := context.WithCancel(context.Background())
	loop.Start(ctx)

	require.Eventually(t, func() bool { return len(sink.all()) == 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-loop.Done()

	assert.NoError(t, loop.Err())
	events := sink.all()
	assert.Equal(t, "TSLA", events[0].Ticker)
	assert.Equal(t, model.Bullish, events[0].Sentiment)
	assert.Equal(t, "AMC", events[1].Ticker)
	assert.Equal(t, model.Bearish, events[1].Sentiment)

	// flushed on exit
	sink.mu.Lock()
	assert.Empty(t, sink.pending)
	sink.mu.Unlock()
}

func TestLoopGivesUpAfterMaxRetries(t *testing.T) {
	boom := errors.New("element missing")
	src := &scriptedSource{
		pages: []string{"", "", "", "", ""},
		errs:  []error{boom, boom, boom, boom, boom},
	}
	offline := func(context.Context) bool { return false }
	loop := New(fastConfig(), src, testClassifier(), &memSink{}, WithProbe(offline))

	loop.Start(context.Background())

	select {
	case <-loop.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.True(t, errors.Is(loop.Err(), ErrRetriesExhausted))
	assert.Equal(t, 3, src.resets)
}

func TestLoopRecoversBeforeCap(t *testing.T) {
	boom := errors.New("timeout")
	src := &scriptedSource{
		pages: []string{"x", "", "", "x\nbullish [10:00:00] c AMC rip"},
		errs:  []error{nil, boom, boom, nil},
	}
	sink := &memSink{}
	loop := New(fastConfig(), src, testClassifier(), sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loop.Start(ctx)

	require.Eventually(t, func() bool { return len(sink.all()) == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-loop.Done()
	assert.NoError(t, loop.Err())
}
