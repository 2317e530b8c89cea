package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLimiterBurst(t *testing.T) {
	limiter := NewLimiter("yahoo", 60)
	assert.Equal(t, "yahoo", limiter.Name())

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Allow(), "request %d should fit the burst", i)
	}
	assert.False(t, limiter.Allow())
}

func TestLimiterWait(t *testing.T) {
	limiter := NewLimiter("yahoo", 120)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx))
	assert.Less(t, time.Since(start), time.Second)
}

func TestLimiterBackoff(t *testing.T) {
	limiter := NewLimiter("yahoo", 60)
	assert.Zero(t, limiter.Backoff())

	limiter.SignalRateLimited()
	assert.Equal(t, minBackoff, limiter.Backoff())

	limiter.SignalRateLimited()
	assert.Equal(t, 2*minBackoff, limiter.Backoff())

	for i := 0; i < 30; i++ {
		limiter.SignalRateLimited()
	}
	assert.Equal(t, maxBackoff, limiter.Backoff())

	limiter.ResetBackoff()
	assert.Zero(t, limiter.Backoff())
}

func TestLimiterWaitHonoursContextDuringBackoff(t *testing.T) {
	limiter := NewLimiter("yahoo", 60)
	for i := 0; i < 20; i++ {
		limiter.SignalRateLimited()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, limiter.Wait(ctx), context.DeadlineExceeded)
}

func TestMultiLimiter(t *testing.T) {
	m := NewMultiLimiter()
	y := m.Add("yahoo", 120)

	assert.Same(t, y, m.Get("yahoo"))
	assert.Nil(t, m.Get("sms"))
	assert.NoError(t, m.Wait(context.Background(), "sms"))
	assert.NoError(t, m.Wait(context.Background(), "yahoo"))
}
