package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const idleLogEvery = 60

// Poller checks the inbox on an interval and queues every reply
type Poller struct {
	inbox    Inbox
	queue    *Queue
	interval time.Duration
	log      *zap.SugaredLogger
}

// NewPoller creates a poller feeding q
func NewPoller(inbox Inbox, q *Queue, interval time.Duration, log *zap.SugaredLogger) *Poller {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Poller{inbox: inbox, queue: q, interval: interval, log: log}
}

// Run polls until ctx is cancelled. Poll errors are logged and retried on
// the next tick.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	idle := 0
	for {
		text, ok, err := p.inbox.Poll(ctx)
		switch {
		case err != nil:
			if ctx.Err() == nil {
				p.log.Warnw("inbox poll failed", "error", err)
			}
		case ok:
			p.log.Infow("received operator message", "text", text)
			p.queue.Push(text)
			idle = 0
		default:
			if idle%idleLogEvery == 0 {
				p.log.Debug("inbox idle")
			}
			idle++
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
