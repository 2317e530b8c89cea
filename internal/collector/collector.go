package collector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"wsbtracker/internal/metrics"
	"wsbtracker/internal/sentiment"
	"wsbtracker/internal/source"
	"wsbtracker/pkg/model"
)

// ErrRetriesExhausted is returned when the feed stayed unreadable for more
// than the configured number of retries.
var ErrRetriesExhausted = errors.New("feed retries exhausted")

// Config holds the loop timing
type Config struct {
	PollInterval  time.Duration
	RetryInterval time.Duration
	MaxRetries    int
}

// DefaultConfig polls every 2s and gives up after 12 retries 5s apart
func DefaultConfig() Config {
	return Config{
		PollInterval:  2 * time.Second,
		RetryInterval: 5 * time.Second,
		MaxRetries:    12,
	}
}

// Sink receives classified events
type Sink interface {
	AppendComments(events ...model.CommentEvent)
	FlushComments() (int, error)
}

// Probe reports whether the network is reachable
type Probe func(ctx context.Context) bool

// TCPProbe dials addr (a public DNS resolver works well) to test connectivity
func TCPProbe(addr string, timeout time.Duration) Probe {
	return func(ctx context.Context) bool {
		d := net.Dialer{Timeout: timeout}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}
}

// Loop polls the page source, diffs it against the previous read and feeds
// new comments through the classifier into the sink.
type Loop struct {
	cfg        Config
	src        source.PageSource
	classifier *sentiment.Classifier
	sink       Sink
	probe      Probe
	log        *zap.SugaredLogger
	metrics    *metrics.Metrics

	done chan struct{}
	mu   sync.Mutex
	err  error
}

// Option configures a Loop
type Option func(*Loop)

func WithProbe(p Probe) Option                 { return func(l *Loop) { l.probe = p } }
func WithLogger(log *zap.SugaredLogger) Option { return func(l *Loop) { l.log = log } }
func WithMetrics(m *metrics.Metrics) Option    { return func(l *Loop) { l.metrics = m } }

// New creates a collection loop
func New(cfg Config, src source.PageSource, c *sentiment.Classifier, sink Sink, opts ...Option) *Loop {
	l := &Loop{
		cfg:        cfg,
		src:        src,
		classifier: c,
		sink:       sink,
		probe:      func(context.Context) bool { return true },
		log:        zap.NewNop().Sugar(),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start runs the loop on its own goroutine
func (l *Loop) Start(ctx context.Context) {
	go func() {
		err := l.Run(ctx)
		l.mu.Lock()
		l.err = err
		l.mu.Unlock()
		close(l.done)
	}()
}

// Done is closed when a started loop exits
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Err returns why a started loop exited; nil after a clean cancel
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Run polls until ctx is cancelled or retries are exhausted. Buffered events
// are flushed to the sink before it returns.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Info("collecting comments")
	defer l.flush()

	var (
		previous string
		baseline bool
		retries  int
	)

	for {
		text, err := l.src.Text(ctx)
		if ctx.Err() != nil {
			return nil
		}

		if err != nil {
			retries++
			l.metrics.CollectRetry()
			if retries > l.cfg.MaxRetries {
				l.log.Errorw("max connection retries reached, stopping collection", "retries", l.cfg.MaxRetries, "error", err)
				return fmt.Errorf("%w: %d attempts: %v", ErrRetriesExhausted, l.cfg.MaxRetries, err)
			}

			online := l.probe(ctx)
			if !online {
				l.src.Reset()
			}
			l.log.Warnw("could not read comments, retrying",
				"attempt", retries, "max", l.cfg.MaxRetries, "network", online, "error", err)

			if !sleep(ctx, l.cfg.RetryInterval) {
				return nil
			}
			continue
		}

		if retries > 0 {
			l.log.Infow("comment feed reachable again", "after_retries", retries)
			retries = 0
		}

		// the backlog already on the page when we connect is not counted
		if !baseline {
			previous, baseline = text, true
		} else if added := sentiment.Diff(previous, text); len(added) > 0 {
			previous = text
			l.ingest(added)
		}

		if !sleep(ctx, l.cfg.PollInterval) {
			return nil
		}
	}
}

func (l *Loop) ingest(lines []string) {
	l.metrics.FeedLines(len(lines))

	events := l.classifier.Classify(lines)
	if len(events) == 0 {
		return
	}
	l.sink.AppendComments(events...)

	var tickers []string
	for _, e := range events {
		l.metrics.EventAppended(string(e.Sentiment.Bucket()))
		if e.Ticker != "" {
			tickers = append(tickers, e.Ticker)
		}
	}
	l.log.Debugw("comments collected", "events", len(events), "tickers", tickers)
}

func (l *Loop) flush() {
	n, err := l.sink.FlushComments()
	if err != nil {
		l.log.Errorw("flushing comments on exit", "error", err)
		return
	}
	if n > 0 {
		l.log.Infow("flushed comments on exit", "events", n)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
