package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the tracker's collectors on a private registry.
// All methods are safe on a nil receiver so components can run unmetered.
type Metrics struct {
	registry *prometheus.Registry

	linesIngested   prometheus.Counter
	eventsAppended  *prometheus.CounterVec
	collectRetries  prometheus.Counter
	overallRatio    prometheus.Gauge
	ema             prometheus.Gauge
	screened        *prometheus.CounterVec
	screenDuration  prometheus.Histogram
	passes          *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	lastCollectUnix prometheus.Gauge
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		linesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wsbtracker_feed_lines_total",
			Help: "New feed lines seen by the collector",
		}),
		eventsAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wsbtracker_comment_events_total",
			Help: "Comment events appended to the log",
		}, []string{"sentiment"}),
		collectRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wsbtracker_collect_retries_total",
			Help: "Failed feed reads that were retried",
		}),
		overallRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wsbtracker_overall_ratio",
			Help: "Latest overall bull/bear ratio",
		}),
		ema: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wsbtracker_overall_ratio_ema",
			Help: "Latest EMA of the overall bull/bear ratio",
		}),
		screened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wsbtracker_screened_tickers_total",
			Help: "Tickers evaluated by the squeeze screen",
		}, []string{"result"}), // kept|dropped|error
		screenDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wsbtracker_screen_duration_seconds",
			Help:    "Squeeze screen run duration",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wsbtracker_scheduled_passes_total",
			Help: "Scheduled daemon passes",
		}, []string{"pass", "status"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wsbtracker_notifications_total",
			Help: "Outbound notifications",
		}, []string{"status"}),
		lastCollectUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wsbtracker_last_collect_timestamp",
			Help: "Unix time of the last successful feed read",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.linesIngested,
		m.eventsAppended,
		m.collectRetries,
		m.overallRatio,
		m.ema,
		m.screened,
		m.screenDuration,
		m.passes,
		m.notifications,
		m.lastCollectUnix,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) FeedLines(n int) {
	if m == nil {
		return
	}
	m.linesIngested.Add(float64(n))
	m.lastCollectUnix.Set(float64(time.Now().Unix()))
}

func (m *Metrics) EventAppended(sentiment string) {
	if m == nil {
		return
	}
	m.eventsAppended.WithLabelValues(sentiment).Inc()
}

func (m *Metrics) CollectRetry() {
	if m == nil {
		return
	}
	m.collectRetries.Inc()
}

func (m *Metrics) SetSentiment(overall, ema float64) {
	if m == nil {
		return
	}
	m.overallRatio.Set(overall)
	m.ema.Set(ema)
}

func (m *Metrics) SetOverall(overall float64) {
	if m == nil {
		return
	}
	m.overallRatio.Set(overall)
}

func (m *Metrics) Screened(result string) {
	if m == nil {
		return
	}
	m.screened.WithLabelValues(result).Inc()
}

func (m *Metrics) ScreenDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.screenDuration.Observe(d.Seconds())
}

func (m *Metrics) Pass(name string, err error) {
	if m == nil {
		return
	}
	m.passes.WithLabelValues(name, status(err)).Inc()
}

func (m *Metrics) Notification(err error) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
