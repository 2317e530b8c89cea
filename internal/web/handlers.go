package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"wsbtracker/internal/market"
	"wsbtracker/internal/sentiment"
	"wsbtracker/internal/store"
	"wsbtracker/pkg/model"
)

// SentimentResponse is the aggregated view of a window's comment log
type SentimentResponse struct {
	Window   string                  `json:"window"`
	Overall  float64                 `json:"overall"`
	Bullish  int                     `json:"bullish"`
	Bearish  int                     `json:"bearish"`
	Selected bool                    `json:"selected"` // false when the overall ratio is exactly neutral
	Tickers  []model.TickerSentiment `json:"tickers"`
}

// TopResponse is a window's selection with prices
type TopResponse struct {
	Window  string            `json:"window"`
	Tickers []model.TopTicker `json:"tickers"`
}

// EmaResponse is the stored EMA series with the latest signal
type EmaResponse struct {
	Period int              `json:"period"`
	Points []model.EmaPoint `json:"points"`
	Latest *model.EmaPoint  `json:"latest,omitempty"`
	Signal sentiment.Signal `json:"signal,omitempty"`
}

// window resolves ?window=previous, defaulting to the current window
func (s *Server) window(r *http.Request) market.Window {
	if r.URL.Query().Get("window") == "previous" {
		return s.store.PreviousWindow()
	}
	return s.store.Window()
}

// limit parses ?limit=N, falling back to def
func limit(r *http.Request, def int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	win := s.window(r)
	events, err := s.store.Comments(win)
	if err != nil && !errors.Is(err, store.ErrNoSnapshot) {
		s.fail(w, err)
		return
	}

	agg := sentiment.Aggregate(events)
	writeJSON(w, SentimentResponse{
		Window:   win.Name(),
		Overall:  agg.Overall,
		Bullish:  agg.Bullish,
		Bearish:  agg.Bearish,
		Selected: agg.Overall != 1,
		Tickers:  agg.Top(limit(r, s.topN)),
	})
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	win := s.window(r)
	top, err := s.store.TopTickers(win)
	if errors.Is(err, store.ErrNoSnapshot) {
		http.Error(w, "no selection for "+win.Name(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	if top == nil {
		top = []model.TopTicker{}
	}
	writeJSON(w, TopResponse{Window: win.Name(), Tickers: top})
}

func (s *Server) handleEma(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	points, err := s.store.LoadEma(s.emaPeriod)
	if err != nil {
		s.fail(w, err)
		return
	}

	series := sentiment.NewEmaSeries(s.emaPeriod, points)
	resp := EmaResponse{Period: s.emaPeriod, Points: series.Points()}
	if resp.Points == nil {
		resp.Points = []model.EmaPoint{}
	}
	if latest, ok := series.Latest(); ok {
		resp.Latest = &latest
		resp.Signal = sentiment.SignalFor(latest.Ratio, latest.EMA)
	}
	writeJSON(w, resp)
}

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	s.serveReport(w, r, store.SqueezeReportFile)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	j, err := s.store.LoadJournal(s.window(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, j)
}

func (s *Server) serveReport(w http.ResponseWriter, r *http.Request, file string) {
	win := s.window(r)
	text, err := s.store.ReadReport(win, file)
	if errors.Is(err, store.ErrNoSnapshot) {
		http.Error(w, "no report for "+win.Name(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.log.Errorw("status request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
