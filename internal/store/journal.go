package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"wsbtracker/internal/market"
)

// JournalFile records which scheduled passes ran for a window
const JournalFile = "journal.json"

// Journal status values
const (
	StatusCollecting = "collecting"
	StatusOpened     = "opened"
	StatusClosed     = "closed"
)

// Journal is the per-window run state. It lets a restarted daemon skip an
// open pass that already priced the day's selection.
type Journal struct {
	Window    string     `json:"window"`
	Status    string     `json:"status"`
	Overall   float64    `json:"overall"`
	Bullish   int        `json:"bullish"`
	Bearish   int        `json:"bearish"`
	Tickers   int        `json:"tickers"`
	Selected  []string   `json:"selected,omitempty"`
	Signal    string     `json:"signal,omitempty"`
	EMA       *float64   `json:"ema,omitempty"`
	Watchlist []string   `json:"watchlist,omitempty"`
	NetProfit *float64   `json:"net_profit,omitempty"`
	OpenedAt  *time.Time `json:"opened_at,omitempty"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// Opened reports whether the open pass completed
func (j *Journal) Opened() bool {
	return j.OpenedAt != nil
}

// Closed reports whether the close pass completed
func (j *Journal) Closed() bool {
	return j.ClosedAt != nil
}

// LoadJournal reads a window's journal. A missing file yields a fresh
// journal in the collecting state.
func (s *Store) LoadJournal(w market.Window) (*Journal, error) {
	data, err := os.ReadFile(s.path(w, JournalFile))
	if errors.Is(err, os.ErrNotExist) {
		return &Journal{Window: w.Name(), Status: StatusCollecting}, nil
	}
	if err != nil {
		return nil, err
	}

	var j Journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parsing %s for %s: %w", JournalFile, w.Name(), err)
	}
	return &j, nil
}

// SaveJournal overwrites a window's journal
func (s *Store) SaveJournal(w market.Window, j *Journal) error {
	j.Window = w.Name()
	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path(w, JournalFile), data)
}
