package store

import (
	"errors"
	"fmt"
	"path/filepath"

	"wsbtracker/internal/market"
	"wsbtracker/pkg/model"
)

var commentHeader = []string{"id", "comment_id", "time", "sentiment", "ticker", "body"}

// AppendComments buffers events for the current window
func (s *Store) AppendComments(events ...model.CommentEvent) {
	if len(events) == 0 {
		return
	}
	name := s.Window().Name()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[name]; !ok {
		s.order = append(s.order, name)
	}
	s.pending[name] = append(s.pending[name], events...)
}

// Pending returns the number of buffered events
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, evs := range s.pending {
		n += len(evs)
	}
	return n
}

// FlushComments appends buffered events to each window's comment log and
// returns how many were written. Events of a window that fails to write stay
// buffered.
func (s *Store) FlushComments() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	written := 0
	var errs []error
	remaining := s.order[:0]
	for _, name := range s.order {
		evs := s.pending[name]
		if err := s.appendLog(name, evs); err != nil {
			errs = append(errs, fmt.Errorf("window %s: %w", name, err))
			remaining = append(remaining, name)
			continue
		}
		written += len(evs)
		delete(s.pending, name)
	}
	s.order = remaining

	if written > 0 {
		s.log.Debugw("flushed comments", "events", written)
	}
	return written, errors.Join(errs...)
}

// appendLog reads the existing log, appends events and rewrites the file
func (s *Store) appendLog(window string, events []model.CommentEvent) error {
	path := filepath.Join(s.dirByName(window), CommentsFile)

	rows, err := readCSV(path, commentHeader)
	if err != nil && !errors.Is(err, ErrNoSnapshot) {
		return err
	}
	for _, e := range events {
		rows = append(rows, []string{e.ID, e.CommentID, e.Time, string(e.Sentiment), e.Ticker, e.Body})
	}
	return writeCSV(path, commentHeader, rows)
}

// Comments loads the comment log of a window
func (s *Store) Comments(w market.Window) ([]model.CommentEvent, error) {
	rows, err := readCSV(s.path(w, CommentsFile), commentHeader)
	if err != nil {
		return nil, err
	}
	events := make([]model.CommentEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, model.CommentEvent{
			ID:        r[0],
			CommentID: r[1],
			Time:      r[2],
			Sentiment: model.ParseSentiment(r[3]),
			Ticker:    r[4],
			Body:      r[5],
		})
	}
	return events, nil
}
