package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"wsbtracker/internal/market"
	"wsbtracker/pkg/model"
)

// ErrNoSnapshot is returned when a requested snapshot file does not exist
var ErrNoSnapshot = errors.New("no snapshot")

// Snapshot file names inside a window directory
const (
	CommentsFile      = "wsb_comments.csv"
	AllTickersFile    = "ticker_sentiment_all.csv"
	TopTickersFile    = "ticker_sentiment_top25.csv"
	SqueezeReportFile = "short_squeeze_report.txt"
	ProfitReportFile  = "potential_profit_loss_report.txt"
)

// Store persists flat snapshots under a data directory. Comment events are
// buffered in memory and flushed into the window directory that was current
// when they were appended.
type Store struct {
	root string
	cal  market.Calendar
	now  func() time.Time
	log  *zap.SugaredLogger

	mu      sync.Mutex
	pending map[string][]model.CommentEvent // keyed by window name
	order   []string
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the wall clock used to resolve the current window
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the store logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Store) { s.log = l }
}

// New creates a store rooted at dir
func New(dir string, cal market.Calendar, opts ...Option) *Store {
	s := &Store{
		root:    dir,
		cal:     cal,
		now:     time.Now,
		log:     zap.NewNop().Sugar(),
		pending: make(map[string][]model.CommentEvent),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the data directory
func (s *Store) Root() string {
	return s.root
}

// Window returns the snapshot window containing now
func (s *Store) Window() market.Window {
	return market.WindowAt(s.cal, s.now())
}

// PreviousWindow returns the window before the current one
func (s *Store) PreviousWindow() market.Window {
	return market.PreviousWindow(s.cal, s.now())
}

// Dir returns the directory holding a window's snapshots
func (s *Store) Dir(w market.Window) string {
	return s.dirByName(w.Name())
}

func (s *Store) dirByName(name string) string {
	return filepath.Join(s.root, "wsb_sentiment_"+name)
}

func (s *Store) path(w market.Window, file string) string {
	return filepath.Join(s.Dir(w), file)
}

// WriteReport writes a text report into the window directory and returns its path
func (s *Store) WriteReport(w market.Window, file, content string) (string, error) {
	path := s.path(w, file)
	if err := writeFileAtomic(path, []byte(content)); err != nil {
		return "", fmt.Errorf("writing %s: %w", file, err)
	}
	return path, nil
}

// ReadReport reads a text report from the window directory
func (s *Store) ReadReport(w market.Window, file string) (string, error) {
	data, err := os.ReadFile(s.path(w, file))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%s for %s: %w", file, w.Name(), ErrNoSnapshot)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// writeFileAtomic writes via a temp file in the same directory and renames it
// over the target.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
