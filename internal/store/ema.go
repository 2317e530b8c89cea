package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"wsbtracker/pkg/model"
)

var emaHeader = []string{"date", "ratio", "ema"}

// EmaPath returns the location of the EMA series for a period
func (s *Store) EmaPath(period int) string {
	return filepath.Join(s.root, fmt.Sprintf("%d_day_ema.csv", period))
}

// LoadEma reads the stored EMA series. A missing file is an empty series.
func (s *Store) LoadEma(period int) ([]model.EmaPoint, error) {
	rows, err := readCSV(s.EmaPath(period), emaHeader)
	if errors.Is(err, ErrNoSnapshot) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	points := make([]model.EmaPoint, 0, len(rows))
	for _, r := range rows {
		ratio, err1 := strconv.ParseFloat(r[1], 64)
		ema, err2 := strconv.ParseFloat(r[2], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		points = append(points, model.EmaPoint{Date: r[0], Ratio: ratio, EMA: ema})
	}
	return points, nil
}

// SaveEma overwrites the EMA series
func (s *Store) SaveEma(period int, points []model.EmaPoint) error {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{p.Date, formatFloat(p.Ratio), formatFloat(p.EMA)})
	}
	return writeCSV(s.EmaPath(period), emaHeader, rows)
}
