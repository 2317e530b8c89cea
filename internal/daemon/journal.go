package daemon

import (
	"fmt"
	"strings"
	"time"

	"wsbtracker/internal/market"
	"wsbtracker/internal/sentiment"
	"wsbtracker/internal/store"
)

// SummaryFile is the end-of-day summary written by the close pass
const SummaryFile = "daily_summary.txt"

// journal loads the window journal, treating a read failure as a fresh day
func (d *Daemon) journal(w market.Window) *store.Journal {
	j, err := d.deps.Store.LoadJournal(w)
	if err != nil {
		d.log.Warnw("reading journal", "window", w.Name(), "error", err)
		return &store.Journal{Window: w.Name(), Status: store.StatusCollecting}
	}
	return j
}

func (d *Daemon) saveJournal(w market.Window, j *store.Journal) {
	if err := d.deps.Store.SaveJournal(w, j); err != nil {
		d.log.Warnw("saving journal", "window", w.Name(), "error", err)
	}
}

// recordOpen stores what the open pass produced
func (d *Daemon) recordOpen(w market.Window, agg sentiment.Aggregation) {
	snap := d.Snapshot()
	now := d.now()

	j := d.journal(w)
	j.Status = store.StatusOpened
	j.Overall = agg.Overall
	j.Bullish = agg.Bullish
	j.Bearish = agg.Bearish
	j.Tickers = len(agg.Tickers)
	j.Selected = symbolsOf(snap.Top)
	j.Signal = string(snap.Signal)
	if snap.Ema != nil {
		ema := snap.Ema.EMA
		j.EMA = &ema
	}
	if snap.Watchlist != nil {
		j.Watchlist = snap.Watchlist.Symbols()
	}
	j.OpenedAt = &now
	d.saveJournal(w, j)
}

// recordClose marks the window closed and writes the daily summary
func (d *Daemon) recordClose(w market.Window, net *float64) {
	now := d.now()

	j := d.journal(w)
	j.Status = store.StatusClosed
	j.NetProfit = net
	j.ClosedAt = &now
	d.saveJournal(w, j)

	path, err := d.deps.Store.WriteReport(w, SummaryFile, Summary(j))
	if err != nil {
		d.log.Warnw("writing daily summary", "error", err)
		return
	}
	d.log.Infow("daily summary written", "path", path)
}

// Summary renders a journal as a plain text report
func Summary(j *store.Journal) string {
	var b strings.Builder
	rule := strings.Repeat("=", 68)

	fmt.Fprintf(&b, "%s\n%s\n%s\n%s\n\n", rule, center("DAILY SENTIMENT SUMMARY", 68), center(j.Window, 68), rule)

	b.WriteString("SENTIMENT\n---------\n")
	fmt.Fprintf(&b, "  Status:           %s\n", j.Status)
	fmt.Fprintf(&b, "  Bull/Bear Ratio:  %.3f\n", j.Overall)
	fmt.Fprintf(&b, "  Bullish:          %d\n", j.Bullish)
	fmt.Fprintf(&b, "  Bearish:          %d\n", j.Bearish)
	fmt.Fprintf(&b, "  Tickers:          %d\n", j.Tickers)
	if j.EMA != nil {
		fmt.Fprintf(&b, "  EMA:              %.3f\n", *j.EMA)
	}
	if j.Signal != "" {
		fmt.Fprintf(&b, "  Signal:           %s\n", j.Signal)
	}

	b.WriteString("\nSELECTION\n---------\n")
	fmt.Fprintf(&b, "  Top Tickers:      %s\n", listOrNone(j.Selected))
	fmt.Fprintf(&b, "  Squeeze Watch:    %s\n", listOrNone(j.Watchlist))
	if j.NetProfit != nil {
		fmt.Fprintf(&b, "  Net P/L (USD):    $%.2f\n", *j.NetProfit)
	}

	b.WriteString("\nTIME\n----\n")
	fmt.Fprintf(&b, "  Open Pass:        %s\n", formatStamp(j.OpenedAt))
	fmt.Fprintf(&b, "  Close Pass:       %s\n", formatStamp(j.ClosedAt))

	b.WriteString("\n" + rule + "\n")
	return b.String()
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", (width-len(s))/2) + s
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

func formatStamp(t *time.Time) string {
	if t == nil {
		return "(not run)"
	}
	return t.Format("2006-01-02 15:04:05")
}
