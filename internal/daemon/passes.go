package daemon

import (
	"context"
	"errors"
	"fmt"

	"wsbtracker/internal/market"
	"wsbtracker/internal/sentiment"
	"wsbtracker/internal/squeeze"
	"wsbtracker/internal/store"
	"wsbtracker/pkg/model"
)

// analyze flushes buffered comments and aggregates the window's log
func (d *Daemon) analyze(w market.Window) (sentiment.Aggregation, error) {
	if _, err := d.deps.Store.FlushComments(); err != nil {
		d.log.Warnw("flushing comments before analysis", "error", err)
	}

	events, err := d.deps.Store.Comments(w)
	if err != nil && !errors.Is(err, store.ErrNoSnapshot) {
		return sentiment.Aggregation{}, fmt.Errorf("reading comments for %s: %w", w.Name(), err)
	}

	agg := sentiment.Aggregate(events)
	if err := d.deps.Store.SaveAllTickers(w, agg.Tickers); err != nil {
		return agg, fmt.Errorf("saving ticker sentiment: %w", err)
	}

	d.deps.Metrics.SetOverall(agg.Overall)
	d.update(func(s *Snapshot) {
		s.Overall = agg.Overall
		s.Ranked = agg.Top(d.config.TopN)
	})
	return agg, nil
}

// onMarketOpen selects the day's tickers, records their open prices, runs
// the squeeze screen, updates the EMA and texts the top tickers.
func (d *Daemon) onMarketOpen(ctx context.Context) error {
	w := d.deps.Store.Window()
	d.openWindow = w

	agg, err := d.analyze(w)
	if err != nil {
		return err
	}
	d.log.Infow("overall sentiment", "ratio", agg.Overall, "bullish", agg.Bullish, "bearish", agg.Bearish, "tickers", len(agg.Tickers))

	selected := sentiment.SelectTop(agg.Overall, agg.Tickers, d.config.TopN)

	previous, err := d.deps.Store.TopTickers(d.deps.Store.PreviousWindow())
	if err != nil {
		if !errors.Is(err, store.ErrNoSnapshot) {
			d.log.Warnw("reading previous top tickers", "error", err)
		}
		previous = nil
	}

	top := sentiment.EnrichTop(selected, previous)
	sentiment.ApplyOpen(top, d.prices(ctx, symbolsOf(top), openPrice))

	if err := d.deps.Store.SaveTopTickers(w, top); err != nil {
		return fmt.Errorf("saving top tickers: %w", err)
	}
	d.update(func(s *Snapshot) { s.Top = top })

	d.screen(ctx, w, symbolsOf(top))

	if err := d.updateEma(agg.Overall); err != nil {
		d.log.Errorw("updating EMA", "error", err)
	}

	d.recordOpen(w, agg)

	if m := d.deps.Messenger; m != nil && len(top) > 0 {
		if err := m.TopTickers(ctx, top); err != nil {
			d.log.Warnw("texting top tickers", "error", err)
		}
	}
	return nil
}

// onMarketClose records close prices for the open pass selection and
// writes the profit/loss report.
func (d *Daemon) onMarketClose(ctx context.Context) error {
	w := d.openWindow
	if w.Start.IsZero() {
		w = d.deps.Store.PreviousWindow()
	}

	top, err := d.deps.Store.TopTickers(w)
	if errors.Is(err, store.ErrNoSnapshot) {
		d.log.Infow("no top tickers selected today", "window", w.Name())
		d.recordClose(w, nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading top tickers: %w", err)
	}

	sentiment.ApplyClose(top, d.prices(ctx, symbolsOf(top), closePrice))
	if err := d.deps.Store.SaveTopTickers(w, top); err != nil {
		return fmt.Errorf("saving top tickers: %w", err)
	}
	d.update(func(s *Snapshot) { s.Top = top })

	pl := sentiment.ComputeProfitLoss(top)
	report, err := sentiment.ProfitReport(pl)
	if err != nil {
		return err
	}
	path, err := d.deps.Store.WriteReport(w, store.ProfitReportFile, report)
	if err != nil {
		return fmt.Errorf("writing profit report: %w", err)
	}
	d.log.Infow("profit/loss report written", "path", path, "net", pl.Net())

	net := pl.Net()
	d.recordClose(w, &net)
	return nil
}

func (d *Daemon) screen(ctx context.Context, w market.Window, symbols []string) {
	if u := d.deps.Universe; u != nil {
		listed := u.FilterListed(symbols)
		if skipped := len(symbols) - len(listed); skipped > 0 {
			d.log.Debugw("skipping unlisted tickers in screen", "skipped", skipped)
		}
		symbols = listed
	}
	if d.deps.Screener == nil || len(symbols) == 0 {
		return
	}

	wl, err := d.deps.Screener.Screen(ctx, symbols)
	if err != nil {
		d.log.Warnw("squeeze screen incomplete", "error", err)
	}
	if wl == nil {
		return
	}
	d.update(func(s *Snapshot) { s.Watchlist = wl })

	if len(wl.Candidates) == 0 {
		d.log.Info("no short squeeze data available")
		return
	}

	report, err := squeeze.Report(wl)
	if err != nil {
		d.log.Errorw("rendering squeeze report", "error", err)
		return
	}
	path, err := d.deps.Store.WriteReport(w, store.SqueezeReportFile, report)
	if err != nil {
		d.log.Errorw("writing squeeze report", "error", err)
		return
	}
	d.log.Infow("short squeeze report written", "path", path, "watchlist", wl.Symbols())
}

// updateEma folds today's overall ratio into the stored series
func (d *Daemon) updateEma(overall float64) error {
	points, err := d.deps.Store.LoadEma(d.config.EmaPeriod)
	if err != nil {
		return err
	}

	series := sentiment.NewEmaSeries(d.config.EmaPeriod, points)
	ema, added := series.Update(d.now(), overall)
	if added {
		if err := d.deps.Store.SaveEma(d.config.EmaPeriod, series.Points()); err != nil {
			return err
		}
	}

	signal := sentiment.SignalFor(overall, ema)
	latest, _ := series.Latest()
	d.deps.Metrics.SetSentiment(overall, ema)
	d.update(func(s *Snapshot) {
		s.Ema = &latest
		s.Signal = signal
	})
	d.log.Infow("signal set", "signal", signal, "ratio", overall, "ema", ema, "period", d.config.EmaPeriod)
	return nil
}

// statusReport logs the ranking head against the previous status report
func (d *Daemon) statusReport() {
	agg, err := d.analyze(d.deps.Store.Window())
	if err != nil {
		d.log.Errorw("status report", "error", err)
		return
	}

	rows := sentiment.StatusRows(agg.Tickers, d.lastStatus, d.config.ReportN)
	d.lastStatus = agg.Top(d.config.ReportN)

	d.log.Infow("sentiment status", "overall", agg.Overall, "tickers", len(agg.Tickers))
	for i, r := range rows {
		fields := []any{"rank", i + 1, "symbol", r.Symbol, "bullish", r.Bullish, "bearish", r.Bearish, "ratio", r.Ratio}
		if r.RatioChangePct != nil {
			fields = append(fields, "ratio_change_pct", *r.RatioChangePct)
		}
		d.log.Infow("status", fields...)
	}
}

type priceField func(*model.Quote) float64

func openPrice(q *model.Quote) float64  { return q.Open }
func closePrice(q *model.Quote) float64 { return q.Price }

// prices fetches one field of each symbol's quote. Failed or zero quotes
// are left out.
func (d *Daemon) prices(ctx context.Context, symbols []string, field priceField) map[string]float64 {
	out := make(map[string]float64, len(symbols))
	if d.deps.Quotes == nil {
		return out
	}
	for _, sym := range symbols {
		q, err := d.deps.Quotes.GetQuote(ctx, sym)
		if err != nil {
			d.log.Warnw("failed to collect price", "symbol", sym, "error", err)
			continue
		}
		if p := field(q); p > 0 {
			out[sym] = p
		}
	}
	return out
}

func symbolsOf(top []model.TopTicker) []string {
	out := make([]string, len(top))
	for i, t := range top {
		out[i] = t.Symbol
	}
	return out
}
