package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"wsbtracker/internal/collector"
	"wsbtracker/internal/daemon"
	"wsbtracker/internal/logger"
	"wsbtracker/internal/market"
	"wsbtracker/internal/metrics"
	"wsbtracker/internal/sentiment"
	"wsbtracker/internal/squeeze"
	"wsbtracker/internal/store"
	"wsbtracker/internal/symbols"
	"wsbtracker/internal/web"
	"wsbtracker/pkg/model"
)

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Named("main")

	universe, err := symbols.Load(cfg.Symbols.TickerDir, cfg.Symbols.IgnoreFile)
	if err != nil {
		return fmt.Errorf("loading ticker universe: %w", err)
	}
	log.Infow("ticker universe loaded", "symbols", universe.Len())

	cal, err := newCalendar(cfg)
	if err != nil {
		return err
	}
	st := store.New(cfg.DataDir, cal, store.WithLogger(logger.Named("store")))
	m := metrics.New()

	src := newSource(cfg)
	defer src.Close()

	loop := collector.New(collector.Config{
		PollInterval:  cfg.Collector.PollInterval,
		RetryInterval: cfg.Collector.RetryInterval,
		MaxRetries:    cfg.Collector.MaxRetries,
	}, src, sentiment.NewClassifier(universe), st,
		collector.WithProbe(collector.TCPProbe(cfg.Collector.ProbeAddr, probeTimeout)),
		collector.WithLogger(logger.Named("collector")),
		collector.WithMetrics(m),
	)

	quotes := newQuoteProvider(cfg)
	deps := daemon.Deps{
		Universe:  universe,
		Calendar:  cal,
		Store:     st,
		Collector: loop,
		Quotes:    quotes,
		Screener:  newScreener(cfg, quotes, m),
		Metrics:   m,
		Logger:    logger.Named("daemon"),
	}
	if err := wireNotify(cfg, &deps); err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	if cfg.Server.Listen != "" {
		srv := web.NewServer(st, cfg.Sentiment.EmaPeriod, cfg.Sentiment.TopN, m, logger.Named("web"))
		go func() {
			if err := srv.Start(cfg.Server.Listen); err != nil {
				log.Errorw("status server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			srv.Shutdown(shutdownCtx)
		}()
	}

	return daemon.New(daemonConfig(cfg), deps).Run(ctx)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := newStore(cfg)
	if err != nil {
		return err
	}

	w := st.Window()
	events, err := st.Comments(w)
	if err != nil && !errors.Is(err, store.ErrNoSnapshot) {
		return fmt.Errorf("reading comments: %w", err)
	}

	agg := sentiment.Aggregate(events)
	n := cfg.Sentiment.ReportN
	if limit > 0 {
		n = limit
	}
	rows := agg.Top(n)

	if format == "json" {
		return outputJSON(map[string]any{
			"window":  w.Name(),
			"overall": agg.Overall,
			"bullish": agg.Bullish,
			"bearish": agg.Bearish,
			"tickers": rows,
		})
	}

	fmt.Printf("Window %s: %d comment events\n", w.Name(), len(events))
	fmt.Printf("Overall Bull/Bear Ratio: %.3f (%d bullish / %d bearish)\n\n", agg.Overall, agg.Bullish, agg.Bearish)

	if len(rows) == 0 {
		fmt.Println("No ticker mentions yet.")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"#", "Ticker", "Bullish", "Bearish", "Bull/Bear Ratio"}),
	)
	for i, r := range rows {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			r.Symbol,
			fmt.Sprintf("%d", r.Bullish),
			fmt.Sprintf("%d", r.Bearish),
			fmt.Sprintf("%.2f", r.Ratio),
		})
	}
	table.Render()

	if agg.Overall == 1 {
		fmt.Println("\nSentiment is neutral: no tickers would be selected.")
	}
	return nil
}

func runScreen(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	st, err := newStore(cfg)
	if err != nil {
		return err
	}

	syms, w, err := screenSymbols(st)
	if err != nil {
		return err
	}
	if symbolList == "" {
		universe, err := symbols.Load(cfg.Symbols.TickerDir, cfg.Symbols.IgnoreFile)
		if err != nil {
			return fmt.Errorf("loading ticker universe: %w", err)
		}
		syms = universe.FilterListed(syms)
	}
	if len(syms) == 0 {
		return fmt.Errorf("no symbols to screen")
	}

	ctx, cancel := interruptContext()
	defer cancel()

	screener := newScreener(cfg, newQuoteProvider(cfg), nil)

	fmt.Printf("Screening %d tickers for short squeeze conditions...\n\n", len(syms))

	bar := progressbar.NewOptions(len(syms),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Screening"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]█[reset]",
			SaucerHead:    "[green]█[reset]",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	screener.SetProgressCallback(func(screened, total int, symbol string) {
		bar.Set(screened)
	})

	wl, err := screener.Screen(ctx, syms)
	bar.Finish()
	fmt.Println()
	if wl == nil {
		return fmt.Errorf("screening: %w", err)
	}
	if err != nil {
		fmt.Printf("Screen incomplete: %v\n", err)
	}

	if format == "json" {
		return outputJSON(wl)
	}

	if len(wl.Candidates) == 0 {
		fmt.Println("No short squeeze candidates found.")
		fmt.Printf("Screened %d tickers in %s\n", wl.Screened, wl.Duration.Round(time.Second))
		return nil
	}

	report, err := squeeze.Report(wl)
	if err != nil {
		return err
	}
	path, err := st.WriteReport(w, store.SqueezeReportFile, report)
	if err != nil {
		return err
	}

	outputWatchlist(wl)
	fmt.Printf("\nReport written to %s\n", path)
	return nil
}

// screenSymbols returns --symbols, or the stored top tickers of the current
// window, falling back to the previous one.
func screenSymbols(st *store.Store) ([]string, market.Window, error) {
	w := st.Window()
	if symbolList != "" {
		return symbols.ParseList(symbolList), w, nil
	}

	for _, win := range []market.Window{w, st.PreviousWindow()} {
		top, err := st.TopTickers(win)
		if errors.Is(err, store.ErrNoSnapshot) {
			continue
		}
		if err != nil {
			return nil, w, err
		}
		out := make([]string, len(top))
		for i, t := range top {
			out[i] = t.Symbol
		}
		return out, win, nil
	}
	return nil, w, fmt.Errorf("no stored top tickers, pass --symbols")
}

func outputWatchlist(wl *squeeze.Watchlist) {
	fmt.Printf("Found %d candidates:\n\n", len(wl.Candidates))

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Ticker", "Price", "Change", "Short %", "Pain", "Vol Days", "Flags"}),
	)
	for _, c := range wl.GreatestPain() {
		short := "-"
		if c.ShortPctFloat != nil {
			short = fmt.Sprintf("%.2f%%", *c.ShortPctFloat)
		}
		table.Append([]string{
			c.Symbol,
			fmt.Sprintf("$%.2f", c.CurrentPrice),
			fmt.Sprintf("%+.2f%%", c.PercentChange),
			short,
			fmt.Sprintf("%.0f", c.ShortsPain),
			fmt.Sprintf("%d", c.DaysAboveAvgVolume),
			flags(c),
		})
	}
	table.Render()

	if perfect := wl.Perfect(); len(perfect) > 0 {
		names := make([]string, len(perfect))
		for i, c := range perfect {
			names[i] = c.Symbol
		}
		fmt.Printf("\nPerfect setups: %s\n", strings.Join(names, ", "))
	}
	fmt.Printf("Screened %d tickers (%d failed) in %s\n", wl.Screened, wl.Failed, wl.Duration.Round(time.Second))
}

func flags(c model.SqueezeCandidate) string {
	var out []string
	if c.PriceUptrend {
		out = append(out, "price")
	}
	if c.VolumeUptrend {
		out = append(out, "volume")
	}
	if c.HighShortShares {
		out = append(out, "short")
	}
	if c.NearYearlyLow {
		out = append(out, "low")
	}
	if c.HighBeta {
		out = append(out, "beta")
	}
	return strings.Join(out, ",")
}

func runEma(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := newStore(cfg)
	if err != nil {
		return err
	}

	points, err := st.LoadEma(cfg.Sentiment.EmaPeriod)
	if err != nil {
		return fmt.Errorf("reading EMA series: %w", err)
	}
	if len(points) == 0 {
		fmt.Printf("No %d-day EMA recorded yet. It is updated at each market open.\n", cfg.Sentiment.EmaPeriod)
		return nil
	}

	shown := points
	if limit > 0 && limit < len(shown) {
		shown = shown[len(shown)-limit:]
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Date", "Bull/Bear Ratio", fmt.Sprintf("%d-day EMA", cfg.Sentiment.EmaPeriod), "Signal"}),
	)
	for _, p := range shown {
		table.Append([]string{
			p.Date,
			fmt.Sprintf("%.3f", p.Ratio),
			fmt.Sprintf("%.3f", p.EMA),
			string(sentiment.SignalFor(p.Ratio, p.EMA)),
		})
	}
	table.Render()

	latest := points[len(points)-1]
	fmt.Printf("\nCurrent signal (%s): %s\n", latest.Date, sentiment.SignalFor(latest.Ratio, latest.EMA))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	st, err := newStore(cfg)
	if err != nil {
		return err
	}

	srv := web.NewServer(st, cfg.Sentiment.EmaPeriod, cfg.Sentiment.TopN, metrics.New(), logger.Named("web"))

	ctx, cancel := interruptContext()
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(cfg.Server.Listen) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	return srv.Shutdown(shutdownCtx)
}

func outputJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
