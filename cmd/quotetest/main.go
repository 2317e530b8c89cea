package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"wsbtracker/internal/config"
	"wsbtracker/internal/provider"
	"wsbtracker/internal/ratelimit"
	"wsbtracker/internal/squeeze"
	"wsbtracker/internal/symbols"
)

// quotetest checks that the Yahoo endpoints answer and that the squeeze
// checks can be computed for a handful of tickers.
func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal(err)
	}

	testSymbols := []string{"GME", "AMC", "TSLA", "BB", "SPY"}
	if len(os.Args) > 1 {
		testSymbols = symbols.ParseList(os.Args[1])
	}

	limiter := ratelimit.NewLimiter("yahoo", cfg.Provider.RateLimit)
	hosts := []*provider.YahooProvider{
		provider.NewYahooProvider(provider.WithLimiter(limiter, cfg.Provider.RateLimit)),
		provider.NewYahooProvider(provider.WithBaseURL(provider.YahooQuery2), provider.WithLimiter(limiter, cfg.Provider.RateLimit)),
	}
	ctx := context.Background()

	fmt.Println("=== Yahoo Quote Test ===")

	// 1. Each host on its own
	fmt.Printf("\n[1] Quote for %s per host\n", testSymbols[0])
	for _, p := range hosts {
		start := time.Now()
		q, err := p.GetQuote(ctx, testSymbols[0])
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("    %s: ERROR - %v\n", p.Name(), err)
			continue
		}
		short := "n/a"
		if q.ShortPctFloat != nil {
			short = fmt.Sprintf("%.2f%%", *q.ShortPctFloat)
		}
		fmt.Printf("    %s: OK in %s price=%.2f open=%.2f prev=%.2f short=%s\n",
			p.Name(), elapsed.Round(time.Millisecond), q.Price, q.Open, q.PreviousClose, short)
	}

	// 2. Candles
	fmt.Printf("\n[2] GetDailyCandles for %s\n", testSymbols[0])
	fallback := provider.NewFallbackProvider(hosts[0], hosts[1])
	start := time.Now()
	candles, err := fallback.GetDailyCandles(ctx, testSymbols[0], cfg.Squeeze.HistoryDays)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Printf("    ERROR: %v\n", err)
	} else {
		fmt.Printf("    OK: %d candles in %s\n", len(candles), elapsed.Round(time.Millisecond))
		if len(candles) > 0 {
			last := candles[len(candles)-1]
			fmt.Printf("    Last: %s O=%.2f H=%.2f L=%.2f C=%.2f V=%d\n",
				last.Time.Format("2006-01-02"), last.Open, last.High, last.Low, last.Close, last.Volume)
		}
	}

	// 3. Squeeze evaluation per ticker
	fmt.Println("\n[3] Squeeze evaluation")
	screener := squeeze.NewScreener(provider.NewCachingProvider(fallback, cfg.Squeeze.HistoryDays), 1, time.Minute,
		squeeze.WithHistoryDays(cfg.Squeeze.HistoryDays))
	for _, sym := range testSymbols {
		start := time.Now()
		c, err := screener.Evaluate(ctx, sym)
		elapsed := time.Since(start)
		switch {
		case err != nil:
			fmt.Printf("    %s: ERROR - %v (%.1fs)\n", sym, err, elapsed.Seconds())
		case c == nil:
			fmt.Printf("    %s: not a candidate (%.1fs)\n", sym, elapsed.Seconds())
		default:
			fmt.Printf("    %s: change=%+.2f%% pain=%.0f price_up=%v volume_up=%v short=%v (%.1fs)\n",
				sym, c.PercentChange, c.ShortsPain, c.PriceUptrend, c.VolumeUptrend, c.HighShortShares, elapsed.Seconds())
		}
	}

	fmt.Println("\n=== Test Complete ===")
}
