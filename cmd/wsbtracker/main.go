package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wsbtracker/internal/config"
	"wsbtracker/internal/logger"
)

var (
	cfgFile    string
	dataDir    string
	logLevel   string
	listenAddr string
	symbolList string
	format     string
	limit      int
	workers    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wsbtracker",
		Short: "WallStreetBets sentiment tracker and short squeeze screener",
		Long: `wsbtracker scrapes sentiment-tagged comments, tallies bull/bear counts per
ticker and acts on them around the US market session.

Examples:
  wsbtracker run --listen :8080
  wsbtracker report --limit 10
  wsbtracker screen --symbols GME,AMC
  wsbtracker ema`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "snapshot directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Collect comments and run the market-hours daemon",
		RunE:  runDaemon,
	}
	runCmd.Flags().StringVar(&listenAddr, "listen", "", "status server address, e.g. :8080")

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print the current window's sentiment ranking",
		RunE:  runReport,
	}
	reportCmd.Flags().IntVar(&limit, "limit", 0, "rows to print (default: sentiment.report_n)")
	reportCmd.Flags().StringVar(&format, "format", "table", "output format: table, json")

	screenCmd := &cobra.Command{
		Use:   "screen",
		Short: "Run the short squeeze screen and write its report",
		RunE:  runScreen,
	}
	screenCmd.Flags().StringVar(&symbolList, "symbols", "", "comma-separated symbols (default: stored top tickers)")
	screenCmd.Flags().IntVar(&workers, "workers", 0, "number of parallel workers")
	screenCmd.Flags().StringVar(&format, "format", "table", "output format: table, json")

	emaCmd := &cobra.Command{
		Use:   "ema",
		Short: "Print the sentiment EMA series and the current signal",
		RunE:  runEma,
	}
	emaCmd.Flags().IntVar(&limit, "limit", 0, "most recent days to print (default: all)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only status API",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&listenAddr, "listen", ":8080", "listen address")

	rootCmd.AddCommand(runCmd, reportCmd, screenCmd, emaCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, applies CLI overrides and starts logging
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if f := cmd.Flags().Lookup("listen"); f != nil && (f.Changed || cfg.Server.Listen == "") {
		cfg.Server.Listen = listenAddr
	}
	if workers > 0 {
		cfg.Squeeze.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Env); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, nil
}
