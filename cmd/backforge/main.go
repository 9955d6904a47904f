// Package main is the backforge CLI: load a host manifest, pull bar
// history for one or more symbols, run a strategy through the engine,
// and print the resulting report.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/backforge/backforge/internal/barsource"
	"github.com/backforge/backforge/internal/engine"
	"github.com/backforge/backforge/internal/manifest"
	"github.com/backforge/backforge/internal/plugin"
	"github.com/backforge/backforge/internal/worker"
	"github.com/backforge/backforge/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var params *manifest.HostParams

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "backforge",
	Short: "A deterministic bar-by-bar strategy backtester",
	Long: `backforge replays OHLCV bar history through a pluggable strategy,
simulating fills, commissions, slippage, margin, and exit orders bar by
bar, and reports the resulting equity curve and trade statistics.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			params, err = manifest.LoadFromFile(configFile)
		} else {
			params, err = manifest.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load manifest: %w", err)
		}
		logLevel, _ := cmd.Flags().GetString("log-level")
		var level slog.Level
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "manifest file path (default: manifest.yaml under ./config, ~/.backforge, or /etc/backforge)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("backforge %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one backtest",
	Long: `Run a single strategy over one or more symbols' bar history.

Available strategies: sma_crossover, rsi_mean_reversion, supertrend, vwap_breakout, macd_crossover

Examples:
  backforge run --strategy sma_crossover --symbol AAPL --from 2023-01-01 --to 2023-12-31
  backforge run --strategy rsi_mean_reversion --symbol AAPL --symbol MSFT --bars-url http://localhost:8090 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		strategyName, _ := cmd.Flags().GetString("strategy")
		symbols, _ := cmd.Flags().GetStringSlice("symbol")
		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")
		barsURL, _ := cmd.Flags().GetString("bars-url")
		cacheDir, _ := cmd.Flags().GetString("cache-dir")
		outputJSON, _ := cmd.Flags().GetBool("json")

		if strategyName == "" || len(symbols) == 0 {
			return fmt.Errorf("--strategy and at least one --symbol are required")
		}

		from, to, err := parseDateRange(fromStr, toStr)
		if err != nil {
			return err
		}

		strategy := findStrategy(strategyName)
		if strategy == nil {
			return fmt.Errorf("unknown strategy %q; available: %s", strategyName, strings.Join(listStrategyNames(), ", "))
		}

		log := slog.Default()

		fmt.Printf("Backtesting %s on %s (%s to %s)\n", strategy.Name(), strings.Join(symbols, ","),
			from.Format("2006-01-02"), to.Format("2006-01-02"))

		bars, err := loadBars(cmd.Context(), barsURL, cacheDir, symbols, from, to)
		if err != nil {
			return fmt.Errorf("failed to load bars: %w", err)
		}
		if len(bars) < 50 {
			return fmt.Errorf("insufficient data: got %d bars, need at least 50", len(bars))
		}

		e, err := engine.New(params, log)
		if err != nil {
			return fmt.Errorf("invalid manifest: %w", err)
		}

		report, err := e.Run(strategy, bars)
		if err != nil {
			return fmt.Errorf("backtest failed: %w", err)
		}

		if outputJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		printReport(report)
		return nil
	},
}

func init() {
	runCmd.Flags().StringP("strategy", "s", "", "strategy name (required)")
	runCmd.Flags().StringSlice("symbol", nil, "symbol to backtest, repeatable (required)")
	runCmd.Flags().String("from", "2023-01-01", "start date (YYYY-MM-DD)")
	runCmd.Flags().String("to", "", "end date (YYYY-MM-DD, default: today)")
	runCmd.Flags().String("bars-url", "", "base URL of a bar-history server (default: use --cache-dir only)")
	runCmd.Flags().String("cache-dir", "./cache/bars", "disk cache directory for fetched bar series")
	runCmd.Flags().Bool("json", false, "output the report as JSON")
}

// --- Sweep Command ---

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run every built-in strategy over the same bar history concurrently",
	RunE: func(cmd *cobra.Command, args []string) error {
		symbols, _ := cmd.Flags().GetStringSlice("symbol")
		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")
		barsURL, _ := cmd.Flags().GetString("bars-url")
		cacheDir, _ := cmd.Flags().GetString("cache-dir")
		outputJSON, _ := cmd.Flags().GetBool("json")

		if len(symbols) == 0 {
			return fmt.Errorf("at least one --symbol is required")
		}
		from, to, err := parseDateRange(fromStr, toStr)
		if err != nil {
			return err
		}

		bars, err := loadBars(cmd.Context(), barsURL, cacheDir, symbols, from, to)
		if err != nil {
			return fmt.Errorf("failed to load bars: %w", err)
		}
		if len(bars) < 50 {
			return fmt.Errorf("insufficient data: got %d bars, need at least 50", len(bars))
		}

		var runs []worker.Run
		for _, s := range plugin.BuiltinStrategies() {
			runs = append(runs, worker.Run{Label: s.Name(), Strategy: s, Params: params, Bars: bars})
		}

		results := worker.RunMany(cmd.Context(), runs)

		if outputJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}
		for _, r := range results {
			fmt.Println()
			fmt.Printf("── %s ──\n", r.Label)
			if r.Err != nil {
				fmt.Printf("  error: %v\n", r.Err)
				continue
			}
			printReport(r.Report)
		}
		return nil
	},
}

func init() {
	sweepCmd.Flags().StringSlice("symbol", nil, "symbol to backtest, repeatable (required)")
	sweepCmd.Flags().String("from", "2023-01-01", "start date (YYYY-MM-DD)")
	sweepCmd.Flags().String("to", "", "end date (YYYY-MM-DD, default: today)")
	sweepCmd.Flags().String("bars-url", "", "base URL of a bar-history server (default: use --cache-dir only)")
	sweepCmd.Flags().String("cache-dir", "./cache/bars", "disk cache directory for fetched bar series")
	sweepCmd.Flags().Bool("json", false, "output the results as JSON")
}

// --- helpers ---

func parseDateRange(fromStr, toStr string) (from, to time.Time, err error) {
	from, err = time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date: %w", err)
	}
	to = time.Now()
	if toStr != "" {
		to, err = time.Parse("2006-01-02", toStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date: %w", err)
		}
	}
	return from, to, nil
}

// loadBars fetches and merges bar history for every symbol, preferring
// the disk cache under cacheDir and only hitting barsURL on a miss.
func loadBars(ctx context.Context, barsURL, cacheDir string, symbols []string, from, to time.Time) ([]models.Bar, error) {
	cache, err := barsource.NewDiskCache(cacheDir)
	if err != nil {
		return nil, err
	}
	client := barsource.NewClient(barsURL)
	feed := barsource.NewFeed(client, cache)

	var series [][]models.Bar
	for _, symbol := range symbols {
		bars, err := feed.Load(ctx, symbol, from, to)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", symbol, err)
		}
		series = append(series, bars)
	}
	return barsource.MergeChronological(series...), nil
}

// findStrategy matches a strategy name loosely against the built-ins,
// normalizing case, spaces, and hyphens the way the user is likely to
// type it on a command line.
func findStrategy(name string) plugin.Strategy {
	name = strings.ToLower(strings.ReplaceAll(name, "-", "_"))
	for _, s := range plugin.BuiltinStrategies() {
		sName := strings.ToLower(strings.ReplaceAll(s.Name(), " ", "_"))
		if sName == name || strings.Contains(sName, name) {
			return s
		}
	}
	return nil
}

func listStrategyNames() []string {
	var names []string
	for _, s := range plugin.BuiltinStrategies() {
		names = append(names, s.Name())
	}
	return names
}

func printReport(r *models.BacktestReport) {
	m := r.Metrics
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  Backtest Report")
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("  Strategy:       %s\n", r.Strategy)
	fmt.Printf("  Bars:           %d\n", len(r.EquityCurve))
	fmt.Println()
	fmt.Printf("  Total Return:   %s\n", formatPct(m.TotalReturn))
	fmt.Printf("  CAGR:           %s\n", formatPct(m.CAGR))
	fmt.Printf("  Sharpe Ratio:   %.2f\n", m.Sharpe)
	fmt.Printf("  Sortino Ratio:  %.2f\n", m.Sortino)
	fmt.Printf("  Calmar Ratio:   %.2f\n", m.Calmar)
	fmt.Printf("  Max Drawdown:   %s\n", formatPct(m.MaxDrawdown))
	fmt.Println()
	fmt.Printf("  Total Trades:   %d\n", m.TotalTrades)
	fmt.Printf("  Win Rate:       %s\n", formatPct(m.WinRate))
	fmt.Printf("  Profit Factor:  %.2f\n", m.ProfitFactor)
	fmt.Printf("  Avg Win:        %s\n", m.AverageWin.String())
	fmt.Printf("  Avg Loss:       %s\n", m.AverageLoss.String())
	fmt.Printf("  Expectancy:     %s\n", m.ExpectancyPerTrade.String())
	fmt.Printf("  Median Trade:   %.2f\n", m.MedianTradePnL)
	fmt.Println("═══════════════════════════════════════")
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 2, 64) + "%"
}
