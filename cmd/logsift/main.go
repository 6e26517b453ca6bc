// LogSift - Log file analysis for incident triage
// Parses application logs, groups error patterns, and detects error bursts.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/logsift/logsift/internal/model"
	"github.com/logsift/logsift/pkg/analyzer"
	"github.com/logsift/logsift/pkg/apistats"
	"github.com/logsift/logsift/pkg/config"
	"github.com/logsift/logsift/pkg/export"
	"github.com/logsift/logsift/pkg/server"
	"github.com/logsift/logsift/pkg/source"
	"github.com/logsift/logsift/pkg/telemetry"
	"github.com/logsift/logsift/pkg/tui"
	"github.com/logsift/logsift/pkg/watch"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	inputFiles []string
	windowFlag int
	burstSize  int
	burstGap   float64
	jsonOut    bool
	xlsxOut    string
	verbose    bool

	serveHost string
	servePort int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "logsift",
	Short: "LogSift - Analyze application logs for errors and bursts",
	Long: `LogSift parses timestamped application logs, groups recurring error
patterns, detects error bursts, and produces actionable reports.

Examples:
  logsift analyze -i app.log
  logsift analyze -i app.log -i worker.log --window 48 --json
  logsift analyze -i s3://logs/prod/app.log --xlsx report.xlsx
  logsift api -i responses.jsonl
  logsift watch -i app.log
  logsift serve --port 8080`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one or more log files",
	Long: `Analyze timestamped log files within a trailing time window.

Local paths and s3://bucket/key inputs are supported. Multiple -i flags
merge their events into a single time-ordered report.`,
	RunE: runAnalyze,
}

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Analyze API response records (JSONL)",
	Long: `Analyze a JSONL stream of API request/response records: status code
summaries, endpoint performance, error patterns, and latency buckets.`,
	RunE: runAPI,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a log file and re-analyze on change",
	RunE:  runWatch,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP analysis API",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	analyzeCmd.Flags().StringArrayVarP(&inputFiles, "input", "i", nil, "Log file path, repeatable (local or s3://bucket/key)")
	analyzeCmd.Flags().IntVar(&windowFlag, "window", 0, "Analysis window in hours (default 24)")
	analyzeCmd.Flags().IntVar(&burstSize, "burst-size", 0, "Minimum errors per burst (default 5)")
	analyzeCmd.Flags().Float64Var(&burstGap, "burst-gap", 0, "Maximum minutes between burst errors (default 5)")
	analyzeCmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the report as JSON")
	analyzeCmd.Flags().StringVar(&xlsxOut, "xlsx", "", "Also write the report as an XLSX workbook")
	analyzeCmd.MarkFlagRequired("input")

	apiCmd.Flags().StringArrayVarP(&inputFiles, "input", "i", nil, "JSONL file path (local or s3://bucket/key)")
	apiCmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the report as JSON")
	apiCmd.MarkFlagRequired("input")

	watchCmd.Flags().StringArrayVarP(&inputFiles, "input", "i", nil, "Log file path to watch, repeatable")
	watchCmd.Flags().IntVar(&windowFlag, "window", 0, "Analysis window in hours (default 24)")
	watchCmd.Flags().IntVar(&burstSize, "burst-size", 0, "Minimum errors per burst (default 5)")
	watchCmd.Flags().Float64Var(&burstGap, "burst-gap", 0, "Maximum minutes between burst errors (default 5)")
	watchCmd.MarkFlagRequired("input")

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (default from config)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, cleaning up...")
		cancel()
	}()

	return ctx, cancel
}

// analysisOptions merges config-file settings with flag overrides.
func analysisOptions() analyzer.Options {
	cfg := config.Global().Get()

	opts := analyzer.Options{
		WindowHours:     cfg.Analysis.WindowHours,
		BurstSize:       cfg.Analysis.BurstSize,
		BurstGapMinutes: cfg.Analysis.BurstGapMinutes,
	}
	if windowFlag > 0 {
		opts.WindowHours = windowFlag
	}
	if burstSize > 0 {
		opts.BurstSize = burstSize
	}
	if burstGap > 0 {
		opts.BurstGapMinutes = burstGap
	}
	if verbose {
		opts.Diagnostics = os.Stderr
	}
	return opts
}

// initTelemetry starts trace export when enabled in config. The returned
// shutdown function is a no-op when telemetry is off.
func initTelemetry(ctx context.Context) func(context.Context) error {
	cfg := config.Global().Get()
	if !cfg.Telemetry.Enabled {
		return func(context.Context) error { return nil }
	}

	tcfg := telemetry.DefaultConfig("logsift")
	tcfg.ServiceVersion = version
	tcfg.Endpoint = cfg.Telemetry.Endpoint

	shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry disabled: %v\n", err)
		return func(context.Context) error { return nil }
	}
	return shutdown
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	shutdown := initTelemetry(ctx)
	defer shutdown(context.Background())

	opts := analysisOptions()

	report, err := analyzeInputs(ctx, inputFiles, opts)
	if err != nil {
		return err
	}

	if xlsxOut != "" {
		if err := export.WriteXLSX(report, xlsxOut); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "wrote %s\n", xlsxOut)
		}
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	tui.PrintReport(os.Stdout, report)
	return nil
}

func runAPI(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	var records []apistats.Record
	for _, path := range inputFiles {
		rc, err := source.Open(ctx, path)
		if err != nil {
			return err
		}
		recs, err := apistats.ReadRecords(ctx, rc)
		rc.Close()
		if err != nil {
			return err
		}
		records = append(records, recs...)
	}

	report := apistats.Analyze(records)

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	tui.PrintAPIReport(os.Stdout, report)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	w, err := watch.NewWatcher(analysisOptions())
	if err != nil {
		return err
	}
	defer w.Close()

	w.OnReport = func(path string, report *model.Report) {
		fmt.Fprintf(os.Stderr, "re-analyzed %s\n", path)
		tui.PrintReport(os.Stdout, report)
	}
	w.OnError = func(path string, err error) {
		fmt.Fprintf(os.Stderr, "watch error %s: %v\n", path, err)
	}

	for _, path := range inputFiles {
		if err := w.Watch(path); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "watching %s\n", path)
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	shutdown := initTelemetry(ctx)
	defer shutdown(context.Background())

	cfg := config.Global().Get()
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	srv := server.NewServer(cfg)
	fmt.Fprintf(os.Stderr, "listening on %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	return srv.ListenAndServe()
}
