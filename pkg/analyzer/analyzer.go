// Package analyzer extracts structured events from free-form log lines
// within a trailing time window, groups error messages into canonical
// patterns, and detects temporal clusters of elevated error activity.
package analyzer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/logsift/logsift/internal/model"
	sifterr "github.com/logsift/logsift/pkg/errors"
)

var tracer = otel.Tracer("github.com/logsift/logsift/pkg/analyzer")

const (
	// DefaultWindowHours is how far back from "now" to include events.
	DefaultWindowHours = 24

	// DefaultBurstSize is the minimum run length for a burst.
	DefaultBurstSize = 5

	// DefaultBurstGapMinutes is the largest allowed gap inside a burst.
	DefaultBurstGapMinutes = 5.0

	// maxTopPatterns caps the top_error_types list.
	maxTopPatterns = 10

	// significantPatternCount is the frequency above which a pattern is
	// flagged in recommendations (strictly greater).
	significantPatternCount = 5

	// dominantHourShare flags an hour holding more than this share of
	// all errors (strictly greater).
	dominantHourShare = 0.3
)

// Options configures an analysis run.
type Options struct {
	// WindowHours bounds the trailing window; 0 means DefaultWindowHours.
	WindowHours int

	// BurstSize is the minimum error count per burst; 0 means default.
	BurstSize int

	// BurstGapMinutes is the maximum gap between adjacent burst events;
	// 0 means default.
	BurstGapMinutes float64

	// Now is the analysis reference instant. The zero value means the
	// current wall clock. Injected rather than ambient so window filtering
	// and burst detection stay deterministic under test.
	Now time.Time

	// Diagnostics receives per-line skip notices when non-nil.
	Diagnostics io.Writer
}

func (o Options) withDefaults() Options {
	if o.WindowHours <= 0 {
		o.WindowHours = DefaultWindowHours
	}
	if o.BurstSize <= 0 {
		o.BurstSize = DefaultBurstSize
	}
	if o.BurstGapMinutes <= 0 {
		o.BurstGapMinutes = DefaultBurstGapMinutes
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// AnalyzeFile analyzes a log file on disk. A missing file surfaces as a
// CodeFileNotFound error, distinct from the zero-count empty-window report.
func AnalyzeFile(ctx context.Context, path string, opts Options) (*model.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sifterr.FileNotFound(path)
		}
		return nil, sifterr.Wrap(err, sifterr.CodeFilePermission, "failed to open log file").
			WithContext("path", path)
	}
	defer f.Close()

	return AnalyzeReader(ctx, f, opts)
}

// AnalyzeReader analyzes log lines from r in a single sequential pass.
func AnalyzeReader(ctx context.Context, r io.Reader, opts Options) (*model.Report, error) {
	opts = opts.withDefaults()

	ctx, span := tracer.Start(ctx, "analyzer.AnalyzeReader")
	defer span.End()

	events, skipped, err := scan(ctx, r, opts)
	if err != nil {
		return nil, err
	}

	report := buildReport(events, skipped, opts)
	span.SetAttributes(
		attribute.Int("logsift.total_logs", report.TotalLogs),
		attribute.Int("logsift.error_logs", report.ErrorLogs),
		attribute.Int("logsift.bursts", len(report.ErrorBursts)),
	)
	return report, nil
}

// AnalyzeFiles analyzes several log files concurrently and merges their
// events into one report. Per-file scans run in parallel; the merged event
// set is re-sorted by timestamp before burst detection so the detector
// never sees a partially ordered stream.
func AnalyzeFiles(ctx context.Context, paths []string, opts Options) (*model.Report, error) {
	opts = opts.withDefaults()

	ctx, span := tracer.Start(ctx, "analyzer.AnalyzeFiles")
	defer span.End()

	type partition struct {
		events  []model.LogEvent
		skipped int
	}
	parts := make([]partition, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				if os.IsNotExist(err) {
					return sifterr.FileNotFound(path)
				}
				return sifterr.Wrap(err, sifterr.CodeFilePermission, "failed to open log file").
					WithContext("path", path)
			}
			defer f.Close()

			events, skipped, err := scan(gctx, f, opts)
			if err != nil {
				return err
			}
			parts[i] = partition{events: events, skipped: skipped}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []model.LogEvent
	skipped := 0
	for _, p := range parts {
		merged = append(merged, p.events...)
		skipped += p.skipped
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})

	return buildReport(merged, skipped, opts), nil
}

// scan reads lines sequentially and keeps those with a parsable bracketed
// timestamp inside the window. Parse failures on individual lines are
// recovered by skipping; they never abort the run.
func scan(ctx context.Context, r io.Reader, opts Options) ([]model.LogEvent, int, error) {
	threshold := opts.Now.Add(-time.Duration(opts.WindowHours) * time.Hour)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var events []model.LogEvent
	skipped := 0
	lineNumber := 0

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, skipped, sifterr.ContextCanceled("analyze log input")
		default:
		}

		lineNumber++
		line := scanner.Text()

		field, ok := timestampField(line)
		if !ok {
			skipped++
			diag(opts, "line %d: no bracketed timestamp, skipping", lineNumber)
			continue
		}

		ts, err := ParseTimestamp(field)
		if err != nil {
			skipped++
			diag(opts, "line %d: %v, skipping", lineNumber, err)
			continue
		}

		if ts.Before(threshold) {
			continue
		}

		level, msg := ClassifyLine(line)
		events = append(events, model.LogEvent{
			Timestamp:  ts,
			Level:      level,
			Message:    msg,
			Raw:        line,
			LineNumber: lineNumber,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, sifterr.Wrap(err, sifterr.CodeParseFailed, "failed to read log input")
	}

	return events, skipped, nil
}

func diag(opts Options, format string, args ...interface{}) {
	if opts.Diagnostics != nil {
		fmt.Fprintf(opts.Diagnostics, format+"\n", args...)
	}
}

// patternAgg accumulates one normalized pattern. The example keeps the
// first-seen verbatim message for the pattern.
type patternAgg struct {
	pattern string
	count   int
	example string
}

// buildReport aggregates windowed events into the analysis report.
func buildReport(events []model.LogEvent, skipped int, opts Options) *model.Report {
	report := &model.Report{
		HourlyErrorDistribution: make(map[int]int),
		LevelDistribution:       make(map[string]int),
		TopErrorTypes:           []model.PatternStat{},
		ErrorBursts:             []model.ErrorBurst{},
		Recommendations:         []string{},
		SkippedLines:            skipped,
	}

	if len(events) == 0 {
		report.Warning = "no log entries found within the analysis window"
		return report
	}

	report.TotalLogs = len(events)

	var errorEvents []model.LogEvent
	for _, e := range events {
		report.LevelDistribution[e.Level.String()]++
		if e.Level.IsError() {
			errorEvents = append(errorEvents, e)
		}
	}
	report.ErrorLogs = len(errorEvents)
	if report.TotalLogs > 0 {
		report.ErrorPercentage = float64(report.ErrorLogs) / float64(report.TotalLogs) * 100
	}

	// Pattern frequency, keyed by the normalized message.
	patterns := make(map[string]*patternAgg)
	var patternOrder []string
	for _, e := range errorEvents {
		if e.Message == "" {
			continue
		}
		key := NormalizePattern(e.Message)
		agg, ok := patterns[key]
		if !ok {
			agg = &patternAgg{pattern: key, example: e.Message}
			patterns[key] = agg
			patternOrder = append(patternOrder, key)
		}
		agg.count++
	}

	ranked := make([]*patternAgg, 0, len(patterns))
	for _, key := range patternOrder {
		ranked = append(ranked, patterns[key])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].pattern < ranked[j].pattern
	})

	for i, agg := range ranked {
		if i >= maxTopPatterns {
			break
		}
		pct := 0.0
		if report.ErrorLogs > 0 {
			pct = float64(agg.count) / float64(report.ErrorLogs) * 100
		}
		report.TopErrorTypes = append(report.TopErrorTypes, model.PatternStat{
			Pattern:    agg.pattern,
			Count:      agg.count,
			Percentage: pct,
			Example:    agg.example,
		})
	}

	for _, e := range errorEvents {
		report.HourlyErrorDistribution[e.Timestamp.Hour()]++
	}

	// Stable sort keeps original line order on timestamp ties, which the
	// detector relies on for sample selection.
	sort.SliceStable(errorEvents, func(i, j int) bool {
		return errorEvents[i].Timestamp.Before(errorEvents[j].Timestamp)
	})
	detector := NewBurstDetector(opts.BurstSize, opts.BurstGapMinutes)
	report.ErrorBursts = detector.Detect(errorEvents)

	report.Recommendations = recommendations(report, ranked)
	return report
}

// recommendations derives heuristic guidance from the aggregates. The
// thresholds match the operational playbook: a pattern is significant above
// 5 occurrences, an hour is dominant above 30% of all errors.
func recommendations(report *model.Report, ranked []*patternAgg) []string {
	recs := []string{}

	if report.ErrorLogs > 0 {
		top := ranked
		if len(top) > 3 {
			top = top[:3]
		}
		for _, agg := range top {
			if agg.count > significantPatternCount {
				pct := float64(agg.count) / float64(report.ErrorLogs) * 100
				recs = append(recs, fmt.Sprintf(
					"Investigate frequent error pattern (%.1f%% of errors): %s...",
					pct, truncate(agg.pattern, 100)))
			}
		}
	}

	if len(report.ErrorBursts) > 0 {
		recs = append(recs, fmt.Sprintf(
			"Examine %d error bursts that may indicate systemic issues",
			len(report.ErrorBursts)))
		for i, b := range report.ErrorBursts {
			if i >= 3 {
				break
			}
			recs = append(recs, fmt.Sprintf(
				"  Burst %d: %d errors in %.1f minutes at %s",
				i+1, b.ErrorCount, b.DurationMinutes,
				b.StartTime.Format("2006-01-02 15:04:05")))
		}
	}

	if len(report.HourlyErrorDistribution) > 0 {
		peakHour, peakCount := -1, 0
		for hour, count := range report.HourlyErrorDistribution {
			if count > peakCount || (count == peakCount && hour < peakHour) {
				peakHour, peakCount = hour, count
			}
		}
		if float64(peakCount) > float64(report.ErrorLogs)*dominantHourShare {
			pct := float64(peakCount) / float64(report.ErrorLogs) * 100
			recs = append(recs, fmt.Sprintf(
				"Check for scheduled jobs at hour %d:00 that may be causing %d errors (%.1f%% of total)",
				peakHour, peakCount, pct))
		}
	}

	return recs
}

// truncate shortens s to at most n runes, never splitting a multibyte rune.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
