// Package tui renders analysis reports for the terminal.
// Simple, streaming, no complex TUI - just clean styled output.
package tui

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"

	"github.com/logsift/logsift/internal/model"
	"github.com/logsift/logsift/pkg/apistats"
)

// Colors (Swiss minimal)
var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	warning = lipgloss.Color("#FFAA00")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(warning).Bold(true)
)

const divider = "  ─────────────────────────────────────"

// PrintReport renders a log analysis report.
func PrintReport(w io.Writer, rep *model.Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("  LOG ANALYSIS REPORT"))
	fmt.Fprintln(w, mutedStyle.Render(divider))

	if rep.Warning != "" {
		fmt.Fprintf(w, "  %s %s\n", warnStyle.Render("!"), rep.Warning)
	}

	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Total logs analyzed:"), titleStyle.Render(formatNumber(int64(rep.TotalLogs))))
	fmt.Fprintf(w, "  %s %s %s\n",
		mutedStyle.Render("Errors found:"),
		titleStyle.Render(formatNumber(int64(rep.ErrorLogs))),
		mutedStyle.Render(fmt.Sprintf("(%.1f%%)", rep.ErrorPercentage)))
	if rep.SkippedLines > 0 {
		fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Skipped lines:"), titleStyle.Render(formatNumber(int64(rep.SkippedLines))))
	}

	if len(rep.LevelDistribution) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, accentStyle.Render("▸ LEVEL DISTRIBUTION"))
		for _, level := range []string{"INFO", "WARNING", "ERROR", "CRITICAL", "UNKNOWN"} {
			if count, ok := rep.LevelDistribution[level]; ok {
				fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render(fmt.Sprintf("%-9s", level)), titleStyle.Render(formatNumber(int64(count))))
			}
		}
	}

	if len(rep.TopErrorTypes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, accentStyle.Render("▸ TOP ERROR TYPES"))
		for i, pat := range rep.TopErrorTypes {
			fmt.Fprintf(w, "  %s %s %s\n",
				mutedStyle.Render(fmt.Sprintf("%2d.", i+1)),
				titleStyle.Render(fmt.Sprintf("%dx (%.1f%%)", pat.Count, pat.Percentage)),
				pat.Pattern)
			fmt.Fprintf(w, "      %s\n", mutedStyle.Render("e.g. "+pat.Example))
		}
	}

	if len(rep.HourlyErrorDistribution) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, accentStyle.Render("▸ ERRORS BY HOUR"))
		hours := make([]int, 0, len(rep.HourlyErrorDistribution))
		for hour := range rep.HourlyErrorDistribution {
			hours = append(hours, hour)
		}
		sort.Ints(hours)
		for _, hour := range hours {
			fmt.Fprintf(w, "  %s %s\n",
				mutedStyle.Render(fmt.Sprintf("%02d:00", hour)),
				bar(rep.HourlyErrorDistribution[hour]))
		}
	}

	if len(rep.ErrorBursts) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, accentStyle.Render("▸ ERROR BURSTS"))
		for i, burst := range rep.ErrorBursts {
			fmt.Fprintf(w, "  %s %s\n",
				mutedStyle.Render(fmt.Sprintf("%2d.", i+1)),
				titleStyle.Render(fmt.Sprintf("%d errors in %.1f minutes starting %s",
					burst.ErrorCount, burst.DurationMinutes,
					burst.StartTime.Format("2006-01-02 15:04:05"))))
			for _, sample := range burst.SampleMessages {
				fmt.Fprintf(w, "      %s\n", mutedStyle.Render(sample))
			}
		}
	}

	printRecommendations(w, rep.Recommendations)
	fmt.Fprintln(w)
}

// PrintAPIReport renders an API response analysis report.
func PrintAPIReport(w io.Writer, rep *apistats.Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("  API RESPONSE ANALYSIS"))
	fmt.Fprintln(w, mutedStyle.Render(divider))

	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Total requests:"), titleStyle.Render(formatNumber(int64(rep.TotalRequests))))
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Success rate:"), titleStyle.Render(fmt.Sprintf("%.1f%%", rep.SuccessRate)))
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Avg response time:"), titleStyle.Render(fmt.Sprintf("%.0fms", rep.AverageResponseTime)))
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Errors:"), titleStyle.Render(formatNumber(int64(rep.ErrorCount))))

	if len(rep.StatusSummary) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, accentStyle.Render("▸ STATUS CODES"))
		for _, st := range rep.StatusSummary {
			fmt.Fprintf(w, "  %s %s %s\n",
				titleStyle.Render(fmt.Sprintf("%d", st.StatusCode)),
				fmt.Sprintf("%d requests", st.Requests),
				mutedStyle.Render(fmt.Sprintf("(mean %.0fms, median %.0fms, max %.0fms)", st.MeanMs, st.MedianMs, st.MaxMs)))
		}
	}

	if len(rep.EndpointPerformance) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, accentStyle.Render("▸ ENDPOINTS"))
		for _, ep := range rep.EndpointPerformance {
			style := successStyle
			if ep.SuccessRate < 95 {
				style = accentStyle
			}
			fmt.Fprintf(w, "  %s %s %s\n",
				titleStyle.Render(ep.Endpoint),
				style.Render(fmt.Sprintf("%.1f%% ok", ep.SuccessRate)),
				mutedStyle.Render(fmt.Sprintf("(%d requests, mean %.0fms)", ep.Requests, ep.MeanMs)))
		}
	}

	if len(rep.TopErrors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, accentStyle.Render("▸ TOP ERRORS"))
		for _, pat := range rep.TopErrors {
			fmt.Fprintf(w, "  %s %s %s\n",
				titleStyle.Render(fmt.Sprintf("%dx", pat.Count)),
				pat.Endpoint,
				mutedStyle.Render(pat.Message))
		}
	}

	if len(rep.ResponseTimeVsErrors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, accentStyle.Render("▸ LATENCY VS ERRORS"))
		for _, bucket := range rep.ResponseTimeVsErrors {
			fmt.Fprintf(w, "  %s %s\n",
				mutedStyle.Render(fmt.Sprintf("%-9sms", bucket.Range)),
				fmt.Sprintf("%d requests, %d errors (%.1f%%)", bucket.TotalRequests, bucket.ErrorCount, bucket.ErrorRate))
		}
	}

	printRecommendations(w, rep.Recommendations)
	fmt.Fprintln(w)
}

func printRecommendations(w io.Writer, recs []string) {
	if len(recs) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, accentStyle.Render("▸ RECOMMENDATIONS"))
	for _, rec := range recs {
		fmt.Fprintf(w, "  %s %s\n", warnStyle.Render("•"), rec)
	}
}

// bar renders a count as a small horizontal bar with the number appended.
func bar(count int) string {
	width := count
	if width > 40 {
		width = 40
	}
	b := ""
	for i := 0; i < width; i++ {
		b += "█"
	}
	return accentStyle.Render(b) + " " + titleStyle.Render(fmt.Sprintf("%d", count))
}

func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// ShowProgress creates a progress bar for multi-file analysis.
func ShowProgress(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
