package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/logsift/logsift/internal/model"
	"github.com/logsift/logsift/pkg/apistats"
)

func TestPrintReport(t *testing.T) {
	rep := &model.Report{
		TotalLogs:       100,
		ErrorLogs:       10,
		ErrorPercentage: 10,
		TopErrorTypes: []model.PatternStat{
			{Pattern: "db down: refused", Count: 7, Percentage: 70, Example: "db down: refused"},
		},
		HourlyErrorDistribution: map[int]int{10: 7, 11: 3},
		LevelDistribution:       map[string]int{"INFO": 90, "ERROR": 10},
		ErrorBursts: []model.ErrorBurst{
			{
				StartTime:       time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
				EndTime:         time.Date(2024, 1, 1, 10, 2, 0, 0, time.UTC),
				DurationMinutes: 2,
				ErrorCount:      6,
				SampleMessages:  []string{"db down: refused"},
			},
		},
		Recommendations: []string{"Examine 1 error bursts that may indicate systemic issues"},
		SkippedLines:    2,
	}

	var buf bytes.Buffer
	PrintReport(&buf, rep)
	out := buf.String()

	for _, want := range []string{
		"LOG ANALYSIS REPORT",
		"db down: refused",
		"10:00",
		"6 errors in 2.0 minutes",
		"Examine 1 error bursts",
		"Skipped lines",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestPrintReport_Warning(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, &model.Report{Warning: "no log entries found within the analysis window"})

	if !strings.Contains(buf.String(), "no log entries found") {
		t.Error("warning not rendered")
	}
}

func TestPrintAPIReport(t *testing.T) {
	rep := &apistats.Report{
		TotalRequests:       4,
		SuccessRate:         75,
		AverageResponseTime: 250,
		ErrorCount:          1,
		StatusSummary: []apistats.StatusSummary{
			{StatusCode: 200, Requests: 3, MeanMs: 200, MedianMs: 200, MaxMs: 400},
		},
		EndpointPerformance: []apistats.EndpointStat{
			{Endpoint: "/api/users", Requests: 4, MeanMs: 250, SuccessRate: 75},
		},
		TopErrors: []apistats.ErrorPattern{
			{Endpoint: "/api/users", Message: "boom", Count: 1},
		},
		Recommendations: []string{"Investigate high error rate (25.0%) for endpoint: /api/users"},
	}

	var buf bytes.Buffer
	PrintAPIReport(&buf, rep)
	out := buf.String()

	for _, want := range []string{
		"API RESPONSE ANALYSIS",
		"/api/users",
		"boom",
		"Investigate high error rate",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
