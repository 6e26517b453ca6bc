// Package apistats aggregates API response records into per-status and
// per-endpoint performance summaries for integration troubleshooting.
package apistats

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	sifterr "github.com/logsift/logsift/pkg/errors"
)

// Record is one API request/response observation.
type Record struct {
	RequestID      string    `json:"request_id"`
	Timestamp      time.Time `json:"timestamp"`
	Endpoint       string    `json:"endpoint"`
	StatusCode     int       `json:"status_code"`
	ResponseTimeMs float64   `json:"response_time_ms"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}

// StatusSummary aggregates requests sharing a status code.
type StatusSummary struct {
	StatusCode int     `json:"status_code"`
	Requests   int     `json:"requests"`
	MeanMs     float64 `json:"mean_ms"`
	MedianMs   float64 `json:"median_ms"`
	MaxMs      float64 `json:"max_ms"`
}

// EndpointStat aggregates requests sharing an endpoint.
type EndpointStat struct {
	Endpoint    string  `json:"endpoint"`
	Requests    int     `json:"requests"`
	MeanMs      float64 `json:"mean_ms"`
	MedianMs    float64 `json:"median_ms"`
	MaxMs       float64 `json:"max_ms"`
	SuccessRate float64 `json:"success_rate"`
}

// ErrorPattern is a (endpoint, message) error group.
type ErrorPattern struct {
	Endpoint string `json:"endpoint"`
	Message  string `json:"message"`
	Count    int    `json:"count"`
}

// LatencyBucket correlates a response-time range with its error rate.
type LatencyBucket struct {
	Range         string  `json:"range"`
	TotalRequests int     `json:"total_requests"`
	ErrorCount    int     `json:"error_count"`
	ErrorRate     float64 `json:"error_rate"`
}

// Report is the aggregate API response analysis.
type Report struct {
	TotalRequests       int     `json:"total_requests"`
	SuccessRate         float64 `json:"success_rate"`
	AverageResponseTime float64 `json:"average_response_time"`
	ErrorCount          int     `json:"error_count"`

	StatusSummary           []StatusSummary `json:"response_code_summary"`
	EndpointPerformance     []EndpointStat  `json:"endpoint_performance"`
	TopErrors               []ErrorPattern  `json:"top_errors"`
	HourlyErrorDistribution map[int]int     `json:"hourly_error_distribution"`
	ResponseTimeVsErrors    []LatencyBucket `json:"response_time_vs_errors"`
	Recommendations         []string        `json:"recommendations"`
}

// latencyThresholds bound the response-time buckets, in milliseconds.
// The last bucket is open-ended.
var latencyThresholds = []float64{100, 250, 500, 1000, math.Inf(1)}

const (
	// endpointSuccessFloor flags endpoints whose success rate drops below
	// this percentage.
	endpointSuccessFloor = 95.0

	// slowEndpointMeanMs flags endpoints whose mean latency exceeds this.
	slowEndpointMeanMs = 300.0

	// peakHourShare flags an hour holding more than this share of all
	// requests as errors.
	peakHourShare = 0.1
)

// ReadRecords reads JSONL records from r, one per line. Blank lines are
// skipped; a malformed line aborts with its line number.
func ReadRecords(ctx context.Context, r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var records []Record
	line := 0
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, sifterr.ContextCanceled("read api records")
		default:
		}

		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, sifterr.ParseError(line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, sifterr.Wrap(err, sifterr.CodeParseFailed, "failed to read api records")
	}

	return records, nil
}

// Analyze aggregates records into the API response report.
func Analyze(records []Record) *Report {
	report := &Report{
		StatusSummary:           []StatusSummary{},
		EndpointPerformance:     []EndpointStat{},
		TopErrors:               []ErrorPattern{},
		HourlyErrorDistribution: make(map[int]int),
		ResponseTimeVsErrors:    []LatencyBucket{},
		Recommendations:         []string{},
	}
	if len(records) == 0 {
		return report
	}

	report.TotalRequests = len(records)

	var latencySum float64
	successes := 0
	for _, rec := range records {
		latencySum += rec.ResponseTimeMs
		if rec.StatusCode < 400 {
			successes++
		} else {
			report.ErrorCount++
			report.HourlyErrorDistribution[rec.Timestamp.Hour()]++
		}
	}
	report.SuccessRate = float64(successes) / float64(len(records)) * 100
	report.AverageResponseTime = latencySum / float64(len(records))

	report.StatusSummary = statusSummary(records)
	report.EndpointPerformance = endpointPerformance(records)
	report.TopErrors = errorPatterns(records)
	report.ResponseTimeVsErrors = latencyBuckets(records)
	report.Recommendations = recommendations(report)

	return report
}

func statusSummary(records []Record) []StatusSummary {
	byStatus := make(map[int][]float64)
	for _, rec := range records {
		byStatus[rec.StatusCode] = append(byStatus[rec.StatusCode], rec.ResponseTimeMs)
	}

	summaries := make([]StatusSummary, 0, len(byStatus))
	for code, latencies := range byStatus {
		summaries = append(summaries, StatusSummary{
			StatusCode: code,
			Requests:   len(latencies),
			MeanMs:     mean(latencies),
			MedianMs:   median(latencies),
			MaxMs:      max64(latencies),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StatusCode < summaries[j].StatusCode
	})
	return summaries
}

func endpointPerformance(records []Record) []EndpointStat {
	type agg struct {
		latencies []float64
		successes int
	}
	byEndpoint := make(map[string]*agg)
	for _, rec := range records {
		a, ok := byEndpoint[rec.Endpoint]
		if !ok {
			a = &agg{}
			byEndpoint[rec.Endpoint] = a
		}
		a.latencies = append(a.latencies, rec.ResponseTimeMs)
		if rec.StatusCode < 400 {
			a.successes++
		}
	}

	stats := make([]EndpointStat, 0, len(byEndpoint))
	for endpoint, a := range byEndpoint {
		stats = append(stats, EndpointStat{
			Endpoint:    endpoint,
			Requests:    len(a.latencies),
			MeanMs:      mean(a.latencies),
			MedianMs:    median(a.latencies),
			MaxMs:       max64(a.latencies),
			SuccessRate: float64(a.successes) / float64(len(a.latencies)) * 100,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Endpoint < stats[j].Endpoint
	})
	return stats
}

func errorPatterns(records []Record) []ErrorPattern {
	type key struct {
		endpoint string
		message  string
	}
	counts := make(map[key]int)
	var order []key
	for _, rec := range records {
		if rec.StatusCode < 400 {
			continue
		}
		k := key{rec.Endpoint, rec.ErrorMessage}
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}

	patterns := make([]ErrorPattern, 0, len(order))
	for _, k := range order {
		patterns = append(patterns, ErrorPattern{
			Endpoint: k.endpoint,
			Message:  k.message,
			Count:    counts[k],
		})
	}
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Count > patterns[j].Count
	})
	return patterns
}

func latencyBuckets(records []Record) []LatencyBucket {
	buckets := make([]LatencyBucket, 0, len(latencyThresholds)-1)
	for i := 0; i < len(latencyThresholds)-1; i++ {
		lower := latencyThresholds[i]
		upper := latencyThresholds[i+1]

		label := fmt.Sprintf("%.0f-%.0f", lower, upper)
		if math.IsInf(upper, 1) {
			label = fmt.Sprintf("%.0f-+", lower)
		}

		total, errors := 0, 0
		for _, rec := range records {
			if rec.ResponseTimeMs > lower && rec.ResponseTimeMs <= upper {
				total++
				if rec.StatusCode >= 400 {
					errors++
				}
			}
		}

		rate := 0.0
		if total > 0 {
			rate = float64(errors) / float64(total) * 100
		}
		buckets = append(buckets, LatencyBucket{
			Range:         label,
			TotalRequests: total,
			ErrorCount:    errors,
			ErrorRate:     rate,
		})
	}
	return buckets
}

func recommendations(report *Report) []string {
	recs := []string{}

	for _, ep := range report.EndpointPerformance {
		if ep.SuccessRate < endpointSuccessFloor {
			recs = append(recs, fmt.Sprintf(
				"Investigate high error rate (%.1f%%) for endpoint: %s",
				100-ep.SuccessRate, ep.Endpoint))
		}
	}

	for _, ep := range report.EndpointPerformance {
		if ep.MeanMs > slowEndpointMeanMs {
			recs = append(recs, fmt.Sprintf(
				"Optimize performance for slow endpoint: %s (avg: %.0fms)",
				ep.Endpoint, ep.MeanMs))
		}
	}

	if len(report.HourlyErrorDistribution) > 0 {
		peakHour, peakCount := -1, 0
		for hour, count := range report.HourlyErrorDistribution {
			if count > peakCount || (count == peakCount && hour < peakHour) {
				peakHour, peakCount = hour, count
			}
		}
		if float64(peakCount) > float64(report.TotalRequests)*peakHourShare {
			recs = append(recs, fmt.Sprintf(
				"Investigate potential issues during peak error hour: %d:00", peakHour))
		}
	}

	return recs
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func max64(values []float64) float64 {
	m := 0.0
	for i, v := range values {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}
