package apistats

import (
	"context"
	"strings"
	"testing"
	"time"
)

func record(endpoint string, status int, latency float64, hour int, msg string) Record {
	return Record{
		RequestID:      "req-1",
		Timestamp:      time.Date(2024, 1, 1, hour, 0, 0, 0, time.UTC),
		Endpoint:       endpoint,
		StatusCode:     status,
		ResponseTimeMs: latency,
		ErrorMessage:   msg,
	}
}

func TestAnalyze_OverallMetrics(t *testing.T) {
	records := []Record{
		record("/api/users", 200, 100, 10, ""),
		record("/api/users", 200, 200, 10, ""),
		record("/api/users", 500, 300, 10, "boom"),
		record("/api/calls", 200, 400, 11, ""),
	}

	rep := Analyze(records)

	if rep.TotalRequests != 4 {
		t.Errorf("TotalRequests = %d, want 4", rep.TotalRequests)
	}
	if rep.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", rep.ErrorCount)
	}
	if rep.SuccessRate != 75 {
		t.Errorf("SuccessRate = %v, want 75", rep.SuccessRate)
	}
	if rep.AverageResponseTime != 250 {
		t.Errorf("AverageResponseTime = %v, want 250", rep.AverageResponseTime)
	}
}

func TestAnalyze_StatusSummary(t *testing.T) {
	records := []Record{
		record("/a", 200, 100, 10, ""),
		record("/a", 200, 300, 10, ""),
		record("/a", 404, 50, 10, "not found"),
	}

	rep := Analyze(records)

	if len(rep.StatusSummary) != 2 {
		t.Fatalf("expected 2 status groups, got %d", len(rep.StatusSummary))
	}
	ok := rep.StatusSummary[0]
	if ok.StatusCode != 200 || ok.Requests != 2 {
		t.Errorf("first group = %+v, want 200 with 2 requests", ok)
	}
	if ok.MeanMs != 200 || ok.MedianMs != 200 || ok.MaxMs != 300 {
		t.Errorf("latency stats = %v/%v/%v, want 200/200/300", ok.MeanMs, ok.MedianMs, ok.MaxMs)
	}
}

func TestAnalyze_EndpointRecommendations(t *testing.T) {
	var records []Record
	// /api/flaky: 10 requests, 3 failures => 70% success, flagged.
	for i := 0; i < 7; i++ {
		records = append(records, record("/api/flaky", 200, 50, 9, ""))
	}
	for i := 0; i < 3; i++ {
		records = append(records, record("/api/flaky", 502, 50, 9, "upstream"))
	}
	// /api/slow: healthy but 400ms mean, flagged.
	for i := 0; i < 5; i++ {
		records = append(records, record("/api/slow", 200, 400, 14, ""))
	}

	rep := Analyze(records)

	var flaky, slow bool
	for _, rec := range rep.Recommendations {
		if strings.Contains(rec, "/api/flaky") && strings.Contains(rec, "high error rate") {
			flaky = true
		}
		if strings.Contains(rec, "/api/slow") && strings.Contains(rec, "slow endpoint") {
			slow = true
		}
	}
	if !flaky {
		t.Errorf("expected error-rate recommendation for /api/flaky, got %v", rep.Recommendations)
	}
	if !slow {
		t.Errorf("expected slow-endpoint recommendation for /api/slow, got %v", rep.Recommendations)
	}
}

func TestAnalyze_LatencyBuckets(t *testing.T) {
	records := []Record{
		record("/a", 200, 150, 10, ""),
		record("/a", 500, 200, 10, "x"),
		record("/a", 200, 800, 10, ""),
		record("/a", 503, 2000, 10, "y"),
	}

	rep := Analyze(records)

	if len(rep.ResponseTimeVsErrors) != 4 {
		t.Fatalf("expected 4 buckets, got %d", len(rep.ResponseTimeVsErrors))
	}

	first := rep.ResponseTimeVsErrors[0]
	if first.Range != "100-250" || first.TotalRequests != 2 || first.ErrorCount != 1 {
		t.Errorf("bucket 100-250 = %+v, want 2 requests with 1 error", first)
	}
	if first.ErrorRate != 50 {
		t.Errorf("ErrorRate = %v, want 50", first.ErrorRate)
	}

	last := rep.ResponseTimeVsErrors[3]
	if last.Range != "1000-+" || last.TotalRequests != 1 || last.ErrorCount != 1 {
		t.Errorf("open bucket = %+v, want 1 request with 1 error", last)
	}
}

func TestAnalyze_LatencyBucketsWithoutErrors(t *testing.T) {
	records := []Record{
		record("/a", 200, 150, 10, ""),
		record("/a", 200, 800, 10, ""),
	}

	rep := Analyze(records)

	// Buckets are emitted even for a clean run, with zero error counts.
	if len(rep.ResponseTimeVsErrors) != 4 {
		t.Fatalf("expected 4 buckets, got %d", len(rep.ResponseTimeVsErrors))
	}
	for _, bucket := range rep.ResponseTimeVsErrors {
		if bucket.ErrorCount != 0 || bucket.ErrorRate != 0 {
			t.Errorf("bucket %s = %+v, want zero errors", bucket.Range, bucket)
		}
	}
	if rep.ResponseTimeVsErrors[0].TotalRequests != 1 {
		t.Errorf("bucket 100-250 requests = %d, want 1", rep.ResponseTimeVsErrors[0].TotalRequests)
	}
}

func TestAnalyze_ErrorPatterns(t *testing.T) {
	records := []Record{
		record("/a", 500, 100, 10, "timeout"),
		record("/a", 500, 100, 11, "timeout"),
		record("/b", 400, 100, 10, "bad input"),
	}

	rep := Analyze(records)

	if len(rep.TopErrors) != 2 {
		t.Fatalf("expected 2 error patterns, got %d", len(rep.TopErrors))
	}
	top := rep.TopErrors[0]
	if top.Endpoint != "/a" || top.Message != "timeout" || top.Count != 2 {
		t.Errorf("top pattern = %+v, want /a timeout x2", top)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	rep := Analyze(nil)
	if rep.TotalRequests != 0 || rep.ErrorCount != 0 {
		t.Errorf("empty input should yield zero counts, got %+v", rep)
	}
	if len(rep.Recommendations) != 0 {
		t.Errorf("expected no recommendations, got %v", rep.Recommendations)
	}
}

func TestReadRecords(t *testing.T) {
	input := strings.Join([]string{
		`{"request_id":"r1","timestamp":"2024-01-01T10:00:00Z","endpoint":"/a","status_code":200,"response_time_ms":120}`,
		``,
		`{"request_id":"r2","timestamp":"2024-01-01T10:01:00Z","endpoint":"/a","status_code":500,"response_time_ms":340,"error_message":"boom"}`,
	}, "\n")

	records, err := ReadRecords(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRecords failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].ErrorMessage != "boom" {
		t.Errorf("ErrorMessage = %q, want boom", records[1].ErrorMessage)
	}
}

func TestReadRecords_Malformed(t *testing.T) {
	if _, err := ReadRecords(context.Background(), strings.NewReader("{not json")); err == nil {
		t.Fatal("expected error for malformed record")
	}
}
