package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewServer(nil))
	t.Cleanup(ts.Close)
	return ts
}

func uploadLog(t *testing.T, ts *httptest.Server, content string, fields map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "app.log")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	resp, err := http.Post(ts.URL+"/api/analyze", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	var started struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		t.Fatal(err)
	}
	if started.JobID == "" {
		t.Fatal("empty job_id in response")
	}
	return started.JobID
}

func waitForJob(t *testing.T, ts *httptest.Server, jobID string) *Job {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(ts.URL + "/api/jobs/" + jobID)
		if err != nil {
			t.Fatal(err)
		}
		var job Job
		err = json.NewDecoder(resp.Body).Decode(&job)
		resp.Body.Close()
		if err != nil {
			t.Fatal(err)
		}

		if job.Status == "completed" || job.Status == "failed" {
			return &job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestAnalyzeJobLifecycle(t *testing.T) {
	ts := newTestServer(t)

	log := strings.Join([]string{
		"[2024-01-01 10:00:00] [INFO] service started",
		"[2024-01-01 10:00:01] [ERROR] db down: refused",
		"[2024-01-01 10:00:02] [ERROR] db down: refused",
	}, "\n")

	// A very wide window so fixed 2024 timestamps stay in range.
	jobID := uploadLog(t, ts, log, map[string]string{"window_hours": "1000000"})
	job := waitForJob(t, ts, jobID)

	if job.Status != "completed" {
		t.Fatalf("status = %s (error: %s), want completed", job.Status, job.Error)
	}
	if job.Report == nil {
		t.Fatal("completed job has no report")
	}
	if job.Report.TotalLogs != 3 || job.Report.ErrorLogs != 2 {
		t.Errorf("report totals = %d/%d, want 3/2", job.Report.TotalLogs, job.Report.ErrorLogs)
	}
	if job.EndTime == nil {
		t.Error("completed job has no end time")
	}
}

func TestAnalyzeRequiresFile(t *testing.T) {
	ts := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("window_hours", "24")
	mw.Close()

	resp, err := http.Post(ts.URL+"/api/analyze", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAnalyzeMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/analyze")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestJobNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/jobs/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestJobsList(t *testing.T) {
	ts := newTestServer(t)

	jobID := uploadLog(t, ts, "[2024-01-01 10:00:00] [INFO] x", map[string]string{"window_hours": "1000000"})
	waitForJob(t, ts, jobID)

	resp, err := http.Get(ts.URL + "/api/jobs")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var jobs []Job
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 || jobs[0].ID != jobID {
		t.Errorf("jobs = %+v, want single job %s", jobs, jobID)
	}
}

func TestAPIStats(t *testing.T) {
	ts := newTestServer(t)

	body := strings.Join([]string{
		`{"request_id":"r1","timestamp":"2024-01-01T10:00:00Z","endpoint":"/a","status_code":200,"response_time_ms":120}`,
		`{"request_id":"r2","timestamp":"2024-01-01T10:01:00Z","endpoint":"/a","status_code":500,"response_time_ms":340,"error_message":"boom"}`,
	}, "\n")

	resp, err := http.Post(ts.URL+"/api/apistats", "application/x-ndjson", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var rep struct {
		TotalRequests int `json:"total_requests"`
		ErrorCount    int `json:"error_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatal(err)
	}
	if rep.TotalRequests != 2 || rep.ErrorCount != 1 {
		t.Errorf("report = %+v, want 2 requests with 1 error", rep)
	}
}

func TestAPIStatsMalformed(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/apistats", "application/x-ndjson", strings.NewReader("{broken"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
