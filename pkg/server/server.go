// Package server provides the HTTP API for remote log analysis.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/logsift/logsift/internal/model"
	"github.com/logsift/logsift/pkg/analyzer"
	"github.com/logsift/logsift/pkg/apistats"
	"github.com/logsift/logsift/pkg/config"
)

// maxUploadBytes bounds multipart uploads.
const maxUploadBytes = 500 << 20

// Server handles HTTP requests for log analysis.
type Server struct {
	cfg  *config.Config
	jobs sync.Map // jobID -> *Job
	mux  *http.ServeMux
}

// Job represents an analysis job.
type Job struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"` // pending, running, completed, failed
	InputName string     `json:"input_name"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Report *model.Report `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`

	mu sync.Mutex
}

func (j *Job) complete(report *model.Report, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	j.EndTime = &now
	if err != nil {
		j.Status = "failed"
		j.Error = err.Error()
		return
	}
	j.Status = "completed"
	j.Report = report
}

// snapshot returns a copy safe to serialize while the job may still mutate.
func (j *Job) snapshot() Job {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Job{
		ID:        j.ID,
		Status:    j.Status,
		InputName: j.InputName,
		StartTime: j.StartTime,
		EndTime:   j.EndTime,
		Report:    j.Report,
		Error:     j.Error,
	}
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Server{
		cfg: cfg,
		mux: http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures HTTP handlers.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("/api/apistats", s.handleAPIStats)
	s.mux.HandleFunc("/api/jobs/", s.handleJob)
	s.mux.HandleFunc("/api/jobs", s.handleJobs)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// CORS headers for development
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.mux.ServeHTTP(w, r)
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]string{"status": "ok"})
}

// handleAnalyze accepts a log file upload and starts an analysis job.
// Form fields window_hours, burst_size, and burst_gap_minutes override
// the server configuration for this job.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		jsonError(w, "Failed to parse upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	opts := s.analysisOptions(r)

	jobID := uuid.NewString()
	tempPath := filepath.Join(os.TempDir(), "logsift-"+jobID+".log")
	out, err := os.Create(tempPath)
	if err != nil {
		jsonError(w, "Failed to save file", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(tempPath)
		jsonError(w, "Failed to save file", http.StatusInternalServerError)
		return
	}
	out.Close()

	job := &Job{
		ID:        jobID,
		Status:    "pending",
		InputName: header.Filename,
		StartTime: time.Now(),
	}
	s.jobs.Store(jobID, job)

	go s.runAnalysis(job, tempPath, opts)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"job_id": jobID,
		"status": "started",
	})
}

// analysisOptions builds analyzer options from config plus form overrides.
func (s *Server) analysisOptions(r *http.Request) analyzer.Options {
	opts := analyzer.Options{
		WindowHours:     s.cfg.Analysis.WindowHours,
		BurstSize:       s.cfg.Analysis.BurstSize,
		BurstGapMinutes: s.cfg.Analysis.BurstGapMinutes,
	}

	if v := r.FormValue("window_hours"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			opts.WindowHours = hours
		}
	}
	if v := r.FormValue("burst_size"); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			opts.BurstSize = size
		}
	}
	if v := r.FormValue("burst_gap_minutes"); v != "" {
		if gap, err := strconv.ParseFloat(v, 64); err == nil && gap > 0 {
			opts.BurstGapMinutes = gap
		}
	}

	return opts
}

// runAnalysis performs the analysis in the background.
func (s *Server) runAnalysis(job *Job, inputPath string, opts analyzer.Options) {
	defer os.Remove(inputPath)

	job.mu.Lock()
	job.Status = "running"
	job.mu.Unlock()

	report, err := analyzer.AnalyzeFile(context.Background(), inputPath, opts)
	job.complete(report, err)
}

// handleAPIStats analyzes an uploaded JSONL stream of API response records
// synchronously and returns the report.
func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := apistats.ReadRecords(r.Context(), io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	jsonResponse(w, apistats.Analyze(records))
}

// handleJob returns a single job's status and report.
func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Path[len("/api/jobs/"):]
	if jobID == "" {
		jsonError(w, "Job ID required", http.StatusBadRequest)
		return
	}

	v, ok := s.jobs.Load(jobID)
	if !ok {
		jsonError(w, "Job not found", http.StatusNotFound)
		return
	}

	job := v.(*Job).snapshot()
	jsonResponse(w, &job)
}

// handleJobs lists all jobs.
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	jobs := []Job{}
	s.jobs.Range(func(_, v interface{}) bool {
		jobs = append(jobs, v.(*Job).snapshot())
		return true
	})
	jsonResponse(w, jobs)
}

// ListenAndServe starts the server on the configured host and port.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	return http.ListenAndServe(addr, s)
}

// Helper functions

func jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
