package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Instance status values as they appear in the run report.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// InstanceResult is the per-instance slice of the run report.
type InstanceResult struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Clusters int    `json:"clusters"`
	Opts     string `json:"opts,omitempty"`

	Status string `json:"status"`
	Error  string `json:"error,omitempty"`

	Blocks                int                `json:"blocks,omitempty"`
	StaticRatingFallbacks int                `json:"static_rating_fallbacks,omitempty"`
	Objective             float64            `json:"objective,omitempty"`
	SolverStatus          string             `json:"solver_status,omitempty"`
	OptimalCapacityMW     map[string]float64 `json:"optimal_capacity_mw,omitempty"`
	RuntimeMS             int64              `json:"runtime_ms"`

	// err keeps the typed error for in-process consumers; the report
	// serializes only its message.
	err error
}

// Report summarizes one pipeline run.
type Report struct {
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Workers    int              `json:"workers"`
	Instances  []InstanceResult `json:"instances"`
}

// Failed counts the instances that did not complete.
func (r *Report) Failed() int {
	var n int
	for _, res := range r.Instances {
		if res.Status != StatusOK {
			n++
		}
	}
	return n
}

// reportFileName is the run report written into the output directory.
const reportFileName = "run_report.json"

// Write serializes the report into dir, creating it if needed.
func (r *Report) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("pipeline: creating output directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("pipeline: encoding run report: %w", err)
	}
	path := filepath.Join(dir, reportFileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("pipeline: writing run report: %w", err)
	}
	return nil
}
