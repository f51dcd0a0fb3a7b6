package domain

import (
	"time"

	"github.com/google/uuid"
)

// CheckStatus is the outcome of a single contract check.
type CheckStatus string

const (
	CheckPassed       CheckStatus = "passed"
	CheckFailed       CheckStatus = "failed"
	CheckInconclusive CheckStatus = "inconclusive"
	CheckSkipped      CheckStatus = "skipped"
)

// CheckResult records one check execution.
type CheckResult struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Status      CheckStatus   `json:"status" yaml:"status"`
	Kind        string        `json:"kind,omitempty" yaml:"kind,omitempty"`
	Message     string        `json:"message,omitempty" yaml:"message,omitempty"`
	Expected    string        `json:"expected,omitempty" yaml:"expected,omitempty"`
	Observed    string        `json:"observed,omitempty" yaml:"observed,omitempty"`
	Attempts    int           `json:"attempts" yaml:"attempts"`
	Duration    time.Duration `json:"duration_ns" yaml:"duration"`
}

// RunReport groups the results of one verification run.
type RunReport struct {
	ID         uuid.UUID     `json:"id" yaml:"id"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
	Results    []CheckResult `json:"results" yaml:"results"`
}

// RunSummary counts results per status.
type RunSummary struct {
	Total        int `json:"total" yaml:"total"`
	Passed       int `json:"passed" yaml:"passed"`
	Failed       int `json:"failed" yaml:"failed"`
	Inconclusive int `json:"inconclusive" yaml:"inconclusive"`
	Skipped      int `json:"skipped" yaml:"skipped"`
}

// Summary tallies the report's results.
func (r *RunReport) Summary() RunSummary {
	s := RunSummary{Total: len(r.Results)}
	for _, res := range r.Results {
		switch res.Status {
		case CheckPassed:
			s.Passed++
		case CheckFailed:
			s.Failed++
		case CheckInconclusive:
			s.Inconclusive++
		case CheckSkipped:
			s.Skipped++
		}
	}
	return s
}

// Failed reports whether any check failed or was inconclusive.
func (r *RunReport) Failed() bool {
	s := r.Summary()
	return s.Failed > 0 || s.Inconclusive > 0
}
