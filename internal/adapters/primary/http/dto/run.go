package dto

import (
	"time"

	"github.com/google/uuid"

	"rijks-verifier/internal/core/domain"
	"rijks-verifier/internal/core/services"
)

// ============================================================================
// Request DTOs
// ============================================================================

// StartRunRequest selects the checks to run. An empty list runs all of them.
type StartRunRequest struct {
	Checks []string `json:"checks"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// CheckInfoResponse represents a catalogue entry
type CheckInfoResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	RequiresKey bool   `json:"requires_key"`
	Runnable    bool   `json:"runnable"`
}

// ListChecksResponse represents the check catalogue
type ListChecksResponse struct {
	Items          []CheckInfoResponse `json:"items"`
	Total          int                 `json:"total"`
	APIKeyPresent  bool                `json:"api_key_present"`
	HistoryEnabled bool                `json:"history_enabled"`
}

// CheckResultResponse represents one check outcome
type CheckResultResponse struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Kind       string `json:"kind,omitempty"`
	Message    string `json:"message,omitempty"`
	Expected   string `json:"expected,omitempty"`
	Observed   string `json:"observed,omitempty"`
	Attempts   int    `json:"attempts"`
	DurationMs int64  `json:"duration_ms"`
}

// RunSummaryResponse counts results per status
type RunSummaryResponse struct {
	Total        int `json:"total"`
	Passed       int `json:"passed"`
	Failed       int `json:"failed"`
	Inconclusive int `json:"inconclusive"`
	Skipped      int `json:"skipped"`
}

// RunResponse represents a verification run
type RunResponse struct {
	ID         uuid.UUID             `json:"id"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Passed     bool                  `json:"passed"`
	Summary    RunSummaryResponse    `json:"summary"`
	Results    []CheckResultResponse `json:"results"`
}

// ListRunsResponse represents a page of stored runs
type ListRunsResponse struct {
	Items []RunResponse `json:"items"`
	Total int           `json:"total"`
}

// ============================================================================
// Converters
// ============================================================================

func ToCheckInfoResponse(info services.CheckInfo) CheckInfoResponse {
	return CheckInfoResponse{
		Name:        info.Name,
		Description: info.Description,
		RequiresKey: info.RequiresKey,
		Runnable:    info.Runnable,
	}
}

func ToRunResponse(r *domain.RunReport) RunResponse {
	s := r.Summary()
	results := make([]CheckResultResponse, 0, len(r.Results))
	for _, res := range r.Results {
		results = append(results, CheckResultResponse{
			Name:       res.Name,
			Status:     string(res.Status),
			Kind:       res.Kind,
			Message:    res.Message,
			Expected:   res.Expected,
			Observed:   res.Observed,
			Attempts:   res.Attempts,
			DurationMs: res.Duration.Milliseconds(),
		})
	}

	return RunResponse{
		ID:         r.ID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Passed:     !r.Failed(),
		Summary: RunSummaryResponse{
			Total:        s.Total,
			Passed:       s.Passed,
			Failed:       s.Failed,
			Inconclusive: s.Inconclusive,
			Skipped:      s.Skipped,
		},
		Results: results,
	}
}
