package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"rijks-verifier/internal/core/domain"
	ports "rijks-verifier/internal/core/ports/output"
)

// CheckInfo describes a catalogue entry.
type CheckInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	RequiresKey bool   `json:"requires_key" yaml:"requires_key"`
	Runnable    bool   `json:"runnable" yaml:"runnable"`
}

// VerificationService runs check selections and keeps optional history.
type VerificationService struct {
	verifier *Verifier
	runner   *Runner
	runs     ports.RunRepository
}

// NewVerificationService wires the service. runs may be nil, which disables
// history.
func NewVerificationService(verifier *Verifier, runner *Runner, runs ports.RunRepository) *VerificationService {
	return &VerificationService{
		verifier: verifier,
		runner:   runner,
		runs:     runs,
	}
}

// HistoryEnabled reports whether runs are persisted.
func (s *VerificationService) HistoryEnabled() bool {
	return s.runs != nil
}

// HasAPIKey reports whether a credential is configured.
func (s *VerificationService) HasAPIKey() bool {
	return s.verifier.HasAPIKey()
}

// Catalogue lists every check and whether it can run with the current
// credential.
func (s *VerificationService) Catalogue() []CheckInfo {
	hasKey := s.verifier.HasAPIKey()
	checks := s.verifier.Checks()
	out := make([]CheckInfo, 0, len(checks))
	for _, c := range checks {
		out = append(out, CheckInfo{
			Name:        c.Name,
			Description: c.Description,
			RequiresKey: c.RequiresKey,
			Runnable:    hasKey || !c.RequiresKey,
		})
	}
	return out
}

// Run executes the named checks, all of them when names is empty, and
// stores the report when history is enabled. A storage failure is returned
// together with the report.
func (s *VerificationService) Run(ctx context.Context, names []string) (*domain.RunReport, error) {
	checks, err := Select(s.verifier.Checks(), names)
	if err != nil {
		return nil, err
	}
	if len(checks) == 0 {
		return nil, domain.ErrNoChecks
	}

	report := s.runner.Run(ctx, checks)

	if s.runs != nil {
		if err := s.runs.Save(ctx, report); err != nil {
			log.WithError(err).WithField("run_id", report.ID.String()).Error("store verification run failed")
			return report, fmt.Errorf("store run: %w", err)
		}
	}
	return report, nil
}

// GetRun returns a stored run.
func (s *VerificationService) GetRun(ctx context.Context, id uuid.UUID) (*domain.RunReport, error) {
	if s.runs == nil {
		return nil, domain.ErrHistoryDisabled
	}
	return s.runs.GetByID(ctx, id)
}

// ListRuns pages through stored runs, newest first.
func (s *VerificationService) ListRuns(ctx context.Context, filter ports.RunListFilter) ([]*domain.RunReport, int, error) {
	if s.runs == nil {
		return nil, 0, domain.ErrHistoryDisabled
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.runs.List(ctx, filter)
}
