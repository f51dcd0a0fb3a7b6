package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"rijks-verifier/internal/core/domain"
)

// RunnerSettings bounds check execution.
type RunnerSettings struct {
	Concurrency  int
	CheckTimeout time.Duration
	// Retries re-runs a check whose outcome was inconclusive. Contract
	// violations are never retried.
	Retries int
}

// DefaultRunnerSettings mirrors the limits the checks were designed for.
func DefaultRunnerSettings() RunnerSettings {
	return RunnerSettings{
		Concurrency:  3,
		CheckTimeout: 30 * time.Second,
		Retries:      0,
	}
}

// Runner executes checks concurrently up to a fixed cap.
type Runner struct {
	settings RunnerSettings
	hasKey   bool
	now      func() time.Time
}

// NewRunner creates a runner. hasKey drives the skip policy for checks that
// need a credential.
func NewRunner(settings RunnerSettings, hasKey bool) *Runner {
	if settings.Concurrency <= 0 {
		settings.Concurrency = 1
	}
	if settings.CheckTimeout <= 0 {
		settings.CheckTimeout = DefaultRunnerSettings().CheckTimeout
	}
	if settings.Retries < 0 {
		settings.Retries = 0
	}
	return &Runner{settings: settings, hasKey: hasKey, now: time.Now}
}

// Run executes checks and returns a report with results in input order.
// A failing check never stops the others.
func (r *Runner) Run(ctx context.Context, checks []Check) *domain.RunReport {
	report := &domain.RunReport{
		ID:        uuid.New(),
		StartedAt: r.now().UTC(),
		Results:   make([]domain.CheckResult, len(checks)),
	}

	g := new(errgroup.Group)
	g.SetLimit(r.settings.Concurrency)
	for i, check := range checks {
		g.Go(func() error {
			report.Results[i] = r.runOne(ctx, check)
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = r.now().UTC()

	summary := report.Summary()
	log.WithFields(log.Fields{
		"run_id":       report.ID.String(),
		"total":        summary.Total,
		"passed":       summary.Passed,
		"failed":       summary.Failed,
		"inconclusive": summary.Inconclusive,
		"skipped":      summary.Skipped,
	}).Info("verification run finished")

	return report
}

func (r *Runner) runOne(ctx context.Context, check Check) domain.CheckResult {
	result := domain.CheckResult{
		Name:        check.Name,
		Description: check.Description,
	}

	if check.RequiresKey && !r.hasKey {
		result.Status = domain.CheckSkipped
		result.Message = domain.ErrMissingCredential.Error()
		r.logResult(result)
		return result
	}

	start := r.now()
	var err error
	for attempt := 1; ; attempt++ {
		result.Attempts = attempt
		err = r.attempt(ctx, check)

		status, _ := domain.Classify(err)
		if status != domain.CheckInconclusive || attempt > r.settings.Retries || ctx.Err() != nil {
			break
		}
		log.WithError(err).WithField("check", check.Name).Warn("check inconclusive, retrying")
	}
	result.Duration = r.now().Sub(start)

	result.Status, result.Kind = domain.Classify(err)
	if err != nil {
		result.Message = err.Error()
	}
	var violation *domain.ContractViolation
	if errors.As(err, &violation) {
		result.Expected = violation.Expected
		result.Observed = violation.Observed
	}

	r.logResult(result)
	return result
}

func (r *Runner) attempt(ctx context.Context, check Check) (err error) {
	cctx, cancel := context.WithTimeout(ctx, r.settings.CheckTimeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("check %s panicked: %v", check.Name, p)
		}
	}()
	return check.Run(cctx)
}

func (r *Runner) logResult(res domain.CheckResult) {
	entry := log.WithFields(log.Fields{
		"check":       res.Name,
		"status":      res.Status,
		"attempts":    res.Attempts,
		"duration_ms": res.Duration.Milliseconds(),
	})
	switch res.Status {
	case domain.CheckFailed:
		entry.WithField("kind", res.Kind).Warn(res.Message)
	case domain.CheckInconclusive:
		entry.WithField("kind", res.Kind).Warn(res.Message)
	default:
		entry.Info("check finished")
	}
}

// Select returns the named checks in the order given, or all checks when no
// names are passed. Duplicate names are collapsed.
func Select(checks []Check, names []string) ([]Check, error) {
	if len(names) == 0 {
		return checks, nil
	}

	byName := make(map[string]Check, len(checks))
	for _, c := range checks {
		byName[c.Name] = c
	}

	selected := make([]Check, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		c, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCheck, name)
		}
		seen[name] = true
		selected = append(selected, c)
	}
	return selected, nil
}
