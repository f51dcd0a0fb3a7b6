package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rijks-verifier/internal/core/domain"
	ports "rijks-verifier/internal/core/ports/output"
)

// Schema creates the run history tables when they do not exist.
const Schema = `
CREATE TABLE IF NOT EXISTS verification_run (
	id          UUID PRIMARY KEY,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	total       INT NOT NULL,
	passed      INT NOT NULL,
	failed      INT NOT NULL,
	inconclusive INT NOT NULL,
	skipped     INT NOT NULL
);

CREATE TABLE IF NOT EXISTS verification_result (
	run_id      UUID NOT NULL REFERENCES verification_run(id) ON DELETE CASCADE,
	position    INT NOT NULL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	kind        TEXT NOT NULL DEFAULT '',
	message     TEXT NOT NULL DEFAULT '',
	expected    TEXT NOT NULL DEFAULT '',
	observed    TEXT NOT NULL DEFAULT '',
	attempts    INT NOT NULL DEFAULT 0,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_verification_run_started_at ON verification_run (started_at DESC);
`

type runRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a new verification run repository
func NewRunRepository(pool *pgxpool.Pool) ports.RunRepository {
	return &runRepo{pool: pool}
}

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply run history schema: %w", err)
	}
	return nil
}

// ============================================================================
// Runs
// ============================================================================

func (r *runRepo) Save(ctx context.Context, report *domain.RunReport) error {
	summary := report.Summary()

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO verification_run (id, started_at, finished_at, total, passed, failed, inconclusive, skipped)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err := tx.Exec(ctx, query,
			report.ID,
			report.StartedAt,
			report.FinishedAt,
			summary.Total,
			summary.Passed,
			summary.Failed,
			summary.Inconclusive,
			summary.Skipped,
		)
		if err != nil {
			return fmt.Errorf("insert verification_run: %w", err)
		}

		batch := &pgx.Batch{}
		for i, res := range report.Results {
			batch.Queue(`
				INSERT INTO verification_result
					(run_id, position, name, description, status, kind, message, expected, observed, attempts, duration_ms)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			`,
				report.ID, i, res.Name, res.Description, string(res.Status),
				res.Kind, res.Message, res.Expected, res.Observed,
				res.Attempts, res.Duration.Milliseconds(),
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert verification_result: %w", err)
		}
		return nil
	})
}

func (r *runRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RunReport, error) {
	query := `
		SELECT id, started_at, finished_at
		FROM verification_run
		WHERE id = $1
	`
	report := &domain.RunReport{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&report.ID, &report.StartedAt, &report.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("get verification_run by id: %w", err)
	}

	results, err := r.listResults(ctx, report.ID)
	if err != nil {
		return nil, err
	}
	report.Results = results

	return report, nil
}

func (r *runRepo) List(ctx context.Context, filter ports.RunListFilter) ([]*domain.RunReport, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM verification_run`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count verification_runs: %w", err)
	}

	query := `
		SELECT id, started_at, finished_at
		FROM verification_run
		ORDER BY started_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query verification_runs: %w", err)
	}

	var reports []*domain.RunReport
	for rows.Next() {
		report := &domain.RunReport{}
		if err := rows.Scan(&report.ID, &report.StartedAt, &report.FinishedAt); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan verification_run: %w", err)
		}
		reports = append(reports, report)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate verification_runs: %w", err)
	}

	// Results are loaded after the run rows are released; the pool may have a
	// single connection.
	for _, report := range reports {
		results, err := r.listResults(ctx, report.ID)
		if err != nil {
			return nil, 0, err
		}
		report.Results = results
	}

	return reports, total, nil
}

// ============================================================================
// Results
// ============================================================================

func (r *runRepo) listResults(ctx context.Context, runID uuid.UUID) ([]domain.CheckResult, error) {
	query := `
		SELECT name, description, status, kind, message, expected, observed, attempts, duration_ms
		FROM verification_result
		WHERE run_id = $1
		ORDER BY position
	`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query verification_results: %w", err)
	}
	defer rows.Close()

	results := []domain.CheckResult{}
	for rows.Next() {
		var (
			res        domain.CheckResult
			status     string
			durationMs int64
		)
		err := rows.Scan(
			&res.Name, &res.Description, &status, &res.Kind,
			&res.Message, &res.Expected, &res.Observed, &res.Attempts, &durationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan verification_result: %w", err)
		}
		res.Status = domain.CheckStatus(status)
		res.Duration = time.Duration(durationMs) * time.Millisecond
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verification_results: %w", err)
	}
	return results, nil
}
