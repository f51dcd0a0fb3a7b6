package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"rijks-verifier/internal/adapters/secondary/postgres"
	"rijks-verifier/internal/adapters/secondary/rijks"
	"rijks-verifier/internal/config"
	ports "rijks-verifier/internal/core/ports/output"
	"rijks-verifier/internal/core/services"
)

type loadFunc func() (*config.Config, error)

// app holds the wired core and the resources it owns.
type app struct {
	cfg  *config.Config
	svc  *services.VerificationService
	pool *pgxpool.Pool
}

// newApp wires adapters and services. With history set, a database pool is
// opened and the run tables are created if missing.
func newApp(ctx context.Context, cfg *config.Config, history bool) (*app, error) {
	a := &app{cfg: cfg}

	var runs ports.RunRepository
	if history {
		pool, err := openPool(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		a.pool = pool
		runs = postgres.NewRunRepository(pool)
		log.Info("run history enabled")
	} else {
		log.Debug("run history disabled")
	}

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	builder, err := services.NewURLBuilder(services.BuilderConfig{
		Root:   cfg.Rijks.BaseURL,
		Locale: cfg.Rijks.Locale,
		APIKey: cfg.Rijks.APIKey,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("configure url builder: %w", err)
	}
	if !builder.HasAPIKey() {
		log.Warn("RIJKS_API_KEY is not set; checks that need it will be skipped")
	}

	client := rijks.NewClient(&cfg.Rijks)
	verifier := services.NewVerifier(builder, client, verifierSettings(cfg))
	runner := services.NewRunner(services.RunnerSettings{
		Concurrency:  cfg.Runner.Concurrency,
		CheckTimeout: cfg.Runner.CheckTimeout,
		Retries:      cfg.Runner.Retries,
	}, builder.HasAPIKey())

	a.svc = services.NewVerificationService(verifier, runner, runs)
	return a, nil
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func openPool(ctx context.Context, db *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(db.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = int32(db.MaxOpenConns)
	poolCfg.MinConns = int32(db.MaxIdleConns)
	poolCfg.MaxConnLifetime = db.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	log.Info("database connection established")
	return pool, nil
}

func verifierSettings(cfg *config.Config) services.VerifierSettings {
	v := cfg.Verifier
	return services.VerifierSettings{
		SearchTerm:                   v.SearchTerm,
		ArtistFilter:                 v.ArtistFilter,
		DetailSeedQuery:              v.DetailSeedQuery,
		PaginationQuery:              v.PaginationQuery,
		PageSize:                     v.PageSize,
		PageSizeCeiling:              v.PageSizeCeiling,
		UnknownObjectNumber:          v.UnknownObjectNumber,
		EmptyQuery:                   v.EmptyQuery,
		AlternateLocale:              cfg.Rijks.AlternateLocale,
		InvalidAPIKey:                v.InvalidAPIKey,
		DocumentedUnauthorizedStatus: v.UnauthorizedStatus,
		RejectedStatuses:             v.RejectedStatuses,
	}
}
