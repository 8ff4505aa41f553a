package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/possession-tracker/internal/config"
	"github.com/riskibarqy/possession-tracker/internal/domain/possession"
	"github.com/riskibarqy/possession-tracker/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/possession-tracker/internal/platform/logging"
	"github.com/riskibarqy/possession-tracker/internal/platform/metrics"
	"github.com/riskibarqy/possession-tracker/internal/platform/resilience"
	"github.com/riskibarqy/possession-tracker/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const dbPingTimeout = 5 * time.Second

// Extractor holds the wired extraction service and the resources it owns.
type Extractor struct {
	Service *usecase.ExtractionService
	Metrics *metrics.Extraction
	db      *sqlx.DB
}

// NewExtractor opens the database and wires the extraction service against it.
func NewExtractor(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Extractor, error) {
	db, err := OpenDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	m := metrics.NewExtraction()
	service, err := NewExtractionService(postgres.NewPossessionRepository(db), cfg, logger, m)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Extractor{Service: service, Metrics: m, db: db}, nil
}

func (e *Extractor) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	return e.db.Close()
}

// NewExtractionService builds the service over any repository, with the store breaker
// configured from cfg.
func NewExtractionService(repo possession.Repository, cfg config.Config, logger *logging.Logger, m *metrics.Extraction) (*usecase.ExtractionService, error) {
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Enabled:          cfg.StoreCircuitEnabled,
		FailureThreshold: cfg.StoreCircuitFailureCount,
		OpenTimeout:      cfg.StoreCircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.StoreCircuitHalfOpenMaxReq,
	})

	return usecase.NewExtractionService(repo, ExtractionConfig(cfg),
		usecase.WithLogger(logger),
		usecase.WithMetrics(m),
		usecase.WithCircuitBreaker(breaker),
	)
}

func ExtractionConfig(cfg config.Config) usecase.ExtractionConfig {
	return usecase.ExtractionConfig{
		Concurrency:              cfg.ExtractConcurrency,
		DryRun:                   cfg.ExtractDryRun,
		BlockOnValidationFailure: cfg.ExtractBlockOnValidationFailure,
		GameTimeout:              cfg.ExtractGameTimeout,
		MismatchStrategy:         cfg.MismatchStrategy,
		Keywords:                 cfg.Keywords,
		Validator:                cfg.ValidatorConfig(),
	}
}

// OpenDB opens an otelsql-instrumented pool sized for the worker count and pings it.
func OpenDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.ServiceName, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	maxOpen := cfg.DBMaxOpenConns
	if maxOpen < cfg.ExtractConcurrency {
		maxOpen = cfg.ExtractConcurrency
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
