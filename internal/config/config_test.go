package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/possession-tracker/internal/domain/possession"
	"github.com/riskibarqy/possession-tracker/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "possession-tracker", cfg.ServiceName)
	assert.Equal(t, logging.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 8, cfg.ExtractConcurrency)
	assert.False(t, cfg.ExtractDryRun)
	assert.False(t, cfg.ExtractBlockOnValidationFailure)
	assert.Equal(t, possession.StrategyTrustShooter, cfg.MismatchStrategy)
	assert.Equal(t, possession.DefaultKeywords(), cfg.Keywords)
	assert.Equal(t, possession.DefaultValidatorConfig(), cfg.ValidatorConfig())
}

func TestLoad_ExtractionOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvStage)
	t.Setenv("EXTRACT_CONCURRENCY", "3")
	t.Setenv("EXTRACT_DRY_RUN", "true")
	t.Setenv("EXTRACT_BLOCK_ON_VALIDATION_FAILURE", "true")
	t.Setenv("EXTRACT_GAME_TIMEOUT", "2m")
	t.Setenv("POSSESSION_DURATION_MIN", "6s")
	t.Setenv("POSSESSION_DURATION_MAX", "18s")
	t.Setenv("POSSESSION_MISMATCH_STRATEGY", "Close_Reopen")
	t.Setenv("POSSESSION_OFFENSIVE_FOUL_KEYWORDS", "offensive foul, illegal screen ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ExtractConcurrency != 3 || !cfg.ExtractDryRun || !cfg.ExtractBlockOnValidationFailure {
		t.Fatalf("unexpected extraction flags: %+v", cfg)
	}
	if cfg.ExtractGameTimeout != 2*time.Minute {
		t.Fatalf("unexpected game timeout: %s", cfg.ExtractGameTimeout)
	}
	if got := cfg.ValidatorConfig(); got.DurationMinSeconds != 6 || got.DurationMaxSeconds != 18 {
		t.Fatalf("unexpected duration band: %+v", got)
	}
	if cfg.MismatchStrategy != possession.StrategyCloseReopen {
		t.Fatalf("unexpected strategy: %s", cfg.MismatchStrategy)
	}
	if len(cfg.Keywords.OffensiveFoul) != 2 || cfg.Keywords.OffensiveFoul[1] != "illegal screen" {
		t.Fatalf("unexpected offensive foul keywords: %v", cfg.Keywords.OffensiveFoul)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"zero concurrency":     {"EXTRACT_CONCURRENCY": "0"},
		"bad concurrency":      {"EXTRACT_CONCURRENCY": "many"},
		"negative timeout":     {"EXTRACT_GAME_TIMEOUT": "-1s"},
		"inverted band":        {"POSSESSION_DURATION_MIN": "20s", "POSSESSION_DURATION_MAX": "10s"},
		"tolerance too large":  {"POSSESSION_POINTS_TOLERANCE": "1.5"},
		"unknown strategy":     {"POSSESSION_MISMATCH_STRATEGY": "guess"},
		"uptrace without dsn":  {"UPTRACE_ENABLED": "true"},
		"pyroscope no address": {"PYROSCOPE_ENABLED": "true"},
		"bad pushgateway url":  {"METRICS_PUSHGATEWAY_URL": "not a url"},
		"idle above open":      {"DB_MAX_OPEN_CONNS": "2", "DB_MAX_IDLE_CONNS": "5"},
		"missing keyword file": {"POSSESSION_KEYWORDS_FILE": "/nonexistent/keywords.yaml"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			for key, value := range env {
				t.Setenv(key, value)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %v", env)
			}
		})
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoadKeywordsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "keywords.yaml")
	content := "offensive_foul:\n  - illegal screen\nnon_turnover_violation: []\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write keywords file: %v", err)
	}

	got, err := LoadKeywordsFile(path, possession.DefaultKeywords())
	require.NoError(t, err)
	assert.Equal(t, []string{"illegal screen"}, got.OffensiveFoul)
	assert.Equal(t, possession.DefaultKeywords().Violation, got.Violation)
	assert.Empty(t, got.NonTurnoverViolation)
}

func TestLoadKeywordsFile_UnknownField(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "keywords.yaml")
	if err := os.WriteFile(path, []byte("charges: [x]\n"), 0o600); err != nil {
		t.Fatalf("write keywords file: %v", err)
	}
	if _, err := LoadKeywordsFile(path, possession.DefaultKeywords()); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}
