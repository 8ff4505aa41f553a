package main

import (
	"context"
	"os"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/possession-tracker/internal/config"
	"github.com/riskibarqy/possession-tracker/internal/observability"
	"github.com/riskibarqy/possession-tracker/internal/platform/logging"
	"github.com/riskibarqy/possession-tracker/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// process holds the setup shared by every subcommand. Logs go to stderr so
// stdout carries only command output.
type process struct {
	cfg    config.Config
	logger *logging.Logger

	stopUptrace   func(context.Context) error
	stopPyroscope func() error
}

// bootstrap loads configuration and starts telemetry for one subcommand.
func bootstrap(command string) (*process, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "load config"), usecase.ErrFatalConfig)
	}

	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	}).With("service", cfg.ServiceName, "env", cfg.AppEnv, "command", command)
	logging.SetDefault(logger)

	rt := &process{cfg: cfg, logger: logger}
	if rt.stopUptrace, err = observability.InitUptrace(cfg, command, logger); err != nil {
		return nil, crerr.Wrap(err, "init uptrace")
	}
	if rt.stopPyroscope, err = observability.InitPyroscope(cfg, command, logger); err != nil {
		rt.close()
		return nil, crerr.Wrap(err, "init pyroscope")
	}
	return rt, nil
}

// close flushes telemetry; it runs after the command's context may already be cancelled.
func (r *process) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if r.stopPyroscope != nil {
		if err := r.stopPyroscope(); err != nil {
			r.logger.Warn("stop pyroscope", "error", err)
		}
	}
	if r.stopUptrace != nil {
		if err := r.stopUptrace(ctx); err != nil {
			r.logger.Warn("shutdown uptrace", "error", err)
		}
	}
	_ = r.logger.Sync()
}
