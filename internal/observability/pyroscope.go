package observability

import (
	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/possession-tracker/internal/config"
	"github.com/riskibarqy/possession-tracker/internal/platform/logging"
)

// InitPyroscope starts continuous profiling when enabled. Profiles are tagged with
// the extractor subcommand so a season backfill can be told apart from a lookup.
func InitPyroscope(cfg config.Config, command string, logger *logging.Logger) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if !cfg.PyroscopeEnabled {
		logger.Debug("pyroscope disabled")
		return func() error { return nil }, nil
	}

	profiler, err := pyroscope.Start(profilerConfig(cfg, command))
	if err != nil {
		return nil, err
	}

	logger.Info("pyroscope enabled",
		"server_address", cfg.PyroscopeServerAddress,
		"application", cfg.PyroscopeAppName,
		"command", command,
	)

	return profiler.Stop, nil
}

// profilerConfig keeps CPU and allocation profiles: the detector is CPU bound and the
// event loader allocates per row. Mutex and block profiles add nothing to a batch.
func profilerConfig(cfg config.Config, command string) pyroscope.Config {
	tags := map[string]string{
		"env":     cfg.AppEnv,
		"service": cfg.ServiceName,
	}
	if command != "" {
		tags["command"] = command
	}
	return pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags:              tags,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	}
}
