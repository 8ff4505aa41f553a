package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	crerr "github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/possession-tracker/internal/usecase"
	"github.com/spf13/cobra"
)

const (
	exitFailure     = 1
	exitFatalConfig = 2
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "extractor",
	Short:         "Extract basketball possessions from play-by-play events",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading configuration")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "extractor: %v\n", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// loadEnvFile fills unset variables from path; a missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return crerr.Mark(crerr.Wrapf(err, "load %s", path), usecase.ErrFatalConfig)
	}
	return nil
}

func exitCode(err error) int {
	if crerr.Is(err, usecase.ErrFatalConfig) {
		return exitFatalConfig
	}
	return exitFailure
}
