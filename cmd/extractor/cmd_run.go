package main

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/possession-tracker/internal/app"
	"github.com/riskibarqy/possession-tracker/internal/observability"
	"github.com/riskibarqy/possession-tracker/internal/usecase"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/codes"
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSlice("game-ids", nil, "games to process (comma separated or repeated); empty means every game")
	runCmd.Flags().String("game-ids-file", "", "file with one game id per line")
	runCmd.Flags().Int("concurrency", 0, "worker count (default EXTRACT_CONCURRENCY)")
	runCmd.Flags().Bool("dry-run", false, "run every game and roll back instead of committing")
	runCmd.Flags().Bool("fail-on-game-errors", false, "exit non-zero when any game failed")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Detect, validate and store possessions for a batch of games",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gameIDs, _ := cmd.Flags().GetStringSlice("game-ids")
		idsFile, _ := cmd.Flags().GetString("game-ids-file")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		failOnGameErrors, _ := cmd.Flags().GetBool("fail-on-game-errors")

		if concurrency < 0 {
			return crerr.Mark(crerr.Newf("--concurrency must be >= 0, got %d", concurrency), usecase.ErrFatalConfig)
		}
		if idsFile != "" {
			fromFile, err := readGameIDsFile(idsFile)
			if err != nil {
				return crerr.Mark(err, usecase.ErrFatalConfig)
			}
			gameIDs = append(gameIDs, fromFile...)
		}

		rt, err := bootstrap("run")
		if err != nil {
			return err
		}
		defer rt.close()

		ctx, span := usecase.StartBatchSpan(cmd.Context(), "run")
		defer span.End()

		extractor, err := app.NewExtractor(ctx, rt.cfg, rt.logger)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "wire extractor")
			return err
		}
		defer func() {
			if err := extractor.Close(); err != nil {
				rt.logger.Warn("close database", "error", err)
			}
		}()

		debugSrv := observability.StartDebugServer(rt.cfg, extractor.Metrics.Registry(), rt.logger)
		defer func() {
			if err := observability.StopDebugServer(debugSrv, 5*time.Second); err != nil {
				rt.logger.Warn("stop debug server", "error", err)
			}
		}()

		result, runErr := extractor.Service.Run(ctx, usecase.BatchInput{
			GameIDs:     gameIDs,
			Concurrency: concurrency,
			DryRun:      dryRun,
		})
		if runErr != nil {
			span.RecordError(runErr)
			span.SetStatus(codes.Error, "batch interrupted")
		}

		if url := rt.cfg.MetricsPushgatewayURL; url != "" {
			pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := extractor.Metrics.Push(pushCtx, url, rt.cfg.MetricsJobName); err != nil {
				rt.logger.Warn("push metrics", "url", url, "error", err)
			}
			cancel()
		}

		// A batch that never resolved its game list has nothing worth printing.
		if runErr != nil && result.RunID == "" {
			return runErr
		}
		if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
		if runErr != nil {
			return runErr
		}
		if failOnGameErrors && result.Failed > 0 {
			return crerr.Newf("%d of %d games failed", result.Failed, result.Processed)
		}
		return nil
	},
}

func readGameIDsFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, crerr.Wrapf(err, "read game ids file %s", path)
	}
	var out []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, nil
}

func writeJSON(w io.Writer, value any) error {
	encoded, err := sonic.ConfigStd.MarshalIndent(value, "", "  ")
	if err != nil {
		return crerr.Wrap(err, "encode output")
	}
	encoded = append(encoded, '\n')
	_, err = w.Write(encoded)
	return err
}
