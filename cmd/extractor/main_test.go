package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/possession-tracker/internal/domain/possession"
	"github.com/riskibarqy/possession-tracker/internal/usecase"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	fatal := crerr.Mark(crerr.New("bad keywords"), usecase.ErrFatalConfig)
	if got := exitCode(crerr.Wrap(fatal, "load config")); got != exitFatalConfig {
		t.Fatalf("expected fatal config exit code, got %d", got)
	}
	if got := exitCode(crerr.New("2 of 3 games failed")); got != exitFailure {
		t.Fatalf("expected generic exit code, got %d", got)
	}
}

func TestLoadEnvFile_MissingIsIgnored(t *testing.T) {
	t.Parallel()

	require.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
	require.NoError(t, loadEnvFile(""))
}

func TestReadGameIDsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "games.txt")
	require.NoError(t, os.WriteFile(path, []byte("# regular season\n0022300001\n\n 0022300002 \n"), 0o600))

	ids, err := readGameIDsFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"0022300001", "0022300002"}, ids)

	_, err = readGameIDsFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, usecase.BatchResult{RunID: "r1", Processed: 2, FailedGameIDs: []string{}}))

	out := buf.String()
	assert.Contains(t, out, `"run_id": "r1"`)
	assert.Contains(t, out, `"failed_game_ids": []`)
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	err := writeReport(cmd, usecase.GameView{
		GameID: "g1",
		Report: possession.QualityReport{
			GameID: "g1",
			Checks: []possession.CheckResult{
				{Name: possession.CheckTeamBalance, Passed: false, Detail: "delta 4 (threshold 2)"},
				{Name: possession.CheckPointsReconciliation, Passed: true, Skipped: true, Detail: "feed carries no score"},
			},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "team_balance")
	assert.Contains(t, buf.String(), "FAIL")
	assert.Contains(t, buf.String(), "skipped")
}
