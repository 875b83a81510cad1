package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tfea/adapters/excel"
	"tfea/domain/core"
	"tfea/domain/enrichment"
	apperrors "tfea/internal/errors"
	"tfea/internal/testkit"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	for key, value := range map[string]string{
		"DATABASE_URL":       "",
		"PORT":               "8080",
		"LOG_LEVEL":          "ERROR",
		"TFEA_WORKERS":       "2",
		"TFEA_TRIAL_WORKERS": "1",
		"TFEA_PERMUTATIONS":  "",
		"TFEA_SEED":          "",
		"TFEA_REGION_DIR":    "",
		"TFEA_OUTPUT_DIR":    "",
		"TFEA_RUN_NAME":      "",
	} {
		t.Setenv(key, value)
	}
}

func writeRegionDir(t *testing.T) string {
	t.Helper()
	regionDir := t.TempDir()
	cfg := testkit.DefaultRegionConfig()
	cfg.Regions = 80
	for _, m := range []enrichment.MotifRegions{
		testkit.NewRegionGenerator(cfg).Motif("TOP"),
		testkit.FarMotif("FAR"),
	} {
		_, err := testkit.WriteBedFile(regionDir, m)
		require.NoError(t, err)
	}
	return regionDir
}

func TestRunCommand(t *testing.T) {
	setTestEnv(t)
	regionDir := writeRegionDir(t)
	outDir := filepath.Join(t.TempDir(), "out")

	cmd := newRunCmd()
	cmd.SetArgs([]string{
		"--regions-dir", regionDir,
		"--output", outDir,
		"--name", "cli-test",
		"--permutations", "100",
		"--traces",
	})
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	for _, name := range []string{"results.xlsx", "report.html", "results.json", "traces/TOP.trace.tsv", "traces/TOP.null.tsv"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
	_, err := os.Stat(filepath.Join(outDir, "traces", "FAR.trace.tsv"))
	assert.True(t, os.IsNotExist(err))

	results, err := excel.ReadResults(filepath.Join(outDir, "results.xlsx"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.MotifID("TOP"), results[0].MotifID)
	assert.Greater(t, results[0].NES, 0.0)
}

func TestRunCommand_Verify(t *testing.T) {
	setTestEnv(t)
	outDir := filepath.Join(t.TempDir(), "out")

	cmd := newRunCmd()
	cmd.SetArgs([]string{
		"--regions-dir", writeRegionDir(t),
		"--output", outDir,
		"--permutations", "100",
		"--workers", "3",
		"--verify",
	})
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	_, err := os.Stat(filepath.Join(outDir, "results.xlsx"))
	assert.NoError(t, err)
}

func TestWriteOutputs_UnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := writeOutputs(filepath.Join(blocker, "out"), nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeIOError, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "failed to create output directory")
}

func TestRunCommand_InvalidWindow(t *testing.T) {
	setTestEnv(t)

	cmd := newRunCmd()
	cmd.SetArgs([]string{"--inner-window", "2000", "--regions-dir", t.TempDir()})
	cmd.SilenceUsage = true
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid engine parameters")
}

func TestRunCommand_NoInput(t *testing.T) {
	setTestEnv(t)

	cmd := newRunCmd()
	cmd.SetArgs([]string{"--output", t.TempDir()})
	cmd.SilenceUsage = true
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no region files given")
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	printResults(&buf, []enrichment.Result{
		{MotifID: "CTCF", ActualES: 0.5, NES: 2.25, PValue: 0.001, FDR: 0.002},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "MOTIF"))
	assert.Contains(t, lines[1], "CTCF")
	assert.Contains(t, lines[1], "2.2500")
}
