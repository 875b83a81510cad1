package excel

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tfea/domain/core"
	"tfea/domain/enrichment"
)

func sampleRun() *enrichment.Run {
	return &enrichment.Run{
		ID:        core.RunID("0192f3a4-5b6c-7d8e-9f00-112233445566"),
		Name:      "treated-vs-control",
		CreatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		Seed:      42,
		Params:    enrichment.DefaultParams(),
		Results: []enrichment.Result{
			{MotifID: "CTCF", ActualES: 0.5, NES: 2.25, PValue: 0.001, FDR: 0.002, Significant: true, Hits: 12, Misses: 30,
				Null: enrichment.NullSummary{Samples: 1000, Mean: 0.125, StdDev: 0.25, Percentile95: 0.375, Percentile99: 0.5}},
			{MotifID: "SP1", ActualES: -0.25, NES: -1.5, PValue: 0.25, FDR: 0.25, Hits: 4, Misses: 50},
		},
		Skipped: []core.MotifID{"GATA1", "KLF4"},
		Failed:  []enrichment.Failure{{MotifID: "NRF1", Reason: "degenerate null"}},
	}
}

func TestResultsWriter_Sheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, NewResultsWriter(path).Write(sampleRun()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ResultsSheet, SkippedSheet, FailedSheet, ParamsSheet}, f.GetSheetList())

	rows, err := f.GetRows(ResultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Motif", rows[0][0])
	assert.Equal(t, "FDR", rows[0][4])
	assert.Equal(t, "CTCF", rows[1][0])
	assert.Equal(t, "SP1", rows[2][0])

	skipped, err := f.GetRows(SkippedSheet)
	require.NoError(t, err)
	require.Len(t, skipped, 3)
	assert.Equal(t, "KLF4", skipped[2][0])

	failed, err := f.GetRows(FailedSheet)
	require.NoError(t, err)
	require.Len(t, failed, 2)
	assert.Equal(t, []string{"NRF1", "degenerate null"}, failed[1])

	params, err := f.GetRows(ParamsSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Run ID", "0192f3a4-5b6c-7d8e-9f00-112233445566"}, params[1])
}

func TestResultsWriter_EmptyRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	run := &enrichment.Run{ID: core.RunID("empty"), Params: enrichment.DefaultParams()}
	require.NoError(t, NewResultsWriter(path).Write(run))

	results, err := ReadResults(path)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReadResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	run := sampleRun()
	require.NoError(t, NewResultsWriter(path).Write(run))

	results, err := ReadResults(path)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, core.MotifID("CTCF"), results[0].MotifID)
	assert.InDelta(t, 2.25, results[0].NES, 1e-12)
	assert.InDelta(t, 0.002, results[0].FDR, 1e-12)
	assert.True(t, results[0].Significant)
	assert.Equal(t, 12, results[0].Hits)
	assert.InDelta(t, 0.375, results[0].Null.Percentile95, 1e-12)
	assert.False(t, results[1].Significant)
	assert.Equal(t, 50, results[1].Misses)
}

func TestReadResults_MissingFile(t *testing.T) {
	_, err := ReadResults(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workbook not found")
}
