package excel

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"tfea/domain/enrichment"
)

// Sheet names of the results workbook
const (
	ResultsSheet = "Results"
	SkippedSheet = "Skipped"
	FailedSheet  = "Failed"
	ParamsSheet  = "Parameters"
)

var resultHeaders = []interface{}{
	"Motif", "ES", "NES", "P-value", "FDR", "Significant", "Hits", "Misses",
	"Null Mean", "Null Std", "Null P95", "Null P99",
}

// ResultsWriter writes a scored run to an XLSX workbook
type ResultsWriter struct {
	filePath string
}

// NewResultsWriter creates a writer targeting filePath
func NewResultsWriter(filePath string) *ResultsWriter {
	return &ResultsWriter{filePath: filePath}
}

// Path returns the workbook location
func (w *ResultsWriter) Path() string {
	return w.filePath
}

// Write renders the run into Results, Skipped, Failed and Parameters sheets
func (w *ResultsWriter) Write(run *enrichment.Run) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SkippedSheet, FailedSheet, ParamsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	rows := make([][]interface{}, 0, len(run.Results))
	for _, res := range run.Results {
		rows = append(rows, []interface{}{
			res.MotifID.String(), res.ActualES, res.NES, res.PValue, res.FDR, res.Significant,
			res.Hits, res.Misses, res.Null.Mean, res.Null.StdDev, res.Null.Percentile95, res.Null.Percentile99,
		})
	}
	if err := writeTable(f, ResultsSheet, resultHeaders, rows, bold); err != nil {
		return err
	}

	rows = rows[:0]
	for _, motif := range run.Skipped {
		rows = append(rows, []interface{}{motif.String(), "no region within outer window"})
	}
	if err := writeTable(f, SkippedSheet, []interface{}{"Motif", "Reason"}, rows, bold); err != nil {
		return err
	}

	rows = rows[:0]
	for _, failure := range run.Failed {
		rows = append(rows, []interface{}{failure.MotifID.String(), failure.Reason})
	}
	if err := writeTable(f, FailedSheet, []interface{}{"Motif", "Reason"}, rows, bold); err != nil {
		return err
	}

	params := [][]interface{}{
		{"Run ID", run.ID.String()},
		{"Name", run.Name},
		{"Created", run.CreatedAt.UTC().Format("2006-01-02 15:04:05")},
		{"Seed", run.Seed},
		{"Inner window", run.Params.InnerWindow},
		{"Outer window", run.Params.OuterWindow},
		{"Permutations", run.Params.Permutations},
		{"FDR cutoff", run.Params.FDRCutoff},
		{"P-value cutoff", run.Params.PValueCutoff},
		{"Params hash", run.ParamsHash.String()},
		{"Fingerprint", run.Fingerprint.String()},
	}
	if err := writeTable(f, ParamsSheet, []interface{}{"Setting", "Value"}, params, bold); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(filepath.Clean(w.filePath)); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	log.Printf("[ResultsWriter] Wrote %d results to %s", len(run.Results), w.filePath)
	return nil
}

func writeTable(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
