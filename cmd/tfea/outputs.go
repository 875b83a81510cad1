package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"tfea/adapters/excel"
	"tfea/adapters/report"
	"tfea/app"
	"tfea/domain/enrichment"
	apperrors "tfea/internal/errors"
)

// writeOutputs writes the workbook, HTML and JSON reports, and traces when
// the batch kept them. It returns the written paths.
func writeOutputs(dir string, batch *app.BatchReport) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.IOError("failed to create output directory "+dir, err)
	}

	run := batch.Run
	var written []string

	workbook := excel.NewResultsWriter(filepath.Join(dir, "results.xlsx"))
	if err := workbook.Write(run); err != nil {
		return nil, apperrors.IOError("failed to write results workbook", err)
	}
	written = append(written, workbook.Path())

	html := filepath.Join(dir, "report.html")
	if err := report.WriteHTML(html, run); err != nil {
		return nil, apperrors.IOError("failed to write HTML report", err)
	}
	written = append(written, html)

	traces := report.OrderedTraces(run, batch.Traces)

	jsonPath := filepath.Join(dir, "results.json")
	if err := report.WriteJSON(jsonPath, run, nil); err != nil {
		return nil, apperrors.IOError("failed to write JSON results", err)
	}
	written = append(written, jsonPath)

	if len(traces) > 0 {
		traceDir := filepath.Join(dir, "traces")
		if err := report.WriteTraces(traceDir, traces); err != nil {
			return nil, apperrors.IOError("failed to write traces", err)
		}
		written = append(written, traceDir)
	}

	return written, nil
}

func printSummary(w io.Writer, run *enrichment.Run) {
	fmt.Fprintf(w, "\n📊 TFEA RESULTS\n")
	fmt.Fprintf(w, "Run: %s (%s)\n", run.Name, run.ID)
	fmt.Fprintf(w, "Motifs: %d scored, %d significant, %d skipped, %d failed\n",
		len(run.Results), len(run.SignificantResults()), len(run.Skipped), len(run.Failed))
	fmt.Fprintf(w, "Runtime: %dms\n", run.RuntimeMs)
	fmt.Fprintf(w, "Fingerprint: %s\n", run.Fingerprint)

	significant := run.SignificantResults()
	if len(significant) == 0 {
		return
	}
	fmt.Fprintf(w, "\n✅ SIGNIFICANT MOTIFS:\n")
	printResults(w, significant)
}

func printResults(w io.Writer, results []enrichment.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MOTIF\tES\tNES\tP-VALUE\tFDR")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.3g\t%.3g\n", r.MotifID, r.ActualES, r.NES, r.PValue, r.FDR)
	}
	tw.Flush()
}
