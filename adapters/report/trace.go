package report

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"tfea/domain/core"
	"tfea/domain/enrichment"
)

// WriteTraces writes two tab-separated files per motif under dir:
// <motif>.trace.tsv with one row per in-window region in rank order
// (rank, distance, running sum, rank metric, significant), and
// <motif>.null.tsv with one permutation sample per line.
func WriteTraces(dir string, traces []*enrichment.Trace) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create trace directory: %w", err)
	}
	for _, trace := range traces {
		if err := writeTrace(filepath.Join(dir, trace.MotifID.String()+".trace.tsv"), trace); err != nil {
			return err
		}
		if err := writeNull(filepath.Join(dir, trace.MotifID.String()+".null.tsv"), trace.Null); err != nil {
			return err
		}
	}
	return nil
}

func writeTrace(path string, trace *enrichment.Trace) error {
	return writeLines(path, func(w *bufio.Writer) {
		w.WriteString("rank\tdistance\tcumulative_es\trank_metric\tsignificant\n")
		for i, point := range trace.Scatter {
			var es, metric float64
			if i < len(trace.Cumulative) {
				es = trace.Cumulative[i]
			}
			if i < len(trace.RankMetric) {
				metric = trace.RankMetric[i]
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", point.Rank,
				formatFloat(point.Distance), formatFloat(es), formatFloat(metric), point.Significant)
		}
	})
}

func writeNull(path string, null []float64) error {
	return writeLines(path, func(w *bufio.Writer) {
		for _, v := range null {
			w.WriteString(formatFloat(v))
			w.WriteByte('\n')
		}
	})
}

func writeLines(path string, fill func(w *bufio.Writer)) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	fill(w)
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// OrderedTraces lists traces in the run's result order; motifs without a
// trace are left out.
func OrderedTraces(run *enrichment.Run, traces map[core.MotifID]*enrichment.Trace) []*enrichment.Trace {
	out := make([]*enrichment.Trace, 0, len(traces))
	for _, res := range run.Results {
		if trace, ok := traces[res.MotifID]; ok {
			out = append(out, trace)
		}
	}
	return out
}
