package excel

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"tfea/domain/core"
	"tfea/domain/enrichment"
)

// ReadResults loads the Results sheet of a workbook written by ResultsWriter.
// Null summary columns other than mean, std and percentiles are not stored.
func ReadResults(filePath string) ([]enrichment.Result, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("workbook not found: %s", filePath)
	}

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ResultsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ResultsSheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s sheet has no header row", ResultsSheet)
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.TrimSpace(h)] = i
	}
	for _, h := range resultHeaders {
		if _, ok := index[h.(string)]; !ok {
			return nil, fmt.Errorf("%s sheet missing column %q", ResultsSheet, h)
		}
	}

	results := make([]enrichment.Result, 0, len(rows)-1)
	for line, row := range rows[1:] {
		cell := func(name string) string {
			if i := index[name]; i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		var res enrichment.Result
		res.MotifID = core.MotifID(cell("Motif"))
		if res.MotifID == "" {
			continue
		}

		floats := []struct {
			column string
			dest   *float64
		}{
			{"ES", &res.ActualES},
			{"NES", &res.NES},
			{"P-value", &res.PValue},
			{"FDR", &res.FDR},
			{"Null Mean", &res.Null.Mean},
			{"Null Std", &res.Null.StdDev},
			{"Null P95", &res.Null.Percentile95},
			{"Null P99", &res.Null.Percentile99},
		}
		for _, fl := range floats {
			v, err := strconv.ParseFloat(cell(fl.column), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", line+2, fl.column, err)
			}
			*fl.dest = v
		}

		if res.Hits, err = strconv.Atoi(cell("Hits")); err != nil {
			return nil, fmt.Errorf("row %d column Hits: %w", line+2, err)
		}
		if res.Misses, err = strconv.Atoi(cell("Misses")); err != nil {
			return nil, fmt.Errorf("row %d column Misses: %w", line+2, err)
		}
		res.Significant = strings.EqualFold(cell("Significant"), "true")

		results = append(results, res)
	}

	log.Printf("[ResultsReader] Read %d results from %s", len(results), filePath)
	return results, nil
}
