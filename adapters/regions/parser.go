package regions

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tfea/domain/core"
	"tfea/domain/enrichment"
)

// Column layout of a ranked center-distance file. The distance is always
// the last column.
const (
	colPValue     = 3
	colFoldChange = 4
	colRank       = 5
	minColumns    = 7
)

// ParseRankedDistances reads tab-separated ranked center-distance records.
// Blank lines and lines starting with '#' are skipped. A fold change above 1
// maps to FoldChangeSign +1, anything else to -1.
func ParseRankedDistances(r io.Reader, source string) ([]enrichment.RegionHit, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var hits []enrichment.RegionHit
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		hit, err := parseRow(strings.Split(line, "\t"))
		if err != nil {
			return nil, core.NewRegionRowError(source, lineNo, err.Error())
		}
		hits = append(hits, hit)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}

	return hits, nil
}

func parseRow(fields []string) (enrichment.RegionHit, error) {
	if len(fields) < minColumns {
		return enrichment.RegionHit{}, fmt.Errorf("expected at least %d columns, got %d", minColumns, len(fields))
	}

	pvalue, err := strconv.ParseFloat(strings.TrimSpace(fields[colPValue]), 64)
	if err != nil {
		return enrichment.RegionHit{}, fmt.Errorf("p-value: %v", err)
	}
	foldChange, err := strconv.ParseFloat(strings.TrimSpace(fields[colFoldChange]), 64)
	if err != nil {
		return enrichment.RegionHit{}, fmt.Errorf("fold change: %v", err)
	}
	rank, err := strconv.Atoi(strings.TrimSpace(fields[colRank]))
	if err != nil {
		return enrichment.RegionHit{}, fmt.Errorf("rank: %v", err)
	}
	distance, err := strconv.ParseFloat(strings.TrimSpace(fields[len(fields)-1]), 64)
	if err != nil {
		return enrichment.RegionHit{}, fmt.Errorf("distance: %v", err)
	}

	sign := -1.0
	if foldChange > 1 {
		sign = 1.0
	}

	return enrichment.RegionHit{
		Rank:           rank,
		Distance:       distance,
		PValue:         pvalue,
		FoldChangeSign: sign,
	}, nil
}
