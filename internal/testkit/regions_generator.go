package testkit

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"tfea/domain/core"
	"tfea/domain/enrichment"
)

// RegionGeneratorConfig configures synthetic ranked regions for one motif
type RegionGeneratorConfig struct {
	Regions       int     `json:"regions"`
	EnrichedTop   float64 `json:"enriched_top"`   // fraction of top ranks placed close to the motif
	BackgroundHit float64 `json:"background_hit"` // chance of a close hit elsewhere
	CloseDistance float64 `json:"close_distance"` // upper bound of close distances
	MissDistance  float64 `json:"miss_distance"`  // lower bound of miss distances
	OuterWindow   float64 `json:"outer_window"`
	Seed          int64   `json:"seed"`
}

// DefaultRegionConfig returns a motif enriched in the top quarter of ranks
func DefaultRegionConfig() RegionGeneratorConfig {
	return RegionGeneratorConfig{
		Regions:       200,
		EnrichedTop:   0.25,
		BackgroundHit: 0.05,
		CloseDistance: 50,
		MissDistance:  300,
		OuterWindow:   enrichment.DefaultOuterWindow,
		Seed:          42,
	}
}

// RegionGenerator produces deterministic synthetic region hits
type RegionGenerator struct {
	config RegionGeneratorConfig
	rng    *rand.Rand
}

// NewRegionGenerator creates a generator seeded from config.Seed
func NewRegionGenerator(config RegionGeneratorConfig) *RegionGenerator {
	return &RegionGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Motif generates ranked regions for one motif. Ranks run 1..Regions; the
// top EnrichedTop fraction sits within CloseDistance, the rest are misses
// except for BackgroundHit close hits.
func (g *RegionGenerator) Motif(id core.MotifID) enrichment.MotifRegions {
	n := g.config.Regions
	top := int(float64(n) * g.config.EnrichedTop)

	hits := make([]enrichment.RegionHit, n)
	for i := range hits {
		var distance float64
		if i < top || g.rng.Float64() < g.config.BackgroundHit {
			distance = g.rng.Float64() * g.config.CloseDistance
		} else {
			distance = g.config.MissDistance + g.rng.Float64()*(g.config.OuterWindow-g.config.MissDistance)
		}

		sign := 1.0
		if i >= n/2 {
			sign = -1.0
		}
		hits[i] = enrichment.RegionHit{
			Rank:           i + 1,
			Distance:       float64(int(distance)),
			PValue:         pvalueForRank(i, n),
			FoldChangeSign: sign,
		}
	}
	return enrichment.MotifRegions{MotifID: id, Regions: hits}
}

// pvalueForRank is smallest at both ends of the ranking, as with
// differential signal sorted up then down
func pvalueForRank(i, n int) float64 {
	mid := float64(n) / 2
	d := (float64(i) - mid) / mid
	if d < 0 {
		d = -d
	}
	return 1 - 0.999*d
}

// UniformMotif places a close hit every closeEvery ranks and misses elsewhere
func UniformMotif(id core.MotifID, n, closeEvery int) enrichment.MotifRegions {
	hits := make([]enrichment.RegionHit, n)
	for i := range hits {
		distance := 800.0
		if closeEvery > 0 && i%closeEvery == 0 {
			distance = 10
		}
		hits[i] = enrichment.RegionHit{Rank: i + 1, Distance: distance, PValue: 0.01, FoldChangeSign: 1}
	}
	return enrichment.MotifRegions{MotifID: id, Regions: hits}
}

// FarMotif has no region within the outer window and is always skipped
func FarMotif(id core.MotifID) enrichment.MotifRegions {
	return enrichment.MotifRegions{MotifID: id, Regions: []enrichment.RegionHit{
		{Rank: 1, Distance: 5000, PValue: 0.01, FoldChangeSign: 1},
		{Rank: 2, Distance: 9000, PValue: 0.02, FoldChangeSign: -1},
	}}
}

// WriteBedFile writes the motif as a ranked center-distance file
// (<motif>.bed) in dir and returns its path. Fold changes are written as
// 2 for up regions and 0.5 for down regions.
func WriteBedFile(dir string, m enrichment.MotifRegions) (string, error) {
	var b strings.Builder
	b.WriteString("#chrom\tstart\tstop\tpval\tfc\trank\tdistance\n")
	for _, hit := range m.Regions {
		fc := 0.5
		if hit.FoldChangeSign > 0 {
			fc = 2
		}
		start := hit.Rank * 1000
		fmt.Fprintf(&b, "chr1\t%d\t%d\t%g\t%g\t%d\t%g\n", start, start+400, hit.PValue, fc, hit.Rank, hit.Distance)
	}

	path := filepath.Join(dir, m.MotifID.String()+".bed")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
