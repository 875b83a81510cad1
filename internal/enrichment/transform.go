package enrichment

import (
	"math"

	"tfea/domain/core"
	"tfea/domain/enrichment"
)

// Window holds the inner (h) and outer (H) distance thresholds
type Window struct {
	Inner float64
	Outer float64
}

// Classify places a distance relative to the window. Negative distances are
// excluded like distances beyond the outer window.
func (w Window) Classify(distance float64) enrichment.HitKind {
	switch {
	case distance >= 0 && distance <= w.Inner:
		return enrichment.HitClose
	case distance > w.Inner && distance <= w.Outer:
		return enrichment.HitMiss
	default:
		return enrichment.HitExcluded
	}
}

// Profile is the resolved contribution multiset of one motif
type Profile struct {
	// Contributions in arrival order. Miss values are already resolved.
	Contributions []enrichment.Contribution
	// Included holds the in-window regions in arrival order
	Included []enrichment.RegionHit
	// DistanceSum is the total of all close-hit values
	DistanceSum float64
	Hits        int
	Negatives   int
	MissValue   float64
}

// Transform converts raw regions into contributions. It returns
// core.ErrNoHits when no region falls within the outer window.
func Transform(regions []enrichment.RegionHit, w Window) (*Profile, error) {
	p := &Profile{
		Contributions: make([]enrichment.Contribution, 0, len(regions)),
		Included:      make([]enrichment.RegionHit, 0, len(regions)),
	}

	for _, region := range regions {
		kind := w.Classify(region.Distance)
		switch kind {
		case enrichment.HitClose:
			value := math.Exp(-region.Distance)
			p.DistanceSum += value
			p.Hits++
			p.Contributions = append(p.Contributions, enrichment.Contribution{Rank: region.Rank, Kind: kind, Value: value})
		case enrichment.HitMiss:
			p.Negatives++
			p.Contributions = append(p.Contributions, enrichment.Contribution{Rank: region.Rank, Kind: kind})
		default:
			continue
		}
		p.Included = append(p.Included, region)
	}

	if len(p.Contributions) == 0 {
		return nil, core.ErrNoHits
	}

	// -1 when there are no misses keeps the division defined; the value is
	// then never used.
	p.MissValue = -1.0
	if p.Negatives > 0 {
		p.MissValue = -1.0 / float64(p.Negatives)
	}
	for i := range p.Contributions {
		if p.Contributions[i].Kind == enrichment.HitMiss {
			p.Contributions[i].Value = p.MissValue
		}
	}

	return p, nil
}

// Increment is the amount a contribution adds to the running sum.
func (p *Profile) Increment(c enrichment.Contribution) float64 {
	if c.Kind == enrichment.HitMiss {
		return c.Value
	}
	// All close hits underflowed to zero; they add nothing.
	if p.DistanceSum == 0 {
		return 0
	}
	return c.Value / p.DistanceSum
}

// Increments returns the running-sum steps in arrival order. The result is
// the base multiset shuffled by the permutation simulator.
func (p *Profile) Increments() []float64 {
	out := make([]float64, len(p.Contributions))
	for i, c := range p.Contributions {
		out[i] = p.Increment(c)
	}
	return out
}
