package regions

import (
	"context"
	"fmt"

	"tfea/domain/core"
	"tfea/domain/enrichment"
)

// MemorySource serves regions already held in memory, e.g. from an API request
type MemorySource struct {
	order   []core.MotifID
	regions map[core.MotifID][]enrichment.RegionHit
}

// NewMemorySource keeps the motifs in the given order. Motif IDs are trimmed;
// blank and duplicate IDs are rejected.
func NewMemorySource(motifs []enrichment.MotifRegions) (*MemorySource, error) {
	ms := &MemorySource{regions: make(map[core.MotifID][]enrichment.RegionHit, len(motifs))}
	for i, m := range motifs {
		id, err := core.ParseMotifID(string(m.MotifID))
		if err != nil {
			return nil, fmt.Errorf("motif %d: %w", i, err)
		}
		if _, ok := ms.regions[id]; ok {
			return nil, fmt.Errorf("duplicate motif %s", id)
		}
		ms.regions[id] = m.Regions
		ms.order = append(ms.order, id)
	}
	return ms, nil
}

// Motifs lists motifs in insertion order
func (ms *MemorySource) Motifs(ctx context.Context) ([]core.MotifID, error) {
	out := make([]core.MotifID, len(ms.order))
	copy(out, ms.order)
	return out, nil
}

// Regions returns a copy of the motif's regions
func (ms *MemorySource) Regions(ctx context.Context, motif core.MotifID) ([]enrichment.RegionHit, error) {
	regions, ok := ms.regions[motif]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrMotifNotFound, motif)
	}
	out := make([]enrichment.RegionHit, len(regions))
	copy(out, regions)
	return out, nil
}
