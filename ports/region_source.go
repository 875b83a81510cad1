package ports

import (
	"context"

	"tfea/domain/core"
	"tfea/domain/enrichment"
)

// RegionSource supplies ranked regions per motif
type RegionSource interface {
	// Motifs lists the motifs available, in the order they should be reported
	Motifs(ctx context.Context) ([]core.MotifID, error)

	// Regions returns the motif's regions in arrival order
	Regions(ctx context.Context, motif core.MotifID) ([]enrichment.RegionHit, error)
}
