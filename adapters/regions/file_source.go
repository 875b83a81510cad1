package regions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"tfea/domain/core"
	"tfea/domain/enrichment"
)

// FileSource reads one ranked center-distance file per motif
type FileSource struct {
	order []core.MotifID
	paths map[core.MotifID]string
}

// NewFileSource creates a source over explicit files. Motif IDs come from
// the file names; a repeated motif ID is an error.
func NewFileSource(paths ...string) (*FileSource, error) {
	fs := &FileSource{paths: make(map[core.MotifID]string, len(paths))}
	for _, path := range paths {
		motif := core.MotifIDFromPath(path)
		if existing, ok := fs.paths[motif]; ok {
			return nil, fmt.Errorf("motif %s provided by both %s and %s", motif, existing, path)
		}
		fs.paths[motif] = path
		fs.order = append(fs.order, motif)
	}
	return fs, nil
}

// NewDirSource creates a source over every file in dir matching pattern
// ("*.bed" when empty), in lexical order.
func NewDirSource(dir, pattern string) (*FileSource, error) {
	if pattern == "" {
		pattern = "*.bed"
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("region directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("region directory %s is not a directory", dir)
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return NewFileSource(matches...)
}

// Motifs lists motifs in the order the files were given
func (fs *FileSource) Motifs(ctx context.Context) ([]core.MotifID, error) {
	out := make([]core.MotifID, len(fs.order))
	copy(out, fs.order)
	return out, nil
}

// Regions parses the motif's file
func (fs *FileSource) Regions(ctx context.Context, motif core.MotifID) ([]enrichment.RegionHit, error) {
	path, ok := fs.paths[motif]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrMotifNotFound, motif)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening regions for %s: %w", motif, err)
	}
	defer f.Close()

	return ParseRankedDistances(f, path)
}
