package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Falls back to v4 if v7 is not available
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID   ID
	MotifID ID
)

// String conversions for domain IDs
func (id RunID) String() string   { return ID(id).String() }
func (id MotifID) String() string { return ID(id).String() }

// NewRunID creates a time-ordered run identifier
func NewRunID() RunID {
	return RunID(NewID())
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("run ID %q is not a UUID: %w", s, err)
	}
	return RunID(s), nil
}

// ParseMotifID parses a string into MotifID
func ParseMotifID(s string) (MotifID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("motif ID cannot be empty")
	}
	return MotifID(s), nil
}

// MotifIDFromPath derives a motif identifier from a per-motif region file,
// dropping the directory and the ".bed" suffix.
func MotifIDFromPath(path string) MotifID {
	base := filepath.Base(path)
	if i := strings.Index(base, ".bed"); i > 0 {
		base = base[:i]
	}
	return MotifID(base)
}
