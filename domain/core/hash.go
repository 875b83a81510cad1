package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ComputeParamsHash fingerprints engine parameters independent of map order.
func ComputeParamsHash(params map[string]interface{}) Hash {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString("=")
		data.WriteString(fmt.Sprintf("%v", params[key]))
		data.WriteString(";")
	}

	return NewHash([]byte(data.String()))
}

// ComputeResultsHash fingerprints scored motifs so identical seeded runs can be compared.
func ComputeResultsHash(paramsHash Hash, rows []string) Hash {
	var data strings.Builder
	data.WriteString(paramsHash.String())
	for _, row := range rows {
		data.WriteString("\n")
		data.WriteString(row)
	}
	return NewHash([]byte(data.String()))
}
