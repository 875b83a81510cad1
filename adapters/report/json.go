package report

import (
	"encoding/json"
	"fmt"
	"os"

	"tfea/domain/enrichment"
)

// WriteJSON dumps the run, and traces when given, as indented JSON
func WriteJSON(path string, run *enrichment.Run, traces []*enrichment.Trace) error {
	payload := struct {
		*enrichment.Run
		Traces []*enrichment.Trace `json:"traces,omitempty"`
	}{Run: run, Traces: traces}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	return nil
}
