package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tfea/adapters/regions"
	"tfea/adapters/report"
	"tfea/app"
	"tfea/domain/core"
	"tfea/domain/enrichment"
	apperrors "tfea/internal/errors"
)

// AnalysisRequest scores the supplied motifs in one run
type AnalysisRequest struct {
	Name          string                    `json:"name"`
	Seed          *int64                    `json:"seed,omitempty"`
	IncludeTraces bool                      `json:"include_traces"`
	Motifs        []enrichment.MotifRegions `json:"motifs"`
}

// AnalysisResponse is the scored run plus traces when requested
type AnalysisResponse struct {
	*enrichment.Run
	Traces []*enrichment.Trace `json:"traces,omitempty"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, apperrors.NotFound("route "+r.URL.Path))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)

	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("invalid JSON body: %w", err)))
		return
	}
	if len(req.Motifs) == 0 {
		s.writeError(w, apperrors.InvalidInput("at least one motif is required"))
		return
	}

	source, err := regions.NewMemorySource(req.Motifs)
	if err != nil {
		s.writeError(w, apperrors.WithCode(apperrors.CodeInvalidInput, err))
		return
	}

	seed := s.opts.DefaultSeed
	if req.Seed != nil {
		seed = *req.Seed
	}

	result, err := s.service.Run(r.Context(), app.BatchRequest{
		Name:       req.Name,
		Source:     source,
		Seed:       seed,
		KeepTraces: req.IncludeTraces,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := AnalysisResponse{Run: result.Run}
	if req.IncludeTraces {
		resp.Traces = report.OrderedTraces(result.Run, result.Traces)
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, apperrors.InvalidInput("limit must be an integer"))
			return
		}
		limit = n
	}

	runs, err := s.service.ListRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseRunID(chi.URLParam(r, "runID"))
	if err != nil {
		s.writeError(w, apperrors.WithCode(apperrors.CodeInvalidInput, err))
		return
	}

	run, err := s.service.GetRun(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, AnalysisResponse{Run: run})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	} else {
		s.logger.Debug("request rejected: %v", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: apperrors.GetCode(err)})
}

// writeJSON encodes into a buffer first; a body that cannot be encoded
// (NaN in a trace) becomes a 500 error response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		s.logger.Error("failed to encode %T response: %v", body, err)
		appErr := apperrors.InternalError("failed to encode response")
		status = http.StatusInternalServerError
		buf.Reset()
		json.NewEncoder(&buf).Encode(ErrorResponse{Error: appErr.Error(), Code: appErr.Code})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Debug("failed to write response: %v", err)
	}
}
