// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ManuGH/fieldpulse/internal/adm"
	"github.com/ManuGH/fieldpulse/internal/condition"
	"github.com/ManuGH/fieldpulse/internal/domain/agent"
	"github.com/ManuGH/fieldpulse/internal/domain/lifecycle"
	"github.com/ManuGH/fieldpulse/internal/domain/taxonomy"
	xglog "github.com/ManuGH/fieldpulse/internal/log"
	"github.com/ManuGH/fieldpulse/internal/playbook"
)

// Problem is the JSON body of every error response.
type Problem struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("malformed request")

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, r *http.Request, code int, kind, detail string) {
	writeJSON(w, code, Problem{Error: kind, Detail: detail, RequestID: xglog.RequestIDFromContext(r.Context())})
}

// writeError maps a domain error onto an HTTP status and problem kind.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, kind := classify(err)
	if code >= http.StatusInternalServerError {
		logger := xglog.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Str(xglog.FieldPath, r.URL.Path).Msg("request failed")
	}
	writeProblem(w, r, code, kind, err.Error())
}

func classify(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "body_too_large"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "malformed_request"
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, taxonomy.ErrUnknownReasonCode):
		return http.StatusNotFound, "unknown_reason_code"
	case errors.Is(err, playbook.ErrUnknownPlaybook):
		return http.StatusNotFound, "unknown_playbook"
	case errors.Is(err, playbook.ErrInvalidCatalog), condition.IsConfigError(err):
		return http.StatusUnprocessableEntity, "configuration_error"
	case errors.Is(err, agent.ErrInvalidSnapshot),
		errors.Is(err, lifecycle.ErrMissingActivity),
		errors.Is(err, adm.ErrInvalidMetrics),
		errors.Is(err, adm.ErrInvalidBriefing):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request_cancelled"
	}
	return http.StatusInternalServerError, "internal_error"
}

// decodeJSON strictly decodes one JSON value from the request body.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON value", errBadRequest)
	}
	return nil
}
