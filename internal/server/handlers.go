package server

import (
	"encoding/json"
	"net/http"

	"github.com/driftforge/runweaver/pkg/cache"
	"github.com/driftforge/runweaver/pkg/errors"
	"github.com/driftforge/runweaver/pkg/mapgen"
	"github.com/driftforge/runweaver/pkg/mapjson"
	"github.com/driftforge/runweaver/pkg/rules"
	"github.com/driftforge/runweaver/pkg/stats"
)

// generateRequest asks for one map. Rules are optional; the balanced preset
// is used when omitted.
type generateRequest struct {
	Seed  string       `json:"seed"`
	Rules *rules.Rules `json:"rules,omitempty"`
}

// validateRequest asks for a structural re-check of a map.
type validateRequest struct {
	Map   *mapgen.Map  `json:"map"`
	Rules *rules.Rules `json:"rules,omitempty"`
}

// batchRequest runs the generator over a seed corpus.
type batchRequest struct {
	Seeds   []string     `json:"seeds"`
	Rules   *rules.Rules `json:"rules,omitempty"`
	Workers int          `json:"workers,omitempty"`
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	ruleSet := rules.Balanced()
	if req.Rules != nil {
		ruleSet = *req.Rules
	}

	// Determinism makes the cache exact: same seed and rules always means
	// the same map.
	ctx := r.Context()
	key := cache.MapKey(req.Seed, ruleSet.Fingerprint())
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	m, err := mapgen.Generate(req.Seed, ruleSet)
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := mapjson.Marshal(m)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encode map"))
		return
	}
	if err := s.cache.Set(ctx, key, data, 0); err != nil {
		s.logger.Warn("cache write failed", "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if req.Map == nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "map is required"))
		return
	}

	ruleSet := rules.Balanced()
	if req.Rules != nil {
		ruleSet = *req.Rules
	}
	if err := ruleSet.Validate(); err != nil {
		writeError(w, err)
		return
	}

	report := mapgen.Validate(req.Map, ruleSet)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if len(req.Seeds) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "seeds is required"))
		return
	}

	ruleSet := rules.Balanced()
	if req.Rules != nil {
		ruleSet = *req.Rules
	}

	agg, err := stats.RunBatch(r.Context(), req.Seeds, ruleSet, stats.Options{Workers: req.Workers})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

// writeError maps structured error codes onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeRuleViolation:
		// Well-formed request, structurally unsatisfiable rules.
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidSeed,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPreset:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeMapNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	}

	writeJSON(w, status, errorResponse{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
