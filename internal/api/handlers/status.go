package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/internal/scheduler"
	"github.com/wonny/inout/backend/pkg/logger"
)

// StateReader exposes the engine's current stance
type StateReader interface {
	State() contracts.State
	Weights() contracts.WeightMap
}

// DecisionLister returns recent decisions, newest first
type DecisionLister interface {
	Recent(n int) []contracts.Decision
}

// JobStatser reports scheduler statistics
type JobStatser interface {
	GetJobStats() map[string]scheduler.JobStats
}

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// StatusHandler serves the read-only status endpoints
// ⭐ SSOT: 상태 API 핸들러는 이 구조체에서만
type StatusHandler struct {
	engine    StateReader
	decisions DecisionLister
	jobs      JobStatser
	checks    map[string]HealthCheck
	logger    *logger.Logger
}

// NewStatusHandler creates a status handler. jobs may be nil (one-shot mode).
func NewStatusHandler(engine StateReader, decisions DecisionLister, jobs JobStatser, log *logger.Logger) *StatusHandler {
	return &StatusHandler{
		engine:    engine,
		decisions: decisions,
		jobs:      jobs,
		checks:    make(map[string]HealthCheck),
		logger:    log.Component("api"),
	}
}

// AddHealthCheck registers a dependency probe for /health
func (h *StatusHandler) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// Health reports ok, or 503 with the failing dependencies
// GET /health
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	failed := map[string]string{}
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		h.logger.WithField("failed", failed).Warn("Health check failed")
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "degraded",
			"failed": failed,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "inout",
	})
}

// StateResponse is the body of GET /api/state
type StateResponse struct {
	State    contracts.State     `json:"state"`
	InMarket int                 `json:"in_market"`
	Weights  contracts.WeightMap `json:"weights"`
}

// GetState returns the regime state and the weights it resolves to
// GET /api/state
func (h *StatusHandler) GetState(w http.ResponseWriter, r *http.Request) {
	s := h.engine.State()
	respondJSON(w, http.StatusOK, StateResponse{
		State:    s,
		InMarket: s.Regime.Indicator(),
		Weights:  h.engine.Weights(),
	})
}

// GetDecisions returns recent decisions, newest first
// GET /api/decisions?limit=20
func (h *StatusHandler) GetDecisions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"decisions": h.decisions.Recent(limit),
	})
}

// GetJobs returns scheduler statistics
// GET /api/jobs
func (h *StatusHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"jobs": map[string]scheduler.JobStats{}})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"jobs": h.jobs.GetJobStats()})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
