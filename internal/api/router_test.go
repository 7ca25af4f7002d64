package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/inout/backend/internal/api/handlers"
	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/internal/observability"
	"github.com/wonny/inout/backend/internal/scheduler"
	"github.com/wonny/inout/backend/pkg/logger"
)

type stubEngine struct{ s contracts.State }

func (e stubEngine) State() contracts.State { return e.s }
func (e stubEngine) Weights() contracts.WeightMap {
	return contracts.WeightMap{"TQQQ": 0, "TMF": 0.5, "TYD": 0.5}
}

type stubJobs struct{}

func (stubJobs) GetJobStats() map[string]scheduler.JobStats {
	return map[string]scheduler.JobStats{"market_open": {JobName: "market_open", TotalRuns: 3}}
}

func newTestRouter(t *testing.T, check handlers.HealthCheck) (http.Handler, *observability.Recorder) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	rec := observability.NewRecorder(10)

	for i := 0; i < 3; i++ {
		d := &contracts.Decision{
			Kind:  contracts.KindDailyOutCheck,
			After: contracts.State{Regime: contracts.RegimeOut, DayCounter: i + 1},
		}
		observability.Multi{metrics, rec}.Publish(d)
	}

	status := handlers.NewStatusHandler(stubEngine{contracts.State{Regime: contracts.RegimeOut, DayCounter: 3, WaitDays: 7}}, rec, stubJobs{}, logger.Nop())
	if check != nil {
		status.AddHealthCheck("db", check)
	}
	return NewRouter(status, nil, reg, logger.Nop()), rec
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t, func(context.Context) error { return nil })
	w := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	h, _ = newTestRouter(t, func(context.Context) error { return errors.New("down") })
	w = get(t, h, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "down")
}

func TestGetState(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	w := get(t, h, "/api/state")
	require.Equal(t, http.StatusOK, w.Code)

	var body handlers.StateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, contracts.RegimeOut, body.State.Regime)
	assert.Equal(t, 0, body.InMarket)
	assert.Equal(t, 0.5, body.Weights["TMF"])
}

func TestGetDecisions(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	w := get(t, h, "/api/decisions?limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Decisions []contracts.Decision `json:"decisions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Decisions, 2)
	assert.Equal(t, 3, body.Decisions[0].After.DayCounter)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/decisions?limit=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/decisions?limit=0").Code)
}

func TestGetJobs(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	w := get(t, h, "/api/jobs")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_runs":3`)
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	w := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "inout_evaluations_total"))
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/state", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
