package observability

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLogLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, ParseLogLevel(""))
	assert.Equal(t, zerolog.WarnLevel, ParseLogLevel("WARN"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLogLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLogLevel("verbose"))
}

func TestNewLoggerTo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "split", zerolog.InfoLevel)

	logger.Debug().Msg("hidden")
	logger.Info().Str("address", "0x01").Msg("split submitted")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "split", entry["component"])
	assert.Equal(t, "0x01", entry["address"])
	assert.Equal(t, "split submitted", entry["message"])
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SplitSubmitted(true, decimal.NewFromInt(10), decimal.NewFromInt(1))
		m.SplitRejected("cooldown")
		m.HistoryFallback("ledger")
		m.Compounded(true, decimal.NewFromInt(1))
		m.AutoCompoundRun("no_yield")
		m.ObserveRPC("/seflow.v1.SeflowService/Rebalance", "OK", 0.01)
	})
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.SplitSubmitted(true, decimal.NewFromInt(200), decimal.NewFromInt(3))
	m.SplitSubmitted(false, decimal.NewFromInt(100), decimal.NewFromInt(1))
	m.SplitRejected("cooldown")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, `seflow_splits_submitted_total{locked="true"} 1`)
	assert.Contains(t, body, `seflow_splits_submitted_total{locked="false"} 1`)
	assert.Contains(t, body, "seflow_split_volume_flow_total 300")
	assert.Contains(t, body, "seflow_rewards_minted_froth_total 4")
	assert.Contains(t, body, `seflow_splits_rejected_total{reason="cooldown"} 1`)
}

func TestMetrics_YieldCounters(t *testing.T) {
	m := NewMetrics()

	m.Compounded(false, decimal.RequireFromString("0.5"))
	m.Compounded(true, decimal.RequireFromString("0.25"))
	m.AutoCompoundRun("compounded")
	m.AutoCompoundRun("no_yield")
	m.AutoCompoundRun("no_yield")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, `seflow_compounds_executed_total{trigger="manual"} 1`)
	assert.Contains(t, body, `seflow_compounds_executed_total{trigger="auto"} 1`)
	assert.Contains(t, body, "seflow_yield_compounded_flow_total 0.75")
	assert.Contains(t, body, `seflow_auto_compound_runs_total{result="no_yield"} 2`)
}

func TestHTTPMux(t *testing.T) {
	health := NewHealthChecker()
	mux := NewHTTPMux(health, NewMetrics())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	health.SetReady(true)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "seflow_split_volume_flow_total")
}
