package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/flood-data-analytics/internal/adapter/http"
	"github.com/couchcryptid/flood-data-analytics/internal/analytics"
	"github.com/couchcryptid/flood-data-analytics/internal/domain"
	"github.com/couchcryptid/flood-data-analytics/internal/observability"
	"github.com/couchcryptid/flood-data-analytics/internal/store"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seed(site, variable string, values ...float64) []domain.Reading {
	out := make([]domain.Reading, len(values))
	for i, v := range values {
		out[i] = domain.Reading{
			ID:        fmt.Sprintf("%s-%s-%d", site, variable, i),
			SiteID:    site,
			Variable:  variable,
			Value:     &v,
			Timestamp: base.Add(time.Duration(i) * 15 * time.Minute),
		}
	}
	return out
}

func newTestServer(t *testing.T, readyErr error) *httpadapter.Server {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(base.Add(2 * time.Hour)))
	t.Cleanup(func() { domain.SetClock(nil) })

	s := store.NewMemoryStore(0)
	s.Append(seed("01646500", domain.VariableWaterLevel, 1, 2, 3, 4, 5, 6))
	s.Append(seed("01646500", domain.VariableDischarge, 10, 20, 30, 40, 50, 60))
	s.Append(seed("R-12", domain.VariableRainfall, 2, 2, 2, 2, 2, 2))
	s.Append(seed("SM-3", domain.VariableSoilMoisture, 30, 31))
	s.Append([]domain.Reading{{ID: "gap", SiteID: "G-1", Variable: domain.VariableWaterLevel, Timestamp: base}})

	svc := analytics.New(s, analytics.Config{Resolution: 15 * time.Minute, CacheSize: 10}, discardLogger(), observability.NewMetricsForTesting())
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, svc, 72*time.Hour, discardLogger())
}

func get(t *testing.T, srv http.Handler, target string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func TestHealthzReturns200(t *testing.T) {
	code, body := get(t, newTestServer(t, nil), "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	code, body := get(t, newTestServer(t, nil), "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	code, body := get(t, newTestServer(t, fmt.Errorf("not ready yet")), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestListSeries(t *testing.T) {
	code, body := get(t, newTestServer(t, nil), "/api/v1/series")
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 5, body["count"], 0)

	series, ok := body["series"].([]any)
	require.True(t, ok)
	first, ok := series[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"site_id": "01646500", "variable": "discharge"}, first["key"])
}

func TestSeriesSummary(t *testing.T) {
	code, body := get(t, newTestServer(t, nil), "/api/v1/series/01646500/stage/summary?window=all")
	require.Equal(t, http.StatusOK, code)

	summary, ok := body["summary"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 6, summary["count"], 0)
	assert.InDelta(t, 3.5, summary["mean"], 1e-12)
	assert.Equal(t, "m", body["unit"])
}

func TestSeriesSummary_Window(t *testing.T) {
	// Clock at base+2h; a 1h window keeps the readings at +60m and +75m.
	code, body := get(t, newTestServer(t, nil), "/api/v1/series/01646500/water_level/summary?window=1h")
	require.Equal(t, http.StatusOK, code)

	summary, ok := body["summary"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 2, summary["count"], 0)
}

func TestCorrelation(t *testing.T) {
	code, body := get(t, newTestServer(t, nil),
		"/api/v1/correlation?x=01646500:water_level&y=01646500:discharge&method=spearman&window=all")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "spearman", body["method"])
	assert.InDelta(t, 1, body["coefficient"], 1e-12)
	assert.InDelta(t, 6, body["n"], 0)
	assert.Equal(t, true, body["significant"])
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
	}{
		{"unknown variable", "/api/v1/series/01646500/temperature/summary", http.StatusBadRequest},
		{"bad window", "/api/v1/series/01646500/stage/summary?window=soon", http.StatusBadRequest},
		{"negative window", "/api/v1/series/01646500/stage/summary?window=-1h", http.StatusBadRequest},
		{"unknown series", "/api/v1/series/99999999/stage/summary", http.StatusNotFound},
		{"no values", "/api/v1/series/G-1/stage/summary?window=all", http.StatusNotFound},
		{"missing y", "/api/v1/correlation?x=01646500:stage", http.StatusBadRequest},
		{"malformed key", "/api/v1/correlation?x=01646500&y=R-12:rain", http.StatusBadRequest},
		{"bad method", "/api/v1/correlation?x=01646500:stage&y=R-12:rain&method=kendall", http.StatusBadRequest},
		{"unknown y", "/api/v1/correlation?x=01646500:stage&y=R-99:rain", http.StatusNotFound},
		{"constant series", "/api/v1/correlation?x=01646500:stage&y=R-12:rain&window=all", http.StatusUnprocessableEntity},
		{"too few pairs", "/api/v1/correlation?x=01646500:stage&y=SM-3:soil&window=all", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := get(t, newTestServer(t, nil), tt.target)
			assert.Equal(t, tt.status, code)
			assert.NotEmpty(t, body["error"])
		})
	}
}
