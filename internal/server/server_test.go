package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geopulse/geopulse/internal/config"
	"github.com/geopulse/geopulse/internal/logging"
	"github.com/geopulse/geopulse/internal/models"
	"github.com/geopulse/geopulse/internal/storage/memory"
	"github.com/geopulse/geopulse/pkg/analyzer"
	"github.com/geopulse/geopulse/pkg/cache"
	"github.com/geopulse/geopulse/pkg/collab"
	"github.com/geopulse/geopulse/pkg/metrics"
	"github.com/geopulse/geopulse/pkg/report"
	"github.com/geopulse/geopulse/pkg/reporter"
	"github.com/geopulse/geopulse/pkg/scoring"
)

type stubSERP struct{}

func (stubSERP) Lookup(context.Context, string) collab.SERPResult { return collab.SERPResult{} }

type stubPageSpeed struct{}

func (stubPageSpeed) Audit(context.Context, string, string) collab.PageSpeedResult {
	return collab.PageSpeedResult{}
}

type stubSnapshotter struct{}

func (stubSnapshotter) Snapshot(context.Context, string) collab.PageSnapshot {
	return collab.PageSnapshot{}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	log := logging.Nop()
	gen := metrics.NewGenerator(stubSERP{}, stubPageSpeed{}, stubSnapshotter{}, log)
	calc := scoring.NewCalculator(config.ScoringConfig{
		SelfDomains:     []string{"geotest.ai"},
		SelfTestMode:    true,
		GracePeriodDays: 180,
		SEOWeights:      config.SEOWeights{Technical: 0.4, Content: 0.35, Performance: 0.25},
		GEOWeights:      config.GEOWeights{Technical: 0.3, Readiness: 0.3, Visibility: 0.4},
		NewDomainGEO:    config.GEOWeights{Technical: 0.45, Readiness: 0.45, Visibility: 0.1},
	})
	a := analyzer.New(gen, calc, cache.New[*models.CombinedAnalysis](), log)

	store := memory.NewStore(1000)
	reports := report.NewService(store, config.ReportConfig{
		BaseURL:    "https://app.geopulse.dev/reports",
		ViewLogCap: 1000,
	}, log)

	rend, err := reporter.New()
	require.NoError(t, err)

	s := New(config.ServerConfig{
		Host:              "localhost",
		Port:              0,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		RequestsPerSecond: 1000,
		RateBurst:         1000,
	}, a, reports, rend, log)
	t.Cleanup(s.Close)
	return s
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.Handler(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnalyzeEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s.Handler(), http.MethodPost, "/api/v1/analyze", payload{"url": "example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	var analysis models.CombinedAnalysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analysis))
	assert.Equal(t, "https://example.com", analysis.URL)
	assert.Equal(t, "Example.com", analysis.Title)
	assert.NotEmpty(t, analysis.Recommendations)
}

func TestAnalyzeEndpointRejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s.Handler(), http.MethodPost, "/api/v1/analyze", payload{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s.Handler(), http.MethodPost, "/api/v1/analyze", payload{"url": "not a url at all"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type payload = map[string]any

type createResponse struct {
	Report   models.ShareableReport `json:"report"`
	ShareURL string                 `json:"share_url"`
}

func createReport(t *testing.T, s *Server, body payload) createResponse {
	t.Helper()
	w := doJSON(t, s.Handler(), http.MethodPost, "/api/v1/reports", body)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp createResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestReportLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	created := createReport(t, s, payload{"url": "example.com", "client_name": "Acme"})
	assert.NotEmpty(t, created.Report.ID)
	assert.Contains(t, created.ShareURL, created.Report.ID)

	// Fetch it back.
	w := doJSON(t, s.Handler(), http.MethodGet, "/api/v1/reports/"+created.Report.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Track two views from the same session.
	view := payload{"session_id": "s-1", "viewport_width": 500}
	for i := 0; i < 2; i++ {
		w = doJSON(t, s.Handler(), http.MethodPost, "/api/v1/reports/"+created.Report.ID+"/views", view)
		assert.Equal(t, http.StatusNoContent, w.Code)
	}

	w = doJSON(t, s.Handler(), http.MethodGet, "/api/v1/reports/"+created.Report.ID+"/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var insights report.Insights
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &insights))
	assert.Equal(t, 2, insights.Analytics.Views)
	assert.Len(t, insights.Analytics.UniqueVisitors, 1)
	assert.Equal(t, 2, insights.Analytics.Devices[models.DeviceMobile])

	// Delete and verify it is gone.
	w = doJSON(t, s.Handler(), http.MethodDelete, "/api/v1/reports/"+created.Report.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, s.Handler(), http.MethodGet, "/api/v1/reports/"+created.Report.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportPasswordGatingOverHTTP(t *testing.T) {
	s := newTestServer(t)

	created := createReport(t, s, payload{"url": "example.com", "password": "hunter2"})
	assert.False(t, created.Report.IsPublic)

	w := doJSON(t, s.Handler(), http.MethodGet, "/api/v1/reports/"+created.Report.ID, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, s.Handler(), http.MethodGet, "/api/v1/reports/"+created.Report.ID+"?password=hunter2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRenderReportPage(t *testing.T) {
	s := newTestServer(t)

	created := createReport(t, s, payload{"url": "example.com"})

	w := doJSON(t, s.Handler(), http.MethodGet, "/reports/"+created.Report.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Example.com")

	w = doJSON(t, s.Handler(), http.MethodGet, "/reports/"+created.Report.ID+"?format=markdown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# SEO & GEO Report")
}

func TestRateLimiting(t *testing.T) {
	log := logging.Nop()
	gen := metrics.NewGenerator(stubSERP{}, stubPageSpeed{}, stubSnapshotter{}, log)
	calc := scoring.NewCalculator(config.ScoringConfig{
		GracePeriodDays: 180,
		SEOWeights:      config.SEOWeights{Technical: 0.4, Content: 0.35, Performance: 0.25},
		GEOWeights:      config.GEOWeights{Technical: 0.3, Readiness: 0.3, Visibility: 0.4},
		NewDomainGEO:    config.GEOWeights{Technical: 0.45, Readiness: 0.45, Visibility: 0.1},
	})
	a := analyzer.New(gen, calc, cache.New[*models.CombinedAnalysis](), log)
	reports := report.NewService(memory.NewStore(1000), config.ReportConfig{BaseURL: "http://x", ViewLogCap: 1000}, log)
	rend, err := reporter.New()
	require.NoError(t, err)

	s := New(config.ServerConfig{RequestsPerSecond: 1, RateBurst: 2}, a, reports, rend, log)
	t.Cleanup(s.Close)

	limited := false
	for i := 0; i < 5; i++ {
		w := doJSON(t, s.Handler(), http.MethodGet, "/api/v1/reports", nil)
		if w.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	assert.True(t, limited)
}

func TestServerCloseStopsSweeper(t *testing.T) {
	s := newTestServer(t)

	s.Close()
	select {
	case <-s.limiter.stop:
	default:
		t.Fatal("sweeper stop channel should be closed")
	}

	// Close is idempotent.
	s.Close()
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.Handler(), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "geopulse_")
}
