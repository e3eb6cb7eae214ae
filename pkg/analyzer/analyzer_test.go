package analyzer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geopulse/geopulse/internal/config"
	"github.com/geopulse/geopulse/internal/logging"
	"github.com/geopulse/geopulse/internal/models"
	"github.com/geopulse/geopulse/pkg/cache"
	"github.com/geopulse/geopulse/pkg/collab"
	"github.com/geopulse/geopulse/pkg/metrics"
	"github.com/geopulse/geopulse/pkg/scoring"
)

type stubSERP struct{ res collab.SERPResult }

func (s stubSERP) Lookup(context.Context, string) collab.SERPResult { return s.res }

type stubPageSpeed struct{ res collab.PageSpeedResult }

func (s stubPageSpeed) Audit(context.Context, string, string) collab.PageSpeedResult { return s.res }

type stubSnapshotter struct{ res collab.PageSnapshot }

func (s stubSnapshotter) Snapshot(context.Context, string) collab.PageSnapshot { return s.res }

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		SelfDomains:     []string{"geopulse.dev", "geotest.ai"},
		SelfTestMode:    true,
		GracePeriodDays: 180,
		SEOWeights:      config.SEOWeights{Technical: 0.4, Content: 0.35, Performance: 0.25},
		GEOWeights:      config.GEOWeights{Technical: 0.3, Readiness: 0.3, Visibility: 0.4},
		NewDomainGEO:    config.GEOWeights{Technical: 0.45, Readiness: 0.45, Visibility: 0.1},
	}
}

func newTestAnalyzer() *Analyzer {
	gen := metrics.NewGenerator(stubSERP{}, stubPageSpeed{}, stubSnapshotter{}, logging.Nop())
	calc := scoring.NewCalculator(testScoringConfig())
	c := cache.New[*models.CombinedAnalysis]()
	return New(gen, calc, c, logging.Nop())
}

func TestAnalyzeEndToEnd(t *testing.T) {
	a := newTestAnalyzer()

	analysis, err := a.Analyze(context.Background(), "example.com")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", analysis.URL)
	assert.Equal(t, "Example.com", analysis.Title)
	assert.NotEmpty(t, analysis.ID)
	assert.False(t, analysis.AnalyzedAt.IsZero())
	assert.Equal(t, scoring.Message("SEO", analysis.SEO.Score), analysis.SEOMessage)
	assert.Equal(t, scoring.Message("GEO", analysis.GEO.Score), analysis.GEOMessage)

	require.NotEmpty(t, analysis.Recommendations)
	for i := 1; i < len(analysis.Recommendations); i++ {
		assert.LessOrEqual(t,
			models.PriorityRank(analysis.Recommendations[i-1].Priority),
			models.PriorityRank(analysis.Recommendations[i].Priority))
	}
}

func TestAnalyzeAggregationLaw(t *testing.T) {
	a := newTestAnalyzer()

	for _, raw := range []string{"example.com", "some-site.org", "shop.example.de"} {
		analysis, err := a.Analyze(context.Background(), raw)
		require.NoError(t, err)
		if analysis.IsDemo {
			continue
		}
		want := roundMean2(analysis.SEO.Score, analysis.GEO.Score)
		assert.Equal(t, want, analysis.OverallScore, "url %s", raw)
	}
}

func TestAnalyzeNormalizesInputVariants(t *testing.T) {
	a := newTestAnalyzer()

	base, err := a.Analyze(context.Background(), "example.com")
	require.NoError(t, err)

	for _, raw := range []string{"https://example.com", "http://www.example.com", "https://www.example.com/path?q=1", "EXAMPLE.COM"} {
		analysis, err := a.Analyze(context.Background(), raw)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", analysis.URL, "input %s", raw)
		// Same domain within TTL hits the cache, so the result is identical.
		assert.Equal(t, base.ID, analysis.ID, "input %s", raw)
	}
}

func TestAnalyzeSelfDomainOverride(t *testing.T) {
	a := newTestAnalyzer()

	analysis, err := a.Analyze(context.Background(), "geotest.ai")
	require.NoError(t, err)

	assert.True(t, analysis.IsDemo)
	assert.Equal(t, 87, analysis.SEO.Score)
	assert.Equal(t, 92, analysis.GEO.Score)
	assert.Equal(t, 90, analysis.OverallScore)
	assert.Equal(t, "Good SEO performance", analysis.SEOMessage)
	assert.Equal(t, "Excellent GEO performance", analysis.GEOMessage)
	assert.NotEmpty(t, analysis.Explanation)
}

func TestAnalyzeInvalidURL(t *testing.T) {
	a := newTestAnalyzer()

	for _, raw := range []string{"", "   ", "not a url at all", "localhost"} {
		_, err := a.Analyze(context.Background(), raw)
		require.Error(t, err, "input %q", raw)
		assert.Contains(t, err.Error(), "failed to analyze")
		assert.Equal(t, ErrorKindValidation, Classify(err), "input %q", raw)
	}
}

func TestAnalyzeCachesByDomain(t *testing.T) {
	a := newTestAnalyzer()

	first, err := a.Analyze(context.Background(), "example.com")
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), "example.com")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.AnalyzedAt, second.AnalyzedAt)
}

func TestNormalizeDomain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"example.com", "example.com"},
		{"https://example.com", "example.com"},
		{"http://www.example.com/about", "example.com"},
		{"WWW.Example.COM", "example.com"},
		{"https://blog.example.co.uk/post", "example.co.uk"},
	}
	for _, tc := range cases {
		got, err := NormalizeDomain(tc.in)
		require.NoError(t, err, "input %s", tc.in)
		assert.Equal(t, tc.want, got, "input %s", tc.in)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{fmt.Errorf("invalid url %q: no domain", "x"), ErrorKindValidation},
		{errors.New("serper: rate limit exceeded"), ErrorKindRateLimit},
		{errors.New("pagespeed: unauthorized, check api key"), ErrorKindAuth},
		{errors.New("dial tcp: connection refused"), ErrorKindNetwork},
		{context.DeadlineExceeded, ErrorKindTimeout},
		{errors.New("something odd"), ErrorKindUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.err), "error %v", tc.err)
	}
}
