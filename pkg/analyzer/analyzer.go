// Package analyzer orchestrates one full website analysis: domain
// resolution, metric generation, aggregation, recommendations and caching.
package analyzer

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"

	"github.com/geopulse/geopulse/internal/models"
	"github.com/geopulse/geopulse/internal/telemetry"
	"github.com/geopulse/geopulse/pkg/cache"
	"github.com/geopulse/geopulse/pkg/demorand"
	"github.com/geopulse/geopulse/pkg/metrics"
	"github.com/geopulse/geopulse/pkg/recommend"
	"github.com/geopulse/geopulse/pkg/scoring"
)

// Analyzer is the single entry point for website analyses. Results are
// memoized per domain in a TTL cache.
type Analyzer struct {
	gen   *metrics.Generator
	calc  *scoring.Calculator
	cache *cache.Cache[*models.CombinedAnalysis]
	log   zerolog.Logger
	now   func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClock replaces the analyzer clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// New creates an analyzer.
func New(gen *metrics.Generator, calc *scoring.Calculator, c *cache.Cache[*models.CombinedAnalysis], log zerolog.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		gen:   gen,
		calc:  calc,
		cache: c,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs one full analysis for a raw URL. Repeated calls for the same
// domain within the cache TTL return the memoized result.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (*models.CombinedAnalysis, error) {
	start := a.now()

	domain, err := NormalizeDomain(rawURL)
	if err != nil {
		telemetry.AnalysesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to analyze %s: %w", rawURL, err)
	}

	source := "fresh"
	if a.cache.Has(domain) {
		source = "cache"
		telemetry.RecordCacheHit()
	} else {
		telemetry.RecordCacheMiss()
	}

	analysis, err := a.cache.GetOrFetch(ctx, domain, func(ctx context.Context) (*models.CombinedAnalysis, error) {
		return a.run(ctx, domain)
	})
	if err != nil {
		telemetry.AnalysesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to analyze %s: %w", rawURL, err)
	}

	telemetry.AnalysisDuration.WithLabelValues(source).Observe(a.now().Sub(start).Seconds())
	return analysis, nil
}

// run performs one uncached analysis.
func (a *Analyzer) run(ctx context.Context, domain string) (*models.CombinedAnalysis, error) {
	seoBundle := a.gen.SEO(ctx, domain)
	geo := a.gen.GEO(domain, seoBundle.Snapshot)
	seo := seoBundle.Metrics

	result := a.calc.Calculate(domain, scoring.Context{
		DomainAgeDays: domainAgeDays(domain),
		Technical:     seo.Technical.Score,
		Content:       seo.Content.Score,
		Performance:   seo.UserExperience.Score,
		Readiness:     geo.Optimization.Score,
		Visibility:    geo.AIVisibility.Score,
	})

	// Carve-out paths override the generated category means with the
	// calculator's figures; the regular path keeps the generator scores and
	// the aggregation law overall = round((seo+geo)/2) holds throughout.
	path := "regular"
	switch {
	case result.IsDemo:
		path = "demo"
		seo.Score = result.SEO
		geo.Score = result.GEO
	case result.IsNewDomain:
		path = "new_domain"
		geo.Score = result.GEO
	}
	telemetry.AnalysesTotal.WithLabelValues(path).Inc()

	analysis := &models.CombinedAnalysis{
		ID:           uuid.NewString(),
		URL:          "https://" + domain,
		Title:        domainTitle(domain),
		AnalyzedAt:   a.now(),
		OverallScore: roundMean2(seo.Score, geo.Score),
		SEO:          seo,
		GEO:          geo,
		// Band messages describe the scores the analysis carries, so they
		// are derived after the carve-out overrides above.
		SEOMessage:      scoring.Message("SEO", seo.Score),
		GEOMessage:      scoring.Message("GEO", geo.Score),
		Recommendations: recommend.Generate(seoBundle, geo),
		Competitors:     competitors(seoBundle),
		IsDemo:          result.IsDemo,
		IsNewDomain:     result.IsNewDomain,
		Explanation:     result.Explanation,
	}

	a.log.Info().
		Str("domain", domain).
		Int("overall", analysis.OverallScore).
		Int("seo", seo.Score).
		Int("geo", geo.Score).
		Str("path", path).
		Msg("analysis complete")

	return analysis, nil
}

// NormalizeDomain reduces a raw URL to its bare registrable domain: scheme
// and www stripped, lowercased, eTLD+1 where the public-suffix list knows
// the host.
func NormalizeDomain(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("invalid url: empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" || !strings.Contains(host, ".") {
		return "", fmt.Errorf("invalid url %q: no domain", rawURL)
	}

	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		host = etld
	}
	return host, nil
}

// domainTitle capitalizes the bare domain, "example.com" → "Example.com".
func domainTitle(domain string) string {
	if domain == "" {
		return ""
	}
	return strings.ToUpper(domain[:1]) + domain[1:]
}

// domainAgeDays fabricates a stable domain age. There is no WHOIS
// collaborator; age only feeds the new-domain carve-out and must be
// repeatable per domain.
func domainAgeDays(domain string) int {
	return demorand.Int(domain+":domain-age", 20, 4000)
}

func competitors(bundle metrics.SEOBundle) []models.Competitor {
	if len(bundle.SERP.TopCompetitors) == 0 {
		return nil
	}
	list := make([]models.Competitor, 0, len(bundle.SERP.TopCompetitors))
	for i, domain := range bundle.SERP.TopCompetitors {
		list = append(list, models.Competitor{Domain: domain, Position: i + 1})
	}
	return list
}

func roundMean2(a, b int) int {
	sum := a + b
	half := sum / 2
	if sum%2 != 0 {
		half++
	}
	return half
}
