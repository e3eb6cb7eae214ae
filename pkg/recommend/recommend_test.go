package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geopulse/geopulse/internal/models"
	"github.com/geopulse/geopulse/pkg/collab"
	"github.com/geopulse/geopulse/pkg/metrics"
)

// healthyBundle triggers no rules on its own.
func healthyBundle() (metrics.SEOBundle, models.GEOMetrics) {
	seo := metrics.SEOBundle{
		Metrics: models.SEOMetrics{
			Technical: models.TechnicalSEO{
				Score:          90,
				HTTPSEnabled:   true,
				MobileFriendly: true,
				PageSpeed:      92,
				XMLSitemap:     true,
				RobotsTxt:      true,
			},
			Content: models.ContentSEO{
				Score:           88,
				TitleTag:        true,
				MetaDescription: true,
				HeadingsValid:   true,
				WordCount:       2400,
			},
			Authority: models.AuthoritySEO{Score: 80, DomainAuthority: 62},
		},
	}
	geo := models.GEOMetrics{
		AIVisibility:        models.AIVisibility{Score: 85},
		InformationAccuracy: models.InformationAccuracy{Score: 90, NAPConsistency: true},
		ContentStructure: models.ContentStructure{
			Score:          85,
			FAQSchema:      true,
			StructuredData: true,
			SemanticHTML:   true,
		},
		Optimization: models.Optimization{
			Score:            80,
			AICrawlerAccess:  true,
			LLMsTxt:          true,
			ContentFreshness: 75,
		},
	}
	return seo, geo
}

func TestHealthySiteYieldsNoFindings(t *testing.T) {
	seo, geo := healthyBundle()
	assert.Empty(t, Generate(seo, geo))
}

func TestMissingHTTPSIsCritical(t *testing.T) {
	seo, geo := healthyBundle()
	seo.Metrics.Technical.HTTPSEnabled = false

	recs := Generate(seo, geo)

	require.Len(t, recs, 1)
	assert.Equal(t, models.PriorityCritical, recs[0].Priority)
	assert.Equal(t, "Enable HTTPS", recs[0].Title)
	assert.Equal(t, "seo", recs[0].Category)
}

func TestLowAIVisibilityIsCritical(t *testing.T) {
	seo, geo := healthyBundle()
	geo.AIVisibility.Score = 40

	recs := Generate(seo, geo)

	require.Len(t, recs, 1)
	assert.Equal(t, models.PriorityCritical, recs[0].Priority)
	assert.Contains(t, recs[0].Description, "40")
}

func TestThinContentIsCategoryBoth(t *testing.T) {
	seo, geo := healthyBundle()
	seo.Metrics.Content.WordCount = 300

	recs := Generate(seo, geo)

	require.Len(t, recs, 1)
	assert.Equal(t, "both", recs[0].Category)
	assert.Equal(t, models.PriorityHigh, recs[0].Priority)
	assert.Contains(t, recs[0].Description, "300")
}

func TestPrioritySortedOutput(t *testing.T) {
	seo, geo := healthyBundle()
	seo.Metrics.Technical.HTTPSEnabled = false     // critical
	seo.Metrics.Technical.PageSpeed = 55           // high
	seo.Metrics.Technical.XMLSitemap = false       // medium
	seo.Metrics.Content.HeadingsValid = false      // medium
	geo.Optimization.LLMsTxt = false               // low
	geo.Optimization.ContentFreshness = 40         // medium
	geo.AIVisibility.Score = 30                    // critical
	geo.InformationAccuracy.NAPConsistency = false // high

	recs := Generate(seo, geo)

	require.NotEmpty(t, recs)
	for i := 1; i < len(recs); i++ {
		assert.LessOrEqual(t,
			models.PriorityRank(recs[i-1].Priority),
			models.PriorityRank(recs[i].Priority),
			"pair %d/%d: %q then %q", i-1, i, recs[i-1].Priority, recs[i].Priority)
	}
	assert.Equal(t, models.PriorityCritical, recs[0].Priority)
	assert.Equal(t, models.PriorityLow, recs[len(recs)-1].Priority)
}

func TestNoDeduplication(t *testing.T) {
	seo, geo := healthyBundle()
	// Thin content and missing structured data both fire even though they
	// overlap conceptually with a low structure score.
	seo.Metrics.Content.WordCount = 200
	geo.ContentStructure.StructuredData = false
	geo.ContentStructure.SemanticHTML = false

	recs := Generate(seo, geo)
	assert.Len(t, recs, 3)
}

func TestLiveOpportunitiesConverted(t *testing.T) {
	seo, geo := healthyBundle()
	seo.PageSpeed = collab.PageSpeedResult{
		Live: true,
		Opportunities: []collab.Opportunity{
			{Title: "Reduce unused JavaScript", Impact: "medium", SavingsMs: 400},
			{Title: "Eliminate render-blocking resources", Impact: "high", SavingsMs: 1800},
			{Title: "Properly size images", Impact: "medium", SavingsMs: 600},
			{Title: "Preconnect to required origins", Impact: "low", SavingsMs: 90},
		},
	}

	recs := Generate(seo, geo)

	// Top 3 by savings; the 90ms one is dropped.
	require.Len(t, recs, 3)

	titles := make([]string, 0, len(recs))
	for _, r := range recs {
		titles = append(titles, r.Title)
	}
	assert.Contains(t, titles, "Eliminate render-blocking resources")
	assert.Contains(t, titles, "Properly size images")
	assert.Contains(t, titles, "Reduce unused JavaScript")
	assert.NotContains(t, titles, "Preconnect to required origins")

	// The high-impact opportunity becomes critical and therefore sorts first.
	assert.Equal(t, "Eliminate render-blocking resources", recs[0].Title)
	assert.Equal(t, models.PriorityCritical, recs[0].Priority)
}

func TestOpportunitiesIgnoredWhenNotLive(t *testing.T) {
	seo, geo := healthyBundle()
	seo.PageSpeed = collab.PageSpeedResult{
		Live:          false,
		Opportunities: []collab.Opportunity{{Title: "Mock finding", Impact: "high", SavingsMs: 1500}},
	}

	assert.Empty(t, Generate(seo, geo))
}
