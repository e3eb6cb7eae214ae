package reporter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geopulse/geopulse/internal/models"
)

func sampleAnalysis() *models.CombinedAnalysis {
	return &models.CombinedAnalysis{
		ID:           "a-1",
		URL:          "https://example.com",
		Title:        "Example.com",
		AnalyzedAt:   time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		OverallScore: 72,
		SEOMessage:   "Moderate SEO performance",
		GEOMessage:   "Moderate GEO performance",
		SEO:          models.SEOMetrics{Score: 70},
		GEO: models.GEOMetrics{
			Score:        74,
			AIVisibility: models.AIVisibility{Score: 66, ChatGPT: true},
		},
		Recommendations: []models.Recommendation{
			{
				Category:    "seo",
				Priority:    models.PriorityCritical,
				Title:       "Enable HTTPS",
				Description: "Serve the site over TLS.",
				Impact:      "Ranking and trust",
				Effort:      "low",
				Timeline:    "1-2 days",
			},
		},
		Competitors: []models.Competitor{{Domain: "rival.com", Position: 1}},
	}
}

func TestRenderJSON(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	out, err := r.Render(sampleAnalysis(), "json")
	require.NoError(t, err)

	var decoded models.CombinedAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "https://example.com", decoded.URL)
	assert.Equal(t, 72, decoded.OverallScore)
}

func TestRenderHTML(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	rep := &models.ShareableReport{
		ClientName: "Acme",
		WebsiteURL: "https://example.com",
		Branding:   models.Branding{CompanyName: "Acme Digital", PrimaryColor: "#123456"},
		Analysis:   *sampleAnalysis(),
	}
	out, err := r.RenderHTML(rep)
	require.NoError(t, err)

	assert.Contains(t, out, "Example.com")
	assert.Contains(t, out, "Prepared for Acme")
	assert.Contains(t, out, "Acme Digital")
	assert.Contains(t, out, "Enable HTTPS")
	assert.Contains(t, out, "priority-critical")
	assert.Contains(t, out, "Moderate SEO performance")
	assert.Contains(t, out, "Moderate GEO performance")
}

func TestRenderMarkdown(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	out, err := r.Render(sampleAnalysis(), "markdown")
	require.NoError(t, err)

	assert.Contains(t, out, "# SEO & GEO Report for Example.com")
	assert.Contains(t, out, "**Overall Score:** 72/100")
	assert.Contains(t, out, "Moderate SEO performance. Moderate GEO performance.")
	assert.Contains(t, out, "- ChatGPT: cited")
	assert.Contains(t, out, "1. rival.com")
	assert.Contains(t, out, "### 1. Enable HTTPS")
}

func TestRenderUnsupportedFormat(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	_, err = r.Render(sampleAnalysis(), "pdf")
	assert.Error(t, err)
}
