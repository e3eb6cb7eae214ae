package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geopulse/geopulse/internal/config"
)

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

func TestSelfDomainOverride(t *testing.T) {
	calc := NewCalculator(testScoringConfig())

	contexts := []Context{
		{},
		{DomainAgeDays: 5000, Technical: 1, Content: 1, Performance: 1, Readiness: 1, Visibility: 1},
		{DomainAgeDays: 10, Technical: 99, Content: 99, Performance: 99, Readiness: 99, Visibility: 99},
	}
	for i, ctx := range contexts {
		res := calc.Calculate("geotest.ai", ctx)

		assert.True(t, res.IsDemo, "context %d", i)
		assert.Equal(t, demoSEOScore, res.SEO, "context %d", i)
		assert.Equal(t, demoGEOScore, res.GEO, "context %d", i)
		assert.NotEmpty(t, res.Explanation, "context %d", i)
	}
}

func TestSelfDomainOverrideNormalizesInput(t *testing.T) {
	calc := NewCalculator(testScoringConfig())

	for _, domain := range []string{"GeoTest.AI", "https://geotest.ai", "www.geotest.ai", "https://www.geotest.ai/pricing"} {
		res := calc.Calculate(domain, Context{DomainAgeDays: 3000})
		assert.True(t, res.IsDemo, "domain %s", domain)
	}
}

func TestSelfDomainOverrideDisabled(t *testing.T) {
	cfg := testScoringConfig()
	cfg.SelfTestMode = false
	calc := NewCalculator(cfg)

	res := calc.Calculate("geotest.ai", Context{DomainAgeDays: 3000, Technical: 80, Content: 80, Performance: 80, Readiness: 80, Visibility: 80})

	assert.False(t, res.IsDemo)
	assert.Equal(t, 80, res.SEO)
	assert.Equal(t, 80, res.GEO)
}

func TestNewDomainReweighting(t *testing.T) {
	calc := NewCalculator(testScoringConfig())

	// High readiness, zero visibility: the new-domain weights discount the
	// missing visibility far less than the regular weights would.
	ctx := Context{
		DomainAgeDays: 30,
		Technical:     90,
		Content:       70,
		Performance:   80,
		Readiness:     90,
		Visibility:    0,
	}
	res := calc.Calculate("brand-new.io", ctx)

	require.True(t, res.IsNewDomain)
	// 90*0.45 + 90*0.45 + 0*0.1 = 81
	assert.Equal(t, 81, res.GEO)
	assert.NotEmpty(t, res.Explanation)

	old := ctx
	old.DomainAgeDays = 3000
	resOld := calc.Calculate("brand-new.io", old)

	require.False(t, resOld.IsNewDomain)
	// 90*0.3 + 90*0.3 + 0*0.4 = 54
	assert.Equal(t, 54, resOld.GEO)
	assert.Empty(t, resOld.Explanation)
}

func TestRegularWeightedPath(t *testing.T) {
	calc := NewCalculator(testScoringConfig())

	res := calc.Calculate("example.com", Context{
		DomainAgeDays: 3000,
		Technical:     80,
		Content:       60,
		Performance:   100,
		Readiness:     70,
		Visibility:    50,
	})

	assert.False(t, res.IsDemo)
	assert.False(t, res.IsNewDomain)
	// 80*0.4 + 60*0.35 + 100*0.25 = 78
	assert.Equal(t, 78, res.SEO)
	// 80*0.3 + 70*0.3 + 50*0.4 = 65
	assert.Equal(t, 65, res.GEO)
}

func TestScoresClamped(t *testing.T) {
	cfg := testScoringConfig()
	cfg.SEOWeights = config.SEOWeights{Technical: 2, Content: 2, Performance: 2}
	calc := NewCalculator(cfg)

	res := calc.Calculate("example.com", Context{DomainAgeDays: 3000, Technical: 100, Content: 100, Performance: 100})
	assert.Equal(t, 100, res.SEO)
}

func TestScoreMessageBands(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{95, "Excellent SEO performance"},
		{90, "Excellent SEO performance"},
		{85, "Good SEO performance"},
		{75, "Moderate SEO performance"},
		{65, "SEO needs improvement"},
		{30, "Poor SEO performance"},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("score_%d", tc.score), func(t *testing.T) {
			assert.Equal(t, tc.want, Message("SEO", tc.score))
		})
	}
}
