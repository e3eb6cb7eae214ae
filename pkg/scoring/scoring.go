// Package scoring aggregates weighted sub-scores into the final SEO and GEO
// figures, applying the self-domain and new-domain carve-outs.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/geopulse/geopulse/internal/config"
)

// Demo scores returned on the self-domain path. Fixed so demo and onboarding
// flows always show the same numbers.
const (
	demoSEOScore = 87
	demoGEOScore = 92
)

const demoExplanation = "Demonstration scores for the product's own domain. " +
	"A brand-new domain can score high on technical and AI readiness while " +
	"AI systems have not yet indexed it, so raw visibility would misrepresent " +
	"its real standing."

// Context carries the sub-scores and metadata one aggregation needs.
type Context struct {
	DomainAgeDays int

	// SEO sub-scores.
	Technical   int
	Content     int
	Performance int

	// GEO sub-scores. Technical is shared with the SEO side.
	Readiness  int
	Visibility int
}

// Result is one aggregated score pair with its selection metadata.
type Result struct {
	SEO         int
	GEO         int
	SEOMessage  string
	GEOMessage  string
	IsDemo      bool
	IsNewDomain bool
	Explanation string
}

// Calculator aggregates sub-scores using configured weight sets.
type Calculator struct {
	cfg config.ScoringConfig
}

// NewCalculator creates a calculator from the scoring configuration.
func NewCalculator(cfg config.ScoringConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

// Calculate aggregates the context into final scores. Carve-outs apply in a
// fixed order: the self-domain demo override wins over everything, then
// new-domain reweighting, then the regular weighted path.
func (c *Calculator) Calculate(domain string, ctx Context) Result {
	domain = normalizeDomain(domain)

	if c.cfg.SelfTestMode && c.isSelfDomain(domain) {
		return Result{
			SEO:         demoSEOScore,
			GEO:         demoGEOScore,
			SEOMessage:  Message("SEO", demoSEOScore),
			GEOMessage:  Message("GEO", demoGEOScore),
			IsDemo:      true,
			Explanation: demoExplanation,
		}
	}

	seo := weightedSEO(ctx, c.cfg.SEOWeights)

	geoWeights := c.cfg.GEOWeights
	newDomain := ctx.DomainAgeDays >= 0 && ctx.DomainAgeDays < c.cfg.GracePeriodDays
	explanation := ""
	if newDomain {
		geoWeights = c.cfg.NewDomainGEO
		explanation = fmt.Sprintf(
			"Domain is %d days old, under the %d-day grace period. GEO weighting favors technical and AI readiness over raw visibility, which is unreliable for domains AI systems have not indexed yet.",
			ctx.DomainAgeDays, c.cfg.GracePeriodDays)
	}
	geo := weightedGEO(ctx, geoWeights)

	return Result{
		SEO:         seo,
		GEO:         geo,
		SEOMessage:  Message("SEO", seo),
		GEOMessage:  Message("GEO", geo),
		IsNewDomain: newDomain,
		Explanation: explanation,
	}
}

func (c *Calculator) isSelfDomain(domain string) bool {
	for _, d := range c.cfg.SelfDomains {
		if strings.EqualFold(d, domain) {
			return true
		}
	}
	return false
}

func weightedSEO(ctx Context, w config.SEOWeights) int {
	sum := float64(ctx.Technical)*w.Technical +
		float64(ctx.Content)*w.Content +
		float64(ctx.Performance)*w.Performance
	return clampRound(sum)
}

func weightedGEO(ctx Context, w config.GEOWeights) int {
	sum := float64(ctx.Technical)*w.Technical +
		float64(ctx.Readiness)*w.Readiness +
		float64(ctx.Visibility)*w.Visibility
	return clampRound(sum)
}

func clampRound(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

// Message picks the threshold-band message for a score, with the category
// name interpolated. Calculate uses it for its own verdicts; callers that
// override scores re-derive messages from the figures they keep.
func Message(category string, score int) string {
	switch {
	case score >= 90:
		return fmt.Sprintf("Excellent %s performance", category)
	case score >= 80:
		return fmt.Sprintf("Good %s performance", category)
	case score >= 70:
		return fmt.Sprintf("Moderate %s performance", category)
	case score >= 60:
		return fmt.Sprintf("%s needs improvement", category)
	default:
		return fmt.Sprintf("Poor %s performance", category)
	}
}

func normalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "www.")
	if i := strings.IndexByte(domain, '/'); i >= 0 {
		domain = domain[:i]
	}
	return domain
}
