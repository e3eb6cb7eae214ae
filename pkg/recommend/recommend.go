// Package recommend turns metric bundles into a prioritized list of
// actionable findings. Rules are independent and fire in a fixed order; the
// list is never de-duplicated, so overlapping rules may each emit a finding.
package recommend

import (
	"fmt"
	"sort"

	"github.com/geopulse/geopulse/internal/models"
	"github.com/geopulse/geopulse/pkg/collab"
	"github.com/geopulse/geopulse/pkg/metrics"
)

const (
	categorySEO  = "seo"
	categoryGEO  = "geo"
	categoryBoth = "both"
)

// Generate runs every rule against the two bundles and returns the findings
// stable-sorted by priority.
func Generate(seo metrics.SEOBundle, geo models.GEOMetrics) []models.Recommendation {
	var recs []models.Recommendation

	recs = append(recs, seoRules(seo.Metrics)...)
	recs = append(recs, geoRules(geo)...)
	recs = append(recs, crossRules(seo.Metrics, geo)...)
	recs = append(recs, opportunityRules(seo.PageSpeed)...)

	sort.SliceStable(recs, func(i, j int) bool {
		return models.PriorityRank(recs[i].Priority) < models.PriorityRank(recs[j].Priority)
	})
	return recs
}

func seoRules(m models.SEOMetrics) []models.Recommendation {
	var recs []models.Recommendation

	if !m.Technical.HTTPSEnabled {
		recs = append(recs, models.Recommendation{
			Category:    categorySEO,
			Priority:    models.PriorityCritical,
			Title:       "Enable HTTPS",
			Description: "The site is served over plain HTTP. Install a TLS certificate and redirect all HTTP traffic to HTTPS.",
			Impact:      "Search engines penalize insecure sites and browsers warn visitors away",
			Effort:      "low",
			Timeline:    "1-2 days",
		})
	}
	if m.Technical.PageSpeed > 0 && m.Technical.PageSpeed < 70 {
		recs = append(recs, models.Recommendation{
			Category:    categorySEO,
			Priority:    models.PriorityHigh,
			Title:       "Improve page speed",
			Description: fmt.Sprintf("The mobile performance score is %d. Compress images, defer non-critical scripts and enable caching to bring it above 70.", m.Technical.PageSpeed),
			Impact:      "Faster pages rank higher and convert better",
			Effort:      "medium",
			Timeline:    "1-2 weeks",
		})
	}
	if !m.Technical.MobileFriendly {
		recs = append(recs, models.Recommendation{
			Category:    categorySEO,
			Priority:    models.PriorityHigh,
			Title:       "Make the site mobile-friendly",
			Description: "No viewport meta tag was found. Add one and verify the layout adapts to small screens.",
			Impact:      "Mobile-first indexing makes mobile usability a ranking factor",
			Effort:      "medium",
			Timeline:    "1-2 weeks",
		})
	}
	if !m.Content.TitleTag {
		recs = append(recs, models.Recommendation{
			Category:    categorySEO,
			Priority:    models.PriorityHigh,
			Title:       "Add a title tag",
			Description: "The page has no title tag. Write a unique, descriptive title of 50-60 characters.",
			Impact:      "The title is the strongest on-page relevance signal",
			Effort:      "low",
			Timeline:    "1 day",
		})
	}
	if !m.Content.MetaDescription {
		recs = append(recs, models.Recommendation{
			Category:    categorySEO,
			Priority:    models.PriorityHigh,
			Title:       "Add a meta description",
			Description: "The page has no meta description. Write a 150-160 character summary to control the search snippet.",
			Impact:      "A good snippet lifts click-through rate",
			Effort:      "low",
			Timeline:    "1 day",
		})
	}
	if !m.Content.HeadingsValid {
		recs = append(recs, models.Recommendation{
			Category:    categorySEO,
			Priority:    models.PriorityMedium,
			Title:       "Fix the heading structure",
			Description: "The page should carry exactly one H1 with H2/H3 sections below it.",
			Impact:      "A clean outline helps both crawlers and assistive technology",
			Effort:      "low",
			Timeline:    "1-3 days",
		})
	}
	if !m.Technical.XMLSitemap {
		recs = append(recs, models.Recommendation{
			Category:    categorySEO,
			Priority:    models.PriorityMedium,
			Title:       "Publish an XML sitemap",
			Description: "No sitemap.xml was detected. Generate one and submit it in Search Console.",
			Impact:      "Sitemaps speed up discovery of new and updated pages",
			Effort:      "low",
			Timeline:    "1 day",
		})
	}
	if !m.Technical.RobotsTxt {
		recs = append(recs, models.Recommendation{
			Category:    categorySEO,
			Priority:    models.PriorityMedium,
			Title:       "Add a robots.txt",
			Description: "No robots.txt was found. Publish one that references the sitemap and states crawl policy explicitly.",
			Impact:      "Removes crawler guesswork about what may be indexed",
			Effort:      "low",
			Timeline:    "1 day",
		})
	}
	if m.Authority.DomainAuthority > 0 && m.Authority.DomainAuthority < 30 {
		recs = append(recs, models.Recommendation{
			Category:    categorySEO,
			Priority:    models.PriorityMedium,
			Title:       "Build domain authority",
			Description: fmt.Sprintf("Domain authority is %d. Earn backlinks through guest posts, digital PR and industry directories.", m.Authority.DomainAuthority),
			Impact:      "Authority compounds across every page on the domain",
			Effort:      "high",
			Timeline:    "3-6 months",
		})
	}
	return recs
}

func geoRules(g models.GEOMetrics) []models.Recommendation {
	var recs []models.Recommendation

	if g.AIVisibility.Score < 60 {
		recs = append(recs, models.Recommendation{
			Category:    categoryGEO,
			Priority:    models.PriorityCritical,
			Title:       "Increase AI assistant visibility",
			Description: fmt.Sprintf("AI visibility score is %d. Publish authoritative, citable content and ensure AI crawlers can reach it.", g.AIVisibility.Score),
			Impact:      "Assistants cannot recommend a site they never cite",
			Effort:      "high",
			Timeline:    "2-3 months",
		})
	}
	if !g.Optimization.AICrawlerAccess {
		recs = append(recs, models.Recommendation{
			Category:    categoryGEO,
			Priority:    models.PriorityCritical,
			Title:       "Unblock AI crawlers",
			Description: "robots.txt blocks GPTBot, ClaudeBot or PerplexityBot. Allow them so assistants can index the site.",
			Impact:      "Blocked crawlers remove the site from AI answers entirely",
			Effort:      "low",
			Timeline:    "1 day",
		})
	}
	if !g.ContentStructure.FAQSchema {
		recs = append(recs, models.Recommendation{
			Category:    categoryGEO,
			Priority:    models.PriorityHigh,
			Title:       "Add FAQ schema",
			Description: "Mark up common questions with FAQPage structured data so assistants can quote direct answers.",
			Impact:      "Question-answer markup is the format AI answers prefer to cite",
			Effort:      "low",
			Timeline:    "2-3 days",
		})
	}
	if !g.InformationAccuracy.NAPConsistency {
		recs = append(recs, models.Recommendation{
			Category:    categoryGEO,
			Priority:    models.PriorityHigh,
			Title:       "Fix NAP consistency",
			Description: "Business name, address and phone differ across listings. Align them everywhere the business appears.",
			Impact:      "Conflicting identity data makes AI systems distrust local facts",
			Effort:      "medium",
			Timeline:    "1-2 weeks",
		})
	}
	if !g.Optimization.LLMsTxt {
		recs = append(recs, models.Recommendation{
			Category:    categoryGEO,
			Priority:    models.PriorityLow,
			Title:       "Publish an llms.txt",
			Description: "Add an llms.txt file describing the site's key content for language-model crawlers.",
			Impact:      "Gives AI crawlers a curated entry point to the site",
			Effort:      "low",
			Timeline:    "1 day",
		})
	}
	if g.Optimization.ContentFreshness < 50 {
		recs = append(recs, models.Recommendation{
			Category:    categoryGEO,
			Priority:    models.PriorityMedium,
			Title:       "Refresh stale content",
			Description: fmt.Sprintf("Content freshness score is %d. Update cornerstone pages and date-stamp revisions.", g.Optimization.ContentFreshness),
			Impact:      "Assistants favor recently maintained sources",
			Effort:      "medium",
			Timeline:    "ongoing",
		})
	}
	return recs
}

// crossRules cover findings that help both traditional and generative
// engines.
func crossRules(seo models.SEOMetrics, geo models.GEOMetrics) []models.Recommendation {
	var recs []models.Recommendation

	if seo.Content.WordCount > 0 && seo.Content.WordCount < 1000 {
		recs = append(recs, models.Recommendation{
			Category:    categoryBoth,
			Priority:    models.PriorityHigh,
			Title:       "Expand thin content",
			Description: fmt.Sprintf("The page carries about %d words. Aim for 1000+ words of substantive coverage of the topic.", seo.Content.WordCount),
			Impact:      "Depth drives both rankings and AI citations",
			Effort:      "medium",
			Timeline:    "2-4 weeks",
		})
	}
	if !geo.ContentStructure.StructuredData {
		recs = append(recs, models.Recommendation{
			Category:    categoryBoth,
			Priority:    models.PriorityHigh,
			Title:       "Add structured data",
			Description: "No JSON-LD markup was found. Add Organization, Article or Product schema as appropriate.",
			Impact:      "Structured data feeds rich results and AI answer extraction alike",
			Effort:      "medium",
			Timeline:    "1-2 weeks",
		})
	}
	if !geo.ContentStructure.SemanticHTML {
		recs = append(recs, models.Recommendation{
			Category:    categoryBoth,
			Priority:    models.PriorityHigh,
			Title:       "Use semantic HTML",
			Description: "Replace generic divs with main, article, section and nav elements.",
			Impact:      "Semantic structure makes content machine-readable for every consumer",
			Effort:      "medium",
			Timeline:    "1-2 weeks",
		})
	}
	return recs
}

// opportunityRules converts the top live page-speed opportunities, by
// estimated savings, into findings.
func opportunityRules(ps collab.PageSpeedResult) []models.Recommendation {
	if !ps.Live || len(ps.Opportunities) == 0 {
		return nil
	}

	opps := make([]collab.Opportunity, len(ps.Opportunities))
	copy(opps, ps.Opportunities)
	sort.SliceStable(opps, func(i, j int) bool { return opps[i].SavingsMs > opps[j].SavingsMs })
	if len(opps) > 3 {
		opps = opps[:3]
	}

	recs := make([]models.Recommendation, 0, len(opps))
	for _, o := range opps {
		priority := models.PriorityHigh
		if o.Impact == "high" {
			priority = models.PriorityCritical
		}
		recs = append(recs, models.Recommendation{
			Category:    categorySEO,
			Priority:    priority,
			Title:       o.Title,
			Description: o.Description,
			Impact:      fmt.Sprintf("Estimated savings of %dms on page load", int(o.SavingsMs)),
			Effort:      "medium",
			Timeline:    "1-2 weeks",
		})
	}
	return recs
}
