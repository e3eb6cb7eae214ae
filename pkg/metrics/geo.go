package metrics

import (
	"github.com/geopulse/geopulse/internal/models"
	"github.com/geopulse/geopulse/pkg/collab"
)

// GEO generates the GEO metric bundle for a bare domain. Every sub-score is
// deterministic, so repeated runs against the same domain reproduce the same
// numbers. The one exception is the AI-crawler access flag, which uses the
// live robots.txt verdict when a page snapshot is available.
func (g *Generator) GEO(domain string, snap collab.PageSnapshot) models.GEOMetrics {
	visibility := g.aiVisibility(domain)
	accuracy := g.informationAccuracy(domain)
	structure := g.contentStructure(domain, snap)
	competitive := g.competitivePosition(domain)
	optimization := g.optimization(domain, snap)

	return models.GEOMetrics{
		Score: roundMean(visibility.Score, accuracy.Score, structure.Score,
			competitive.Score, optimization.Score),
		AIVisibility:        visibility,
		InformationAccuracy: accuracy,
		ContentStructure:    structure,
		CompetitivePosition: competitive,
		Optimization:        optimization,
	}
}

// aiVisibility fabricates per-assistant presence flags. The flags are
// threshold draws, not real assistant queries.
func (g *Generator) aiVisibility(domain string) models.AIVisibility {
	return models.AIVisibility{
		Score:      demoInt(domain, "geo-visibility", 30, 90),
		ChatGPT:    demoBool(domain, "geo-chatgpt", 60),
		Claude:     demoBool(domain, "geo-claude", 60),
		Perplexity: demoBool(domain, "geo-perplexity", 60),
		Gemini:     demoBool(domain, "geo-gemini", 60),
	}
}

func (g *Generator) informationAccuracy(domain string) models.InformationAccuracy {
	return models.InformationAccuracy{
		Score:          demoInt(domain, "geo-accuracy", 55, 95),
		FactualErrors:  demoInt(domain, "geo-factual-errors", 0, 5),
		NAPConsistency: demoBool(domain, "geo-nap", 40),
	}
}

// contentStructure prefers snapshot signals for the schema and markup flags.
func (g *Generator) contentStructure(domain string, snap collab.PageSnapshot) models.ContentStructure {
	cs := models.ContentStructure{
		Score: demoInt(domain, "geo-structure", 45, 92),
	}
	if snap.Fetched {
		cs.FAQSchema = snap.HasFAQSchema
		cs.StructuredData = snap.HasStructuredData
		cs.SemanticHTML = snap.HasSemanticHTML
	} else {
		cs.FAQSchema = demoBool(domain, "geo-faq", 60)
		cs.StructuredData = demoBool(domain, "geo-structured", 45)
		cs.SemanticHTML = demoBool(domain, "geo-semantic", 35)
	}
	return cs
}

func (g *Generator) competitivePosition(domain string) models.CompetitivePosition {
	return models.CompetitivePosition{
		Score:         demoInt(domain, "geo-competitive", 35, 88),
		ShareOfVoice:  demoInt(domain, "geo-sov", 2, 35),
		CitationCount: demoInt(domain, "geo-citations", 0, 120),
	}
}

// optimization reports AI-crawler readiness. The crawler-access and llms.txt
// flags come from the live snapshot when one was fetched.
func (g *Generator) optimization(domain string, snap collab.PageSnapshot) models.Optimization {
	o := models.Optimization{
		Score:            demoInt(domain, "geo-optimization", 40, 90),
		ContentFreshness: demoInt(domain, "geo-freshness", 30, 95),
	}
	if snap.Fetched {
		o.AICrawlerAccess = snap.AICrawlersAllowed
		o.LLMsTxt = snap.HasLLMsTxt
	} else {
		o.AICrawlerAccess = demoBool(domain, "geo-crawler-access", 25)
		o.LLMsTxt = demoBool(domain, "geo-llmstxt", 75)
	}
	return o
}
