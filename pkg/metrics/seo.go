package metrics

import (
	"context"
	"sync"

	"github.com/geopulse/geopulse/internal/models"
	"github.com/geopulse/geopulse/pkg/collab"
)

// SEOBundle carries the generated SEO metrics together with the raw
// collaborator results the downstream recommendation engine inspects.
type SEOBundle struct {
	Metrics   models.SEOMetrics
	SERP      collab.SERPResult
	PageSpeed collab.PageSpeedResult
	Snapshot  collab.PageSnapshot
}

// SEO generates the SEO metric bundle for a bare domain. The three external
// lookups run concurrently; each degrades on its own, so generation never
// fails.
func (g *Generator) SEO(ctx context.Context, domain string) SEOBundle {
	pageURL := "https://" + domain

	var (
		wg        sync.WaitGroup
		serp      collab.SERPResult
		pagespeed collab.PageSpeedResult
		snapshot  collab.PageSnapshot
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		serp = g.serp.Lookup(ctx, domain)
	}()
	go func() {
		defer wg.Done()
		pagespeed = g.pagespeed.Audit(ctx, pageURL, collab.StrategyMobile)
	}()
	go func() {
		defer wg.Done()
		snapshot = g.pages.Snapshot(ctx, pageURL)
	}()
	wg.Wait()

	technical := g.technical(domain, pagespeed, snapshot)
	content := g.content(domain, serp, snapshot)
	authority := g.authority(domain, serp)
	ux := g.userExperience(domain, pagespeed)

	return SEOBundle{
		Metrics: models.SEOMetrics{
			Score:          roundMean(technical.Score, content.Score, authority.Score, ux.Score),
			Technical:      technical,
			Content:        content,
			Authority:      authority,
			UserExperience: ux,
		},
		SERP:      serp,
		PageSpeed: pagespeed,
		Snapshot:  snapshot,
	}
}

// technical prefers live page-speed and snapshot signals, falling back to
// deterministic values per field.
func (g *Generator) technical(domain string, ps collab.PageSpeedResult, snap collab.PageSnapshot) models.TechnicalSEO {
	t := models.TechnicalSEO{
		PageSpeed:     ps.PerformanceScore,
		CoreWebVitals: ps.CoreWebVitals,
	}

	if ps.Live {
		t.Score = clampScore(ps.SEOScore)
	} else {
		t.Score = demoInt(domain, "seo-technical", 55, 95)
	}

	if snap.Fetched {
		t.HTTPSEnabled = snap.HTTPSEnabled
		t.MobileFriendly = snap.HasViewport
		t.RobotsTxt = snap.HasRobotsTxt
	} else {
		t.HTTPSEnabled = demoBool(domain, "seo-https", 10)
		t.MobileFriendly = demoBool(domain, "seo-mobile", 25)
		t.RobotsTxt = demoBool(domain, "seo-robots", 20)
	}
	t.XMLSitemap = demoBool(domain, "seo-sitemap", 30)

	return t
}

// content is deterministic with a small bonus when the domain owns an
// answer box.
func (g *Generator) content(domain string, serp collab.SERPResult, snap collab.PageSnapshot) models.ContentSEO {
	score := demoInt(domain, "seo-content", 50, 92)
	if serp.HasAnswerBox {
		score += 5
	}

	c := models.ContentSEO{
		Score:     clampScore(score),
		AnswerBox: serp.HasAnswerBox,
	}
	if snap.Fetched {
		c.TitleTag = snap.HasTitle
		c.MetaDescription = snap.HasMetaDesc
		c.HeadingsValid = snap.SingleH1
		c.WordCount = snap.WordCount
	} else {
		c.TitleTag = demoBool(domain, "seo-title", 15)
		c.MetaDescription = demoBool(domain, "seo-metadesc", 30)
		c.HeadingsValid = demoBool(domain, "seo-headings", 35)
		c.WordCount = demoInt(domain, "seo-wordcount", 250, 2600)
	}
	return c
}

// authority starts from a deterministic base and adds a bonus for a live
// SERP position. Rank 1 earns the largest bonus; the total is capped at 95.
func (g *Generator) authority(domain string, serp collab.SERPResult) models.AuthoritySEO {
	score := demoInt(domain, "seo-authority", 40, 85)
	if serp.Position != nil {
		pos := *serp.Position
		if pos < 1 {
			pos = 1
		}
		if pos <= 50 {
			bonus := (51 - pos) * 15 / 50
			score += bonus
		}
		if score > 95 {
			score = 95
		}
	}

	return models.AuthoritySEO{
		Score:           clampScore(score),
		DomainAuthority: demoInt(domain, "seo-da", 10, 90),
		Backlinks:       demoInt(domain, "seo-backlinks", 20, 48000),
		SERPPosition:    serp.Position,
	}
}

// userExperience prefers the live accessibility and best-practice audits.
func (g *Generator) userExperience(domain string, ps collab.PageSpeedResult) models.UserExperienceSEO {
	ux := models.UserExperienceSEO{
		Accessibility: ps.AccessibilityScore,
		BestPractices: ps.BestPracticesScore,
		BounceRisk:    demoInt(domain, "seo-bounce", 10, 70),
	}
	if ps.Live {
		ux.Score = clampScore(roundMean(ps.AccessibilityScore, ps.BestPracticesScore, ps.PerformanceScore))
	} else {
		ux.Score = demoInt(domain, "seo-ux", 55, 92)
	}
	return ux
}
