// Package metrics generates the SEO and GEO metric bundles for a domain.
// SEO generation combines live collaborator data where available; GEO
// generation is fully deterministic so repeated analyses of the same domain
// reproduce the same numbers.
package metrics

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/geopulse/geopulse/pkg/collab"
	"github.com/geopulse/geopulse/pkg/demorand"
)

// SERPLookup is the consumed slice of the SERP collaborator.
type SERPLookup interface {
	Lookup(ctx context.Context, domain string) collab.SERPResult
}

// PageSpeedAudit is the consumed slice of the page-speed collaborator.
type PageSpeedAudit interface {
	Audit(ctx context.Context, pageURL, strategy string) collab.PageSpeedResult
}

// PageSnapshotter is the consumed slice of the page-snapshot collaborator.
type PageSnapshotter interface {
	Snapshot(ctx context.Context, pageURL string) collab.PageSnapshot
}

// Generator produces metric bundles from the three collaborators.
type Generator struct {
	serp      SERPLookup
	pagespeed PageSpeedAudit
	pages     PageSnapshotter
	log       zerolog.Logger
}

// NewGenerator creates a metric generator.
func NewGenerator(serp SERPLookup, pagespeed PageSpeedAudit, pages PageSnapshotter, log zerolog.Logger) *Generator {
	return &Generator{
		serp:      serp,
		pagespeed: pagespeed,
		pages:     pages,
		log:       log,
	}
}

// demoInt draws a stable demo value for one named signal of a domain.
func demoInt(domain, tag string, min, max int) int {
	return demorand.Int(domain+":"+tag, min, max)
}

// demoBool draws a stable demo flag for one named signal of a domain.
func demoBool(domain, tag string, threshold int) bool {
	return demorand.Bool(domain+":"+tag, threshold)
}

// roundMean returns the rounded integer mean of the values.
func roundMean(values ...int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return int(math.Round(float64(sum) / float64(len(values))))
}

// clampScore bounds a score to [0,100].
func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
