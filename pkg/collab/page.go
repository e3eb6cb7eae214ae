package collab

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/markusmobius/go-trafilatura"
	"github.com/rs/zerolog"
	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

const fetcherUserAgent = "GeoPulseBot/1.0 (+https://geopulse.dev/bot)"

// aiCrawlers are the assistant crawlers whose robots.txt access feeds the
// GEO optimization signals.
var aiCrawlers = []string{"GPTBot", "ClaudeBot", "PerplexityBot"}

// PageSnapshot is what the metric generators consume from a live page.
// Fetched is false when the page could not be retrieved; all other fields
// are then zero values and callers fall back to deterministic data.
type PageSnapshot struct {
	Fetched           bool `json:"fetched"`
	HTTPSEnabled      bool `json:"https_enabled"`
	HasTitle          bool `json:"has_title"`
	HasMetaDesc       bool `json:"has_meta_description"`
	HasViewport       bool `json:"has_viewport"`
	SingleH1          bool `json:"single_h1"`
	WordCount         int  `json:"word_count"`
	HasStructuredData bool `json:"has_structured_data"`
	HasFAQSchema      bool `json:"has_faq_schema"`
	HasSemanticHTML   bool `json:"has_semantic_html"`
	HasRobotsTxt      bool `json:"has_robots_txt"`
	AICrawlersAllowed bool `json:"ai_crawlers_allowed"`
	HasLLMsTxt        bool `json:"has_llms_txt"`
}

// PageFetcher retrieves one-page snapshots of the analysis target.
type PageFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewPageFetcher creates a page snapshot fetcher.
func NewPageFetcher(log zerolog.Logger) *PageFetcher {
	transport := &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	}
	return &PageFetcher{
		client:  &http.Client{Transport: transport, Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
		log:     log,
	}
}

// Snapshot fetches the page at pageURL and derives on-page signals from it.
// It never returns an error: when the page cannot be retrieved the snapshot
// comes back with Fetched == false.
func (f *PageFetcher) Snapshot(ctx context.Context, pageURL string) PageSnapshot {
	snap, err := f.snapshot(ctx, pageURL)
	if err != nil {
		f.log.Warn().Err(err).Str("url", pageURL).Msg("page snapshot failed, falling back to derived signals")
		return PageSnapshot{}
	}
	return snap
}

func (f *PageFetcher) snapshot(ctx context.Context, pageURL string) (PageSnapshot, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return PageSnapshot{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return PageSnapshot{}, err
	}
	req.Header.Set("User-Agent", fetcherUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return PageSnapshot{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return PageSnapshot{}, fmt.Errorf("status %d fetching %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return PageSnapshot{}, err
	}

	snap := PageSnapshot{
		Fetched:      true,
		HTTPSEnabled: resp.Request.URL.Scheme == "https",
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return PageSnapshot{}, err
	}

	snap.HasTitle = strings.TrimSpace(doc.Find("title").First().Text()) != ""
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		snap.HasMetaDesc = strings.TrimSpace(desc) != ""
	}
	if viewport, ok := doc.Find(`meta[name="viewport"]`).Attr("content"); ok {
		snap.HasViewport = strings.Contains(strings.ToLower(viewport), "width=device-width")
	}
	snap.SingleH1 = doc.Find("h1").Length() == 1

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		snap.HasStructuredData = true
		if strings.Contains(s.Text(), "FAQPage") {
			snap.HasFAQSchema = true
		}
	})
	snap.HasSemanticHTML = doc.Find("main, article, section, nav").Length() > 0

	// Main-content word count; a raw body-text count overstates boilerplate.
	if extracted, err := trafilatura.Extract(strings.NewReader(string(body)), trafilatura.Options{}); err == nil && extracted != nil {
		snap.WordCount = len(strings.Fields(extracted.ContentText))
	} else {
		snap.WordCount = len(strings.Fields(doc.Find("body").Text()))
	}

	origin := resp.Request.URL.Scheme + "://" + resp.Request.URL.Host
	snap.HasRobotsTxt, snap.AICrawlersAllowed = f.checkRobots(ctx, origin)
	snap.HasLLMsTxt = f.probe(ctx, origin+"/llms.txt")

	return snap, nil
}

// checkRobots fetches robots.txt and tests whether the AI assistant crawlers
// may fetch the site root. A missing or unparsable robots.txt counts as
// allow-all, matching crawler convention.
func (f *PageFetcher) checkRobots(ctx context.Context, origin string) (exists, aiAllowed bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return false, true
	}
	req.Header.Set("User-Agent", fetcherUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return false, true
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, true
	}

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		return true, true
	}
	for _, agent := range aiCrawlers {
		if !robots.TestAgent("/", agent) {
			return true, false
		}
	}
	return true, true
}

// probe reports whether a URL answers with a success status.
func (f *PageFetcher) probe(ctx context.Context, probeURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, probeURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", fetcherUserAgent)
	resp, err := f.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
