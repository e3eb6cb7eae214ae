// Package collab holds adapters for the external data sources the metric
// generators consume: SERP lookups, page-speed audits and live page
// snapshots. Every adapter degrades to deterministic mock data on failure
// or missing credentials; none of them propagates errors to callers.
package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/geopulse/geopulse/pkg/demorand"
)

// SERPResult is the contract the metric generators consume.
type SERPResult struct {
	Position          *int     `json:"position"`
	HasAnswerBox      bool     `json:"has_answer_box"`
	HasKnowledgeGraph bool     `json:"has_knowledge_graph"`
	HasPeopleAlsoAsk  bool     `json:"has_people_also_ask"`
	TopCompetitors    []string `json:"top_competitors"`
	Live              bool     `json:"live"`
}

// competitorPool seeds the mock competitor selection.
var competitorPool = []string{
	"semrush.com", "ahrefs.com", "moz.com", "hubspot.com",
	"searchengineland.com", "backlinko.com", "neilpatel.com", "wordstream.com",
}

// SERPClient queries a serper.dev-style search API for a domain's organic
// position and SERP features.
type SERPClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
	log      zerolog.Logger
}

// NewSERPClient creates a SERP lookup client. An empty apiKey puts the
// client permanently in mock mode.
func NewSERPClient(endpoint, apiKey string, log zerolog.Logger) *SERPClient {
	transport := &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	}
	return &SERPClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Transport: transport, Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(time.Second), 5),
		log:      log,
	}
}

// Lookup returns SERP metrics for a bare domain. It never returns an error:
// any failure yields a deterministic mock substitute instead.
func (c *SERPClient) Lookup(ctx context.Context, domain string) SERPResult {
	if c.apiKey == "" {
		return mockSERP(domain)
	}
	result, err := c.lookupLive(ctx, domain)
	if err != nil {
		c.log.Warn().Err(err).Str("domain", domain).Msg("serp lookup failed, using mock data")
		return mockSERP(domain)
	}
	return result
}

func (c *SERPClient) lookupLive(ctx context.Context, domain string) (SERPResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return SERPResult{}, err
	}

	payload, err := json.Marshal(map[string]string{"q": domain})
	if err != nil {
		return SERPResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return SERPResult{}, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return SERPResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return SERPResult{}, fmt.Errorf("serp api status %d", resp.StatusCode)
	}

	var body struct {
		Organic []struct {
			Link     string `json:"link"`
			Position int    `json:"position"`
		} `json:"organic"`
		AnswerBox      json.RawMessage `json:"answerBox"`
		KnowledgeGraph json.RawMessage `json:"knowledgeGraph"`
		PeopleAlsoAsk  json.RawMessage `json:"peopleAlsoAsk"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return SERPResult{}, err
	}

	result := SERPResult{
		HasAnswerBox:      len(body.AnswerBox) > 0,
		HasKnowledgeGraph: len(body.KnowledgeGraph) > 0,
		HasPeopleAlsoAsk:  len(body.PeopleAlsoAsk) > 0,
		Live:              true,
	}
	for _, organic := range body.Organic {
		if strings.Contains(organic.Link, domain) {
			if result.Position == nil {
				pos := organic.Position
				result.Position = &pos
			}
			continue
		}
		if len(result.TopCompetitors) < 5 {
			if comp := bareHost(organic.Link); comp != "" {
				result.TopCompetitors = append(result.TopCompetitors, comp)
			}
		}
	}
	return result, nil
}

// mockSERP derives a plausible, stable SERP result from the domain alone.
func mockSERP(domain string) SERPResult {
	result := SERPResult{
		HasAnswerBox:      demorand.Bool(domain+":serp-answerbox", 60),
		HasKnowledgeGraph: demorand.Bool(domain+":serp-kg", 70),
		HasPeopleAlsoAsk:  demorand.Bool(domain+":serp-paa", 50),
		TopCompetitors:    demorand.Pick(domain+":serp-competitors", competitorPool, 3),
	}
	// Unindexed domains have no position at all.
	if demorand.Bool(domain+":serp-indexed", 30) {
		pos := demorand.Int(domain+":serp-position", 1, 50)
		result.Position = &pos
	}
	return result
}

// bareHost strips scheme, www and path from a URL-ish string.
func bareHost(raw string) string {
	host := raw
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	return strings.ToLower(strings.TrimPrefix(host, "www."))
}
