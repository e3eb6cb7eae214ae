package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/geopulse/geopulse/internal/models"
	"github.com/geopulse/geopulse/pkg/demorand"
)

// Device strategies accepted by Audit.
const (
	StrategyMobile  = "mobile"
	StrategyDesktop = "desktop"
)

// PageSpeedResult is the contract the metric generators consume. Scores are
// integers in [0,100].
type PageSpeedResult struct {
	PerformanceScore   int              `json:"performance_score"`
	SEOScore           int              `json:"seo_score"`
	AccessibilityScore int              `json:"accessibility_score"`
	BestPracticesScore int              `json:"best_practices_score"`
	CoreWebVitals      models.WebVitals `json:"core_web_vitals"`
	Opportunities      []Opportunity    `json:"opportunities"`
	Diagnostics        []Diagnostic     `json:"diagnostics"`
	Live               bool             `json:"live"`
}

// Opportunity is one improvement suggested by the audit.
type Opportunity struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Impact      string  `json:"impact"` // high, medium, low
	SavingsMs   float64 `json:"savings_ms"`
}

// Diagnostic is one informational audit entry.
type Diagnostic struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PageSpeedClient queries a PageSpeed-Insights-style audit API.
type PageSpeedClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
	log      zerolog.Logger
}

// NewPageSpeedClient creates a page-speed audit client. An empty apiKey puts
// the client permanently in mock mode.
func NewPageSpeedClient(endpoint, apiKey string, log zerolog.Logger) *PageSpeedClient {
	transport := &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	}
	return &PageSpeedClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Transport: transport, Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(time.Second), 2),
		log:      log,
	}
}

// Audit returns page-speed metrics for a URL. It never returns an error:
// any failure yields a deterministic mock substitute instead.
func (c *PageSpeedClient) Audit(ctx context.Context, pageURL, strategy string) PageSpeedResult {
	if strategy != StrategyMobile && strategy != StrategyDesktop {
		strategy = StrategyMobile
	}
	if c.apiKey == "" {
		return mockPageSpeed(pageURL)
	}
	result, err := c.auditLive(ctx, pageURL, strategy)
	if err != nil {
		c.log.Warn().Err(err).Str("url", pageURL).Msg("pagespeed audit failed, using mock data")
		return mockPageSpeed(pageURL)
	}
	return result
}

func (c *PageSpeedClient) auditLive(ctx context.Context, pageURL, strategy string) (PageSpeedResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return PageSpeedResult{}, err
	}

	query := url.Values{}
	query.Set("url", pageURL)
	query.Set("strategy", strategy)
	query.Set("key", c.apiKey)
	for _, category := range []string{"performance", "seo", "accessibility", "best-practices"} {
		query.Add("category", category)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return PageSpeedResult{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return PageSpeedResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return PageSpeedResult{}, fmt.Errorf("pagespeed api status %d", resp.StatusCode)
	}

	var body struct {
		LighthouseResult struct {
			Categories map[string]struct {
				Score float64 `json:"score"`
			} `json:"categories"`
			Audits map[string]struct {
				Title        string  `json:"title"`
				Description  string  `json:"description"`
				NumericValue float64 `json:"numericValue"`
				Details      struct {
					Type             string  `json:"type"`
					OverallSavingsMs float64 `json:"overallSavingsMs"`
				} `json:"details"`
			} `json:"audits"`
		} `json:"lighthouseResult"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return PageSpeedResult{}, err
	}

	categoryScore := func(name string) int {
		return int(body.LighthouseResult.Categories[name].Score*100 + 0.5)
	}
	auditValue := func(name string) float64 {
		return body.LighthouseResult.Audits[name].NumericValue
	}

	result := PageSpeedResult{
		PerformanceScore:   categoryScore("performance"),
		SEOScore:           categoryScore("seo"),
		AccessibilityScore: categoryScore("accessibility"),
		BestPracticesScore: categoryScore("best-practices"),
		CoreWebVitals: models.WebVitals{
			LCP:  auditValue("largest-contentful-paint"),
			FID:  auditValue("max-potential-fid"),
			CLS:  auditValue("cumulative-layout-shift"),
			FCP:  auditValue("first-contentful-paint"),
			TTFB: auditValue("server-response-time"),
			TBT:  auditValue("total-blocking-time"),
		},
		Live: true,
	}

	for _, audit := range body.LighthouseResult.Audits {
		if audit.Details.Type != "opportunity" {
			continue
		}
		impact := "low"
		switch {
		case audit.Details.OverallSavingsMs >= 1000:
			impact = "high"
		case audit.Details.OverallSavingsMs >= 250:
			impact = "medium"
		}
		result.Opportunities = append(result.Opportunities, Opportunity{
			Title:       audit.Title,
			Description: audit.Description,
			Impact:      impact,
			SavingsMs:   audit.Details.OverallSavingsMs,
		})
	}
	return result, nil
}

// mockPageSpeed derives a plausible, stable audit from the URL alone.
func mockPageSpeed(pageURL string) PageSpeedResult {
	performance := demorand.Int(pageURL+":ps-perf", 45, 95)
	result := PageSpeedResult{
		PerformanceScore:   performance,
		SEOScore:           demorand.Int(pageURL+":ps-seo", 60, 98),
		AccessibilityScore: demorand.Int(pageURL+":ps-a11y", 55, 95),
		BestPracticesScore: demorand.Int(pageURL+":ps-bp", 60, 95),
		CoreWebVitals: models.WebVitals{
			LCP:  float64(demorand.Int(pageURL+":ps-lcp", 1200, 4800)),
			FID:  float64(demorand.Int(pageURL+":ps-fid", 10, 280)),
			CLS:  float64(demorand.Int(pageURL+":ps-cls", 1, 40)) / 100,
			FCP:  float64(demorand.Int(pageURL+":ps-fcp", 800, 3200)),
			TTFB: float64(demorand.Int(pageURL+":ps-ttfb", 120, 1400)),
			TBT:  float64(demorand.Int(pageURL+":ps-tbt", 50, 900)),
		},
	}
	// Slow mock pages get matching mock opportunities.
	if performance < 80 {
		result.Opportunities = append(result.Opportunities, Opportunity{
			Title:       "Eliminate render-blocking resources",
			Description: "Resources are blocking the first paint of your page. Consider delivering critical JS/CSS inline and deferring all non-critical styles.",
			Impact:      "high",
			SavingsMs:   float64(demorand.Int(pageURL+":ps-opp1", 400, 2200)),
		})
	}
	if performance < 70 {
		result.Opportunities = append(result.Opportunities, Opportunity{
			Title:       "Properly size images",
			Description: "Serve images that are appropriately-sized to save cellular data and improve load time.",
			Impact:      "medium",
			SavingsMs:   float64(demorand.Int(pageURL+":ps-opp2", 200, 900)),
		})
	}
	return result
}
