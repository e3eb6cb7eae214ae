package models

import "time"

// CombinedAnalysis is the result of one SEO/GEO analysis run for one URL.
// Instances are immutable once returned by the analyzer; persisting one is
// an explicit, separate step via the report service.
type CombinedAnalysis struct {
	ID              string           `json:"id"`
	URL             string           `json:"url"`
	Title           string           `json:"title"`
	AnalyzedAt      time.Time        `json:"analyzed_at"`
	OverallScore    int              `json:"overall_score"`
	SEO             SEOMetrics       `json:"seo"`
	GEO             GEOMetrics       `json:"geo"`
	SEOMessage      string           `json:"seo_message"`
	GEOMessage      string           `json:"geo_message"`
	Recommendations []Recommendation `json:"recommendations"`
	Competitors     []Competitor     `json:"competitors"`
	IsDemo          bool             `json:"is_demo,omitempty"`
	IsNewDomain     bool             `json:"is_new_domain,omitempty"`
	Explanation     string           `json:"explanation,omitempty"`
}

// SEOMetrics groups traditional search-engine signals into four scored
// categories. Every score is an integer in [0,100]; Score is the rounded
// mean of the category scores.
type SEOMetrics struct {
	Score          int               `json:"score"`
	Technical      TechnicalSEO      `json:"technical"`
	Content        ContentSEO        `json:"content"`
	Authority      AuthoritySEO      `json:"authority"`
	UserExperience UserExperienceSEO `json:"user_experience"`
}

// TechnicalSEO covers crawlability and page delivery.
type TechnicalSEO struct {
	Score          int       `json:"score"`
	HTTPSEnabled   bool      `json:"https_enabled"`
	MobileFriendly bool      `json:"mobile_friendly"`
	PageSpeed      int       `json:"page_speed"`
	XMLSitemap     bool      `json:"xml_sitemap"`
	RobotsTxt      bool      `json:"robots_txt"`
	CoreWebVitals  WebVitals `json:"core_web_vitals"`
}

// WebVitals carries the standard field set returned by page-speed audits.
// LCP/FCP/TTFB are milliseconds, FID/TBT milliseconds, CLS unitless.
type WebVitals struct {
	LCP  float64 `json:"lcp"`
	FID  float64 `json:"fid"`
	CLS  float64 `json:"cls"`
	FCP  float64 `json:"fcp"`
	TTFB float64 `json:"ttfb"`
	TBT  float64 `json:"tbt"`
}

// ContentSEO covers on-page content quality.
type ContentSEO struct {
	Score           int  `json:"score"`
	TitleTag        bool `json:"title_tag"`
	MetaDescription bool `json:"meta_description"`
	HeadingsValid   bool `json:"headings_valid"`
	WordCount       int  `json:"word_count"`
	AnswerBox       bool `json:"answer_box"`
}

// AuthoritySEO covers off-page trust signals.
type AuthoritySEO struct {
	Score           int  `json:"score"`
	DomainAuthority int  `json:"domain_authority"`
	Backlinks       int  `json:"backlinks"`
	SERPPosition    *int `json:"serp_position,omitempty"`
}

// UserExperienceSEO covers interaction-quality signals.
type UserExperienceSEO struct {
	Score         int `json:"score"`
	Accessibility int `json:"accessibility"`
	BestPractices int `json:"best_practices"`
	BounceRisk    int `json:"bounce_risk"`
}

// GEOMetrics groups generative-engine visibility signals into five scored
// categories. Score is the rounded mean of the category scores.
type GEOMetrics struct {
	Score               int                 `json:"score"`
	AIVisibility        AIVisibility        `json:"ai_visibility"`
	InformationAccuracy InformationAccuracy `json:"information_accuracy"`
	ContentStructure    ContentStructure    `json:"content_structure"`
	CompetitivePosition CompetitivePosition `json:"competitive_position"`
	Optimization        Optimization        `json:"optimization"`
}

// AIVisibility reports per-assistant presence. The flags are deterministic
// threshold checks, not live assistant queries.
type AIVisibility struct {
	Score      int  `json:"score"`
	ChatGPT    bool `json:"chatgpt"`
	Claude     bool `json:"claude"`
	Perplexity bool `json:"perplexity"`
	Gemini     bool `json:"gemini"`
}

// InformationAccuracy estimates how consistently assistants describe the brand.
type InformationAccuracy struct {
	Score          int  `json:"score"`
	FactualErrors  int  `json:"factual_errors"`
	NAPConsistency bool `json:"nap_consistency"`
}

// ContentStructure reports machine-readability of the site's content.
type ContentStructure struct {
	Score          int  `json:"score"`
	FAQSchema      bool `json:"faq_schema"`
	StructuredData bool `json:"structured_data"`
	SemanticHTML   bool `json:"semantic_html"`
}

// CompetitivePosition places the domain against the SERP neighbourhood.
type CompetitivePosition struct {
	Score         int `json:"score"`
	ShareOfVoice  int `json:"share_of_voice"`
	CitationCount int `json:"citation_count"`
}

// Optimization covers readiness work the site has already done for AI crawlers.
type Optimization struct {
	Score            int  `json:"score"`
	AICrawlerAccess  bool `json:"ai_crawler_access"`
	LLMsTxt          bool `json:"llms_txt"`
	ContentFreshness int  `json:"content_freshness"`
}

// Competitor is a summary row for a domain that outranks the target.
type Competitor struct {
	Domain   string `json:"domain"`
	Position int    `json:"position"`
}

// Recommendation priorities, in sort order.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// Recommendation is one actionable finding produced by the rule engine.
type Recommendation struct {
	Category    string `json:"category"` // seo, geo or both
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Effort      string `json:"effort"`
	Timeline    string `json:"timeline"`
}

// PriorityRank maps a priority to its sort rank. Unrecognized priorities
// rank after all known ones.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}
