package models

import (
	"errors"
	"time"
)

// Report-access errors. Missing, expired and password-gated reports are
// reported through nil/false returns at the service layer; these sentinels
// are used by the HTTP layer to pick a response status.
var (
	ErrReportNotFound = errors.New("report not found")
	ErrReportExpired  = errors.New("report expired")
)

// ShareableReport is a durable, shareable wrapper around one analysis.
// The analytics sub-record mutates on every tracked view; everything else
// changes only through explicit settings updates.
type ShareableReport struct {
	ID         string           `json:"id"`
	AnalysisID string           `json:"analysis_id"`
	ClientName string           `json:"client_name"`
	WebsiteURL string           `json:"website_url"`
	CreatedAt  time.Time        `json:"created_at"`
	ExpiresAt  *time.Time       `json:"expires_at,omitempty"`
	Password   string           `json:"password,omitempty"`
	IsPublic   bool             `json:"is_public"`
	Branding   Branding         `json:"branding"`
	Analytics  ReportAnalytics  `json:"analytics"`
	Settings   ShareSettings    `json:"settings"`
	Analysis   CombinedAnalysis `json:"analysis"`
}

// IsExpired reports whether the report has passed its expiry time.
// Reports without an expiry never expire.
func (r *ShareableReport) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// Branding customizes the rendered report.
type Branding struct {
	CompanyName    string `json:"company_name"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	LogoURL        string `json:"logo_url,omitempty"`
}

// ShareSettings are the per-report toggles applied at view time.
type ShareSettings struct {
	AllowDownload  bool `json:"allow_download"`
	AllowSharing   bool `json:"allow_sharing"`
	TrackAnalytics bool `json:"track_analytics"`
	RequireContact bool `json:"require_contact"`
}

// ReportAnalytics is the aggregated, mutable view counter block embedded in
// a report. UniqueVisitors holds session ids and behaves as a set.
type ReportAnalytics struct {
	Views          int            `json:"views"`
	UniqueVisitors []string       `json:"unique_visitors"`
	LastViewed     *time.Time     `json:"last_viewed,omitempty"`
	Referrers      map[string]int `json:"referrers"`
	Devices        map[string]int `json:"devices"`
	Downloads      int            `json:"downloads"`
	Shares         int            `json:"shares"`
}

// Device classes used in ReportAnalytics.Devices and ReportView.Device.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

// ClassifyDevice buckets a viewport width into a device class.
func ClassifyDevice(viewportWidth int) string {
	switch {
	case viewportWidth > 0 && viewportWidth < 768:
		return DeviceMobile
	case viewportWidth > 0 && viewportWidth < 1024:
		return DeviceTablet
	default:
		return DeviceDesktop
	}
}

// ReportView is one detailed per-view record appended to the capped view log.
type ReportView struct {
	ReportID   string    `json:"report_id"`
	SessionID  string    `json:"session_id"`
	ViewedAt   time.Time `json:"viewed_at"`
	UserAgent  string    `json:"user_agent"`
	Referrer   string    `json:"referrer"`
	Device     string    `json:"device"`
	Downloaded bool      `json:"downloaded"`
	Shared     bool      `json:"shared"`
	TimeSpent  int       `json:"time_spent_seconds"`
}

// SocialShareData is the pure payload derived for social share buttons.
type SocialShareData struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Hashtags    []string `json:"hashtags"`
}
