// Package report manages the shareable-report lifecycle: creation, expiry,
// password gating, view analytics and share payload derivation.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/geopulse/geopulse/internal/config"
	"github.com/geopulse/geopulse/internal/models"
)

// CreateOptions customize one report at creation time. Zero values fall back
// to defaults: no expiry, public access, default branding and settings.
type CreateOptions struct {
	ClientName    string
	Password      string
	ExpiresInDays int
	Branding      *models.Branding
	Settings      *models.ShareSettings
}

// ViewInput is one inbound view event before classification.
type ViewInput struct {
	SessionID     string
	UserAgent     string
	Referrer      string
	ViewportWidth int
	Downloaded    bool
	Shared        bool
	TimeSpent     int
}

// Insights bundles the aggregated counters with the detailed view log.
type Insights struct {
	Analytics models.ReportAnalytics `json:"analytics"`
	Views     []models.ReportView    `json:"views"`
}

// Service implements the report lifecycle on top of a Store.
type Service struct {
	store   Store
	baseURL string
	now     func() time.Time
	log     zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the service clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a report service.
func NewService(store Store, cfg config.ReportConfig, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		now:     time.Now,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create wraps an analysis in a shareable report and persists it.
func (s *Service) Create(ctx context.Context, analysis *models.CombinedAnalysis, opts CreateOptions) (*models.ShareableReport, error) {
	if analysis == nil {
		return nil, fmt.Errorf("create report: analysis is required")
	}

	now := s.now()
	rep := &models.ShareableReport{
		ID:         uuid.NewString(),
		AnalysisID: analysis.ID,
		ClientName: opts.ClientName,
		WebsiteURL: analysis.URL,
		CreatedAt:  now,
		Password:   opts.Password,
		IsPublic:   opts.Password == "",
		Branding:   defaultBranding(opts.Branding),
		Settings:   defaultSettings(opts.Settings),
		Analytics: models.ReportAnalytics{
			UniqueVisitors: []string{},
			Referrers:      map[string]int{},
			Devices:        map[string]int{},
		},
		Analysis: *analysis,
	}
	if opts.ExpiresInDays > 0 {
		expires := now.AddDate(0, 0, opts.ExpiresInDays)
		rep.ExpiresAt = &expires
	}

	if err := s.store.SaveReport(ctx, rep); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	return rep, nil
}

// Get returns the report, or nil when it is absent or expired. Expiry is
// logical: the record stays in the store but is invisible to retrieval.
func (s *Service) Get(ctx context.Context, id string) (*models.ShareableReport, error) {
	rep, err := s.store.GetReport(ctx, id)
	if errors.Is(err, models.ErrReportNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}
	if rep.IsExpired(s.now()) {
		return nil, nil
	}
	return rep, nil
}

// TrackView records one view. Missing or expired reports and reports with
// analytics tracking disabled are a no-op. Storage failures are logged and
// swallowed; a view that cannot be recorded never blocks the viewer.
func (s *Service) TrackView(ctx context.Context, id string, in ViewInput) {
	rep, err := s.store.GetReport(ctx, id)
	if err != nil {
		if !errors.Is(err, models.ErrReportNotFound) {
			s.log.Warn().Err(err).Str("report_id", id).Msg("track view: load failed")
		}
		return
	}
	now := s.now()
	if rep.IsExpired(now) || !rep.Settings.TrackAnalytics {
		return
	}
	a := &rep.Analytics
	a.Views++
	if !contains(a.UniqueVisitors, in.SessionID) {
		a.UniqueVisitors = append(a.UniqueVisitors, in.SessionID)
	}
	a.LastViewed = &now
	if a.Referrers == nil {
		a.Referrers = map[string]int{}
	}
	if a.Devices == nil {
		a.Devices = map[string]int{}
	}
	a.Referrers[referrerBucket(in.Referrer)]++
	device := models.ClassifyDevice(in.ViewportWidth)
	a.Devices[device]++
	if in.Downloaded {
		a.Downloads++
	}
	if in.Shared {
		a.Shares++
	}

	if err := s.store.SaveReport(ctx, rep); err != nil {
		s.log.Warn().Err(err).Str("report_id", id).Msg("track view: save failed")
		return
	}

	view := models.ReportView{
		ReportID:   id,
		SessionID:  in.SessionID,
		ViewedAt:   now,
		UserAgent:  in.UserAgent,
		Referrer:   in.Referrer,
		Device:     device,
		Downloaded: in.Downloaded,
		Shared:     in.Shared,
		TimeSpent:  in.TimeSpent,
	}
	if err := s.store.AppendView(ctx, view); err != nil {
		s.log.Warn().Err(err).Str("report_id", id).Msg("track view: log append failed")
	}
}

// Delete removes the report and its view log. Returns whether it existed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	existed, err := s.store.DeleteReport(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete report %s: %w", id, err)
	}
	return existed, nil
}

// ShareURL derives the public URL for a report id.
func (s *Service) ShareURL(id string) string {
	return s.baseURL + "/" + id
}

// SocialShareData derives the share payload for a report. Pure; no side
// effects.
func (s *Service) SocialShareData(rep *models.ShareableReport) models.SocialShareData {
	title := fmt.Sprintf("SEO & GEO Analysis Report for %s", rep.WebsiteURL)
	if rep.ClientName != "" {
		title = fmt.Sprintf("SEO & GEO Analysis Report for %s", rep.ClientName)
	}
	return models.SocialShareData{
		Title: title,
		Description: fmt.Sprintf("Overall score %d/100. See how %s performs in search engines and AI assistants.",
			rep.Analysis.OverallScore, rep.WebsiteURL),
		URL:      s.ShareURL(rep.ID),
		Hashtags: []string{"SEO", "GEO", "AIVisibility"},
	}
}

// ValidateAccess reports whether the given password unlocks the report.
// Missing and expired reports are never accessible.
func (s *Service) ValidateAccess(ctx context.Context, id, password string) bool {
	rep, err := s.Get(ctx, id)
	if err != nil || rep == nil {
		return false
	}
	return rep.Password == "" || rep.Password == password
}

// UpdateSettings replaces the share settings of a report.
func (s *Service) UpdateSettings(ctx context.Context, id string, settings models.ShareSettings) error {
	rep, err := s.store.GetReport(ctx, id)
	if err != nil {
		return fmt.Errorf("update report %s settings: %w", id, err)
	}
	rep.Settings = settings
	if err := s.store.SaveReport(ctx, rep); err != nil {
		return fmt.Errorf("update report %s settings: %w", id, err)
	}
	return nil
}

// List returns every non-expired report.
func (s *Service) List(ctx context.Context) ([]*models.ShareableReport, error) {
	all, err := s.store.ListReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	now := s.now()
	active := make([]*models.ShareableReport, 0, len(all))
	for _, rep := range all {
		if !rep.IsExpired(now) {
			active = append(active, rep)
		}
	}
	return active, nil
}

// Analytics returns the aggregated counters and detailed view log for a
// report.
func (s *Service) Analytics(ctx context.Context, id string) (*Insights, error) {
	rep, err := s.store.GetReport(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("report %s analytics: %w", id, err)
	}
	views, err := s.store.ListViews(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("report %s analytics: %w", id, err)
	}
	return &Insights{Analytics: rep.Analytics, Views: views}, nil
}

func defaultBranding(b *models.Branding) models.Branding {
	if b != nil {
		return *b
	}
	return models.Branding{
		CompanyName:    "GeoPulse",
		PrimaryColor:   "#2563eb",
		SecondaryColor: "#0f172a",
	}
}

func defaultSettings(s *models.ShareSettings) models.ShareSettings {
	if s != nil {
		return *s
	}
	return models.ShareSettings{
		AllowDownload:  true,
		AllowSharing:   true,
		TrackAnalytics: true,
	}
}

func referrerBucket(referrer string) string {
	if referrer == "" {
		return "direct"
	}
	ref := strings.TrimPrefix(referrer, "https://")
	ref = strings.TrimPrefix(ref, "http://")
	ref = strings.TrimPrefix(ref, "www.")
	if i := strings.IndexByte(ref, '/'); i >= 0 {
		ref = ref[:i]
	}
	if ref == "" {
		return "direct"
	}
	return ref
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
