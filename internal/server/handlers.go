package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geopulse/geopulse/internal/models"
	"github.com/geopulse/geopulse/internal/telemetry"
	"github.com/geopulse/geopulse/pkg/analyzer"
	"github.com/geopulse/geopulse/pkg/report"
)

type analyzeRequest struct {
	URL string `json:"url" binding:"required"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	analysis, err := s.analyzer.Analyze(c.Request.Context(), req.URL)
	if err != nil {
		s.log.Warn().Err(err).Str("url", req.URL).Msg("analysis failed")
		c.JSON(statusForError(err), gin.H{
			"error": err.Error(),
			"kind":  analyzer.Classify(err),
		})
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func statusForError(err error) int {
	switch analyzer.Classify(err) {
	case analyzer.ErrorKindValidation:
		return http.StatusBadRequest
	case analyzer.ErrorKindRateLimit:
		return http.StatusTooManyRequests
	case analyzer.ErrorKindTimeout:
		return http.StatusGatewayTimeout
	case analyzer.ErrorKindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type createReportRequest struct {
	URL           string                `json:"url" binding:"required"`
	ClientName    string                `json:"client_name"`
	Password      string                `json:"password"`
	ExpiresInDays int                   `json:"expires_in_days"`
	Branding      *models.Branding      `json:"branding"`
	Settings      *models.ShareSettings `json:"settings"`
}

func (s *Server) handleCreateReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	analysis, err := s.analyzer.Analyze(c.Request.Context(), req.URL)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	rep, err := s.reports.Create(c.Request.Context(), analysis, report.CreateOptions{
		ClientName:    req.ClientName,
		Password:      req.Password,
		ExpiresInDays: req.ExpiresInDays,
		Branding:      req.Branding,
		Settings:      req.Settings,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("report creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create report"})
		return
	}
	telemetry.RecordReportCreated()

	c.JSON(http.StatusCreated, gin.H{
		"report":    rep,
		"share_url": s.reports.ShareURL(rep.ID),
	})
}

func (s *Server) handleListReports(c *gin.Context) {
	reports, err := s.reports.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (s *Server) handleGetReport(c *gin.Context) {
	id := c.Param("id")
	rep, err := s.reports.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report"})
		return
	}
	if rep == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	if !s.reports.ValidateAccess(c.Request.Context(), id, c.Query("password")) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "password required"})
		return
	}
	c.JSON(http.StatusOK, rep)
}

type trackViewRequest struct {
	SessionID     string `json:"session_id" binding:"required"`
	UserAgent     string `json:"user_agent"`
	Referrer      string `json:"referrer"`
	ViewportWidth int    `json:"viewport_width"`
	Downloaded    bool   `json:"downloaded"`
	Shared        bool   `json:"shared"`
	TimeSpent     int    `json:"time_spent_seconds"`
}

func (s *Server) handleTrackView(c *gin.Context) {
	var req trackViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	s.reports.TrackView(c.Request.Context(), c.Param("id"), report.ViewInput{
		SessionID:     req.SessionID,
		UserAgent:     req.UserAgent,
		Referrer:      req.Referrer,
		ViewportWidth: req.ViewportWidth,
		Downloaded:    req.Downloaded,
		Shared:        req.Shared,
		TimeSpent:     req.TimeSpent,
	})
	telemetry.RecordReportView(models.ClassifyDevice(req.ViewportWidth))

	c.Status(http.StatusNoContent)
}

func (s *Server) handleReportAnalytics(c *gin.Context) {
	insights, err := s.reports.Analytics(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusOK, insights)
}

func (s *Server) handleUpdateSettings(c *gin.Context) {
	var settings models.ShareSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings payload"})
		return
	}
	if err := s.reports.UpdateSettings(c.Request.Context(), c.Param("id"), settings); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeleteReport(c *gin.Context) {
	existed, err := s.reports.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete report"})
		return
	}
	if !existed {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleShareData(c *gin.Context) {
	id := c.Param("id")
	rep, err := s.reports.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report"})
		return
	}
	if rep == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"share_url": s.reports.ShareURL(id),
		"social":    s.reports.SocialShareData(rep),
	})
}

// handleRenderReport renders the shared report page. Password-gated reports
// require the password as a query parameter.
func (s *Server) handleRenderReport(c *gin.Context) {
	id := c.Param("id")
	rep, err := s.reports.Get(c.Request.Context(), id)
	if err != nil || rep == nil {
		c.String(http.StatusNotFound, "report not found")
		return
	}
	if !s.reports.ValidateAccess(c.Request.Context(), id, c.Query("password")) {
		c.String(http.StatusUnauthorized, "password required")
		return
	}

	switch c.DefaultQuery("format", "html") {
	case "html":
		page, err := s.reporter.RenderHTML(rep)
		if err != nil {
			c.String(http.StatusInternalServerError, "failed to render report")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	case "markdown":
		c.String(http.StatusOK, s.reporter.RenderMarkdown(&rep.Analysis))
	case "json":
		c.JSON(http.StatusOK, rep.Analysis)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format"})
	}
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
