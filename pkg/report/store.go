package report

import (
	"context"

	"github.com/geopulse/geopulse/internal/models"
)

// Store persists reports and their detailed view log. Implementations treat
// every call as an explicit load or store; no in-memory object identity
// survives between operations.
type Store interface {
	// SaveReport inserts or fully overwrites a report record.
	SaveReport(ctx context.Context, report *models.ShareableReport) error

	// GetReport returns models.ErrReportNotFound for unknown ids.
	GetReport(ctx context.Context, id string) (*models.ShareableReport, error)

	// ListReports returns every stored report, expired ones included.
	ListReports(ctx context.Context) ([]*models.ShareableReport, error)

	// DeleteReport removes a report and reports whether it existed. The
	// report's view log entries are removed with it.
	DeleteReport(ctx context.Context, id string) (bool, error)

	// AppendView appends one view record, trimming the log to its cap by
	// dropping the oldest entries.
	AppendView(ctx context.Context, view models.ReportView) error

	// ListViews returns the logged views for one report, oldest first.
	ListViews(ctx context.Context, reportID string) ([]models.ReportView, error)
}
