// Package postgres implements the report store on PostgreSQL. The report
// record is stored as a JSONB payload next to the columns queries filter on;
// the view log lives in its own table, trimmed to the configured cap.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geopulse/geopulse/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id         TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ,
	payload    JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS report_views (
	seq        BIGSERIAL PRIMARY KEY,
	report_id  TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	session_id TEXT NOT NULL,
	viewed_at  TIMESTAMPTZ NOT NULL,
	user_agent TEXT NOT NULL DEFAULT '',
	referrer   TEXT NOT NULL DEFAULT '',
	device     TEXT NOT NULL DEFAULT '',
	downloaded BOOLEAN NOT NULL DEFAULT FALSE,
	shared     BOOLEAN NOT NULL DEFAULT FALSE,
	time_spent INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS report_views_report_id_idx ON report_views (report_id);
`

// Store is the PostgreSQL-backed report store.
type Store struct {
	db         *pgxpool.Pool
	viewLogCap int
}

// NewStore creates a PostgreSQL report store on an existing pool.
func NewStore(db *pgxpool.Pool, viewLogCap int) *Store {
	if viewLogCap <= 0 {
		viewLogCap = 1000
	}
	return &Store{db: db, viewLogCap: viewLogCap}
}

// Connect opens a connection pool and verifies it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *Store) SaveReport(ctx context.Context, report *models.ShareableReport) error {
	query := `
		INSERT INTO reports (id, created_at, expires_at, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at,
		    payload    = EXCLUDED.payload
	`
	if _, err := s.db.Exec(ctx, query, report.ID, report.CreatedAt, report.ExpiresAt, report); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func (s *Store) GetReport(ctx context.Context, id string) (*models.ShareableReport, error) {
	report := &models.ShareableReport{}
	err := s.db.QueryRow(ctx, `SELECT payload FROM reports WHERE id = $1`, id).Scan(report)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

func (s *Store) ListReports(ctx context.Context) ([]*models.ShareableReport, error) {
	rows, err := s.db.Query(ctx, `SELECT payload FROM reports ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.ShareableReport
	for rows.Next() {
		report := &models.ShareableReport{}
		if err := rows.Scan(report); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func (s *Store) DeleteReport(ctx context.Context, id string) (bool, error) {
	// report_views rows go with the report via ON DELETE CASCADE.
	tag, err := s.db.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete report: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) AppendView(ctx context.Context, view models.ReportView) error {
	insert := `
		INSERT INTO report_views (report_id, session_id, viewed_at, user_agent, referrer, device, downloaded, shared, time_spent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := s.db.Exec(ctx, insert,
		view.ReportID, view.SessionID, view.ViewedAt, view.UserAgent,
		view.Referrer, view.Device, view.Downloaded, view.Shared, view.TimeSpent,
	); err != nil {
		return fmt.Errorf("failed to append view: %w", err)
	}

	trim := `
		DELETE FROM report_views
		WHERE report_id = $1 AND seq NOT IN (
			SELECT seq FROM report_views WHERE report_id = $1 ORDER BY seq DESC LIMIT $2
		)
	`
	if _, err := s.db.Exec(ctx, trim, view.ReportID, s.viewLogCap); err != nil {
		return fmt.Errorf("failed to trim view log: %w", err)
	}
	return nil
}

func (s *Store) ListViews(ctx context.Context, reportID string) ([]models.ReportView, error) {
	query := `
		SELECT report_id, session_id, viewed_at, user_agent, referrer, device, downloaded, shared, time_spent
		FROM report_views
		WHERE report_id = $1
		ORDER BY seq ASC
	`
	rows, err := s.db.Query(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}
	defer rows.Close()

	var views []models.ReportView
	for rows.Next() {
		var v models.ReportView
		if err := rows.Scan(&v.ReportID, &v.SessionID, &v.ViewedAt, &v.UserAgent,
			&v.Referrer, &v.Device, &v.Downloaded, &v.Shared, &v.TimeSpent); err != nil {
			return nil, fmt.Errorf("failed to scan view: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}
	return views, nil
}
