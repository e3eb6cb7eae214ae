// Package redis implements the report store on a Redis instance. Reports are
// JSON blobs keyed by id; the view log is one list per report, trimmed to the
// configured cap.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geopulse/geopulse/internal/config"
	"github.com/geopulse/geopulse/internal/models"
)

const reportIndexKey = "reports:index"

func reportKey(id string) string { return "report:" + id }
func viewsKey(id string) string  { return "report:" + id + ":views" }

// Store is the Redis-backed report store.
type Store struct {
	client     *redis.Client
	viewLogCap int
}

// NewStore creates a Redis report store on an existing client.
func NewStore(client *redis.Client, viewLogCap int) *Store {
	if viewLogCap <= 0 {
		viewLogCap = 1000
	}
	return &Store{client: client, viewLogCap: viewLogCap}
}

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (s *Store) SaveReport(ctx context.Context, report *models.ShareableReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, reportKey(report.ID), data, 0)
	pipe.SAdd(ctx, reportIndexKey, report.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save report: %w", err)
	}
	return nil
}

func (s *Store) GetReport(ctx context.Context, id string) (*models.ShareableReport, error) {
	data, err := s.client.Get(ctx, reportKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get report: %w", err)
	}

	var report models.ShareableReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &report, nil
}

func (s *Store) ListReports(ctx context.Context) ([]*models.ShareableReport, error) {
	ids, err := s.client.SMembers(ctx, reportIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list reports: %w", err)
	}

	reports := make([]*models.ShareableReport, 0, len(ids))
	for _, id := range ids {
		report, err := s.GetReport(ctx, id)
		if errors.Is(err, models.ErrReportNotFound) {
			// Index entry without a record; drop it.
			s.client.SRem(ctx, reportIndexKey, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (s *Store) DeleteReport(ctx context.Context, id string) (bool, error) {
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, reportKey(id))
	pipe.Del(ctx, viewsKey(id))
	pipe.SRem(ctx, reportIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis delete report: %w", err)
	}
	return del.Val() > 0, nil
}

func (s *Store) AppendView(ctx context.Context, view models.ReportView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, viewsKey(view.ReportID), data)
	pipe.LTrim(ctx, viewsKey(view.ReportID), int64(-s.viewLogCap), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append view: %w", err)
	}
	return nil
}

func (s *Store) ListViews(ctx context.Context, reportID string) ([]models.ReportView, error) {
	raw, err := s.client.LRange(ctx, viewsKey(reportID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list views: %w", err)
	}

	views := make([]models.ReportView, 0, len(raw))
	for _, item := range raw {
		var view models.ReportView
		if err := json.Unmarshal([]byte(item), &view); err != nil {
			return nil, fmt.Errorf("unmarshal view: %w", err)
		}
		views = append(views, view)
	}
	return views, nil
}
