// Package memory implements the report store in process memory. It is the
// default backend and the one the test suite runs against.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/geopulse/geopulse/internal/models"
)

// Store keeps reports and the view log behind one mutex. Records are
// serialized on every access so callers never share object identity with
// the store, matching the durable backends.
type Store struct {
	mu         sync.Mutex
	reports    map[string][]byte
	views      []models.ReportView
	viewLogCap int
}

// NewStore creates a memory store. viewLogCap bounds the detailed view log;
// non-positive values fall back to 1000.
func NewStore(viewLogCap int) *Store {
	if viewLogCap <= 0 {
		viewLogCap = 1000
	}
	return &Store{
		reports:    make(map[string][]byte),
		viewLogCap: viewLogCap,
	}
}

func (s *Store) SaveReport(_ context.Context, report *models.ShareableReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = data
	return nil
}

func (s *Store) GetReport(_ context.Context, id string) (*models.ShareableReport, error) {
	s.mu.Lock()
	data, ok := s.reports[id]
	s.mu.Unlock()
	if !ok {
		return nil, models.ErrReportNotFound
	}
	var report models.ShareableReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *Store) ListReports(_ context.Context) ([]*models.ShareableReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reports := make([]*models.ShareableReport, 0, len(s.reports))
	for _, data := range s.reports {
		var report models.ShareableReport
		if err := json.Unmarshal(data, &report); err != nil {
			return nil, err
		}
		reports = append(reports, &report)
	}
	return reports, nil
}

func (s *Store) DeleteReport(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		return false, nil
	}
	delete(s.reports, id)

	kept := s.views[:0]
	for _, v := range s.views {
		if v.ReportID != id {
			kept = append(kept, v)
		}
	}
	s.views = kept
	return true, nil
}

func (s *Store) AppendView(_ context.Context, view models.ReportView) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = append(s.views, view)
	if overflow := len(s.views) - s.viewLogCap; overflow > 0 {
		s.views = append(s.views[:0:0], s.views[overflow:]...)
	}
	return nil
}

func (s *Store) ListViews(_ context.Context, reportID string) ([]models.ReportView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var views []models.ReportView
	for _, v := range s.views {
		if v.ReportID == reportID {
			views = append(views, v)
		}
	}
	return views, nil
}
