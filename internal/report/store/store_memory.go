package store

import (
	"context"
	"sort"
	"sync"

	"olhopix/internal/report/models"
	id "olhopix/pkg/domain"
	"olhopix/pkg/platform/sentinel"
)

// InMemoryStore backs local development and unit tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	reports  []*models.Report
	evidence map[id.ReportID][]byte
}

func New() *InMemoryStore {
	return &InMemoryStore{
		evidence: make(map[id.ReportID][]byte),
	}
}

func (s *InMemoryStore) Insert(_ context.Context, report *models.Report, evidence []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := *report
	s.reports = append(s.reports, &r)

	blob := make([]byte, len(evidence))
	copy(blob, evidence)
	s.evidence[r.ID] = blob
	return nil
}

func (s *InMemoryStore) Search(_ context.Context, filter models.SearchFilter) ([]*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Report
	for _, report := range s.reports {
		if filter.Matches(report) {
			r := *report
			matched = append(matched, &r)
		}
	}

	// Newest first; the stable sort keeps insertion order for created_at
	// ties so results are deterministic within one run.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (s *InMemoryStore) FindEvidence(_ context.Context, reportID id.ReportID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.evidence[reportID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}
