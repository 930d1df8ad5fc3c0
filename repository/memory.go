package repository

import (
	"context"
	"sync"

	"github.com/Innominate-Dev/Halal-Stock-Screener/models"
)

// MemoryStore is an in-memory verdict store with the same write-once
// semantics as the PostgreSQL repository. It backs the service when no
// database is configured and keeps tests hermetic.
type MemoryStore struct {
	mu       sync.RWMutex
	verdicts map[string]models.Verdict
}

// NewMemoryStore creates an empty in-memory verdict store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		verdicts: make(map[string]models.Verdict),
	}
}

// Init is a no-op for the in-memory store
func (s *MemoryStore) Init(ctx context.Context) error {
	return nil
}

// GetVerdict returns the stored verdict for a ticker, or nil when absent
func (s *MemoryStore) GetVerdict(ctx context.Context, ticker string) (*models.Verdict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	verdict, ok := s.verdicts[ticker]
	if !ok {
		return nil, nil
	}

	copied := verdict
	if verdict.Ratios != nil {
		ratios := *verdict.Ratios
		copied.Ratios = &ratios
	}
	return &copied, nil
}

// PutVerdict stores a verdict unless one already exists for the ticker
func (s *MemoryStore) PutVerdict(ctx context.Context, verdict *models.Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.verdicts[verdict.Ticker]; exists {
		return nil
	}

	s.verdicts[verdict.Ticker] = *verdict
	return nil
}

// ListVerdicts returns stored verdicts, optionally filtered by status
func (s *MemoryStore) ListVerdicts(ctx context.Context, status models.VerdictStatus, limit int) ([]models.Verdict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	verdicts := make([]models.Verdict, 0, len(s.verdicts))
	for _, verdict := range s.verdicts {
		if status != "" && verdict.Status != status {
			continue
		}
		verdicts = append(verdicts, verdict)
		if len(verdicts) >= limit {
			break
		}
	}

	return verdicts, nil
}

// Health always reports the in-memory store as available
func (s *MemoryStore) Health(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() {}

// Len returns the number of stored verdicts
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.verdicts)
}
