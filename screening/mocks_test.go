package screening

import (
	"context"
	"sync"

	"github.com/Innominate-Dev/Halal-Stock-Screener/models"
)

// mockMarketData is a configurable stub for the market data collaborator.
// Call counts let tests assert short-circuit behavior.
type mockMarketData struct {
	mu sync.Mutex

	profiles  map[string]*models.CompanyProfile
	snapshots map[string]*models.FinancialSnapshot

	profileErr   map[string]error
	snapshotErr  map[string]error
	profileCalls int
	financeCalls int
}

func newMockMarketData() *mockMarketData {
	return &mockMarketData{
		profiles:    make(map[string]*models.CompanyProfile),
		snapshots:   make(map[string]*models.FinancialSnapshot),
		profileErr:  make(map[string]error),
		snapshotErr: make(map[string]error),
	}
}

func (m *mockMarketData) GetCompanyProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profileCalls++
	if err := m.profileErr[ticker]; err != nil {
		return nil, err
	}
	return m.profiles[ticker], nil
}

func (m *mockMarketData) GetFinancialSnapshot(ctx context.Context, ticker string) (*models.FinancialSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.financeCalls++
	if err := m.snapshotErr[ticker]; err != nil {
		return nil, err
	}
	return m.snapshots[ticker], nil
}

// mockNews returns canned articles or an error
type mockNews struct {
	mu       sync.Mutex
	articles []models.NewsArticle
	err      error
	calls    int
}

func (m *mockNews) GetNews(ctx context.Context, query string, limit int) ([]models.NewsArticle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.articles, nil
}

// mockClassifier returns a canned label or an error
type mockClassifier struct {
	mu       sync.Mutex
	label    models.TextualLabel
	err      error
	calls    int
	lastText string
}

func (m *mockClassifier) Classify(ctx context.Context, text string) (models.TextualLabel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastText = text
	if m.err != nil {
		return "", m.err
	}
	return m.label, nil
}

// mockTextual is a TextualEvaluator stub with a call counter
type mockTextual struct {
	mu     sync.Mutex
	label  models.TextualLabel
	reason string
	err    error
	calls  int
}

func (m *mockTextual) Evaluate(ctx context.Context, profile *models.CompanyProfile) (models.TextualLabel, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", "", m.err
	}
	return m.label, m.reason, nil
}

// mockStore is an in-test verdict store with write-once semantics and call
// counters
type mockStore struct {
	mu       sync.Mutex
	verdicts map[string]*models.Verdict
	getErr   error
	putErr   error
	gets     int
	puts     int
}

func newMockStore() *mockStore {
	return &mockStore{verdicts: make(map[string]*models.Verdict)}
}

func (m *mockStore) GetVerdict(ctx context.Context, ticker string) (*models.Verdict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.verdicts[ticker], nil
}

func (m *mockStore) PutVerdict(ctx context.Context, verdict *models.Verdict) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	if _, exists := m.verdicts[verdict.Ticker]; !exists {
		m.verdicts[verdict.Ticker] = verdict
	}
	return nil
}
