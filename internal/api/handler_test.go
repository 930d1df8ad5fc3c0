package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/Innominate-Dev/Halal-Stock-Screener/config"
	"github.com/Innominate-Dev/Halal-Stock-Screener/models"
	"github.com/Innominate-Dev/Halal-Stock-Screener/observability"
	"github.com/Innominate-Dev/Halal-Stock-Screener/repository"
	"github.com/Innominate-Dev/Halal-Stock-Screener/screening"
)

func TestMain(m *testing.M) {
	observability.SetMetrics(observability.NewMetrics(prometheus.NewRegistry()))
	observability.InitLoggerWithLevel(false, slog.LevelError)
	os.Exit(m.Run())
}

// stubMarketData serves canned profiles and snapshots. A non-zero delay is
// applied per call and honors context cancellation, for timeout tests.
type stubMarketData struct {
	profiles  map[string]*models.CompanyProfile
	snapshots map[string]*models.FinancialSnapshot
	fail      map[string]error
	delay     time.Duration
}

func newStubMarketData() *stubMarketData {
	return &stubMarketData{
		profiles:  make(map[string]*models.CompanyProfile),
		snapshots: make(map[string]*models.FinancialSnapshot),
		fail:      make(map[string]error),
	}
}

func (s *stubMarketData) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	select {
	case <-time.After(s.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *stubMarketData) GetCompanyProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if err := s.fail[ticker]; err != nil {
		return nil, err
	}
	if profile, ok := s.profiles[ticker]; ok {
		return profile, nil
	}
	return nil, errors.New("no profile data for ticker " + ticker)
}

func (s *stubMarketData) GetFinancialSnapshot(ctx context.Context, ticker string) (*models.FinancialSnapshot, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if err := s.fail[ticker]; err != nil {
		return nil, err
	}
	if snapshot, ok := s.snapshots[ticker]; ok {
		return snapshot, nil
	}
	return nil, errors.New("financial data missing for ticker " + ticker)
}

func (s *stubMarketData) add(ticker, sector string, marketCap int64) {
	s.profiles[ticker] = &models.CompanyProfile{
		Ticker:      ticker,
		CompanyName: ticker + " Corp",
		Sector:      sector,
		Industry:    "General",
		MarketCap:   marketCap,
	}
	s.snapshots[ticker] = &models.FinancialSnapshot{
		Ticker:                 ticker,
		TotalDebt:              decimal.NewFromInt(10),
		CashAndCashEquivalents: decimal.NewFromInt(5),
		ShortTermInvestments:   decimal.NewFromInt(5),
		InterestIncome:         decimal.NewFromInt(2),
		TotalRevenue:           decimal.NewFromInt(100),
	}
}

// stubTextual always returns a fixed label
type stubTextual struct {
	label  models.TextualLabel
	reason string
}

func (s *stubTextual) Evaluate(ctx context.Context, profile *models.CompanyProfile) (models.TextualLabel, string, error) {
	return s.label, s.reason, nil
}

type testFixture struct {
	marketData *stubMarketData
	store      *repository.MemoryStore
	router     http.Handler
}

func newTestFixture() *testFixture {
	return newTestFixtureWithConfig(config.NewTestConfig())
}

func newTestFixtureWithConfig(cfg *config.Config) *testFixture {
	marketData := newStubMarketData()
	store := repository.NewMemoryStore()
	textual := &stubTextual{label: models.LabelCompliant, reason: "no concerning signal found"}

	screener := screening.NewScreener(marketData, store, textual, &cfg.Screening)
	handler := NewHandler(screener, store, cfg)

	return &testFixture{
		marketData: marketData,
		store:      store,
		router:     NewRouter(handler, cfg),
	}
}

func (f *testFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHandleIndex(t *testing.T) {
	f := newTestFixture()

	w := f.do(t, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Halal Screener API") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	f := newTestFixture()

	w := f.do(t, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var health map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if health["status"] != "ok" {
		t.Errorf("expected ok status, got %v", health["status"])
	}
}

func TestHandleScreenTicker(t *testing.T) {
	f := newTestFixture()
	f.marketData.add("AAPL", "Technology", 1000)

	w := f.do(t, http.MethodGet, "/api/screen/AAPL", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var verdict models.Verdict
	if err := json.Unmarshal(w.Body.Bytes(), &verdict); err != nil {
		t.Fatalf("failed to decode verdict: %v", err)
	}
	if verdict.Ticker != "AAPL" {
		t.Errorf("expected ticker AAPL, got %s", verdict.Ticker)
	}
	if verdict.Status != models.VerdictCompliant {
		t.Errorf("expected compliant, got %s (%s)", verdict.Status, verdict.Reason)
	}
}

func TestHandleScreenTickerInvalidSymbol(t *testing.T) {
	f := newTestFixture()

	w := f.do(t, http.MethodGet, "/api/screen/not%20a%20ticker", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestHandleScreenTickerFetchFailureReturns200(t *testing.T) {
	f := newTestFixture()
	f.marketData.fail["GONE"] = errors.New("provider outage")

	w := f.do(t, http.MethodGet, "/api/screen/GONE", "")
	if w.Code != http.StatusOK {
		t.Fatalf("error verdicts are still verdicts, expected 200, got %d", w.Code)
	}

	var verdict models.Verdict
	if err := json.Unmarshal(w.Body.Bytes(), &verdict); err != nil {
		t.Fatalf("failed to decode verdict: %v", err)
	}
	if verdict.Status != models.VerdictError {
		t.Errorf("expected error status, got %s", verdict.Status)
	}
}

func TestHandleScreenBatch(t *testing.T) {
	f := newTestFixture()
	f.marketData.add("AAA", "Technology", 1000)
	f.marketData.add("CCC", "Gambling", 1000)

	w := f.do(t, http.MethodPost, "/api/screen/batch", `{"tickers": ["AAA", "BBB", "CCC"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Verdicts []models.Verdict `json:"verdicts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode batch response: %v", err)
	}
	if len(resp.Verdicts) != 3 {
		t.Fatalf("expected 3 verdicts, got %d", len(resp.Verdicts))
	}
	if resp.Verdicts[0].Status != models.VerdictCompliant {
		t.Errorf("AAA: expected compliant, got %s", resp.Verdicts[0].Status)
	}
	if resp.Verdicts[1].Status != models.VerdictError {
		t.Errorf("BBB: expected error, got %s", resp.Verdicts[1].Status)
	}
	if resp.Verdicts[2].Status != models.VerdictNonCompliant {
		t.Errorf("CCC: expected non-compliant, got %s", resp.Verdicts[2].Status)
	}
}

// A batch whose aggregate duration exceeds the per-ticker deadline must
// still screen every ticker: each one runs under its own timeout, not a
// shared request deadline.
func TestHandleScreenBatchSlowTickersKeepOwnDeadlines(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.Screening.TimeoutSeconds = 1
	cfg.Screening.BatchConcurrency = 1

	f := newTestFixtureWithConfig(cfg)
	// 300ms per call, two calls per ticker: each ticker needs ~600ms of its
	// own 1s budget, but three in series take ~1.8s overall.
	f.marketData.delay = 300 * time.Millisecond
	f.marketData.add("AAA", "Technology", 1000)
	f.marketData.add("BBB", "Technology", 1000)
	f.marketData.add("CCC", "Technology", 1000)

	w := f.do(t, http.MethodPost, "/api/screen/batch", `{"tickers": ["AAA", "BBB", "CCC"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Verdicts []models.Verdict `json:"verdicts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode batch response: %v", err)
	}
	if len(resp.Verdicts) != 3 {
		t.Fatalf("expected 3 verdicts, got %d", len(resp.Verdicts))
	}
	for _, v := range resp.Verdicts {
		if v.IsError() {
			t.Errorf("%s: expected a real verdict, got error (%s)", v.Ticker, v.Reason)
		}
	}
}

func TestHandleScreenBatchValidation(t *testing.T) {
	f := newTestFixture()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"tickers": [`},
		{"empty list", `{"tickers": []}`},
		{"invalid symbol", `{"tickers": ["AAPL", "not a ticker"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/api/screen/batch", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestHandleGetVerdict(t *testing.T) {
	f := newTestFixture()
	f.marketData.add("AAPL", "Technology", 1000)

	// No verdict before screening
	w := f.do(t, http.MethodGet, "/api/verdicts/AAPL", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 before screening, got %d", w.Code)
	}

	f.do(t, http.MethodGet, "/api/screen/AAPL", "")

	w = f.do(t, http.MethodGet, "/api/verdicts/AAPL", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 after screening, got %d", w.Code)
	}

	var verdict models.Verdict
	if err := json.Unmarshal(w.Body.Bytes(), &verdict); err != nil {
		t.Fatalf("failed to decode verdict: %v", err)
	}
	if verdict.Ticker != "AAPL" {
		t.Errorf("expected ticker AAPL, got %s", verdict.Ticker)
	}
}

func TestHandleListVerdicts(t *testing.T) {
	f := newTestFixture()
	f.marketData.add("AAPL", "Technology", 1000)
	f.do(t, http.MethodGet, "/api/screen/AAPL", "")

	w := f.do(t, http.MethodGet, "/api/verdicts/?status=compliant", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Verdicts []models.Verdict `json:"verdicts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if len(resp.Verdicts) != 1 {
		t.Errorf("expected 1 verdict, got %d", len(resp.Verdicts))
	}

	w = f.do(t, http.MethodGet, "/api/verdicts/?status=bogus", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for bad filter, got %d", w.Code)
	}
}

func TestHandleGetHalalStocks(t *testing.T) {
	f := newTestFixture()
	for _, ticker := range config.NewTestConfig().Screening.Universe {
		f.marketData.add(ticker, "Technology", 1000)
	}

	w := f.do(t, http.MethodGet, "/api/halal-stocks", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Halal []models.Verdict `json:"halal"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Halal) != len(config.NewTestConfig().Screening.Universe) {
		t.Errorf("expected one verdict per universe ticker, got %d", len(resp.Halal))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newTestFixture()

	w := f.do(t, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}
