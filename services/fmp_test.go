package services

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/Innominate-Dev/Halal-Stock-Screener/observability"
)

func TestMain(m *testing.M) {
	// Keep test metrics off the default registerer so reruns don't collide
	observability.SetMetrics(observability.NewMetrics(prometheus.NewRegistry()))
	observability.InitLoggerWithLevel(false, slog.LevelError)
	os.Exit(m.Run())
}

// resetBreakers gives each test an untripped circuit breaker registry
func resetBreakers(t *testing.T) {
	t.Helper()
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))
}

// fastRetry keeps failure-path tests from sleeping through real backoff
var fastRetry = RetryConfig{
	MaxRetries:     1,
	InitialBackoff: time.Millisecond,
	MaxBackoff:     time.Millisecond,
}

func newTestFMPService(serverURL string) *FMPService {
	svc := NewFMPService("test-api-key")
	svc.baseURL = serverURL
	return svc
}

func TestGetCompanyProfile(t *testing.T) {
	resetBreakers(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/profile/AAPL" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("apikey") != "test-api-key" {
			t.Errorf("missing apikey query param")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{
			"symbol": "AAPL",
			"companyName": "Apple Inc.",
			"sector": "Technology",
			"industry": "Consumer Electronics",
			"mktCap": 3000000000000,
			"beta": 1.25,
			"description": "Apple designs consumer electronics."
		}]`))
	}))
	defer server.Close()

	svc := newTestFMPService(server.URL)
	profile, err := svc.GetCompanyProfile(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetCompanyProfile failed: %v", err)
	}

	if profile.Ticker != "AAPL" {
		t.Errorf("expected ticker AAPL, got %s", profile.Ticker)
	}
	if profile.CompanyName != "Apple Inc." {
		t.Errorf("expected company name Apple Inc., got %s", profile.CompanyName)
	}
	if profile.Sector != "Technology" {
		t.Errorf("expected sector Technology, got %s", profile.Sector)
	}
	if profile.MarketCap != 3000000000000 {
		t.Errorf("expected market cap 3000000000000, got %d", profile.MarketCap)
	}
}

func TestGetCompanyProfileEmptyResponse(t *testing.T) {
	resetBreakers(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	svc := newTestFMPService(server.URL)

	orig := DefaultRetryConfig
	DefaultRetryConfig = fastRetry
	defer func() { DefaultRetryConfig = orig }()

	_, err := svc.GetCompanyProfile(context.Background(), "NOPE")
	if err == nil {
		t.Fatal("expected error for empty profile response")
	}
}

func TestGetCompanyProfileServerError(t *testing.T) {
	resetBreakers(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := newTestFMPService(server.URL)

	orig := DefaultRetryConfig
	DefaultRetryConfig = fastRetry
	defer func() { DefaultRetryConfig = orig }()

	_, err := svc.GetCompanyProfile(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error for server error response")
	}
}

func TestGetFinancialSnapshot(t *testing.T) {
	resetBreakers(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "1" {
			t.Errorf("expected limit=1, got %s", r.URL.Query().Get("limit"))
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/balance-sheet-statement/MSFT":
			w.Write([]byte(`[{
				"symbol": "MSFT",
				"date": "2025-06-30",
				"totalDebt": 60000000000,
				"cashAndCashEquivalents": 20000000000,
				"shortTermInvestments": 55000000000
			}]`))
		case "/income-statement/MSFT":
			w.Write([]byte(`[{
				"symbol": "MSFT",
				"date": "2025-06-30",
				"interestIncome": 3000000000,
				"revenue": 245000000000
			}]`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	svc := newTestFMPService(server.URL)
	snapshot, err := svc.GetFinancialSnapshot(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("GetFinancialSnapshot failed: %v", err)
	}

	if snapshot.Ticker != "MSFT" {
		t.Errorf("expected ticker MSFT, got %s", snapshot.Ticker)
	}
	if !snapshot.TotalDebt.Equal(decimal.NewFromInt(60000000000)) {
		t.Errorf("expected total debt 60000000000, got %s", snapshot.TotalDebt)
	}
	if !snapshot.TotalRevenue.Equal(decimal.NewFromInt(245000000000)) {
		t.Errorf("expected revenue 245000000000, got %s", snapshot.TotalRevenue)
	}
	if !snapshot.InterestIncome.Equal(decimal.NewFromInt(3000000000)) {
		t.Errorf("expected interest income 3000000000, got %s", snapshot.InterestIncome)
	}
}

func TestGetFinancialSnapshotMissingFields(t *testing.T) {
	resetBreakers(t)

	// Statements with absent figures decode as zero, not as errors
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/balance-sheet-statement/NEWCO":
			w.Write([]byte(`[{"symbol": "NEWCO", "date": "2025-06-30"}]`))
		case "/income-statement/NEWCO":
			w.Write([]byte(`[{"symbol": "NEWCO", "date": "2025-06-30", "revenue": 1000000}]`))
		}
	}))
	defer server.Close()

	svc := newTestFMPService(server.URL)
	snapshot, err := svc.GetFinancialSnapshot(context.Background(), "NEWCO")
	if err != nil {
		t.Fatalf("GetFinancialSnapshot failed: %v", err)
	}

	if !snapshot.TotalDebt.IsZero() {
		t.Errorf("expected zero total debt, got %s", snapshot.TotalDebt)
	}
	if !snapshot.InterestIncome.IsZero() {
		t.Errorf("expected zero interest income, got %s", snapshot.InterestIncome)
	}
}
