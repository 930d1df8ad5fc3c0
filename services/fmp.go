package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Innominate-Dev/Halal-Stock-Screener/models"
	"github.com/Innominate-Dev/Halal-Stock-Screener/observability"
)

// FMPService handles communication with Financial Modeling Prep API
type FMPService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewFMPService creates a new FMPService instance
func NewFMPService(apiKey string) *FMPService {
	return &FMPService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://financialmodelingprep.com/api/v3",
	}
}

// fmpProfileResponse represents a company profile from the FMP API
type fmpProfileResponse struct {
	Symbol            string  `json:"symbol"`
	CompanyName       string  `json:"companyName"`
	Price             float64 `json:"price"`
	Beta              float64 `json:"beta"`
	MktCap            int64   `json:"mktCap"`
	Currency          string  `json:"currency"`
	Exchange          string  `json:"exchange"`
	ExchangeShortName string  `json:"exchangeShortName"`
	Industry          string  `json:"industry"`
	Description       string  `json:"description"`
	Sector            string  `json:"sector"`
	Country           string  `json:"country"`
	IsEtf             bool    `json:"isEtf"`
	IsActivelyTrading bool    `json:"isActivelyTrading"`
}

// fmpBalanceSheetResponse represents the latest balance sheet statement
type fmpBalanceSheetResponse struct {
	Symbol                 string          `json:"symbol"`
	Date                   string          `json:"date"`
	TotalDebt              decimal.Decimal `json:"totalDebt"`
	CashAndCashEquivalents decimal.Decimal `json:"cashAndCashEquivalents"`
	ShortTermInvestments   decimal.Decimal `json:"shortTermInvestments"`
}

// fmpIncomeStatementResponse represents the latest income statement
type fmpIncomeStatementResponse struct {
	Symbol         string          `json:"symbol"`
	Date           string          `json:"date"`
	InterestIncome decimal.Decimal `json:"interestIncome"`
	Revenue        decimal.Decimal `json:"revenue"`
}

// GetCompanyProfile returns the company profile for a ticker, including the
// sector/industry strings and business description the screening needs
func (s *FMPService) GetCompanyProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error) {
	return WithCircuitBreaker(ctx, BreakerFMP, func() (*models.CompanyProfile, error) {
		var profile *models.CompanyProfile

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			var profileResp []fmpProfileResponse
			if err := s.getJSON(ctx, "profile", fmt.Sprintf("/profile/%s", url.PathEscape(ticker)), nil, &profileResp); err != nil {
				return err
			}

			if len(profileResp) == 0 {
				return fmt.Errorf("no profile data for ticker %s", ticker)
			}

			p := profileResp[0]
			profile = &models.CompanyProfile{
				Ticker:      p.Symbol,
				CompanyName: p.CompanyName,
				Sector:      p.Sector,
				Industry:    p.Industry,
				MarketCap:   p.MktCap,
				Beta:        p.Beta,
				Description: p.Description,
			}

			return nil
		})

		if err != nil {
			return nil, err
		}

		return profile, nil
	})
}

// GetFinancialSnapshot returns the latest balance-sheet and income-statement
// figures for a ticker. Missing fields decode as zero, which the ratio
// evaluator treats as "no data", never as a fault.
func (s *FMPService) GetFinancialSnapshot(ctx context.Context, ticker string) (*models.FinancialSnapshot, error) {
	return WithCircuitBreaker(ctx, BreakerFMP, func() (*models.FinancialSnapshot, error) {
		var snapshot *models.FinancialSnapshot

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			params := url.Values{}
			params.Set("limit", "1")

			var bsResp []fmpBalanceSheetResponse
			if err := s.getJSON(ctx, "balance-sheet", fmt.Sprintf("/balance-sheet-statement/%s", url.PathEscape(ticker)), params, &bsResp); err != nil {
				return err
			}

			var incResp []fmpIncomeStatementResponse
			if err := s.getJSON(ctx, "income-statement", fmt.Sprintf("/income-statement/%s", url.PathEscape(ticker)), params, &incResp); err != nil {
				return err
			}

			if len(bsResp) == 0 || len(incResp) == 0 {
				return fmt.Errorf("financial data missing for ticker %s", ticker)
			}

			bs := bsResp[0]
			inc := incResp[0]
			snapshot = &models.FinancialSnapshot{
				Ticker:                 ticker,
				TotalDebt:              bs.TotalDebt,
				CashAndCashEquivalents: bs.CashAndCashEquivalents,
				ShortTermInvestments:   bs.ShortTermInvestments,
				InterestIncome:         inc.InterestIncome,
				TotalRevenue:           inc.Revenue,
			}

			return nil
		})

		if err != nil {
			return nil, err
		}

		return snapshot, nil
	})
}

// getJSON performs a GET against the FMP API and decodes the JSON body
func (s *FMPService) getJSON(ctx context.Context, operation, path string, params url.Values, out any) error {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest("fmp", operation)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI("fmp", operation)

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", s.apiKey)

	reqURL := s.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", operation, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.RecordExternalAPIError("fmp", operation, "network")
		return fmt.Errorf("failed to fetch %s: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordExternalAPIError("fmp", operation, "http_status")
		return fmt.Errorf("%s API returned status %d", operation, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.RecordExternalAPIError("fmp", operation, "decode")
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}

	return nil
}

// Compile-time interface verification
var _ MarketDataServiceInterface = (*FMPService)(nil)
