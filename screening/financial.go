package screening

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Innominate-Dev/Halal-Stock-Screener/models"
)

// FinancialEvaluator applies the AAOIFI-style ratio thresholds to a
// financial snapshot.
type FinancialEvaluator struct {
	debtMax      decimal.Decimal
	interestMax  decimal.Decimal
	liquidityMax decimal.Decimal
}

// NewFinancialEvaluator creates a FinancialEvaluator with the given ratio
// ceilings.
func NewFinancialEvaluator(debtMax, interestMax, liquidityMax float64) *FinancialEvaluator {
	return &FinancialEvaluator{
		debtMax:      decimal.NewFromFloat(debtMax),
		interestMax:  decimal.NewFromFloat(interestMax),
		liquidityMax: decimal.NewFromFloat(liquidityMax),
	}
}

// Evaluate computes the three screening ratios and compares each against its
// ceiling. All breaches are reported, not just the first. A zero market cap
// or zero revenue resolves the affected ratio to zero, which never breaches
// a positive ceiling, so companies with missing denominators pass by
// default; a missing market cap is noted on the report so callers can tell
// a true pass from a degraded one.
func (e *FinancialEvaluator) Evaluate(snapshot *models.FinancialSnapshot, marketCap int64) (models.RatioReport, []string) {
	mktCap := decimal.NewFromInt(marketCap)

	// Compare unrounded ratios against the ceilings; the report carries the
	// two-decimal rounding.
	debtRatio := safeRatio(snapshot.TotalDebt, mktCap)
	liquidityRatio := safeRatio(snapshot.CashAndCashEquivalents.Add(snapshot.ShortTermInvestments), mktCap)
	interestRatio := safeRatio(snapshot.InterestIncome, snapshot.TotalRevenue)

	report := models.RatioReport{
		DebtRatio:      debtRatio.Round(2),
		LiquidityRatio: liquidityRatio.Round(2),
		InterestRatio:  interestRatio.Round(2),
		Compliant:      true,
	}
	if !mktCap.IsPositive() {
		report.Error = "market capitalization unavailable, market-cap ratios default to zero"
	}

	var reasons []string
	if debtRatio.GreaterThan(e.debtMax) {
		reasons = append(reasons, fmt.Sprintf("Debt/MarketCap ratio too high: %s > %s",
			debtRatio.StringFixed(2), e.debtMax.StringFixed(2)))
	}
	if interestRatio.GreaterThan(e.interestMax) {
		reasons = append(reasons, fmt.Sprintf("Interest income/Revenue ratio too high: %s > %s",
			interestRatio.StringFixed(2), e.interestMax.StringFixed(2)))
	}
	if liquidityRatio.GreaterThan(e.liquidityMax) {
		reasons = append(reasons, fmt.Sprintf("Cash + short-term investments/MarketCap ratio too high: %s > %s",
			liquidityRatio.StringFixed(2), e.liquidityMax.StringFixed(2)))
	}

	if len(reasons) > 0 {
		report.Compliant = false
	}

	return report, reasons
}

// safeRatio divides, resolving a zero or negative denominator to zero
// instead of a division fault.
func safeRatio(numerator, denominator decimal.Decimal) decimal.Decimal {
	if !denominator.IsPositive() {
		return decimal.Zero
	}
	return numerator.Div(denominator)
}
