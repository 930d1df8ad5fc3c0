package models

import (
	"github.com/shopspring/decimal"
)

// FinancialSnapshot is a point-in-time view of the balance-sheet and
// income-statement figures the AAOIFI ratio screen needs. Fields default to
// zero when the provider has no data; a zero revenue or market cap never
// causes a division fault downstream, the affected ratio is just zero.
type FinancialSnapshot struct {
	Ticker                 string          `json:"ticker"`
	TotalDebt              decimal.Decimal `json:"total_debt"`
	CashAndCashEquivalents decimal.Decimal `json:"cash_and_cash_equivalents"`
	ShortTermInvestments   decimal.Decimal `json:"short_term_investments"`
	InterestIncome         decimal.Decimal `json:"interest_income"`
	TotalRevenue           decimal.Decimal `json:"total_revenue"`
}
