package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VerdictStatus is the terminal classification of a screened company
type VerdictStatus string

const (
	VerdictCompliant    VerdictStatus = "compliant"
	VerdictNonCompliant VerdictStatus = "non-compliant"
	VerdictDoubtful     VerdictStatus = "doubtful"
	VerdictError        VerdictStatus = "error"
)

// TextualLabel is the outcome of the textual risk evaluation. It maps onto
// the verdict statuses minus Error: text evidence can clear, condemn, or
// flag a company for review, but never fail the pipeline by itself.
type TextualLabel string

const (
	LabelCompliant    TextualLabel = "compliant"
	LabelNonCompliant TextualLabel = "non-compliant"
	LabelDoubtful     TextualLabel = "doubtful"
)

// Status converts a textual label to the corresponding verdict status.
func (l TextualLabel) Status() VerdictStatus {
	switch l {
	case LabelNonCompliant:
		return VerdictNonCompliant
	case LabelDoubtful:
		return VerdictDoubtful
	default:
		return VerdictCompliant
	}
}

// RatioReport carries the AAOIFI ratios computed for one snapshot, each
// rounded to two decimal places, plus the overall compliance flag. Error
// notes a degraded computation, such as a missing market cap forcing its
// ratios to zero.
type RatioReport struct {
	DebtRatio      decimal.Decimal `json:"debt_ratio"`
	LiquidityRatio decimal.Decimal `json:"liquidity_ratio"`
	InterestRatio  decimal.Decimal `json:"interest_ratio"`
	Compliant      bool            `json:"compliant"`
	Error          string          `json:"error,omitempty"`
}

// Verdict is the immutable result of screening one company. Once a verdict
// is cached it is returned verbatim on every later request for the ticker.
type Verdict struct {
	ID          uuid.UUID     `json:"id"`
	Ticker      string        `json:"ticker"`
	CompanyName string        `json:"company_name,omitempty"`
	Status      VerdictStatus `json:"status"`
	Reason      string        `json:"reason"`
	Ratios      *RatioReport  `json:"ratios,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// NewVerdict creates a Verdict with a fresh ID and timestamp
func NewVerdict(ticker string, status VerdictStatus, reason string) *Verdict {
	return &Verdict{
		ID:        uuid.New(),
		Ticker:    ticker,
		Status:    status,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
}

// IsError returns true if screening terminated without a classification
func (v *Verdict) IsError() bool {
	return v.Status == VerdictError
}

// IsCompliant returns true if the company passed every check
func (v *Verdict) IsCompliant() bool {
	return v.Status == VerdictCompliant
}
