package models

// CompanyProfile holds the descriptive company data used by the screening
// pipeline: the sector/industry strings feed the sector check, the market cap
// feeds the ratio check, and the description feeds the classifier strategy.
type CompanyProfile struct {
	Ticker      string  `json:"ticker"`
	CompanyName string  `json:"company_name"`
	Sector      string  `json:"sector"`
	Industry    string  `json:"industry"`
	MarketCap   int64   `json:"market_cap"`
	Beta        float64 `json:"beta"`
	Description string  `json:"description,omitempty"`
}
