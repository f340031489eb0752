package models

import (
	"strings"
	"time"
)

// FundamentalsRecord represents one snapshot of a ticker's market and
// fundamental data. Every numeric field except Price may be absent; absent is
// modeled as a nil pointer and is distinct from zero throughout the pipeline.
type FundamentalsRecord struct {
	Symbol            string    `json:"symbol"`
	Price             *float64  `json:"price,omitempty"`
	EPS               *float64  `json:"eps,omitempty"`
	BookValuePerShare *float64  `json:"book_value_per_share,omitempty"`
	PE                *float64  `json:"pe,omitempty"`
	PB                *float64  `json:"pb,omitempty"`
	EVToEBITDA        *float64  `json:"ev_to_ebitda,omitempty"`
	ROE               *float64  `json:"roe,omitempty"`
	ROA               *float64  `json:"roa,omitempty"`
	OperatingMargin   *float64  `json:"operating_margin,omitempty"`
	PayoutRatio       *float64  `json:"payout_ratio,omitempty"`
	OperatingCashFlow *float64  `json:"operating_cash_flow,omitempty"`
	FreeCashFlow      *float64  `json:"free_cash_flow,omitempty"`
	NetIncome         *float64  `json:"net_income,omitempty"`
	DebtToEquity      *float64  `json:"debt_to_equity,omitempty"`
	CurrentRatio      *float64  `json:"current_ratio,omitempty"`
	QuickRatio        *float64  `json:"quick_ratio,omitempty"`
	FetchTime         time.Time `json:"fetch_time"`
}

// Normalize enforces the field conventions the valuation engine relies on:
// uppercase symbol, and EPS / book value treated as unknown unless strictly
// positive. Ratio fields keep their sign (negative P/E is meaningful).
func (r *FundamentalsRecord) Normalize() {
	r.Symbol = strings.ToUpper(strings.TrimSpace(r.Symbol))
	if r.EPS != nil && *r.EPS <= 0 {
		r.EPS = nil
	}
	if r.BookValuePerShare != nil && *r.BookValuePerShare <= 0 {
		r.BookValuePerShare = nil
	}
}

// DerivedMetrics is the output of the valuation engine for one record.
// Every metric is independently optional.
type DerivedMetrics struct {
	GrahamDefensive   *float64 `json:"graham_defensive,omitempty"`
	GrahamGrowth      *float64 `json:"graham_growth,omitempty"`
	GrahamGrowthSGR   *float64 `json:"graham_growth_sgr,omitempty"`
	SustainableGrowth *float64 `json:"sustainable_growth_pct,omitempty"`
	PEGManual         *float64 `json:"peg_manual,omitempty"`
	PEGSGR            *float64 `json:"peg_sgr,omitempty"`
	HealthScore       *int     `json:"health_score,omitempty"`
	DiscountPct       *float64 `json:"discount_pct,omitempty"`
}

// PEG returns the PEG variant used for screening: the SGR-based ratio when the
// model could compute one, otherwise the manual-growth ratio.
func (m *DerivedMetrics) PEG() *float64 {
	if m.PEGSGR != nil {
		return m.PEGSGR
	}
	return m.PEGManual
}

// ScanRow is one flattened line of the batch scan output.
type ScanRow struct {
	Symbol      string   `json:"symbol"`
	Price       float64  `json:"price"`
	HealthScore *int     `json:"health_score,omitempty"`
	EVToEBITDA  *float64 `json:"ev_to_ebitda,omitempty"`
	PEG         *float64 `json:"peg,omitempty"`
	SGR         *float64 `json:"sgr_pct,omitempty"`
	GrahamValue *float64 `json:"graham_value,omitempty"`
	DiscountPct *float64 `json:"discount_pct,omitempty"`
}

// Float returns a pointer to v, for building optional fields in literals.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}
