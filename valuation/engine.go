package valuation

import (
	"math"

	"kurgan-screener/models"
)

// Params holds the scan-level inputs the engine needs beyond the record
// itself.
type Params struct {
	// GrowthRatePct is a manual analyst growth estimate in percent. Optional;
	// when absent the manual PEG and the manual Graham growth value fall back
	// to their no-growth behavior.
	GrowthRatePct *float64

	// BondYieldPct is the required yield (percent) used by the Graham growth
	// model. Must be positive for the model to produce a value.
	BondYieldPct float64
}

// Engine derives valuation metrics from a fundamentals record. All methods
// are pure: the same record and params always produce identical metrics, and
// a missing or domain-invalid input yields an unknown (nil) metric rather
// than an error or a fabricated default.
type Engine struct {
	params Params
}

// NewEngine creates a valuation engine with the given scan parameters.
func NewEngine(params Params) *Engine {
	return &Engine{params: params}
}

// Derive computes the full set of metrics for one record.
func (e *Engine) Derive(rec *models.FundamentalsRecord) models.DerivedMetrics {
	graham := GrahamDefensiveValue(rec.EPS, rec.BookValuePerShare)
	sgr := SustainableGrowthRate(rec.ROE, rec.PayoutRatio)

	return models.DerivedMetrics{
		GrahamDefensive:   graham,
		GrahamGrowth:      GrahamGrowthValue(rec.EPS, e.params.GrowthRatePct, e.params.BondYieldPct),
		GrahamGrowthSGR:   GrahamGrowthValue(rec.EPS, sgr, e.params.BondYieldPct),
		SustainableGrowth: sgr,
		PEGManual:         PEG(rec.PE, e.params.GrowthRatePct),
		PEGSGR:            PEG(rec.PE, sgr),
		HealthScore:       HealthScore(rec),
		DiscountPct:       DiscountPercent(graham, rec.Price),
	}
}

// GrahamDefensiveValue estimates intrinsic value as sqrt(22.5 * eps * bvps).
// Defined only for profitable, solvent companies: both inputs must be known
// and strictly positive.
func GrahamDefensiveValue(eps, bvps *float64) *float64 {
	if eps == nil || bvps == nil || *eps <= 0 || *bvps <= 0 {
		return nil
	}
	return models.Float(math.Sqrt(22.5 * *eps * *bvps))
}

// DiscountPercent is the percentage gap between an intrinsic value estimate
// and the current price. Positive means the price sits below intrinsic value.
func DiscountPercent(intrinsic, price *float64) *float64 {
	if intrinsic == nil || price == nil || *intrinsic == 0 {
		return nil
	}
	return models.Float((*intrinsic - *price) / *intrinsic * 100)
}

// GrahamGrowthValue estimates intrinsic value as
// eps * (8.5 + g) * 4.4 / yield, with g in percent.
//
// The growth coefficient is 1, not the textbook 2: a deliberately
// conservative calibration for this market. The growth rate defaults to 0
// when unknown; eps and yield must be known and positive.
func GrahamGrowthValue(eps, growthPct *float64, yieldPct float64) *float64 {
	if eps == nil || *eps <= 0 || yieldPct <= 0 {
		return nil
	}
	g := 0.0
	if growthPct != nil {
		g = *growthPct
	}
	return models.Float(*eps * (8.5 + g) * 4.4 / yieldPct)
}

// SustainableGrowthRate is roe * (1 - payout) * 100, floored at 0. A negative
// result is reported as 0: no capacity for internally funded growth, not
// shrinkage. Payout defaults to 0 when unknown; ROE unknown makes the whole
// metric unknown.
func SustainableGrowthRate(roe, payoutRatio *float64) *float64 {
	if roe == nil {
		return nil
	}
	payout := 0.0
	if payoutRatio != nil {
		payout = *payoutRatio
	}
	sgr := *roe * (1 - payout) * 100
	if sgr < 0 {
		sgr = 0
	}
	return models.Float(sgr)
}

// PEG is pe / growthPct, defined only when both are known and strictly
// positive. Loss-making or shrinking companies get an unknown ratio rather
// than a misleading negative or huge number.
func PEG(pe, growthPct *float64) *float64 {
	if pe == nil || growthPct == nil || *pe <= 0 || *growthPct <= 0 {
		return nil
	}
	return models.Float(*pe / *growthPct)
}

// HealthScore is an unweighted sum of nine independent checks on
// profitability, cash flow quality, leverage and liquidity. Each check
// contributes 1 when its fields are present and favorable, 0 otherwise; a
// missing field never blocks the remaining checks. The score is unknown only
// when every input field is missing.
func HealthScore(rec *models.FundamentalsRecord) *int {
	score := 0
	known := false

	check := func(v *float64, pass func(float64) bool) {
		if v == nil {
			return
		}
		known = true
		if pass(*v) {
			score++
		}
	}

	check(rec.ROA, func(v float64) bool { return v > 0 })
	check(rec.ROE, func(v float64) bool { return v > 0 })
	check(rec.OperatingCashFlow, func(v float64) bool { return v > 0 })

	// Earnings quality: cash profit must exceed accounting profit.
	if rec.OperatingCashFlow != nil && rec.NetIncome != nil {
		known = true
		if *rec.OperatingCashFlow > *rec.NetIncome {
			score++
		}
	} else if rec.NetIncome != nil {
		known = true
	}

	check(rec.DebtToEquity, func(v float64) bool { return v < 100 })
	check(rec.CurrentRatio, func(v float64) bool { return v > 1.2 })
	check(rec.QuickRatio, func(v float64) bool { return v > 0.9 })
	check(rec.OperatingMargin, func(v float64) bool { return v > 0.10 })
	check(rec.FreeCashFlow, func(v float64) bool { return v > 0 })

	if !known {
		return nil
	}
	return models.Int(score)
}
