// Package commentary turns derived valuation metrics into qualitative,
// rule-based findings. The evaluator is pure: rules fire independently in a
// fixed order, a missing input suppresses only the rule that needs it, and an
// empty result collapses to a single neutral finding.
package commentary

import (
	"fmt"

	"kurgan-screener/models"
)

// Input carries the metric values the rules compare against. Nil means
// unknown and silences every rule that needs the value.
type Input struct {
	PEG         *float64
	EVToEBITDA  *float64
	SGRPct      *float64
	GrahamValue *float64
	Price       *float64
	HealthScore *int
}

// Threshold constants for the rule set. These are calibrated values; changing
// one changes which findings fire, nothing else.
const (
	fortressMinScore  = 7
	riskMaxScore      = 3
	cheapPEG          = 1.0
	expensivePEG      = 2.0
	richEVEBITDA      = 20.0
	cheapEVEBITDA     = 8.0
	elevatedEVEBITDA  = 12.0
	weakSGRPct        = 5.0
	safetyDiscountPct = 30.0
)

// Evaluate runs every rule against the input, in priority order. Rules are
// deliberately independent if-statements, not an if/else chain, so a future
// threshold edit cannot silently hide a sibling finding.
func Evaluate(in Input) []models.Finding {
	var findings []models.Finding

	if in.HealthScore != nil {
		switch score := *in.HealthScore; {
		case score >= fortressMinScore:
			findings = append(findings, models.Finding{
				Category: models.FindingFortress,
				Message:  fmt.Sprintf("Financial fortress: health score %d/9 signals strong profitability, liquidity and cash flow quality.", score),
			})
		case score <= riskMaxScore:
			findings = append(findings, models.Finding{
				Category: models.FindingRisk,
				Message:  fmt.Sprintf("Financial risk: health score %d/9 — a cheap multiple here may be a value trap.", score),
			})
		default:
			findings = append(findings, models.Finding{
				Category: models.FindingAverage,
				Message:  fmt.Sprintf("Average financial health: score %d/9, neither fortress nor distress.", score),
			})
		}
	}

	if in.PEG != nil && in.EVToEBITDA != nil {
		if *in.PEG <= cheapPEG && *in.EVToEBITDA > richEVEBITDA {
			findings = append(findings, models.Finding{
				Category: models.FindingValueTrap,
				Message:  "Possible value trap: growth-adjusted multiple looks cheap but EV/EBITDA is expensive — earnings may not be operational.",
			})
		}
		if *in.PEG <= cheapPEG && *in.EVToEBITDA < cheapEVEBITDA {
			findings = append(findings, models.Finding{
				Category: models.FindingGoldenOpp,
				Message:  "Golden opportunity: cheap against both growth (PEG) and operations (EV/EBITDA).",
			})
		}
		if *in.PEG > expensivePEG && *in.EVToEBITDA > elevatedEVEBITDA {
			findings = append(findings, models.Finding{
				Category: models.FindingOverpriced,
				Message:  "Overpriced: rich on both the growth-adjusted and the operating multiple.",
			})
		}
	}

	if in.SGRPct != nil && *in.SGRPct < weakSGRPct {
		findings = append(findings, models.Finding{
			Category: models.FindingWeakGrowth,
			Message:  fmt.Sprintf("Weak internal growth capacity: sustainable growth rate is only %.1f%%.", *in.SGRPct),
		})
	}

	if discount := discountPct(in.GrahamValue, in.Price); discount != nil && *discount > safetyDiscountPct {
		findings = append(findings, models.Finding{
			Category: models.FindingMarginSafe,
			Message:  fmt.Sprintf("Margin of safety: price sits %.2f%% below the defensive Graham value.", *discount),
		})
	}

	if len(findings) == 0 {
		findings = append(findings, models.Finding{
			Category: models.FindingNoAnomaly,
			Message:  "No notable anomaly: available metrics sit inside normal ranges.",
		})
	}

	return findings
}

func discountPct(graham, price *float64) *float64 {
	if graham == nil || price == nil || *graham == 0 {
		return nil
	}
	return models.Float((*graham - *price) / *graham * 100)
}
