package models

// FindingCategory tags a commentary finding with its rule family.
type FindingCategory string

// Finding categories emitted by the commentary engine.
const (
	FindingFortress   FindingCategory = "financial_fortress"
	FindingRisk       FindingCategory = "financial_risk"
	FindingAverage    FindingCategory = "average_health"
	FindingValueTrap  FindingCategory = "value_trap"
	FindingGoldenOpp  FindingCategory = "golden_opportunity"
	FindingOverpriced FindingCategory = "overpriced"
	FindingWeakGrowth FindingCategory = "weak_growth"
	FindingMarginSafe FindingCategory = "margin_of_safety"
	FindingNoAnomaly  FindingCategory = "no_anomaly"
)

// Finding is one qualitative commentary result for a ticker.
type Finding struct {
	Category FindingCategory `json:"category"`
	Message  string          `json:"message"`
}
