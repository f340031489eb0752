package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kurgan-screener/models"
)

func TestGrahamDefensiveValue(t *testing.T) {
	tests := []struct {
		name string
		eps  *float64
		bvps *float64
		want *float64
	}{
		{"both positive", models.Float(10), models.Float(10), models.Float(150)},
		{"negative eps", models.Float(-2), models.Float(10), nil},
		{"zero eps", models.Float(0), models.Float(10), nil},
		{"negative bvps", models.Float(10), models.Float(-1), nil},
		{"zero bvps", models.Float(10), models.Float(0), nil},
		{"missing eps", nil, models.Float(10), nil},
		{"missing bvps", models.Float(10), nil, nil},
		{"both missing", nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GrahamDefensiveValue(tt.eps, tt.bvps)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestDiscountPercentSign(t *testing.T) {
	intrinsic := models.Float(150)

	below := DiscountPercent(intrinsic, models.Float(90))
	require.NotNil(t, below)
	assert.InDelta(t, 40.0, *below, 1e-9)
	assert.Greater(t, *below, 0.0)

	above := DiscountPercent(intrinsic, models.Float(300))
	require.NotNil(t, above)
	assert.Less(t, *above, 0.0)

	equal := DiscountPercent(intrinsic, models.Float(150))
	require.NotNil(t, equal)
	assert.Zero(t, *equal)
}

func TestDiscountPercentUnknowns(t *testing.T) {
	assert.Nil(t, DiscountPercent(nil, models.Float(100)))
	assert.Nil(t, DiscountPercent(models.Float(100), nil))
	assert.Nil(t, DiscountPercent(models.Float(0), models.Float(100)))
}

func TestGrahamGrowthValue(t *testing.T) {
	// eps * (8.5 + g) * 4.4 / yield with a 1x growth coefficient.
	got := GrahamGrowthValue(models.Float(10), models.Float(11.5), 25)
	require.NotNil(t, got)
	assert.InDelta(t, 10*(8.5+11.5)*4.4/25, *got, 1e-9)

	// Unknown growth defaults to zero instead of suppressing the value.
	noGrowth := GrahamGrowthValue(models.Float(10), nil, 25)
	require.NotNil(t, noGrowth)
	assert.InDelta(t, 10*8.5*4.4/25, *noGrowth, 1e-9)

	assert.Nil(t, GrahamGrowthValue(nil, models.Float(5), 25))
	assert.Nil(t, GrahamGrowthValue(models.Float(-1), models.Float(5), 25))
	assert.Nil(t, GrahamGrowthValue(models.Float(10), models.Float(5), 0))
	assert.Nil(t, GrahamGrowthValue(models.Float(10), models.Float(5), -4))
}

func TestSustainableGrowthRate(t *testing.T) {
	got := SustainableGrowthRate(models.Float(0.20), models.Float(0.25))
	require.NotNil(t, got)
	assert.InDelta(t, 15.0, *got, 1e-9)

	// Never negative: a shrinking company reports 0, not a negative rate.
	floored := SustainableGrowthRate(models.Float(-0.5), models.Float(0))
	require.NotNil(t, floored)
	assert.Zero(t, *floored)

	// Payout defaults to 0 only inside the formula.
	defaulted := SustainableGrowthRate(models.Float(0.15), nil)
	require.NotNil(t, defaulted)
	assert.InDelta(t, 15.0, *defaulted, 1e-9)

	assert.Nil(t, SustainableGrowthRate(nil, models.Float(0.3)))
}

func TestPEG(t *testing.T) {
	got := PEG(models.Float(10), models.Float(5))
	require.NotNil(t, got)
	assert.InDelta(t, 2.0, *got, 1e-9)

	// No division by zero, no negative ratios.
	assert.Nil(t, PEG(models.Float(10), models.Float(0)))
	assert.Nil(t, PEG(models.Float(10), models.Float(-3)))
	assert.Nil(t, PEG(models.Float(-10), models.Float(5)))
	assert.Nil(t, PEG(nil, models.Float(5)))
	assert.Nil(t, PEG(models.Float(10), nil))
}

func TestHealthScoreAllFavorable(t *testing.T) {
	rec := &models.FundamentalsRecord{
		Symbol:            "EREGL",
		ROA:               models.Float(0.08),
		ROE:               models.Float(0.18),
		OperatingCashFlow: models.Float(500),
		NetIncome:         models.Float(400),
		DebtToEquity:      models.Float(45),
		CurrentRatio:      models.Float(1.8),
		QuickRatio:        models.Float(1.1),
		OperatingMargin:   models.Float(0.22),
		FreeCashFlow:      models.Float(300),
	}
	got := HealthScore(rec)
	require.NotNil(t, got)
	assert.Equal(t, 9, *got)
}

func TestHealthScoreAllUnfavorable(t *testing.T) {
	rec := &models.FundamentalsRecord{
		Symbol:            "ZZZZZ",
		ROA:               models.Float(-0.02),
		ROE:               models.Float(-0.10),
		OperatingCashFlow: models.Float(-50),
		NetIncome:         models.Float(-20),
		DebtToEquity:      models.Float(240),
		CurrentRatio:      models.Float(0.8),
		QuickRatio:        models.Float(0.4),
		OperatingMargin:   models.Float(0.02),
		FreeCashFlow:      models.Float(-10),
	}
	got := HealthScore(rec)
	require.NotNil(t, got)
	assert.Equal(t, 0, *got)
}

func TestHealthScorePartialFields(t *testing.T) {
	// Missing fields contribute 0 but do not block the present ones.
	rec := &models.FundamentalsRecord{
		Symbol: "THYAO",
		ROA:    models.Float(0.05),
		ROE:    models.Float(0.10),
	}
	got := HealthScore(rec)
	require.NotNil(t, got)
	assert.Equal(t, 2, *got)
}

func TestHealthScoreAllMissing(t *testing.T) {
	rec := &models.FundamentalsRecord{Symbol: "SASA", Price: models.Float(42)}
	assert.Nil(t, HealthScore(rec))
}

func TestDeriveIsDeterministic(t *testing.T) {
	rec := &models.FundamentalsRecord{
		Symbol:            "EREGL",
		Price:             models.Float(90),
		EPS:               models.Float(10),
		BookValuePerShare: models.Float(10),
		PE:                models.Float(9),
		ROE:               models.Float(0.18),
		PayoutRatio:       models.Float(0.3),
		ROA:               models.Float(0.07),
		OperatingCashFlow: models.Float(100),
		NetIncome:         models.Float(80),
	}
	eng := NewEngine(Params{GrowthRatePct: models.Float(12), BondYieldPct: 25})

	first := eng.Derive(rec)
	second := eng.Derive(rec)
	assert.Equal(t, first, second)

	require.NotNil(t, first.GrahamDefensive)
	assert.InDelta(t, 150.0, *first.GrahamDefensive, 1e-9)
	require.NotNil(t, first.DiscountPct)
	assert.InDelta(t, 40.0, *first.DiscountPct, 1e-9)
	require.NotNil(t, first.SustainableGrowth)
	assert.InDelta(t, 0.18*0.7*100, *first.SustainableGrowth, 1e-9)
	require.NotNil(t, first.PEGManual)
	assert.InDelta(t, 9.0/12.0, *first.PEGManual, 1e-9)
	require.NotNil(t, first.PEGSGR)
	assert.InDelta(t, 9.0/(0.18*0.7*100), *first.PEGSGR, 1e-9)
	require.NotNil(t, first.HealthScore)
	assert.Equal(t, 4, *first.HealthScore)
}

func TestDerivePriceOnlyRecord(t *testing.T) {
	// A throttled fetch can hand the engine a price-only record; every metric
	// must come back unknown without any error.
	rec := &models.FundamentalsRecord{Symbol: "GARAN", Price: models.Float(55)}
	eng := NewEngine(Params{BondYieldPct: 25})

	m := eng.Derive(rec)
	assert.Nil(t, m.GrahamDefensive)
	assert.Nil(t, m.GrahamGrowth)
	assert.Nil(t, m.GrahamGrowthSGR)
	assert.Nil(t, m.SustainableGrowth)
	assert.Nil(t, m.PEGManual)
	assert.Nil(t, m.PEGSGR)
	assert.Nil(t, m.HealthScore)
	assert.Nil(t, m.DiscountPct)
}
