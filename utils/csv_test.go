package utils

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kurgan-screener/models"
)

func TestWriteScanCSV(t *testing.T) {
	rows := []models.ScanRow{
		{
			Symbol:      "EREGL",
			Price:       51.2345,
			HealthScore: models.Int(7),
			EVToEBITDA:  models.Float(5.456),
			PEG:         models.Float(0.789),
			SGR:         models.Float(12.5),
			GrahamValue: models.Float(150.004),
			DiscountPct: models.Float(40.006),
		},
		{
			// Price-only row: everything else must export as empty cells.
			Symbol: "GARAN",
			Price:  55,
		},
	}

	path := filepath.Join(t.TempDir(), "scan.csv")
	require.NoError(t, WriteScanCSV(path, rows))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"ticker", "price", "health_score", "ev_ebitda", "peg", "sgr_pct", "graham_value", "discount_pct",
	}, records[0])

	assert.Equal(t, []string{"EREGL", "51.23", "7", "5.46", "0.79", "12.50", "150.00", "40.01"}, records[1])
	assert.Equal(t, []string{"GARAN", "55.00", "", "", "", "", "", ""}, records[2])
}

func TestSortRows(t *testing.T) {
	rows := []models.ScanRow{
		{Symbol: "AAA", DiscountPct: models.Float(10), PEG: models.Float(2.0)},
		{Symbol: "BBB", DiscountPct: nil, PEG: nil},
		{Symbol: "CCC", DiscountPct: models.Float(35), PEG: models.Float(0.5)},
	}

	SortRows(rows, SortByDiscount)
	assert.Equal(t, "CCC", rows[0].Symbol)
	assert.Equal(t, "AAA", rows[1].Symbol)
	assert.Equal(t, "BBB", rows[2].Symbol, "unknown discount sinks to the bottom")

	SortRows(rows, SortByPEG)
	assert.Equal(t, "CCC", rows[0].Symbol)
	assert.Equal(t, "AAA", rows[1].Symbol)
	assert.Equal(t, "BBB", rows[2].Symbol, "unknown PEG sinks to the bottom")

	SortRows(rows, SortByTicker)
	assert.Equal(t, "AAA", rows[0].Symbol)
}
