package utils

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"kurgan-screener/models"
)

// csvHeader matches the batch export row schema: unknowns become empty
// cells, known values are rounded to 2 decimal places.
var csvHeader = []string{
	"ticker", "price", "health_score", "ev_ebitda", "peg", "sgr_pct", "graham_value", "discount_pct",
}

// WriteScanCSV writes scan rows to filename in the export schema.
func WriteScanCSV(filename string, rows []models.ScanRow) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		if err := writer.Write(csvRecord(row)); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", row.Symbol, err)
		}
	}

	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func csvRecord(row models.ScanRow) []string {
	return []string{
		row.Symbol,
		strconv.FormatFloat(round2(row.Price), 'f', 2, 64),
		csvOptInt(row.HealthScore),
		csvOpt(row.EVToEBITDA),
		csvOpt(row.PEG),
		csvOpt(row.SGR),
		csvOpt(row.GrahamValue),
		csvOpt(row.DiscountPct),
	}
}

func csvOpt(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(round2(*v), 'f', 2, 64)
}

func csvOptInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
