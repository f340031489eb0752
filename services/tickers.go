package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultBasket returns the BIST 30 scan universe.
func DefaultBasket() []string {
	return []string{
		"AKBNK", "ARCLK", "ASELS", "BIMAS", "EKGYO", "ENKAI", "EREGL", "FROTO",
		"GARAN", "GUBRF", "HALKB", "HEKTS", "ISCTR", "KCHOL", "KOZAA", "KOZAL",
		"KRDMD", "PETKM", "PGSUS", "SAHOL", "SASA", "SISE", "TAVHL", "TCELL",
		"THYAO", "TKFEN", "TOASO", "TUPRS", "VAKBN", "YKBNK",
	}
}

// LoadTickersFromCSV loads ticker symbols from the first column of a CSV
// file, skipping the header row.
func LoadTickersFromCSV(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open ticker file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read ticker file header: %w", err)
	}

	var tickers []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ticker file: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		ticker := strings.ToUpper(strings.TrimSpace(record[0]))
		if ticker != "" {
			tickers = append(tickers, ticker)
		}
	}

	if len(tickers) == 0 {
		return nil, fmt.Errorf("ticker file %s contains no symbols", filename)
	}
	return tickers, nil
}
