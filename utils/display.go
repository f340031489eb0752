package utils

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"kurgan-screener/models"
)

// Colors for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

// Sort keys accepted by DisplayScanTable.
const (
	SortByDiscount = "discount"
	SortByPEG      = "peg"
	SortByHealth   = "health"
	SortByTicker   = "ticker"
)

// DisplayRecord renders the single-ticker analysis: raw figures, derived
// metrics, the discount verdict and the commentary findings.
func DisplayRecord(rec *models.FundamentalsRecord, metrics models.DerivedMetrics, findings []models.Finding, advisory string, showColors bool) {
	separator := strings.Repeat("=", 72)
	title := fmt.Sprintf("Analysis: %s - %s", rec.Symbol, time.Now().Format("2006-01-02 15:04:05"))

	if showColors {
		fmt.Printf("%s%s%s%s\n%s%s%s%s\n", ColorBold, ColorCyan, separator, ColorReset, ColorBold, ColorCyan, title, ColorReset)
	} else {
		fmt.Printf("%s\n%s\n", separator, title)
	}

	if advisory != "" {
		if showColors {
			fmt.Printf("%s! %s%s\n", ColorYellow, advisory, ColorReset)
		} else {
			fmt.Printf("! %s\n", advisory)
		}
	}

	fmt.Printf("%-28s %s\n", "Price", formatOpt(rec.Price))
	fmt.Printf("%-28s %s\n", "EPS (ttm)", formatOpt(rec.EPS))
	fmt.Printf("%-28s %s\n", "Book value/share", formatOpt(rec.BookValuePerShare))
	fmt.Printf("%-28s %s\n", "P/E", formatOpt(rec.PE))
	fmt.Printf("%-28s %s\n", "EV/EBITDA", formatOpt(rec.EVToEBITDA))
	fmt.Println(strings.Repeat("-", 72))
	fmt.Printf("%-28s %s\n", "Graham defensive value", formatOpt(metrics.GrahamDefensive))
	fmt.Printf("%-28s %s\n", "Graham growth value", formatOpt(metrics.GrahamGrowth))
	fmt.Printf("%-28s %s\n", "Graham growth value (SGR)", formatOpt(metrics.GrahamGrowthSGR))
	fmt.Printf("%-28s %s\n", "Sustainable growth %", formatOpt(metrics.SustainableGrowth))
	fmt.Printf("%-28s %s\n", "PEG (manual growth)", formatOpt(metrics.PEGManual))
	fmt.Printf("%-28s %s\n", "PEG (SGR)", formatOpt(metrics.PEGSGR))
	fmt.Printf("%-28s %s\n", "Health score (0-9)", formatOptInt(metrics.HealthScore))

	displayVerdict(metrics.DiscountPct, showColors)
	displayFindings(findings, showColors)
}

// displayVerdict prints the discount / premium line for the defensive
// Graham value.
func displayVerdict(discountPct *float64, showColors bool) {
	fmt.Println(strings.Repeat("-", 72))
	if discountPct == nil {
		fmt.Println("Graham verdict: not computable (earnings or book value missing/negative)")
		return
	}

	if *discountPct > 0 {
		msg := fmt.Sprintf("Graham verdict: DISCOUNTED by %.2f%%", *discountPct)
		if showColors {
			fmt.Printf("%s%s%s\n", ColorGreen, msg, ColorReset)
		} else {
			fmt.Println(msg)
		}
		return
	}

	msg := fmt.Sprintf("Graham verdict: PREMIUM of %.2f%%", -*discountPct)
	if showColors {
		fmt.Printf("%s%s%s\n", ColorRed, msg, ColorReset)
	} else {
		fmt.Println(msg)
	}
}

func displayFindings(findings []models.Finding, showColors bool) {
	if len(findings) == 0 {
		return
	}
	fmt.Println(strings.Repeat("-", 72))
	for _, f := range findings {
		if showColors {
			fmt.Printf("%s*%s %s\n", ColorBold, ColorReset, f.Message)
		} else {
			fmt.Printf("* %s\n", f.Message)
		}
	}
}

// DisplayScanTable renders the batch scan result as a sorted table followed
// by a summary block.
func DisplayScanTable(rows []models.ScanRow, showColors bool, sortBy string, maxResults int) {
	if len(rows) == 0 {
		fmt.Println("No results to display!")
		return
	}

	SortRows(rows, sortBy)

	displayed := rows
	if maxResults > 0 && len(displayed) > maxResults {
		displayed = displayed[:maxResults]
	}

	separator := strings.Repeat("=", 96)
	title := fmt.Sprintf("Value Scan - %s", time.Now().Format("2006-01-02 15:04:05"))
	if showColors {
		fmt.Printf("%s%s%s%s\n%s%s%s%s\n%s%s%s%s\n", ColorBold, ColorCyan, separator, ColorReset,
			ColorBold, ColorCyan, title, ColorReset, ColorBold, ColorCyan, separator, ColorReset)
	} else {
		fmt.Printf("%s\n%s\n%s\n", separator, title, separator)
	}

	header := fmt.Sprintf("%-8s %10s %8s %10s %8s %8s %10s %10s",
		"Ticker", "Price", "Health", "EV/EBITDA", "PEG", "SGR%", "Graham", "Disc%")
	if showColors {
		fmt.Printf("%s%s%s\n", ColorBold, header, ColorReset)
	} else {
		fmt.Println(header)
	}
	fmt.Println(strings.Repeat("-", 96))

	for _, row := range displayed {
		line := fmt.Sprintf("%-8s %10.2f %8s %10s %8s %8s %10s %10s",
			row.Symbol,
			row.Price,
			formatOptInt(row.HealthScore),
			formatOpt(row.EVToEBITDA),
			formatOpt(row.PEG),
			formatOpt(row.SGR),
			formatOpt(row.GrahamValue),
			formatOpt(row.DiscountPct),
		)
		if showColors {
			fmt.Printf("%s%s%s\n", rowColor(row), line, ColorReset)
		} else {
			fmt.Println(line)
		}
	}

	displayScanSummary(rows, showColors)
}

func rowColor(row models.ScanRow) string {
	if row.DiscountPct == nil {
		return ColorYellow
	}
	if *row.DiscountPct > 0 {
		return ColorGreen
	}
	return ColorRed
}

// SortRows orders rows in place. Unknown sort values always sink to the
// bottom regardless of direction.
func SortRows(rows []models.ScanRow, sortBy string) {
	switch sortBy {
	case SortByPEG:
		sort.SliceStable(rows, func(i, j int) bool {
			return lessOptAsc(rows[i].PEG, rows[j].PEG, rows[i].Symbol, rows[j].Symbol)
		})
	case SortByHealth:
		sort.SliceStable(rows, func(i, j int) bool {
			hi, hj := optIntAsFloat(rows[i].HealthScore), optIntAsFloat(rows[j].HealthScore)
			return lessOptDesc(hi, hj, rows[i].Symbol, rows[j].Symbol)
		})
	case SortByTicker:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Symbol < rows[j].Symbol
		})
	case SortByDiscount:
		fallthrough
	default:
		sort.SliceStable(rows, func(i, j int) bool {
			return lessOptDesc(rows[i].DiscountPct, rows[j].DiscountPct, rows[i].Symbol, rows[j].Symbol)
		})
	}
}

func optIntAsFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	return models.Float(float64(*v))
}

func lessOptAsc(a, b *float64, symA, symB string) bool {
	switch {
	case a == nil && b == nil:
		return symA < symB
	case a == nil:
		return false
	case b == nil:
		return true
	case *a != *b:
		return *a < *b
	default:
		return symA < symB
	}
}

func lessOptDesc(a, b *float64, symA, symB string) bool {
	switch {
	case a == nil && b == nil:
		return symA < symB
	case a == nil:
		return false
	case b == nil:
		return true
	case *a != *b:
		return *a > *b
	default:
		return symA < symB
	}
}

func displayScanSummary(rows []models.ScanRow, showColors bool) {
	discounted := 0
	premium := 0
	var totalDiscount float64

	for _, row := range rows {
		if row.DiscountPct == nil {
			continue
		}
		if *row.DiscountPct > 0 {
			discounted++
			totalDiscount += *row.DiscountPct
		} else {
			premium++
		}
	}

	separator := strings.Repeat("=", 96)
	fmt.Printf("\n%s\n", separator)
	fmt.Println("Summary:")
	fmt.Printf("Tickers scanned: %d\n", len(rows))
	if showColors {
		fmt.Printf("%sDiscounted: %d%s\n", ColorGreen, discounted, ColorReset)
		fmt.Printf("%sAt a premium: %d%s\n", ColorRed, premium, ColorReset)
	} else {
		fmt.Printf("Discounted: %d\n", discounted)
		fmt.Printf("At a premium: %d\n", premium)
	}
	if discounted > 0 {
		fmt.Printf("Average discount among discounted: %.2f%%\n", totalDiscount/float64(discounted))
	}
	fmt.Println(separator)
}

// ShowProgress displays a carriage-return progress indicator.
func ShowProgress(current, total int, ticker string) {
	percentage := float64(current) / float64(total) * 100
	fmt.Printf("\rScanning %s (%d/%d - %.1f%%)", ticker, current, total, percentage)

	if current == total {
		fmt.Println()
	}
}

// formatOpt renders an optional value, using N/A for unknown.
func formatOpt(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

// formatOptInt renders an optional integer, using N/A for unknown.
func formatOptInt(v *int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *v)
}
