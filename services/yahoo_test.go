package services

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kurgan-screener/models"
)

func TestYahooSymbolSuffix(t *testing.T) {
	p := NewYahooProvider(YahooOptions{SymbolSuffix: ".IS", Timeout: time.Second}, zerolog.Nop())

	assert.Equal(t, "EREGL.IS", p.yahooSymbol("eregl"))
	assert.Equal(t, "THYAO.IS", p.yahooSymbol(" THYAO "))
	// Already-qualified symbols pass through.
	assert.Equal(t, "AAPL.MX", p.yahooSymbol("AAPL.MX"))
}

func TestParseStatValue(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"12.45", 12.45, false},
		{"1,234.5", 1234.5, false},
		{"18.20%", 18.2, false},
		{"$45.10", 45.1, false},
		{"2.5B", 2.5e9, false},
		{"150M", 1.5e8, false},
		{"1.2T", 1.2e12, false},
		{"820K", 8.2e5, false},
		{"-3.4", -3.4, false},
		{"N/A", 0, true},
		{"--", 0, true},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseStatValue(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestDecodeQuoteSummary(t *testing.T) {
	body := []byte(`{
		"quoteSummary": {
			"result": [{
				"defaultKeyStatistics": {
					"trailingEps": {"raw": 10.0, "fmt": "10.00"},
					"bookValue": {"raw": 10.0, "fmt": "10.00"},
					"enterpriseToEbitda": {"raw": 5.4, "fmt": "5.40"}
				},
				"financialData": {
					"currentPrice": {"raw": 90.0},
					"returnOnEquity": {"raw": 0.18},
					"operatingCashflow": {"raw": 1200000000},
					"debtToEquity": {"raw": 42.5},
					"quickRatio": {"raw": 1.1}
				},
				"summaryDetail": {
					"trailingPE": {"raw": 9.0},
					"payoutRatio": {"raw": 0.25}
				}
			}],
			"error": null
		}
	}`)

	rec := &models.FundamentalsRecord{Symbol: "EREGL"}
	require.NoError(t, decodeQuoteSummary(body, "EREGL.IS", rec))

	require.NotNil(t, rec.EPS)
	assert.InDelta(t, 10.0, *rec.EPS, 1e-9)
	require.NotNil(t, rec.BookValuePerShare)
	require.NotNil(t, rec.EVToEBITDA)
	assert.InDelta(t, 5.4, *rec.EVToEBITDA, 1e-9)
	require.NotNil(t, rec.ROE)
	assert.InDelta(t, 0.18, *rec.ROE, 1e-9)
	require.NotNil(t, rec.DebtToEquity)
	require.NotNil(t, rec.PayoutRatio)
	require.NotNil(t, rec.Price)
	assert.InDelta(t, 90.0, *rec.Price, 1e-9)

	// Fields absent from the payload stay unknown, not zero.
	assert.Nil(t, rec.ROA)
	assert.Nil(t, rec.FreeCashFlow)
	assert.Nil(t, rec.CurrentRatio)
	assert.Nil(t, rec.OperatingMargin)
}

func TestDecodeQuoteSummaryKeepsChartPrice(t *testing.T) {
	body := []byte(`{
		"quoteSummary": {
			"result": [{
				"financialData": {"currentPrice": {"raw": 88.0}},
				"defaultKeyStatistics": {},
				"summaryDetail": {}
			}]
		}
	}`)

	rec := &models.FundamentalsRecord{Symbol: "EREGL", Price: models.Float(90)}
	require.NoError(t, decodeQuoteSummary(body, "EREGL.IS", rec))
	assert.InDelta(t, 90.0, *rec.Price, 1e-9)
}

func TestDecodeQuoteSummaryError(t *testing.T) {
	body := []byte(`{
		"quoteSummary": {
			"result": [],
			"error": {"code": "Not Found", "description": "Quote not found"}
		}
	}`)

	rec := &models.FundamentalsRecord{Symbol: "ZZZZZ"}
	assert.Error(t, decodeQuoteSummary(body, "ZZZZZ.IS", rec))
}

func TestExtractKeyStatistics(t *testing.T) {
	html := `
	<html><body>
	<table>
		<tr><td>Trailing P/E</td><td>9.10</td></tr>
		<tr><td>Price/Book (mrq)</td><td>1.25</td></tr>
		<tr><td>Diluted EPS (ttm)</td><td>10.00</td></tr>
		<tr><td>Book Value Per Share (mrq)</td><td>10.00</td></tr>
		<tr><td>Enterprise Value/EBITDA</td><td>6.80</td></tr>
	</table>
	<table>
		<tr><td>Return on Assets (ttm)</td><td>6.50%</td></tr>
		<tr><td>Return on Equity (ttm)</td><td>14.20%</td></tr>
		<tr><td>Operating Margin (ttm)</td><td>18.00%</td></tr>
		<tr><td>Payout Ratio</td><td>25.00%</td></tr>
		<tr><td>Total Debt/Equity (mrq)</td><td>48.30</td></tr>
		<tr><td>Current Ratio (mrq)</td><td>1.60</td></tr>
		<tr><td>Operating Cash Flow (ttm)</td><td>2.1B</td></tr>
		<tr><td>Levered Free Cash Flow (ttm)</td><td>850M</td></tr>
	</table>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	rec := &models.FundamentalsRecord{Symbol: "EREGL"}
	require.True(t, extractKeyStatistics(doc, rec))

	require.NotNil(t, rec.PE)
	assert.InDelta(t, 9.10, *rec.PE, 1e-9)
	require.NotNil(t, rec.EPS)
	assert.InDelta(t, 10.0, *rec.EPS, 1e-9)
	require.NotNil(t, rec.ROA)
	assert.InDelta(t, 0.065, *rec.ROA, 1e-9)
	require.NotNil(t, rec.ROE)
	assert.InDelta(t, 0.142, *rec.ROE, 1e-9)
	require.NotNil(t, rec.OperatingMargin)
	assert.InDelta(t, 0.18, *rec.OperatingMargin, 1e-9)
	require.NotNil(t, rec.OperatingCashFlow)
	assert.InDelta(t, 2.1e9, *rec.OperatingCashFlow, 1e-6)
	require.NotNil(t, rec.FreeCashFlow)
	assert.InDelta(t, 8.5e8, *rec.FreeCashFlow, 1e-6)
	require.NotNil(t, rec.DebtToEquity)
	assert.InDelta(t, 48.3, *rec.DebtToEquity, 1e-9)

	assert.Nil(t, rec.QuickRatio)
	assert.Nil(t, rec.NetIncome)
}

func TestExtractKeyStatisticsEmptyPage(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body><p>busy</p></body></html>"))
	require.NoError(t, err)

	rec := &models.FundamentalsRecord{Symbol: "EREGL"}
	assert.False(t, extractKeyStatistics(doc, rec))
}
