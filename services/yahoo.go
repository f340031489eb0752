package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"kurgan-screener/models"
)

// YahooOptions configures the Yahoo Finance provider.
type YahooOptions struct {
	Timeout      time.Duration
	SymbolSuffix string // appended to bare symbols, e.g. ".IS" for BIST
	MaxRetries   int
}

// YahooProvider fetches fundamentals from Yahoo Finance. The fast chart
// endpoint is hit first so that a throttled fundamentals call still yields a
// usable price-only record; the quoteSummary JSON API supplies the
// fundamentals, with an HTML scrape of the key-statistics page as fallback.
type YahooProvider struct {
	httpClient   *http.Client
	symbolSuffix string
	maxRetries   int
	userAgents   []string
	log          zerolog.Logger
}

// NewYahooProvider creates a Yahoo Finance backed MarketDataProvider.
func NewYahooProvider(opts YahooOptions, log zerolog.Logger) *YahooProvider {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	return &YahooProvider{
		httpClient:   &http.Client{Timeout: opts.Timeout},
		symbolSuffix: opts.SymbolSuffix,
		maxRetries:   opts.MaxRetries,
		userAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
		},
		log: log.With().Str("service", "yahoo_provider").Logger(),
	}
}

// Fetch retrieves one fundamentals snapshot. See MarketDataProvider for the
// partial-record contract.
func (p *YahooProvider) Fetch(ctx context.Context, symbol string) (*models.FundamentalsRecord, string, error) {
	ySymbol := p.yahooSymbol(symbol)
	rec := &models.FundamentalsRecord{
		Symbol:    symbol,
		FetchTime: time.Now(),
	}

	// Price first: the chart endpoint tolerates throttling far better than
	// the fundamentals endpoints.
	if price, err := p.fetchPrice(ctx, ySymbol); err != nil {
		p.log.Debug().Str("symbol", symbol).Err(err).Msg("chart price fetch failed")
	} else {
		rec.Price = models.Float(price)
	}

	fundErr := p.fetchQuoteSummary(ctx, ySymbol, rec)
	if fundErr != nil {
		p.log.Debug().Str("symbol", symbol).Err(fundErr).Msg("quoteSummary failed, trying HTML scrape")
		fundErr = p.scrapeKeyStatistics(ctx, ySymbol, rec)
	}

	if fundErr != nil {
		if rec.Price == nil {
			return nil, "", fmt.Errorf("fetch %s: %w", symbol, ErrNoData)
		}
		rec.Normalize()
		return rec, fmt.Sprintf("upstream is busy: only the price could be retrieved for %s", symbol), nil
	}

	if rec.Price == nil {
		return nil, "", fmt.Errorf("fetch %s: no price available: %w", symbol, ErrNoData)
	}

	rec.Normalize()
	return rec, "", nil
}

// yahooSymbol maps an exchange ticker to Yahoo's identifier. Symbols that
// already carry a suffix pass through untouched.
func (p *YahooProvider) yahooSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if p.symbolSuffix == "" || strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + p.symbolSuffix
}

// yahooChartResponse is the trimmed shape of the v8 chart endpoint.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (p *YahooProvider) fetchPrice(ctx context.Context, ySymbol string) (float64, error) {
	url := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s", ySymbol)

	body, err := p.doGet(ctx, url)
	if err != nil {
		return 0, err
	}

	var chartResp yahooChartResponse
	if err := json.Unmarshal(body, &chartResp); err != nil {
		return 0, fmt.Errorf("failed to parse chart response: %w", err)
	}
	if chartResp.Chart.Error != nil {
		return 0, fmt.Errorf("chart API error: %s", chartResp.Chart.Error.Description)
	}
	if len(chartResp.Chart.Result) == 0 {
		return 0, fmt.Errorf("no chart data for %s", ySymbol)
	}

	price := chartResp.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, fmt.Errorf("no valid price for %s", ySymbol)
	}
	return price, nil
}

// yahooValue is Yahoo's {raw, fmt} number envelope. Raw stays nil when the
// field is absent, which keeps unknown distinct from zero downstream.
type yahooValue struct {
	Raw *float64 `json:"raw"`
}

type yahooQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			DefaultKeyStatistics struct {
				TrailingEps        yahooValue `json:"trailingEps"`
				BookValue          yahooValue `json:"bookValue"`
				PriceToBook        yahooValue `json:"priceToBook"`
				EnterpriseToEbitda yahooValue `json:"enterpriseToEbitda"`
				NetIncomeToCommon  yahooValue `json:"netIncomeToCommon"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				CurrentPrice      yahooValue `json:"currentPrice"`
				ReturnOnAssets    yahooValue `json:"returnOnAssets"`
				ReturnOnEquity    yahooValue `json:"returnOnEquity"`
				OperatingMargins  yahooValue `json:"operatingMargins"`
				OperatingCashflow yahooValue `json:"operatingCashflow"`
				FreeCashflow      yahooValue `json:"freeCashflow"`
				DebtToEquity      yahooValue `json:"debtToEquity"`
				CurrentRatio      yahooValue `json:"currentRatio"`
				QuickRatio        yahooValue `json:"quickRatio"`
			} `json:"financialData"`
			SummaryDetail struct {
				TrailingPE  yahooValue `json:"trailingPE"`
				PayoutRatio yahooValue `json:"payoutRatio"`
			} `json:"summaryDetail"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

func (p *YahooProvider) fetchQuoteSummary(ctx context.Context, ySymbol string, rec *models.FundamentalsRecord) error {
	url := fmt.Sprintf(
		"https://query1.finance.yahoo.com/v10/finance/quoteSummary/%s?modules=defaultKeyStatistics,financialData,summaryDetail",
		ySymbol,
	)

	body, err := p.doGet(ctx, url)
	if err != nil {
		return err
	}
	return decodeQuoteSummary(body, ySymbol, rec)
}

// decodeQuoteSummary maps a quoteSummary payload onto the record. Absent
// fields stay nil.
func decodeQuoteSummary(body []byte, ySymbol string, rec *models.FundamentalsRecord) error {
	var resp yahooQuoteSummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse quoteSummary response: %w", err)
	}
	if resp.QuoteSummary.Error != nil {
		return fmt.Errorf("quoteSummary error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return fmt.Errorf("no quoteSummary data for %s", ySymbol)
	}

	result := resp.QuoteSummary.Result[0]
	stats := result.DefaultKeyStatistics
	fin := result.FinancialData
	detail := result.SummaryDetail

	rec.EPS = stats.TrailingEps.Raw
	rec.BookValuePerShare = stats.BookValue.Raw
	rec.PB = stats.PriceToBook.Raw
	rec.EVToEBITDA = stats.EnterpriseToEbitda.Raw
	rec.NetIncome = stats.NetIncomeToCommon.Raw
	rec.PE = detail.TrailingPE.Raw
	rec.PayoutRatio = detail.PayoutRatio.Raw
	rec.ROA = fin.ReturnOnAssets.Raw
	rec.ROE = fin.ReturnOnEquity.Raw
	rec.OperatingMargin = fin.OperatingMargins.Raw
	rec.OperatingCashFlow = fin.OperatingCashflow.Raw
	rec.FreeCashFlow = fin.FreeCashflow.Raw
	rec.DebtToEquity = fin.DebtToEquity.Raw
	rec.CurrentRatio = fin.CurrentRatio.Raw
	rec.QuickRatio = fin.QuickRatio.Raw

	if rec.Price == nil {
		rec.Price = fin.CurrentPrice.Raw
	}

	return nil
}

// scrapeKeyStatistics extracts fundamentals from the key-statistics HTML
// page. Coverage is narrower than quoteSummary; it only fills fields it can
// positively identify by row label.
func (p *YahooProvider) scrapeKeyStatistics(ctx context.Context, ySymbol string, rec *models.FundamentalsRecord) error {
	url := fmt.Sprintf("https://finance.yahoo.com/quote/%s/key-statistics/", ySymbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	p.setRequestHeaders(req)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch key-statistics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("key-statistics returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	if !extractKeyStatistics(doc, rec) {
		return fmt.Errorf("no fundamentals found on key-statistics page for %s", ySymbol)
	}
	return nil
}

// extractKeyStatistics walks the statistics tables and fills rec from
// recognized row labels. Returns false when nothing was extracted.
func extractKeyStatistics(doc *goquery.Document, rec *models.FundamentalsRecord) bool {
	found := false

	assign := func(dest **float64, value string, percent bool) {
		v, err := parseStatValue(value)
		if err != nil {
			return
		}
		if percent {
			v /= 100
		}
		*dest = models.Float(v)
		found = true
	}

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			label := strings.ToLower(strings.TrimSpace(row.Find("td").First().Text()))
			value := strings.TrimSpace(row.Find("td").Last().Text())

			switch {
			case strings.Contains(label, "trailing p/e"):
				assign(&rec.PE, value, false)
			case strings.Contains(label, "price/book"):
				assign(&rec.PB, value, false)
			case strings.Contains(label, "diluted eps"):
				assign(&rec.EPS, value, false)
			case strings.Contains(label, "book value per share"):
				assign(&rec.BookValuePerShare, value, false)
			case strings.Contains(label, "enterprise value/ebitda"):
				assign(&rec.EVToEBITDA, value, false)
			case strings.Contains(label, "return on assets"):
				assign(&rec.ROA, value, true)
			case strings.Contains(label, "return on equity"):
				assign(&rec.ROE, value, true)
			case strings.Contains(label, "operating margin"):
				assign(&rec.OperatingMargin, value, true)
			case strings.Contains(label, "payout ratio"):
				assign(&rec.PayoutRatio, value, true)
			case strings.Contains(label, "total debt/equity"):
				assign(&rec.DebtToEquity, value, false)
			case strings.Contains(label, "current ratio"):
				assign(&rec.CurrentRatio, value, false)
			case strings.Contains(label, "operating cash flow"):
				assign(&rec.OperatingCashFlow, value, false)
			case strings.Contains(label, "levered free cash flow"):
				assign(&rec.FreeCashFlow, value, false)
			case strings.Contains(label, "net income avi to common"):
				assign(&rec.NetIncome, value, false)
			}
		})
	})

	return found
}

// parseStatValue parses the value formats Yahoo uses in its statistics
// tables: plain numbers, percentages, and K/M/B/T abbreviated amounts.
func parseStatValue(value string) (float64, error) {
	cleaned := strings.ReplaceAll(value, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, "%", "")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" || cleaned == "N/A" || cleaned == "--" {
		return 0, fmt.Errorf("no valid value")
	}

	multiplier := 1.0
	if n := len(cleaned); n > 0 {
		switch cleaned[n-1] {
		case 'K', 'k':
			multiplier = 1e3
			cleaned = cleaned[:n-1]
		case 'M', 'm':
			multiplier = 1e6
			cleaned = cleaned[:n-1]
		case 'B', 'b':
			multiplier = 1e9
			cleaned = cleaned[:n-1]
		case 'T', 't':
			multiplier = 1e12
			cleaned = cleaned[:n-1]
		}
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", value)
	}
	return v * multiplier, nil
}

// doGet performs a GET with browser-like headers, retrying on throttling and
// server errors with simple backoff.
func (p *YahooProvider) doGet(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < p.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		p.setRequestHeaders(req)
		req.Header.Set("Accept", "application/json")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK && readErr == nil:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("yahoo returned status %d", resp.StatusCode)
			continue
		case readErr != nil:
			lastErr = readErr
			continue
		default:
			return nil, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", p.maxRetries, lastErr)
}

// setRequestHeaders sets browser-like headers. Yahoo rejects requests with a
// default Go user agent.
func (p *YahooProvider) setRequestHeaders(req *http.Request) {
	userAgent := p.userAgents[int(time.Now().UnixNano())%len(p.userAgents)]
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
}
