package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"kurgan-screener/cache"
	"kurgan-screener/commentary"
	"kurgan-screener/config"
	"kurgan-screener/models"
	"kurgan-screener/scanner"
	"kurgan-screener/services"
	"kurgan-screener/utils"
	"kurgan-screener/valuation"
)

func main() {
	// Command line flags
	var (
		ticker       = flag.String("ticker", "", "Analyze a single ticker instead of scanning")
		tickerFile   = flag.String("tickers", "", "Path to ticker CSV file")
		maxWorkers   = flag.Int("workers", 0, "Maximum number of parallel workers")
		rps          = flag.Float64("rps", 0, "Upstream requests per second")
		growthRate   = flag.Float64("growth", 0, "Manual growth rate estimate in percent")
		bondYield    = flag.Float64("yield", 0, "Risk-free bond yield in percent")
		csvFile      = flag.String("csv", "", "Export scan results to CSV file")
		showColors   = flag.Bool("colors", true, "Enable colored output")
		showProgress = flag.Bool("progress", true, "Show progress indicators")
		sortBy       = flag.String("sort", "discount", "Sort results by: discount, peg, health, ticker")
		maxResults   = flag.Int("limit", 0, "Maximum number of results to show (0 = no limit)")
		noCache      = flag.Bool("nocache", false, "Bypass the fundamentals cache")
		help         = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	// Load configuration
	cfg := config.NewDefaultConfig()
	cfg.LoadEnv()

	// Override config with command line flags
	if *tickerFile != "" {
		cfg.Scan.TickerFile = *tickerFile
	}
	if *maxWorkers > 0 {
		cfg.Scan.MaxWorkers = *maxWorkers
	}
	if *rps > 0 {
		cfg.Scan.RequestsPerSecond = *rps
	}
	if *bondYield > 0 {
		cfg.Valuation.BondYieldPct = *bondYield
	}
	if *noCache {
		cfg.Cache.Enabled = false
	}
	cfg.Output.ShowColors = *showColors
	cfg.Output.ShowProgress = *showProgress
	cfg.Output.SortBy = *sortBy
	cfg.Output.CSVFile = *csvFile
	if *maxResults > 0 {
		cfg.Output.MaxResults = *maxResults
	}

	// Validate configuration
	log := newLogger()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuration validation failed")
	}

	params := valuation.Params{BondYieldPct: cfg.Valuation.BondYieldPct}
	if *growthRate > 0 {
		params.GrowthRatePct = models.Float(*growthRate)
	}

	// Create application
	app := NewApplication(cfg, params, log)
	defer app.Close()

	// Run the application
	if err := app.Run(*ticker); err != nil {
		log.Fatal().Err(err).Msg("application failed")
	}
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().
		Level(zerolog.InfoLevel)
}

// Application wires the provider, cache and valuation engine together and
// drives the two analysis flows.
type Application struct {
	config   *config.Config
	provider services.MarketDataProvider
	engine   *valuation.Engine
	store    cache.Cache
	log      zerolog.Logger
}

// NewApplication creates a new application instance
func NewApplication(cfg *config.Config, params valuation.Params, log zerolog.Logger) *Application {
	yahoo := services.NewYahooProvider(services.YahooOptions{
		Timeout:      time.Duration(cfg.Provider.RequestTimeout) * time.Second,
		SymbolSuffix: cfg.Provider.SymbolSuffix,
		MaxRetries:   cfg.Provider.MaxRetries,
	}, log)

	app := &Application{
		config:   cfg,
		provider: yahoo,
		engine:   valuation.NewEngine(params),
		log:      log,
	}

	if cfg.Cache.Enabled {
		app.store = newCacheStore(cfg.Cache, log)
		ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
		app.provider = services.NewCachedProvider(yahoo, app.store, ttl, log)
	}

	return app
}

// newCacheStore connects to Redis when an address is configured and falls
// back to the in-process cache otherwise.
func newCacheStore(cfg config.CacheConfig, log zerolog.Logger) cache.Cache {
	if cfg.RedisAddr != "" {
		store, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err == nil {
			log.Info().Str("addr", cfg.RedisAddr).Msg("using redis cache")
			return store
		}
		log.Warn().Err(err).Msg("redis unavailable, using in-memory cache")
	}
	return cache.NewMemoryCache()
}

// Close releases the cache connection if one was opened.
func (app *Application) Close() {
	if app.store != nil {
		if err := app.store.Close(); err != nil {
			app.log.Warn().Err(err).Msg("failed to close cache")
		}
	}
}

// Run executes a single-ticker analysis when ticker is non-empty, otherwise
// a full basket scan.
func (app *Application) Run(ticker string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if ticker != "" {
		return app.runSingle(ctx, ticker)
	}
	return app.runScan(ctx)
}

// runSingle fetches one ticker, derives its metrics and prints the full
// report with commentary.
func (app *Application) runSingle(ctx context.Context, ticker string) error {
	rec, advisory, err := app.provider.Fetch(ctx, ticker)
	if err != nil {
		return fmt.Errorf("failed to fetch data for %s: %w", ticker, err)
	}
	if rec == nil || rec.Price == nil {
		return fmt.Errorf("no price available for %s", ticker)
	}

	metrics := app.engine.Derive(rec)
	findings := commentary.Evaluate(commentary.Input{
		PEG:         metrics.PEG(),
		EVToEBITDA:  rec.EVToEBITDA,
		SGRPct:      metrics.SustainableGrowth,
		GrahamValue: metrics.GrahamDefensive,
		Price:       rec.Price,
		HealthScore: metrics.HealthScore,
	})

	utils.DisplayRecord(rec, metrics, findings, advisory, app.config.Output.ShowColors)
	return nil
}

// runScan screens the whole basket and prints the result table.
func (app *Application) runScan(ctx context.Context) error {
	tickers, err := app.loadTickers()
	if err != nil {
		return fmt.Errorf("failed to load tickers: %w", err)
	}
	fmt.Printf("Scanning %d tickers with %d parallel workers...\n",
		len(tickers), app.config.Scan.MaxWorkers)

	opts := scanner.Options{
		Workers:           app.config.Scan.MaxWorkers,
		RequestsPerSecond: app.config.Scan.RequestsPerSecond,
	}
	if app.config.Output.ShowProgress {
		opts.Progress = utils.ShowProgress
	}

	rows, err := scanner.New(app.provider, app.engine, opts, app.log).Scan(ctx, tickers)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	utils.DisplayScanTable(
		rows,
		app.config.Output.ShowColors,
		app.config.Output.SortBy,
		app.config.Output.MaxResults,
	)

	if app.config.Output.CSVFile != "" {
		if err := utils.WriteScanCSV(app.config.Output.CSVFile, rows); err != nil {
			return fmt.Errorf("failed to export CSV: %w", err)
		}
		fmt.Printf("Results exported to %s\n", app.config.Output.CSVFile)
	}

	return nil
}

// loadTickers loads ticker symbols from the CSV file or uses the default
// basket.
func (app *Application) loadTickers() ([]string, error) {
	if app.config.Scan.TickerFile == "" {
		return services.DefaultBasket(), nil
	}
	tickers, err := services.LoadTickersFromCSV(app.config.Scan.TickerFile)
	if err != nil {
		return nil, err
	}
	return tickers, nil
}

// showHelp displays help information
func showHelp() {
	fmt.Println("Stock Fundamentals Screener")
	fmt.Println("===========================")
	fmt.Println()
	fmt.Println("Screens stocks on fundamental health and intrinsic value:")
	fmt.Println("- Graham defensive and growth values")
	fmt.Println("- Sustainable growth rate and PEG ratio")
	fmt.Println("- A 0-9 financial health score")
	fmt.Println("- Rule-based commentary per ticker")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  kurgan-screener [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -ticker string     Analyze a single ticker instead of scanning")
	fmt.Println("  -tickers string    Path to ticker CSV file (default: built-in basket)")
	fmt.Println("  -workers int       Maximum number of parallel workers (default 4)")
	fmt.Println("  -rps float         Upstream requests per second (default 2)")
	fmt.Println("  -growth float      Manual growth rate estimate in percent")
	fmt.Println("  -yield float       Risk-free bond yield in percent (default 25)")
	fmt.Println("  -csv string        Export scan results to CSV file")
	fmt.Println("  -colors            Enable colored output (default true)")
	fmt.Println("  -progress          Show progress indicators (default true)")
	fmt.Println("  -sort string       Sort results by: discount, peg, health, ticker")
	fmt.Println("  -limit int         Maximum number of results to show (0 = no limit)")
	fmt.Println("  -nocache           Bypass the fundamentals cache")
	fmt.Println("  -help              Show this help message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  kurgan-screener -ticker EREGL")
	fmt.Println("  kurgan-screener -workers 4 -sort peg -limit 10")
	fmt.Println("  kurgan-screener -tickers watchlist.csv -csv results.csv")
	fmt.Println()
}
