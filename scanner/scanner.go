// Package scanner drives the batch screening flow: it paces fetches against
// the upstream provider, runs the valuation engine per ticker, and aggregates
// the survivors into flattened rows.
package scanner

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"kurgan-screener/models"
	"kurgan-screener/services"
	"kurgan-screener/utils"
	"kurgan-screener/valuation"
)

// ProgressFunc receives completion updates during a scan.
type ProgressFunc func(done, total int, symbol string)

// Options configures a Scanner.
type Options struct {
	Workers           int
	RequestsPerSecond float64
	Progress          ProgressFunc // optional
}

// Scanner screens a basket of tickers. Each ticker is fetched, scored and
// flattened independently; tickers yielding no usable record are skipped
// silently and only an empty result set is reported as an error.
type Scanner struct {
	provider services.MarketDataProvider
	engine   *valuation.Engine
	workers  int
	limiter  *rate.Limiter
	progress ProgressFunc
	log      zerolog.Logger
}

// New creates a Scanner.
func New(provider services.MarketDataProvider, engine *valuation.Engine, opts Options, log zerolog.Logger) *Scanner {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}
	return &Scanner{
		provider: provider,
		engine:   engine,
		workers:  opts.Workers,
		limiter:  rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		progress: opts.Progress,
		log:      log.With().Str("service", "scanner").Logger(),
	}
}

// Scan screens the given tickers and returns one row per ticker that yielded
// a usable record. Returns an error only when the whole basket produced zero
// rows or the context was cancelled.
func (s *Scanner) Scan(ctx context.Context, tickers []string) ([]models.ScanRow, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers to scan")
	}

	type outcome struct {
		symbol string
		row    *models.ScanRow
	}
	outcomes := make(chan outcome, len(tickers))

	pool := utils.NewWorkerPool(s.workers)
	defer pool.Close()

	for _, ticker := range tickers {
		symbol := ticker
		pool.Submit(func() {
			outcomes <- outcome{symbol: symbol, row: s.scanOne(ctx, symbol)}
		})
	}

	var rows []models.ScanRow
	for done := 1; done <= len(tickers); done++ {
		select {
		case out := <-outcomes:
			if s.progress != nil {
				s.progress(done, len(tickers), out.symbol)
			}
			if out.row != nil {
				rows = append(rows, *out.row)
			}
		case <-ctx.Done():
			return nil, fmt.Errorf("scan cancelled: %w", ctx.Err())
		}
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no usable data for any of the %d tickers", len(tickers))
	}

	s.log.Info().Int("tickers", len(tickers)).Int("rows", len(rows)).Msg("scan complete")
	return rows, nil
}

// scanOne fetches and scores a single ticker. A nil return means the ticker
// is skipped.
func (s *Scanner) scanOne(ctx context.Context, symbol string) *models.ScanRow {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil
	}

	rec, advisory, err := s.provider.Fetch(ctx, symbol)
	if err != nil {
		s.log.Debug().Str("symbol", symbol).Err(err).Msg("skipping ticker")
		return nil
	}
	if advisory != "" {
		s.log.Debug().Str("symbol", symbol).Str("advisory", advisory).Msg("partial record")
	}
	if rec == nil || rec.Price == nil {
		return nil
	}

	metrics := s.engine.Derive(rec)
	return &models.ScanRow{
		Symbol:      rec.Symbol,
		Price:       *rec.Price,
		HealthScore: metrics.HealthScore,
		EVToEBITDA:  rec.EVToEBITDA,
		PEG:         metrics.PEG(),
		SGR:         metrics.SustainableGrowth,
		GrahamValue: metrics.GrahamDefensive,
		DiscountPct: metrics.DiscountPct,
	}
}
