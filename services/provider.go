package services

import (
	"context"
	"errors"

	"kurgan-screener/models"
)

// ErrNoData is returned when literally nothing usable could be retrieved for
// a symbol, not even a price.
var ErrNoData = errors.New("no usable market data")

// MarketDataProvider fetches one fundamentals snapshot per symbol.
//
// The returned record may be partial: when full fundamentals are unavailable
// but a price was retrieved, the provider returns a price-only record along
// with a non-empty advisory message. ErrNoData (or a transport error) is
// returned only when nothing usable came back.
type MarketDataProvider interface {
	Fetch(ctx context.Context, symbol string) (rec *models.FundamentalsRecord, advisory string, err error)
}
