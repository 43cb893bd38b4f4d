// Package market serves cached ETF holdings and price history.
package market

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/stock-radar/internal/cache"
	"github.com/bobmcallan/stock-radar/internal/clients/ishares"
	"github.com/bobmcallan/stock-radar/internal/clients/stooq"
	"github.com/bobmcallan/stock-radar/internal/common"
)

const maxCacheEntries = 256

// HistorySource fetches daily bars.
type HistorySource interface {
	History(ctx context.Context, ticker string, days int) ([]stooq.Bar, error)
}

// HoldingsSource fetches ETF holdings.
type HoldingsSource interface {
	Holdings(ctx context.Context, etf string) ([]ishares.Holding, error)
}

// History is the /api/market/history response body.
type History struct {
	Ticker string      `json:"ticker"`
	Bars   []stooq.Bar `json:"bars"`
	Cached bool        `json:"cached"`
}

// Holdings is the /api/market/holdings response body.
type Holdings struct {
	ETF      string            `json:"etf"`
	Holdings []ishares.Holding `json:"holdings"`
	Cached   bool              `json:"cached"`
}

// Service fronts the market data clients with a TTL cache.
type Service struct {
	history       HistorySource
	holdings      HoldingsSource
	historyCache  *cache.TTLCache[[]stooq.Bar]
	holdingsCache *cache.TTLCache[[]ishares.Holding]
	days          int
	logger        *common.Logger
}

// NewService creates a market data service. days is the default history length.
func NewService(history HistorySource, holdings HoldingsSource, ttl time.Duration, days int, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if days <= 0 {
		days = stooq.DefaultDays
	}
	return &Service{
		history:       history,
		holdings:      holdings,
		historyCache:  cache.New[[]stooq.Bar](ttl, maxCacheEntries),
		holdingsCache: cache.New[[]ishares.Holding](ttl, maxCacheEntries),
		days:          days,
		logger:        logger,
	}
}

// DefaultDays is the history length used when a request does not set one.
func (s *Service) DefaultDays() int { return s.days }

// History returns up to days bars for ticker. days <= 0 uses the default.
func (s *Service) History(ctx context.Context, ticker string, days int) (*History, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if err := stooq.ValidateTicker(ticker); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = s.days
	}

	key := cache.MakeKey("stooq", ticker, strconv.Itoa(days))
	bars, hit, err := s.historyCache.GetOrLoad(key, func() ([]stooq.Bar, error) {
		return s.history.History(ctx, ticker, days)
	})
	if err != nil {
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Price history unavailable")
		return nil, err
	}

	s.logger.Debug().Str("ticker", ticker).Bool("cached", hit).Int("bars", len(bars)).Msg("Price history served")
	return &History{Ticker: ticker, Bars: bars, Cached: hit}, nil
}

// Holdings returns the filtered holdings of etf.
func (s *Service) Holdings(ctx context.Context, etf string) (*Holdings, error) {
	etf = strings.ToUpper(strings.TrimSpace(etf))

	key := cache.MakeKey("ishares", etf)
	holdings, hit, err := s.holdingsCache.GetOrLoad(key, func() ([]ishares.Holding, error) {
		return s.holdings.Holdings(ctx, etf)
	})
	if err != nil {
		s.logger.Warn().Str("etf", etf).Err(err).Msg("ETF holdings unavailable")
		return nil, err
	}

	s.logger.Debug().Str("etf", etf).Bool("cached", hit).Int("holdings", len(holdings)).Msg("ETF holdings served")
	return &Holdings{ETF: etf, Holdings: holdings, Cached: hit}, nil
}
