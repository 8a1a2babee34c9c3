package marketdata

import (
	"context"
	"sync"
	"time"

	"titandash/internal/domain/models"
	drepo "titandash/internal/domain/repository"
	"titandash/pkg/cache"
	applogger "titandash/pkg/logger"
	"titandash/pkg/meta"
)

const (
	priceTTLMs     = 10000
	fallbackTTLMs  = 30000
	fearGreedTTLMs = 60000
)

// Service serves real-time market data with a short-lived price cache
// and a database fallback when the upstream source is unreachable.
type Service struct {
	source   drepo.MarketSource
	store    drepo.DashboardStore
	cache    cache.Service
	pub      drepo.Publisher
	metrics  drepo.Metrics
	l        *applogger.Logger
	priceTTL time.Duration
	now      func() time.Time
}

// Option configures Service.
type Option func(*Service)

// WithPublisher attaches a price tick publisher.
func WithPublisher(pub drepo.Publisher) Option {
	return func(s *Service) { s.pub = pub }
}

// WithPriceTTL overrides the price cache TTL.
func WithPriceTTL(ttl time.Duration) Option {
	return func(s *Service) { s.priceTTL = ttl }
}

// WithClock overrides the time source. Tests use this.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a market data service.
func New(source drepo.MarketSource, store drepo.DashboardStore, c cache.Service, metrics drepo.Metrics, l *applogger.Logger, opts ...Option) *Service {
	s := &Service{
		source:   source,
		store:    store,
		cache:    c,
		metrics:  metrics,
		l:        l,
		priceTTL: 10 * time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func priceKey(symbol string) string {
	return cache.GenerateKey("price", symbol)
}

// FetchRealTimePrices returns the latest prices for the given symbols.
// Cached entries are served directly; uncached symbols are fetched
// from the upstream source in parallel, with a per-symbol database
// fallback. When the upstream fails for every requested symbol the
// result is rebuilt from the database and marked stale.
func (s *Service) FetchRealTimePrices(ctx context.Context, symbols []string) (*models.PricesResult, error) {
	start := s.now()
	prices := models.MarketPrices{}

	needsFetch := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		var p models.PriceData
		if err := s.cache.Get(ctx, priceKey(symbol), &p); err == nil {
			s.metrics.RecordCacheLookup("price", "hit")
			prices[symbol] = p
			continue
		}
		s.metrics.RecordCacheLookup("price", "miss")
		needsFetch = append(needsFetch, symbol)
	}

	liveHits := 0
	if len(needsFetch) > 0 {
		type item struct {
			symbol string
			price  *models.PriceData
			err    error
		}
		ch := make(chan item, len(needsFetch))
		var wg sync.WaitGroup

		for _, symbol := range needsFetch {
			wg.Add(1)
			go func(symbol string) {
				defer wg.Done()
				p, err := s.source.Ticker24h(ctx, symbol)
				ch <- item{symbol, p, err}
			}(symbol)
		}
		go func() { wg.Wait(); close(ch) }()

		for it := range ch {
			if it.err != nil || it.price == nil {
				s.metrics.RecordUpstreamFetch("binance", "error")
				if it.err != nil {
					s.l.Warn("price fetch failed",
						applogger.String("symbol", it.symbol),
						applogger.Error(it.err),
					)
				}
				if p, err := s.store.LatestPrice(ctx, it.symbol); err == nil && p != nil {
					s.metrics.RecordFallback("price")
					prices[it.symbol] = *p
				}
				continue
			}

			liveHits++
			s.metrics.RecordUpstreamFetch("binance", "ok")
			s.metrics.RecordLastPrice(it.symbol, it.price.Price)
			prices[it.symbol] = *it.price

			if err := s.cache.Set(ctx, priceKey(it.symbol), *it.price, s.priceTTL); err != nil {
				s.l.Warn("price cache set failed", applogger.Error(err))
			}
			s.storeAsync(it.symbol, *it.price)
		}
	}

	s.metrics.RecordLatency("fetch_prices", time.Since(start).Seconds())

	// Upstream down for every symbol we actually tried: stale bff data.
	if len(needsFetch) > 0 && liveHits == 0 && len(needsFetch) == len(symbols) {
		return &models.PricesResult{
			Prices: prices,
			Meta: meta.Signature{
				Source: meta.SourceBFF,
				TS:     s.now().UnixMilli(),
				TTLMs:  fallbackTTLMs,
				Stale:  true,
			},
		}, nil
	}

	return &models.PricesResult{
		Prices: prices,
		Meta: meta.Signature{
			Source: meta.SourceReal,
			TS:     s.now().UnixMilli(),
			TTLMs:  priceTTLMs,
		},
	}, nil
}

// storeAsync persists a price snapshot without blocking the request.
func (s *Service) storeAsync(symbol string, p models.PriceData) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.StorePrice(ctx, symbol, p); err != nil {
			s.l.Warn("price store failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		if s.pub != nil {
			if err := s.pub.PublishPrice(ctx, symbol, p); err != nil {
				s.l.Warn("price publish failed",
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
		}
	}()
}

// WarmTick updates the price cache from a streaming source.
func (s *Service) WarmTick(symbol string, p models.PriceData) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Set(ctx, priceKey(symbol), p, s.priceTTL); err != nil {
		s.l.Warn("warm tick cache set failed", applogger.Error(err))
		return
	}
	s.metrics.RecordLastPrice(symbol, p.Price)
}

// GetFearGreedIndex derives a sentiment reading from the BTC 24h move.
func (s *Service) GetFearGreedIndex(ctx context.Context) (*models.FearGreedResult, error) {
	res, err := s.FetchRealTimePrices(ctx, []string{"BTCUSDT"})
	if err != nil || res == nil {
		return s.neutralFearGreed(), nil
	}

	btc, ok := res.Prices["BTCUSDT"]
	if !ok {
		return s.neutralFearGreed(), nil
	}

	value := 50
	classification := "Neutral"
	switch {
	case btc.Change24h > 5:
		value = 75
		classification = "Greed"
	case btc.Change24h < -5:
		value = 25
		classification = "Fear"
	}

	return &models.FearGreedResult{
		Index: models.FearGreedIndex{
			Value:          value,
			Classification: classification,
			LastUpdate:     s.now().UnixMilli(),
		},
		Meta: meta.Signature{
			Source: meta.SourceReal,
			TS:     s.now().UnixMilli(),
			TTLMs:  fearGreedTTLMs,
		},
	}, nil
}

func (s *Service) neutralFearGreed() *models.FearGreedResult {
	return &models.FearGreedResult{
		Index: models.FearGreedIndex{
			Value:          50,
			Classification: "Neutral",
			LastUpdate:     s.now().UnixMilli(),
		},
		Meta: meta.Signature{
			Source: meta.SourceBFF,
			TS:     s.now().UnixMilli(),
			TTLMs:  fearGreedTTLMs,
			Stale:  true,
		},
	}
}
