package marketdata

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"titandash/internal/domain/models"
	"titandash/pkg/cache"
	applogger "titandash/pkg/logger"
	"titandash/pkg/meta"
)

type fakeSource struct {
	mu     sync.Mutex
	calls  map[string]int
	prices map[string]models.PriceData
	fail   bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		calls:  map[string]int{},
		prices: map[string]models.PriceData{},
	}
}

func (f *fakeSource) Ticker24h(_ context.Context, symbol string) (*models.PriceData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[symbol]++
	if f.fail {
		return nil, errors.New("upstream down")
	}
	p, ok := f.prices[symbol]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	return &p, nil
}

func (f *fakeSource) callCount(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[symbol]
}

// storeTestStub satisfies the parts of DashboardStore this package
// never touches.
type storeTestStub struct{}

func (storeTestStub) Init(context.Context) error    { return nil }
func (storeTestStub) Health(context.Context) error  { return nil }
func (storeTestStub) Close() error                  { return nil }
func (storeTestStub) PortfolioBalance(context.Context, string) (float64, error) { return 0, nil }
func (storeTestStub) PortfolioAssets(context.Context, string) ([]models.PortfolioAsset, error) {
	return nil, nil
}
func (storeTestStub) TradeStats(context.Context, string) (*models.TradeStats, error) {
	return &models.TradeStats{}, nil
}
func (storeTestStub) Transactions(context.Context, string, int) ([]models.Transaction, error) {
	return nil, nil
}
func (storeTestStub) ActiveTradesCount(context.Context, string) (int, error)     { return 0, nil }
func (storeTestStub) TodayTradesCount(context.Context, string) (int, error)      { return 0, nil }
func (storeTestStub) PendingOrdersCount(context.Context, string) (int, error)    { return 0, nil }
func (storeTestStub) Volume24h(context.Context, string) (float64, error)         { return 0, nil }
func (storeTestStub) ActiveSignals(context.Context, int) ([]models.AISignal, error) {
	return nil, nil
}
func (storeTestStub) ActiveStrategiesCount(context.Context, string) (int, error) { return 0, nil }
func (storeTestStub) OpenExposure(context.Context, string) (float64, error)      { return 0, nil }
func (storeTestStub) MaxLoss30d(context.Context, string) (float64, error)        { return 0, nil }
func (storeTestStub) DailyPnLSeries(context.Context, string, int) ([]models.PnLPoint, error) {
	return nil, nil
}
func (storeTestStub) DailyVolumeSeries(context.Context, string, int) ([]models.VolumePoint, error) {
	return nil, nil
}

type fakeStore struct {
	storeTestStub
	mu     sync.Mutex
	stored map[string]models.PriceData
	latest map[string]models.PriceData
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		stored: map[string]models.PriceData{},
		latest: map[string]models.PriceData{},
	}
}

func (f *fakeStore) StorePrice(_ context.Context, symbol string, p models.PriceData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored[symbol] = p
	return nil
}

func (f *fakeStore) LatestPrice(_ context.Context, symbol string) (*models.PriceData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.latest[symbol]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeStore) storedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stored)
}

type nopMetrics struct{}

func (nopMetrics) RecordUpstreamFetch(source, result string)   {}
func (nopMetrics) RecordFallback(section string)               {}
func (nopMetrics) RecordSubQueryError(slot string)             {}
func (nopMetrics) RecordCacheLookup(kind, outcome string)      {}
func (nopMetrics) RecordLastPrice(symbol string, price float64) {}
func (nopMetrics) RecordLatency(op string, seconds float64)    {}

func newTestService(src *fakeSource, store *fakeStore) *Service {
	mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(100))
	return New(src, store, mc, nopMetrics{}, applogger.Nop())
}

func TestFetchRealTimePricesLive(t *testing.T) {
	src := newFakeSource()
	src.prices["BTCUSDT"] = models.PriceData{Price: 43250.50, Change24h: 2.35, LastUpdate: 1700000000000}
	src.prices["ETHUSDT"] = models.PriceData{Price: 2680.75, Change24h: 3.12, LastUpdate: 1700000000000}
	store := newFakeStore()
	svc := newTestService(src, store)

	res, err := svc.FetchRealTimePrices(context.Background(), []string{"BTCUSDT", "ETHUSDT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Meta.Source != meta.SourceReal {
		t.Fatalf("expected real source, got %s", res.Meta.Source)
	}
	if res.Meta.Stale {
		t.Fatalf("expected fresh meta")
	}
	if res.Meta.TTLMs != 10000 {
		t.Fatalf("unexpected ttl %d", res.Meta.TTLMs)
	}
	if got := res.Prices["BTCUSDT"].Price; got != 43250.50 {
		t.Fatalf("unexpected btc price %v", got)
	}
	if len(res.Prices) != 2 {
		t.Fatalf("expected 2 prices, got %d", len(res.Prices))
	}
}

func TestFetchRealTimePricesCached(t *testing.T) {
	src := newFakeSource()
	src.prices["BTCUSDT"] = models.PriceData{Price: 50000}
	store := newFakeStore()
	svc := newTestService(src, store)
	ctx := context.Background()

	if _, err := svc.FetchRealTimePrices(ctx, []string{"BTCUSDT"}); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if _, err := svc.FetchRealTimePrices(ctx, []string{"BTCUSDT"}); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if got := src.callCount("BTCUSDT"); got != 1 {
		t.Fatalf("expected 1 upstream call, got %d", got)
	}
}

func TestFetchRealTimePricesDBFallbackPerSymbol(t *testing.T) {
	src := newFakeSource()
	src.prices["BTCUSDT"] = models.PriceData{Price: 50000}
	store := newFakeStore()
	store.latest["ETHUSDT"] = models.PriceData{Price: 2500, LastUpdate: 1690000000000}
	svc := newTestService(src, store)

	res, err := svc.FetchRealTimePrices(context.Background(), []string{"BTCUSDT", "ETHUSDT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Meta.Source != meta.SourceReal {
		t.Fatalf("expected real source with partial live data, got %s", res.Meta.Source)
	}
	if got := res.Prices["ETHUSDT"].Price; got != 2500 {
		t.Fatalf("expected db fallback price, got %v", got)
	}
}

func TestFetchRealTimePricesAllFailedMarksStale(t *testing.T) {
	src := newFakeSource()
	src.fail = true
	store := newFakeStore()
	store.latest["BTCUSDT"] = models.PriceData{Price: 41000}
	svc := newTestService(src, store)

	res, err := svc.FetchRealTimePrices(context.Background(), []string{"BTCUSDT", "ETHUSDT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Meta.Source != meta.SourceBFF {
		t.Fatalf("expected bff source, got %s", res.Meta.Source)
	}
	if !res.Meta.Stale {
		t.Fatalf("expected stale meta")
	}
	if got := res.Prices["BTCUSDT"].Price; got != 41000 {
		t.Fatalf("expected db price, got %v", got)
	}
	if _, ok := res.Prices["ETHUSDT"]; ok {
		t.Fatalf("expected no entry for symbol absent everywhere")
	}
}

func TestFetchStoresPricesAsync(t *testing.T) {
	src := newFakeSource()
	src.prices["BTCUSDT"] = models.PriceData{Price: 50000}
	store := newFakeStore()
	svc := newTestService(src, store)

	if _, err := svc.FetchRealTimePrices(context.Background(), []string{"BTCUSDT"}); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for store.storedCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("price was never stored")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFearGreedMapping(t *testing.T) {
	cases := []struct {
		name           string
		change         float64
		value          int
		classification string
	}{
		{"strong rally", 6.0, 75, "Greed"},
		{"strong selloff", -6.0, 25, "Fear"},
		{"quiet market", 1.0, 50, "Neutral"},
		{"boundary up", 5.0, 50, "Neutral"},
		{"boundary down", -5.0, 50, "Neutral"},
	}
	for _, tc := range cases {
		src := newFakeSource()
		src.prices["BTCUSDT"] = models.PriceData{Price: 43000, Change24h: tc.change}
		svc := newTestService(src, newFakeStore())

		res, err := svc.GetFearGreedIndex(context.Background())
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if res.Index.Value != tc.value || res.Index.Classification != tc.classification {
			t.Errorf("%s: got %d/%s, want %d/%s",
				tc.name, res.Index.Value, res.Index.Classification, tc.value, tc.classification)
		}
		if res.Meta.Source != meta.SourceReal {
			t.Errorf("%s: expected real meta", tc.name)
		}
	}
}

func TestFearGreedNeutralWhenUpstreamDown(t *testing.T) {
	src := newFakeSource()
	src.fail = true
	svc := newTestService(src, newFakeStore())

	res, err := svc.GetFearGreedIndex(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Index.Value != 50 || res.Index.Classification != "Neutral" {
		t.Fatalf("expected neutral default, got %d/%s", res.Index.Value, res.Index.Classification)
	}
	if res.Meta.Source != meta.SourceBFF || !res.Meta.Stale {
		t.Fatalf("expected stale bff meta, got %+v", res.Meta)
	}
}

func TestWarmTickFeedsCache(t *testing.T) {
	src := newFakeSource()
	store := newFakeStore()
	svc := newTestService(src, store)

	svc.WarmTick("BTCUSDT", models.PriceData{Price: 52000})

	res, err := svc.FetchRealTimePrices(context.Background(), []string{"BTCUSDT"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := res.Prices["BTCUSDT"].Price; got != 52000 {
		t.Fatalf("expected warmed price, got %v", got)
	}
	if got := src.callCount("BTCUSDT"); got != 0 {
		t.Fatalf("expected no upstream call, got %d", got)
	}
}
