package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"titandash/internal/domain/models"
	"titandash/internal/service/dashboard"
	"titandash/internal/service/marketdata"
	"titandash/internal/service/portfolio"
	"titandash/pkg/cache"
	"titandash/pkg/http/middleware"
	applogger "titandash/pkg/logger"
	"titandash/pkg/meta"

	"github.com/labstack/echo/v4"
)

type fakeStore struct {
	balance float64
	stats   models.TradeStats
	txs     []models.Transaction
}

func (f *fakeStore) Init(context.Context) error   { return nil }
func (f *fakeStore) Health(context.Context) error { return nil }
func (f *fakeStore) Close() error                 { return nil }

func (f *fakeStore) StorePrice(context.Context, string, models.PriceData) error { return nil }
func (f *fakeStore) LatestPrice(context.Context, string) (*models.PriceData, error) {
	return nil, nil
}
func (f *fakeStore) PortfolioBalance(context.Context, string) (float64, error) {
	return f.balance, nil
}
func (f *fakeStore) PortfolioAssets(context.Context, string) ([]models.PortfolioAsset, error) {
	return nil, nil
}
func (f *fakeStore) TradeStats(context.Context, string) (*models.TradeStats, error) {
	st := f.stats
	return &st, nil
}
func (f *fakeStore) Transactions(context.Context, string, int) ([]models.Transaction, error) {
	return f.txs, nil
}
func (f *fakeStore) ActiveTradesCount(context.Context, string) (int, error)  { return 4, nil }
func (f *fakeStore) TodayTradesCount(context.Context, string) (int, error)   { return 2, nil }
func (f *fakeStore) PendingOrdersCount(context.Context, string) (int, error) { return 1, nil }
func (f *fakeStore) Volume24h(context.Context, string) (float64, error)      { return 12000, nil }
func (f *fakeStore) ActiveSignals(context.Context, int) ([]models.AISignal, error) {
	return nil, nil
}
func (f *fakeStore) ActiveStrategiesCount(context.Context, string) (int, error) { return 3, nil }
func (f *fakeStore) OpenExposure(context.Context, string) (float64, error)      { return 1000, nil }
func (f *fakeStore) MaxLoss30d(context.Context, string) (float64, error)        { return -50, nil }
func (f *fakeStore) DailyPnLSeries(context.Context, string, int) ([]models.PnLPoint, error) {
	return nil, nil
}
func (f *fakeStore) DailyVolumeSeries(context.Context, string, int) ([]models.VolumePoint, error) {
	return nil, nil
}

type fakeSource struct {
	prices map[string]models.PriceData
}

func (f *fakeSource) Ticker24h(_ context.Context, symbol string) (*models.PriceData, error) {
	if p, ok := f.prices[symbol]; ok {
		return &p, nil
	}
	return nil, errors.New("unknown symbol")
}

type nopMetrics struct{}

func (nopMetrics) RecordUpstreamFetch(source, result string)    {}
func (nopMetrics) RecordFallback(section string)                {}
func (nopMetrics) RecordSubQueryError(slot string)              {}
func (nopMetrics) RecordCacheLookup(kind, outcome string)       {}
func (nopMetrics) RecordLastPrice(symbol string, price float64) {}
func (nopMetrics) RecordLatency(op string, seconds float64)     {}

func newTestEcho(t *testing.T, opts ...HandlerOption) *echo.Echo {
	t.Helper()
	l := applogger.Nop()
	store := &fakeStore{
		balance: 50000,
		stats:   models.TradeStats{TotalTrades: 12, WinningTrades: 9, TotalPnL: 1200, DailyPnL: 80},
		txs:     []models.Transaction{{ID: "t1", Type: "buy", Symbol: "BTCUSDT"}},
	}
	src := &fakeSource{prices: map[string]models.PriceData{
		"BTCUSDT": {Price: 43250.50, Change24h: 2.35},
		"ETHUSDT": {Price: 2680.75, Change24h: 3.12},
		"BNBUSDT": {Price: 310.20},
		"SOLUSDT": {Price: 98.40},
		"ADAUSDT": {Price: 0.52},
	}}
	mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(100))
	md := marketdata.New(src, store, mc, nopMetrics{}, l)
	pf := portfolio.New(store, l)
	dash := dashboard.New(store, pf, md, nopMetrics{}, l)

	e := echo.New()
	NewDashboardEchoHandler(l, dash, pf, md, opts...).RegisterRoutes(e)
	return e
}

func doGet(e *echo.Echo, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestComprehensiveDashboardEndpoint(t *testing.T) {
	e := newTestEcho(t)

	rec := doGet(e, "/api/dashboard/comprehensive-real", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Status int                    `json:"status"`
		Data   models.DashboardResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != http.StatusOK {
		t.Fatalf("unexpected envelope status %d", body.Status)
	}
	if body.Data.Meta.Source != meta.SourceReal || body.Data.Meta.TTLMs != 30000 {
		t.Fatalf("unexpected meta %+v", body.Data.Meta)
	}
	if body.Data.Data.Portfolio.TotalBalance != 50000 {
		t.Fatalf("unexpected balance %v", body.Data.Data.Portfolio.TotalBalance)
	}
	if body.Data.Data.Market.BTCPrice != 43250.50 {
		t.Fatalf("unexpected btc price %v", body.Data.Data.Market.BTCPrice)
	}
}

func TestQuickStatsEndpoint(t *testing.T) {
	e := newTestEcho(t)

	rec := doGet(e, "/api/dashboard/quick-stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data models.QuickStatsResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Stats.TotalBalance != 50000 || body.Data.Stats.ActiveTrades != 4 {
		t.Fatalf("unexpected stats %+v", body.Data.Stats)
	}
}

func TestPricesEndpointRequiresSymbols(t *testing.T) {
	e := newTestEcho(t)

	rec := doGet(e, "/api/market/prices", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPricesEndpoint(t *testing.T) {
	e := newTestEcho(t)

	rec := doGet(e, "/api/market/prices?symbols=BTCUSDT,ETHUSDT", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data models.PricesResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data.Prices) != 2 {
		t.Fatalf("unexpected prices %+v", body.Data.Prices)
	}
	if body.Data.Prices["BTCUSDT"].Price != 43250.50 {
		t.Fatalf("unexpected btc price %v", body.Data.Prices["BTCUSDT"].Price)
	}
	if body.Data.Meta.Source != meta.SourceReal || body.Data.Meta.TTLMs != 10000 {
		t.Fatalf("unexpected meta %+v", body.Data.Meta)
	}
}

func TestFearGreedEndpoint(t *testing.T) {
	e := newTestEcho(t)

	rec := doGet(e, "/api/market/fear-greed", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data models.FearGreedResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// BTC is up 2.35 percent, inside the neutral band.
	if body.Data.Index.Value != 50 || body.Data.Index.Classification != "Neutral" {
		t.Fatalf("unexpected sentiment %+v", body.Data.Index)
	}
}

func TestTransactionsEndpoint(t *testing.T) {
	e := newTestEcho(t)

	rec := doGet(e, "/api/portfolio/transactions?limit=10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data models.TransactionsResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data.Transactions) != 1 || body.Data.Transactions[0].ID != "t1" {
		t.Fatalf("unexpected transactions %+v", body.Data.Transactions)
	}
}

func TestTransactionsEndpointRejectsBadLimit(t *testing.T) {
	e := newTestEcho(t)

	rec := doGet(e, "/api/portfolio/transactions?limit=9999", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBearerAuthGuard(t *testing.T) {
	tokens := map[string]string{"tok-123": "user-1"}
	e := newTestEcho(t, WithAuth(middleware.BearerAuth(tokens)))

	rec := doGet(e, "/api/dashboard/quick-stats", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var denied struct {
		NoData bool           `json:"noData"`
		Meta   meta.Signature `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &denied); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !denied.NoData || denied.Meta.Source != meta.SourceNone || !denied.Meta.Stale {
		t.Fatalf("expected stale no-data signature, got %+v", denied)
	}

	rec = doGet(e, "/api/dashboard/quick-stats", map[string]string{
		"Authorization": "Bearer tok-123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d: %s", rec.Code, rec.Body.String())
	}
}
