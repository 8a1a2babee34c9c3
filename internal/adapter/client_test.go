package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"titandash/pkg/flags"
	applogger "titandash/pkg/logger"
)

type countingServer struct {
	mu     sync.Mutex
	counts map[string]int
	srv    *httptest.Server
}

func newCountingServer(handlers map[string]http.HandlerFunc) *countingServer {
	cs := &countingServer{counts: map[string]int{}}
	mux := http.NewServeMux()
	for path, h := range handlers {
		p, handler := path, h
		mux.HandleFunc(p, func(w http.ResponseWriter, r *http.Request) {
			cs.mu.Lock()
			cs.counts[p]++
			cs.mu.Unlock()
			handler(w, r)
		})
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		cs.counts[r.URL.Path]++
		cs.mu.Unlock()
		http.NotFound(w, r)
	})
	cs.srv = httptest.NewServer(mux)
	return cs
}

func (cs *countingServer) count(path string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.counts[path]
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func testPolicy() flags.Policy {
	p := flags.Default()
	p.Timeout = 2 * time.Second
	p.RetryEnabled = false
	return p
}

func newClient(baseURL string) *Client {
	return New(baseURL, testPolicy(), applogger.Nop())
}

func pinClock(t *testing.T) {
	t.Helper()
	prev := nowMillis
	nowMillis = func() int64 { return 1700000000000 }
	t.Cleanup(func() { nowMillis = prev })
}

func TestBalanceFallsBackToMockOnError(t *testing.T) {
	pinClock(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	got := newClient(srv.URL).Balance(context.Background())
	if !reflect.DeepEqual(got, MockBalance()) {
		t.Fatalf("expected mock record, got %+v", got)
	}
}

func TestTradesFallBackToMockOnNetworkError(t *testing.T) {
	pinClock(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	got := newClient(srv.URL).ActiveTrades(context.Background())
	if !reflect.DeepEqual(got, MockTrades()) {
		t.Fatalf("expected mock record, got %+v", got)
	}
}

func TestMarketFallsBackToMockOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	got := newClient(srv.URL).MarketPrices(context.Background(), nil)
	if !reflect.DeepEqual(got, MockMarket()) {
		t.Fatalf("expected mock record, got %+v", got)
	}
}

func TestMockModeSkipsNetwork(t *testing.T) {
	pinClock(t)
	cs := newCountingServer(nil)
	defer cs.srv.Close()

	p := testPolicy()
	p.ForceReal = false
	p.UseMock = true
	c := New(cs.srv.URL, p, applogger.Nop())

	if got := c.Balance(context.Background()); !reflect.DeepEqual(got, MockBalance()) {
		t.Fatalf("expected mock record, got %+v", got)
	}
	if got := c.Comprehensive(context.Background()); !reflect.DeepEqual(got, MockComprehensive()) {
		t.Fatalf("expected mock aggregate, got %+v", got)
	}
	if n := cs.count("/api/portfolio/advanced"); n != 0 {
		t.Fatalf("expected no network calls, got %d", n)
	}
}

func TestForceRealOverridesMockFlag(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(`{"success":true,"data":{"totalBalance":777}}`))
	defer srv.Close()

	p := testPolicy()
	p.ForceReal = true
	p.UseMock = true
	c := New(srv.URL, p, applogger.Nop())

	got := c.Balance(context.Background())
	if got.TotalBalance != 777 {
		t.Fatalf("expected live data under force real, got %+v", got)
	}
}

func TestBalanceNormalizesEnvelope(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(
		`{"success":true,"data":{"totalValue":9000,"available":8000,"locked":1000,"daily_change":1.5,"asset":"USDC"}}`))
	defer srv.Close()

	got := newClient(srv.URL).Balance(context.Background())
	if got.TotalBalance != 9000 || got.AvailableBalance != 8000 || got.LockedBalance != 1000 {
		t.Fatalf("alias coalescing failed: %+v", got)
	}
	if got.DailyChange != 1.5 || got.Currency != "USDC" {
		t.Fatalf("alias coalescing failed: %+v", got)
	}
}

func TestMarketNormalizesPriceArray(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(
		`{"prices":[{"symbol":"BTCUSDT","price":50000,"priceChangePercent":2.1}]}`))
	defer srv.Close()

	got := newClient(srv.URL).MarketPrices(context.Background(), []string{"BTCUSDT", "ETHUSDT"})
	if got.BTCPrice != 50000 {
		t.Fatalf("unexpected btc price %v", got.BTCPrice)
	}
	if got.BTCChange24h != 2.1 {
		t.Fatalf("unexpected btc change %v", got.BTCChange24h)
	}
	if got.ETHPrice != 0 {
		t.Fatalf("missing symbol must default to zero, got %v", got.ETHPrice)
	}
}

func TestMarketNormalizesSymbolMap(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(
		`{"status":200,"data":{"prices":{"BTCUSDT":{"price":43250.5,"change24h":2.35},"ETHUSDT":{"price":2680.75,"change24h":3.12}},"meta":{"source":"real","ts":1700000000000,"ttlMs":10000}}}`))
	defer srv.Close()

	got := newClient(srv.URL).MarketPrices(context.Background(), nil)
	if got.BTCPrice != 43250.5 || got.BTCChange24h != 2.35 {
		t.Fatalf("unexpected btc data %+v", got)
	}
	if got.ETHPrice != 2680.75 {
		t.Fatalf("unexpected eth price %v", got.ETHPrice)
	}
}

func TestTradesAggregatesFromList(t *testing.T) {
	pinClock(t)
	srv := httptest.NewServer(jsonHandler(
		`{"transactions":[` +
			`{"id":"a","symbol":"BTCUSDT","status":"PARTIALLY_FILLED","price":100,"filled":2,"timestamp":1699999999000},` +
			`{"id":"b","symbol":"ETHUSDT","status":"FILLED","price":50,"filled":1,"timestamp":1699999999000},` +
			`{"id":"c","symbol":"BNBUSDT","status":"PENDING","timestamp":1600000000000}]}`))
	defer srv.Close()

	got := newClient(srv.URL).ActiveTrades(context.Background())
	if got.ActiveTrades != 1 || got.SuccessfulTrades != 1 || got.PendingOrders != 1 {
		t.Fatalf("unexpected counters %+v", got)
	}
	if got.TodayTrades != 2 {
		t.Fatalf("unexpected today count %d", got.TodayTrades)
	}
	if got.TotalVolume24h != 250 {
		t.Fatalf("unexpected volume %v", got.TotalVolume24h)
	}
}

func TestTradesEmptyListIsNotMock(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(`{"transactions":[]}`))
	defer srv.Close()

	got := newClient(srv.URL).ActiveTrades(context.Background())
	if got.ActiveTrades != 0 || got.TotalVolume24h != 0 || len(got.Trades) != 0 {
		t.Fatalf("well formed empty list must produce zeroed counters, got %+v", got)
	}
}

func TestFearGreedClassification(t *testing.T) {
	cases := []struct {
		value float64
		want  string
	}{
		{80, "Extreme Greed"},
		{76, "Extreme Greed"},
		{75, "Greed"},
		{51, "Greed"},
		{50, "Neutral"},
		{26, "Neutral"},
		{25, "Fear"},
		{0, "Fear"},
	}
	for _, tc := range cases {
		if got := classifyFearGreed(tc.value); got != tc.want {
			t.Errorf("classifyFearGreed(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestComprehensiveUsesPartialFirstEndpoint(t *testing.T) {
	pinClock(t)
	cs := newCountingServer(map[string]http.HandlerFunc{
		"/api/dashboard/comprehensive-real": jsonHandler(`{"portfolio":{"totalBalance":99000,"winRate":55}}`),
	})
	defer cs.srv.Close()

	got := newClient(cs.srv.URL).Comprehensive(context.Background())

	if got.Portfolio.TotalBalance != 99000 || got.Portfolio.WinRate != 55 {
		t.Fatalf("partial aggregate not used: %+v", got.Portfolio)
	}
	// Absent sections come from the static record.
	if got.Market.BTCPrice != MockComprehensive().Market.BTCPrice {
		t.Fatalf("absent section should default to mock, got %+v", got.Market)
	}
	// The per-domain adapters must not have been consulted.
	if n := cs.count("/api/portfolio/advanced"); n != 0 {
		t.Fatalf("balance adapter called %d times after aggregate success", n)
	}
	if n := cs.count("/api/market/prices"); n != 0 {
		t.Fatalf("market adapter called %d times after aggregate success", n)
	}
	if n := cs.count("/api/portfolio/transactions"); n != 0 {
		t.Fatalf("trades adapter called %d times after aggregate success", n)
	}
}

func TestComprehensiveFallsThroughToAdapters(t *testing.T) {
	pinClock(t)
	cs := newCountingServer(map[string]http.HandlerFunc{
		"/api/portfolio/advanced": jsonHandler(`{"success":true,"data":{"totalBalance":42000,"dailyChange":1.1}}`),
		"/api/market/prices":      jsonHandler(`{"prices":[{"symbol":"BTCUSDT","price":40000,"priceChangePercent":-1.2}]}`),
		"/api/portfolio/transactions": jsonHandler(
			`{"activeTrades":3,"todayTrades":7,"pendingOrders":1,"totalVolume24h":12000,"successfulTrades":5,"failedTrades":1}`),
	})
	defer cs.srv.Close()

	got := newClient(cs.srv.URL).Comprehensive(context.Background())

	if n := cs.count("/api/dashboard/comprehensive-real"); n != 1 {
		t.Fatalf("aggregate endpoint tried %d times, want 1", n)
	}
	if n := cs.count("/api/dashboard/comprehensive"); n != 1 {
		t.Fatalf("alternate endpoint tried %d times, want 1", n)
	}
	if got.Portfolio.TotalBalance != 42000 {
		t.Fatalf("unexpected portfolio %+v", got.Portfolio)
	}
	if got.Market.BTCPrice != 40000 {
		t.Fatalf("unexpected market %+v", got.Market)
	}
	if got.Trading.ActiveTrades != 3 || got.Trading.TodayTrades != 7 {
		t.Fatalf("unexpected trading %+v", got.Trading)
	}
	// Sections with no adapter always come from the static record here.
	mock := MockComprehensive()
	if !reflect.DeepEqual(got.Risk, mock.Risk) || !reflect.DeepEqual(got.Summary, mock.Summary) {
		t.Fatalf("adapterless sections should be mock, got %+v / %+v", got.Risk, got.Summary)
	}
}

func TestComprehensiveFullOutageServesMock(t *testing.T) {
	pinClock(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	got := newClient(srv.URL).Comprehensive(context.Background())
	mock := MockComprehensive()

	if got.Portfolio.TotalBalance != mock.Portfolio.TotalBalance {
		t.Fatalf("unexpected portfolio %+v", got.Portfolio)
	}
	if got.Market.BTCPrice != MockMarket().BTCPrice {
		t.Fatalf("unexpected market %+v", got.Market)
	}
	if got.Trading.ActiveTrades != mock.Trading.ActiveTrades {
		t.Fatalf("unexpected trading %+v", got.Trading)
	}
}
