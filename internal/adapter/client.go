package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"titandash/pkg/flags"
	xhttp "titandash/pkg/http"
	applogger "titandash/pkg/logger"
	"titandash/pkg/meta"
)

// comprehensiveTimeout extends the per-request budget for the aggregate
// endpoint, which fans out to every data source server-side.
const comprehensiveTimeout = 10 * time.Second

// Client bundles the per-domain adapters over one HTTP client and one
// resolved policy.
type Client struct {
	http   *xhttp.Client
	policy flags.Policy
	l      *applogger.Logger
}

type Option func(*options)

type options struct {
	httpOpts []xhttp.ClientOption
}

// WithToken sends the given bearer token on every request.
func WithToken(token string) Option {
	return func(o *options) {
		o.httpOpts = append(o.httpOpts, xhttp.WithTokenProvider(func() string { return token }))
	}
}

// WithHTTPClient overrides the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpOpts = append(o.httpOpts, xhttp.WithHTTPClient(hc))
	}
}

// New creates an adapter client for the given API base URL.
func New(baseURL string, policy flags.Policy, l *applogger.Logger, opts ...Option) *Client {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{
		http:   xhttp.NewClient(baseURL, policy, o.httpOpts...),
		policy: policy,
		l:      l,
	}
}

// useMock reports whether the policy forces the static records. Force
// real wins over the mock flag.
func (c *Client) useMock() bool {
	return c.policy.UseMock && !c.policy.ForceReal
}

// Balance fetches the account balance, degrading to the static record
// on any transport or shape failure.
func (c *Client) Balance(ctx context.Context) BalanceData {
	if c.useMock() {
		return MockBalance()
	}

	raw, err := c.http.Request(ctx, "/api/portfolio/advanced", &xhttp.RequestOptions{Method: http.MethodGet})
	if err != nil {
		c.l.Warn("balance fetch failed, serving mock record", applogger.Error(err))
		return MockBalance()
	}

	m := decodeObject(raw)
	if m == nil {
		c.l.Warn("balance response is not an object, serving mock record")
		return MockBalance()
	}
	body := unwrapEnvelope(m)
	if body["totalBalance"] == nil && body["portfolio"] == nil {
		c.l.Warn("unrecognized balance response shape, normalizing best effort")
	}
	return normalizeBalance(body)
}

// MarketPrices fetches per-symbol prices and the market overview.
func (c *Client) MarketPrices(ctx context.Context, symbols []string) MarketData {
	if c.useMock() {
		return MockMarket()
	}
	if len(symbols) == 0 {
		symbols = []string{"BTCUSDT", "ETHUSDT"}
	}

	raw, err := c.http.Request(ctx, "/api/market/prices", &xhttp.RequestOptions{
		Method: http.MethodGet,
		Params: map[string]string{"symbols": strings.Join(symbols, ",")},
	})
	if err != nil {
		c.l.Warn("market fetch failed, serving mock record", applogger.Error(err))
		return MockMarket()
	}

	m := decodeObject(raw)
	if m == nil {
		c.l.Warn("market response is not an object, serving mock record")
		return MockMarket()
	}
	body := unwrapEnvelope(m)
	if body["btcPrice"] == nil && body["prices"] == nil {
		c.l.Warn("unrecognized market response shape, normalizing best effort")
	}
	return normalizeMarket(body)
}

// FearGreed fetches the sentiment index, degrading to neutral.
func (c *Client) FearGreed(ctx context.Context) FearGreedData {
	if c.useMock() {
		return MockFearGreed()
	}

	raw, err := c.http.Request(ctx, "/api/market/fear-greed", &xhttp.RequestOptions{Method: http.MethodGet})
	if err != nil {
		c.l.Warn("fear greed fetch failed, serving neutral", applogger.Error(err))
		return FearGreedData{Value: 50, Classification: "Neutral"}
	}
	return normalizeFearGreed(unwrapEnvelope(decodeObject(raw)))
}

// ActiveTrades fetches trading activity, degrading to the static
// record on failure.
func (c *Client) ActiveTrades(ctx context.Context) TradesData {
	if c.useMock() {
		return MockTrades()
	}

	raw, err := c.http.Request(ctx, "/api/portfolio/transactions", &xhttp.RequestOptions{
		Method: http.MethodGet,
		Params: map[string]string{"status": "active", "limit": "100", "sort": "desc"},
	})
	if err != nil {
		c.l.Warn("trades fetch failed, serving mock record", applogger.Error(err))
		return MockTrades()
	}

	m := decodeObject(raw)
	if m == nil {
		c.l.Warn("trades response is not an object, serving mock record")
		return MockTrades()
	}
	body := unwrapEnvelope(m)
	if body["activeTrades"] == nil && body["trades"] == nil && body["transactions"] == nil {
		c.l.Warn("unrecognized trades response shape, normalizing best effort")
	}
	return normalizeTrades(body)
}

// TradeStats fetches the slim stats projection, degrading to zeros.
func (c *Client) TradeStats(ctx context.Context) TradeStatsData {
	if c.useMock() {
		return MockTradeStats()
	}

	raw, err := c.http.Request(ctx, "/api/portfolio/advanced", &xhttp.RequestOptions{Method: http.MethodGet})
	if err != nil {
		c.l.Warn("trade stats fetch failed", applogger.Error(err))
		return TradeStatsData{}
	}
	return normalizeTradeStats(unwrapEnvelope(decodeObject(raw)))
}

// QuickStatsMeta probes the quick-stats endpoint and returns its
// provenance signature. Unlike the adapters it propagates errors, so
// callers can tell a dead backend apart from a stale one.
func (c *Client) QuickStatsMeta(ctx context.Context) (meta.Signature, error) {
	raw, err := c.http.Request(ctx, "/api/dashboard/quick-stats", &xhttp.RequestOptions{Method: http.MethodGet})
	if err != nil {
		return meta.Signature{}, err
	}
	var body struct {
		Data struct {
			Meta meta.Signature `json:"meta"`
		} `json:"data"`
		Meta meta.Signature `json:"meta"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return meta.Signature{}, err
	}
	if body.Data.Meta.Source != "" {
		return body.Data.Meta, nil
	}
	return body.Meta, nil
}

// Comprehensive assembles the full dashboard view through an ordered
// fallback chain. Each strategy runs at most once; the first success
// terminates the chain, and the final strategy cannot fail.
func (c *Client) Comprehensive(ctx context.Context) ComprehensiveData {
	if c.useMock() {
		return MockComprehensive()
	}

	// Dedicated aggregate endpoint, extended timeout, partial shapes
	// accepted.
	raw, err := c.http.Request(ctx, "/api/dashboard/comprehensive-real", &xhttp.RequestOptions{
		Method:  http.MethodGet,
		Timeout: comprehensiveTimeout,
	})
	if err == nil {
		if m := decodeObject(raw); m != nil {
			body := unwrapEnvelope(m)
			if body["portfolio"] != nil || body["market"] != nil || body["trading"] != nil || body["data"] != nil {
				return normalizeComprehensive(body)
			}
		}
	} else {
		c.l.Warn("comprehensive endpoint failed", applogger.Error(err))
	}

	// Authenticated alternate endpoint, envelope required.
	raw, err = c.http.Request(ctx, "/api/dashboard/comprehensive", &xhttp.RequestOptions{Method: http.MethodGet})
	if err == nil {
		if m := decodeObject(raw); m != nil {
			if _, ok := m["success"]; ok {
				if data, ok := m["data"].(map[string]any); ok {
					return normalizeComprehensive(data)
				}
			}
			if _, ok := m["status"]; ok {
				if data, ok := m["data"].(map[string]any); ok {
					return normalizeComprehensive(data)
				}
			}
		}
	} else {
		c.l.Warn("alternate comprehensive endpoint failed", applogger.Error(err))
	}

	// Assemble from the per-domain adapters in parallel. The adapters
	// substitute their own mocks on failure, so this strategy always
	// produces a complete view; sections with no adapter come from the
	// static record.
	c.l.Info("building dashboard from per-domain adapters")
	var (
		wg      sync.WaitGroup
		balance BalanceData
		market  MarketData
		trades  TradesData
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		balance = c.Balance(ctx)
	}()
	go func() {
		defer wg.Done()
		market = c.MarketPrices(ctx, nil)
	}()
	go func() {
		defer wg.Done()
		trades = c.ActiveTrades(ctx)
	}()
	wg.Wait()

	mock := MockComprehensive()
	return ComprehensiveData{
		Portfolio: PortfolioSummary{
			TotalBalance:  balance.TotalBalance,
			DailyChange:   balance.DailyChange,
			WeeklyChange:  balance.WeeklyChange,
			MonthlyChange: balance.MonthlyChange,
		},
		Market: MarketSummary{
			BTCPrice:       market.BTCPrice,
			ETHPrice:       market.ETHPrice,
			FearGreedIndex: market.FearGreedIndex,
			Dominance:      market.BTCDominance,
		},
		Trading: TradingSummary{
			ActiveTrades:     trades.ActiveTrades,
			TodayTrades:      trades.TodayTrades,
			PendingOrders:    trades.PendingOrders,
			TotalVolume24h:   trades.TotalVolume24h,
			SuccessfulTrades: trades.SuccessfulTrades,
			FailedTrades:     trades.FailedTrades,
		},
		AIAgents:   mock.AIAgents,
		Risk:       mock.Risk,
		Learning:   mock.Learning,
		Activities: mock.Activities,
		Summary:    mock.Summary,
		Charts:     mock.Charts,
	}
}
