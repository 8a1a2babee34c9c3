package adapter

import (
	"encoding/json"
	"strconv"
	"strings"
)

// The upstream answers with inconsistent field names depending on which
// backend revision served the call. Every canonical field therefore has
// an ordered alias list, resolved first-defined-wins.

func decodeObject(raw json.RawMessage) map[string]any {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// unwrapEnvelope descends into a {success|status, data} wrapper.
func unwrapEnvelope(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	_, hasSuccess := m["success"]
	_, hasStatus := m["status"]
	if !hasSuccess && !hasStatus {
		return m
	}
	if data, ok := m["data"].(map[string]any); ok {
		return data
	}
	return m
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

// num resolves the first defined numeric alias, defaulting to def.
func num(m map[string]any, def float64, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			if f, ok := toNumber(v); ok {
				return f
			}
		}
	}
	return def
}

// str resolves the first defined string alias, defaulting to def.
func str(m map[string]any, def string, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return def
}

// child returns a nested object field, or nil.
func child(m map[string]any, key string) map[string]any {
	c, _ := m[key].(map[string]any)
	return c
}

// items returns the first defined array alias, or nil.
func items(m map[string]any, keys ...string) []any {
	for _, k := range keys {
		if a, ok := m[k].([]any); ok {
			return a
		}
	}
	return nil
}

// pathNumber resolves m[key][field] as a number.
func pathNumber(m map[string]any, key, field string) (float64, bool) {
	c := child(m, key)
	if c == nil {
		return 0, false
	}
	if v, ok := c[field]; ok && v != nil {
		return toNumber(v)
	}
	return 0, false
}

func normalizeBalance(m map[string]any) BalanceData {
	if m == nil {
		return BalanceData{Currency: "USDT"}
	}
	// The advanced portfolio endpoint nests its metrics.
	if p := child(m, "portfolio"); p != nil {
		m = p
	}
	return BalanceData{
		TotalBalance:      num(m, 0, "totalBalance", "totalValue", "total", "balance"),
		AvailableBalance:  num(m, 0, "availableBalance", "available", "free", "availableFunds"),
		LockedBalance:     num(m, 0, "lockedBalance", "locked", "frozen", "lockedFunds"),
		DailyChange:       num(m, 0, "dailyChange", "daily_change", "changePercent24h", "dailyChangePercent"),
		DailyChangeAmount: num(m, 0, "dailyChangeAmount", "daily_change_amount", "change24h", "dailyChangeValue"),
		WeeklyChange:      num(m, 0, "weeklyChange", "weekly_change", "changePercent7d", "weeklyChangePercent"),
		MonthlyChange:     num(m, 0, "monthlyChange", "monthly_change", "changePercent30d", "monthlyChangePercent"),
		Currency:          str(m, "USDT", "currency", "asset", "baseCurrency"),
	}
}

func normalizeMarket(m map[string]any) MarketData {
	if m == nil {
		return MarketData{FearGreedIndex: 50, BTCDominance: 51}
	}

	md := MarketData{
		FearGreedIndex: num(m, 50, "fearGreedIndex", "fear_greed_index"),
		BTCDominance:   num(m, 51, "btcDominance", "dominance", "btc_dominance"),
		TotalMarketCap: num(m, 0, "totalMarketCap", "total_market_cap", "marketCap"),
		Total24hVolume: num(m, 0, "total24hVolume", "total_volume_24h", "volume24h"),
	}

	// Shape 1: an array of per-symbol tickers.
	if prices := items(m, "prices"); prices != nil {
		for _, it := range prices {
			entry, ok := it.(map[string]any)
			if !ok {
				continue
			}
			switch str(entry, "", "symbol") {
			case "BTCUSDT", "BTC":
				md.BTCPrice = num(entry, 0, "price", "lastPrice")
				md.BTCChange24h = num(entry, 0, "priceChangePercent", "change24h")
			case "ETHUSDT", "ETH":
				md.ETHPrice = num(entry, 0, "price", "lastPrice")
				md.ETHChange24h = num(entry, 0, "priceChangePercent", "change24h")
			}
		}
		return md
	}

	// Shape 2: a per-symbol object map, as served by the prices endpoint.
	if prices := child(m, "prices"); prices != nil {
		m = prices
	}

	md.BTCPrice = num(m, 0, "btcPrice", "BTC")
	md.BTCChange24h = num(m, 0, "btcChange24h")
	md.ETHPrice = num(m, 0, "ethPrice", "ETH")
	md.ETHChange24h = num(m, 0, "ethChange24h")
	if v, ok := pathNumber(m, "BTCUSDT", "price"); ok && md.BTCPrice == 0 {
		md.BTCPrice = v
	}
	if v, ok := pathNumber(m, "BTCUSDT", "change24h"); ok && md.BTCChange24h == 0 {
		md.BTCChange24h = v
	}
	if v, ok := pathNumber(m, "ETHUSDT", "price"); ok && md.ETHPrice == 0 {
		md.ETHPrice = v
	}
	if v, ok := pathNumber(m, "ETHUSDT", "change24h"); ok && md.ETHChange24h == 0 {
		md.ETHChange24h = v
	}
	return md
}

// Classification bands are strictly-greater on each threshold.
func classifyFearGreed(value float64) string {
	switch {
	case value > 75:
		return "Extreme Greed"
	case value > 50:
		return "Greed"
	case value > 25:
		return "Neutral"
	default:
		return "Fear"
	}
}

func normalizeFearGreed(m map[string]any) FearGreedData {
	if m == nil {
		return FearGreedData{Value: 50, Classification: "Neutral"}
	}
	if idx := child(m, "index"); idx != nil {
		m = idx
	}
	value := num(m, 50, "value", "index")
	return FearGreedData{
		Value:          value,
		Classification: str(m, classifyFearGreed(value), "classification"),
	}
}

func normalizeTrades(m map[string]any) TradesData {
	if m == nil {
		return TradesData{Trades: []TradeItem{}}
	}

	// Responses may be a bare transaction list under one of several keys.
	list := items(m, "transactions", "data", "trades")
	if list != nil && m["activeTrades"] == nil {
		return tradesFromList(list)
	}

	td := TradesData{
		ActiveTrades:     int(num(m, 0, "activeTrades", "active", "openTrades", "activePositions")),
		TodayTrades:      int(num(m, 0, "todayTrades", "today", "trades24h", "tradesCount24h")),
		PendingOrders:    int(num(m, 0, "pendingOrders", "pending", "openOrders")),
		TotalVolume24h:   num(m, 0, "totalVolume24h", "volume24h", "volume", "totalVolume"),
		SuccessfulTrades: int(num(m, 0, "successfulTrades", "successful", "filled", "completedTrades")),
		FailedTrades:     int(num(m, 0, "failedTrades", "failed", "canceled", "cancelledTrades")),
		AvgTradeProfit:   num(m, 0, "avgTradeProfit", "avgProfit", "averageProfit"),
		Trades:           []TradeItem{},
	}
	if trades := items(m, "trades"); trades != nil {
		for _, it := range trades {
			if entry, ok := it.(map[string]any); ok {
				td.Trades = append(td.Trades, normalizeTrade(entry))
			}
		}
	}
	return td
}

// tradesFromList derives aggregate counters from a raw order list.
func tradesFromList(list []any) TradesData {
	td := TradesData{Trades: []TradeItem{}}
	dayAgo := nowMillis() - 24*3600*1000
	for _, it := range list {
		entry, ok := it.(map[string]any)
		if !ok {
			continue
		}
		t := normalizeTrade(entry)
		td.Trades = append(td.Trades, t)

		switch t.Status {
		case "OPEN", "ACTIVE", "PARTIALLY_FILLED":
			td.ActiveTrades++
		case "PENDING", "NEW":
			td.PendingOrders++
		case "FILLED", "COMPLETED":
			td.SuccessfulTrades++
		case "CANCELED", "CANCELLED", "REJECTED":
			td.FailedTrades++
		}
		if t.Timestamp >= dayAgo {
			td.TodayTrades++
		}
		td.TotalVolume24h += t.Price * t.Filled
	}
	return td
}

func normalizeTrade(m map[string]any) TradeItem {
	id := str(m, "", "id", "orderId", "tradeId", "transaction_id")
	if id == "" {
		if v, ok := toNumber(m["id"]); ok {
			id = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	ts := num(m, 0, "timestamp", "time", "createdAt", "created_at")
	if ts == 0 {
		ts = float64(nowMillis())
	}
	return TradeItem{
		ID:        id,
		Symbol:    str(m, "", "symbol", "pair", "asset"),
		Side:      strings.ToUpper(str(m, "BUY", "side", "type", "direction")),
		Type:      strings.ToUpper(str(m, "LIMIT", "orderType", "type", "transactionType")),
		Price:     num(m, 0, "price", "orderPrice", "rate"),
		Amount:    num(m, 0, "amount", "quantity", "origQty", "qty"),
		Filled:    num(m, 0, "filled", "executedQty", "filledQty"),
		Status:    strings.ToUpper(str(m, "UNKNOWN", "status")),
		Timestamp: int64(ts),
	}
}

func normalizeTradeStats(m map[string]any) TradeStatsData {
	if m == nil {
		return TradeStatsData{}
	}
	if p := child(m, "portfolio"); p != nil {
		m = p
	}
	return TradeStatsData{
		ActiveTrades: int(num(m, 0, "activePositions", "openTrades", "activeTrades")),
		TodayTrades:  int(num(m, 0, "tradesCount24h", "todayTrades")),
		SuccessRate:  num(m, 0, "successRate", "winRate"),
		TotalPnL:     num(m, 0, "totalPnL", "profitLoss"),
	}
}

// normalizeComprehensive maps the aggregate payload section by section,
// substituting the matching static mock slice for anything absent.
func normalizeComprehensive(m map[string]any) ComprehensiveData {
	mock := MockComprehensive()
	if m == nil {
		return mock
	}
	// The aggregate endpoint nests its payload beside provenance.
	if inner := child(m, "data"); inner != nil {
		if inner["portfolio"] != nil || inner["market"] != nil || inner["trading"] != nil {
			m = inner
		}
	}

	out := mock
	if p := child(m, "portfolio"); p != nil {
		out.Portfolio = PortfolioSummary{
			TotalBalance:  num(p, 0, "totalBalance"),
			DailyChange:   num(p, 0, "dailyChange"),
			WeeklyChange:  num(p, 0, "weeklyChange"),
			MonthlyChange: num(p, 0, "monthlyChange"),
			TotalPnL:      num(p, 0, "totalPnL"),
			TotalTrades:   int(num(p, 0, "totalTrades", "totalAssets")),
			WinRate:       num(p, 0, "winRate"),
			SharpeRatio:   num(p, 0, "sharpeRatio"),
		}
	}
	if mk := child(m, "market"); mk != nil {
		out.Market = MarketSummary{
			BTCPrice:       num(mk, 0, "btcPrice"),
			ETHPrice:       num(mk, 0, "ethPrice"),
			FearGreedIndex: num(mk, 50, "fearGreedIndex", "fear_greed_index"),
			Dominance:      num(mk, 0, "dominance", "btcDominance"),
		}
	}
	if tr := child(m, "trading"); tr != nil {
		out.Trading = TradingSummary{
			ActiveTrades:     int(num(tr, 0, "activeTrades")),
			TodayTrades:      int(num(tr, 0, "todayTrades")),
			PendingOrders:    int(num(tr, 0, "pendingOrders")),
			TotalVolume24h:   num(tr, 0, "totalVolume24h"),
			SuccessfulTrades: int(num(tr, 0, "successfulTrades")),
			FailedTrades:     int(num(tr, 0, "failedTrades")),
		}
	}
	if rk := child(m, "risk"); rk != nil {
		out.Risk = RiskSummary{
			TotalExposure:   num(rk, 0, "totalExposure"),
			MaxRiskPerTrade: num(rk, 0, "maxRiskPerTrade"),
			CurrentDrawdown: num(rk, 0, "currentDrawdown"),
			RiskScore:       int(num(rk, 0, "riskScore")),
		}
	}
	if ln := child(m, "learning"); ln != nil {
		out.Learning = LearningSummary{
			TotalSessions:    int(num(ln, 0, "totalSessions")),
			CompletedCourses: int(num(ln, 0, "completedCourses")),
			CurrentLevel:     int(num(ln, 0, "currentLevel")),
			WeeklyProgress:   num(ln, 0, "weeklyProgress"),
		}
	}
	if sm := child(m, "summary"); sm != nil {
		out.Summary = SystemSummary{
			ActiveAgents:   int(num(sm, 0, "activeAgents")),
			TotalAgents:    int(num(sm, 0, "totalAgents")),
			AvgPerformance: num(sm, 0, "avgPerformance"),
			SystemHealth:   num(sm, 0, "systemHealth"),
		}
	}
	if agents := items(m, "aiAgents", "ai_agents"); agents != nil {
		out.AIAgents = make([]AgentInfo, 0, len(agents))
		for _, it := range agents {
			entry, ok := it.(map[string]any)
			if !ok {
				continue
			}
			out.AIAgents = append(out.AIAgents, AgentInfo{
				ID:          int(num(entry, 0, "id")),
				Name:        str(entry, "", "name"),
				Status:      str(entry, "", "status"),
				Performance: num(entry, 0, "performance"),
				Trades:      int(num(entry, 0, "trades")),
				Uptime:      num(entry, 0, "uptime"),
			})
		}
	}
	if acts := items(m, "activities", "recentActivities"); acts != nil {
		out.Activities = make([]Activity, 0, len(acts))
		for _, it := range acts {
			entry, ok := it.(map[string]any)
			if !ok {
				continue
			}
			out.Activities = append(out.Activities, Activity{
				ID:          int(num(entry, 0, "id")),
				Type:        str(entry, "", "type"),
				Description: str(entry, "", "description"),
				Amount:      num(entry, 0, "amount"),
				Timestamp:   int64(num(entry, 0, "timestamp")),
				Agent:       str(entry, "", "agent"),
			})
		}
	}
	return out
}
