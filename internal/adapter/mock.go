package adapter

import "time"

// nowMillis is swappable so tests can pin the mock timestamps.
var nowMillis = func() int64 { return time.Now().UnixMilli() }

// MockBalance returns the static balance record served when the real
// endpoint is unreachable or mock mode is on.
func MockBalance() BalanceData {
	return BalanceData{
		TotalBalance:      125000,
		AvailableBalance:  120000,
		LockedBalance:     5000,
		DailyChange:       2.3,
		DailyChangeAmount: 2875,
		WeeklyChange:      8.5,
		MonthlyChange:     15.2,
		Currency:          "USDT",
	}
}

// MockMarket returns the static market overview record.
func MockMarket() MarketData {
	return MarketData{
		BTCPrice:       43250.50,
		BTCChange24h:   2.35,
		ETHPrice:       2680.75,
		ETHChange24h:   3.12,
		FearGreedIndex: 65,
		BTCDominance:   51.2,
		TotalMarketCap: 1750000000000,
		Total24hVolume: 85000000000,
	}
}

// MockFearGreed returns the static sentiment record.
func MockFearGreed() FearGreedData {
	return FearGreedData{Value: 65, Classification: "Greed"}
}

// MockTrades returns the static trading activity record. Trade
// timestamps are relative to the current clock.
func MockTrades() TradesData {
	now := nowMillis()
	return TradesData{
		ActiveTrades:     8,
		TodayTrades:      15,
		PendingOrders:    5,
		TotalVolume24h:   85000,
		SuccessfulTrades: 12,
		FailedTrades:     3,
		AvgTradeProfit:   3.2,
		Trades: []TradeItem{
			{
				ID:        "1",
				Symbol:    "BTCUSDT",
				Side:      "BUY",
				Type:      "LIMIT",
				Price:     43250,
				Amount:    0.5,
				Filled:    0.3,
				Status:    "PARTIALLY_FILLED",
				Timestamp: now - 3600000,
			},
			{
				ID:        "2",
				Symbol:    "ETHUSDT",
				Side:      "SELL",
				Type:      "MARKET",
				Price:     2680,
				Amount:    2.0,
				Filled:    2.0,
				Status:    "FILLED",
				Timestamp: now - 7200000,
			},
		},
	}
}

// MockTradeStats returns the static stats projection.
func MockTradeStats() TradeStatsData {
	return TradeStatsData{ActiveTrades: 8, TodayTrades: 15, SuccessRate: 80, TotalPnL: 12500}
}

// MockComprehensive returns the full static aggregate record.
func MockComprehensive() ComprehensiveData {
	now := nowMillis()
	return ComprehensiveData{
		Portfolio: PortfolioSummary{
			TotalBalance:  125000,
			DailyChange:   2.3,
			WeeklyChange:  8.5,
			MonthlyChange: 15.2,
			TotalPnL:      12500,
			TotalTrades:   145,
			WinRate:       68,
			SharpeRatio:   1.42,
		},
		AIAgents: []AgentInfo{
			{ID: 1, Name: "Scalping Master", Status: "active", Performance: 12.3, Trades: 45, Uptime: 98.5},
			{ID: 2, Name: "Trend Follower", Status: "active", Performance: 8.7, Trades: 23, Uptime: 99.2},
			{ID: 3, Name: "Grid Trading Pro", Status: "paused", Performance: 15.4, Trades: 67, Uptime: 95.1},
			{ID: 4, Name: "Arbitrage Hunter", Status: "active", Performance: 6.2, Trades: 12, Uptime: 97.8},
			{ID: 5, Name: "Mean Reversion", Status: "active", Performance: 9.8, Trades: 34, Uptime: 98.9},
		},
		Market: MarketSummary{
			BTCPrice:       43250,
			ETHPrice:       2680,
			FearGreedIndex: 65,
			Dominance:      51.2,
		},
		Trading: TradingSummary{
			ActiveTrades:     8,
			TodayTrades:      15,
			PendingOrders:    5,
			TotalVolume24h:   85000,
			SuccessfulTrades: 12,
			FailedTrades:     3,
		},
		Risk: RiskSummary{
			TotalExposure:   75,
			MaxRiskPerTrade: 2.5,
			CurrentDrawdown: -4.2,
			RiskScore:       55,
		},
		Learning: LearningSummary{
			TotalSessions:    125,
			CompletedCourses: 8,
			CurrentLevel:     5,
			WeeklyProgress:   85,
		},
		Activities: []Activity{
			{ID: 1, Type: "trade", Description: "BTC/USDT Long Position", Amount: 2340, Timestamp: now - 300000, Agent: "Trend Follower"},
			{ID: 2, Type: "profit", Description: "ETH/USDT Trade Closed", Amount: 450, Timestamp: now - 900000, Agent: "Scalping Master"},
		},
		Summary: SystemSummary{
			ActiveAgents:   4,
			TotalAgents:    5,
			AvgPerformance: 10.5,
			SystemHealth:   98.2,
		},
		Charts: ChartSet{
			Performance: ChartSeries{
				Labels: []string{"1h", "2h", "3h", "4h", "5h", "6h"},
				Data:   []float64{100, 150, 120, 200, 250, 280},
			},
			Agents: ChartSeries{
				Labels: []string{"Scalping", "Trend", "Grid", "Arbitrage", "Mean Rev"},
				Data:   []float64{12.3, 8.7, 15.4, 6.2, 9.8},
			},
			Volume: ChartSeries{
				Labels: []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
				Data:   []float64{12000, 15000, 13000, 18000, 22000, 19000, 25000},
			},
		},
	}
}
