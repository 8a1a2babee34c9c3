// Package adapter is the client SDK for the dashboard API. Each domain
// adapter normalizes whatever shape the upstream answers with into a
// fixed view model and degrades to a static mock record on failure, so
// callers never see a raw transport error.
package adapter

// BalanceData is the normalized account balance view.
type BalanceData struct {
	TotalBalance      float64 `json:"totalBalance"`
	AvailableBalance  float64 `json:"availableBalance"`
	LockedBalance     float64 `json:"lockedBalance"`
	DailyChange       float64 `json:"dailyChange"`
	DailyChangeAmount float64 `json:"dailyChangeAmount"`
	WeeklyChange      float64 `json:"weeklyChange"`
	MonthlyChange     float64 `json:"monthlyChange"`
	Currency          string  `json:"currency"`
}

// MarketData is the normalized market overview view.
type MarketData struct {
	BTCPrice       float64 `json:"btcPrice"`
	BTCChange24h   float64 `json:"btcChange24h"`
	ETHPrice       float64 `json:"ethPrice"`
	ETHChange24h   float64 `json:"ethChange24h"`
	FearGreedIndex float64 `json:"fearGreedIndex"`
	BTCDominance   float64 `json:"btcDominance"`
	TotalMarketCap float64 `json:"totalMarketCap"`
	Total24hVolume float64 `json:"total24hVolume"`
}

// FearGreedData is the normalized sentiment view.
type FearGreedData struct {
	Value          float64 `json:"value"`
	Classification string  `json:"classification"`
}

// TradeItem is a single normalized order or fill.
type TradeItem struct {
	ID        string  `json:"id"`
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Type      string  `json:"type"`
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
	Filled    float64 `json:"filled"`
	Status    string  `json:"status"`
	Timestamp int64   `json:"timestamp"`
}

// TradesData is the normalized trading activity view.
type TradesData struct {
	ActiveTrades     int         `json:"activeTrades"`
	TodayTrades      int         `json:"todayTrades"`
	PendingOrders    int         `json:"pendingOrders"`
	TotalVolume24h   float64     `json:"totalVolume24h"`
	SuccessfulTrades int         `json:"successfulTrades"`
	FailedTrades     int         `json:"failedTrades"`
	AvgTradeProfit   float64     `json:"avgTradeProfit"`
	Trades           []TradeItem `json:"trades"`
}

// TradeStatsData is the slim stats projection used by summary tiles.
type TradeStatsData struct {
	ActiveTrades int     `json:"activeTrades"`
	TodayTrades  int     `json:"todayTrades"`
	SuccessRate  float64 `json:"successRate"`
	TotalPnL     float64 `json:"totalPnL"`
}

// PortfolioSummary is the portfolio slice of the aggregate view.
type PortfolioSummary struct {
	TotalBalance  float64 `json:"totalBalance"`
	DailyChange   float64 `json:"dailyChange"`
	WeeklyChange  float64 `json:"weeklyChange"`
	MonthlyChange float64 `json:"monthlyChange"`
	TotalPnL      float64 `json:"totalPnL"`
	TotalTrades   int     `json:"totalTrades"`
	WinRate       float64 `json:"winRate"`
	SharpeRatio   float64 `json:"sharpeRatio"`
}

// AgentInfo describes one trading agent in the aggregate view.
type AgentInfo struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	Performance float64 `json:"performance"`
	Trades      int     `json:"trades"`
	Uptime      float64 `json:"uptime"`
}

// MarketSummary is the market slice of the aggregate view.
type MarketSummary struct {
	BTCPrice       float64 `json:"btcPrice"`
	ETHPrice       float64 `json:"ethPrice"`
	FearGreedIndex float64 `json:"fearGreedIndex"`
	Dominance      float64 `json:"dominance"`
}

// TradingSummary is the trading slice of the aggregate view.
type TradingSummary struct {
	ActiveTrades     int     `json:"activeTrades"`
	TodayTrades      int     `json:"todayTrades"`
	PendingOrders    int     `json:"pendingOrders"`
	TotalVolume24h   float64 `json:"totalVolume24h"`
	SuccessfulTrades int     `json:"successfulTrades"`
	FailedTrades     int     `json:"failedTrades"`
}

// RiskSummary is the risk slice of the aggregate view.
type RiskSummary struct {
	TotalExposure   float64 `json:"totalExposure"`
	MaxRiskPerTrade float64 `json:"maxRiskPerTrade"`
	CurrentDrawdown float64 `json:"currentDrawdown"`
	RiskScore       int     `json:"riskScore"`
}

// LearningSummary is the learning-progress slice of the aggregate view.
type LearningSummary struct {
	TotalSessions    int     `json:"totalSessions"`
	CompletedCourses int     `json:"completedCourses"`
	CurrentLevel     int     `json:"currentLevel"`
	WeeklyProgress   float64 `json:"weeklyProgress"`
}

// Activity is one recent-activity entry in the aggregate view.
type Activity struct {
	ID          int     `json:"id"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Timestamp   int64   `json:"timestamp"`
	Agent       string  `json:"agent"`
}

// SystemSummary is the fleet summary slice of the aggregate view.
type SystemSummary struct {
	ActiveAgents   int     `json:"activeAgents"`
	TotalAgents    int     `json:"totalAgents"`
	AvgPerformance float64 `json:"avgPerformance"`
	SystemHealth   float64 `json:"systemHealth"`
}

// ChartSeries is a labeled numeric series for dashboard charts.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// ChartSet groups the aggregate view's chart series.
type ChartSet struct {
	Performance ChartSeries `json:"performance"`
	Agents      ChartSeries `json:"agents"`
	Volume      ChartSeries `json:"volume"`
}

// ComprehensiveData is the full aggregate dashboard view model.
type ComprehensiveData struct {
	Portfolio  PortfolioSummary `json:"portfolio"`
	AIAgents   []AgentInfo      `json:"aiAgents"`
	Market     MarketSummary    `json:"market"`
	Trading    TradingSummary   `json:"trading"`
	Risk       RiskSummary      `json:"risk"`
	Learning   LearningSummary  `json:"learning"`
	Activities []Activity       `json:"activities"`
	Summary    SystemSummary    `json:"summary"`
	Charts     ChartSet         `json:"charts"`
}
