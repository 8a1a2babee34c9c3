package models

import "titandash/pkg/meta"

// PortfolioSection is the portfolio slice of the dashboard.
type PortfolioSection struct {
	TotalBalance float64          `json:"totalBalance"`
	DailyChange  float64          `json:"dailyChange"`
	TotalPnL     float64          `json:"totalPnL"`
	WinRate      float64          `json:"winRate"`
	SharpeRatio  float64          `json:"sharpeRatio"`
	Assets       []PortfolioAsset `json:"assets"`
}

// TradingSection is the trading activity slice of the dashboard.
type TradingSection struct {
	ActiveTrades   int     `json:"activeTrades"`
	TodayTrades    int     `json:"todayTrades"`
	PendingOrders  int     `json:"pendingOrders"`
	TotalVolume24h float64 `json:"totalVolume24h"`
}

// MarketSection is the market overview slice of the dashboard.
type MarketSection struct {
	BTCPrice                float64      `json:"btcPrice"`
	ETHPrice                float64      `json:"ethPrice"`
	BNBPrice                float64      `json:"bnbPrice"`
	FearGreedIndex          int          `json:"fearGreedIndex"`
	FearGreedClassification string       `json:"fearGreedClassification"`
	Prices                  MarketPrices `json:"prices"`
}

// RiskSection is the risk assessment slice of the dashboard.
type RiskSection struct {
	TotalExposure     float64 `json:"totalExposure"`
	CurrentDrawdown   float64 `json:"currentDrawdown"`
	RiskScore         int     `json:"riskScore"`
	RecommendedAction string  `json:"recommendedAction"`
}

// AISignal is an active trading signal produced by an agent.
type AISignal struct {
	Symbol        string  `json:"symbol"`
	SignalType    string  `json:"signalType"`
	Confidence    float64 `json:"confidence"`
	CurrentPrice  float64 `json:"currentPrice"`
	TargetPrice   float64 `json:"targetPrice"`
	StopLossPrice float64 `json:"stopLossPrice"`
	Reasoning     string  `json:"reasoning"`
	CreatedAt     string  `json:"createdAt"`
}

// AgentPerformance is the aggregate agent signal performance.
type AgentPerformance struct {
	AvgWinRate   float64 `json:"avgWinRate"`
	TotalSignals int     `json:"totalSignals"`
	SuccessRate  float64 `json:"successRate"`
}

// AIAgentsSection is the agent activity slice of the dashboard.
type AIAgentsSection struct {
	TotalAgents  int              `json:"totalAgents"`
	ActiveAgents int              `json:"activeAgents"`
	Signals      []AISignal       `json:"signals"`
	Performance  AgentPerformance `json:"performance"`
}

// PnLPoint is one day of realized profit and loss.
type PnLPoint struct {
	Date     string  `json:"date"`
	DailyPnL float64 `json:"dailyPnl"`
}

// VolumePoint is one day of trading volume.
type VolumePoint struct {
	Date   string  `json:"date"`
	Volume float64 `json:"volume"`
}

// AgentPerfPoint is the per-agent performance summary for charts.
type AgentPerfPoint struct {
	Agent   string  `json:"agent"`
	WinRate float64 `json:"winRate"`
	Trades  int     `json:"trades"`
}

// ChartsSection holds the dashboard chart series.
type ChartsSection struct {
	PortfolioPerformance []PnLPoint       `json:"portfolioPerformance"`
	TradingVolume        []VolumePoint    `json:"tradingVolume"`
	AgentPerformance     []AgentPerfPoint `json:"agentPerformance"`
}

// DashboardData is the full dashboard payload.
type DashboardData struct {
	Portfolio PortfolioSection `json:"portfolio"`
	Trading   TradingSection   `json:"trading"`
	Market    MarketSection    `json:"market"`
	Risk      RiskSection      `json:"risk"`
	AIAgents  AIAgentsSection  `json:"aiAgents"`
	Charts    ChartsSection    `json:"charts"`
}

// DashboardResult carries dashboard data with its provenance.
type DashboardResult struct {
	Data DashboardData  `json:"data"`
	Meta meta.Signature `json:"meta"`
}

// QuickStats is the condensed dashboard summary.
type QuickStats struct {
	TotalBalance float64 `json:"totalBalance"`
	DailyChange  float64 `json:"dailyChange"`
	TotalPnL     float64 `json:"totalPnL"`
	ActiveTrades int     `json:"activeTrades"`
	WinRate      float64 `json:"winRate"`
}

// QuickStatsResult carries quick stats with their provenance.
type QuickStatsResult struct {
	Stats QuickStats     `json:"stats"`
	Meta  meta.Signature `json:"meta"`
}
