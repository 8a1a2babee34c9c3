package models

import "titandash/pkg/meta"

// PortfolioAsset is a single holding inside a portfolio.
type PortfolioAsset struct {
	Symbol        string  `json:"symbol"`
	Amount        float64 `json:"amount"`
	AvgBuyPrice   float64 `json:"avgBuyPrice"`
	CurrentPrice  float64 `json:"currentPrice"`
	TotalValue    float64 `json:"totalValue"`
	PnL           float64 `json:"pnl"`
	PnLPercentage float64 `json:"pnlPercentage"`
	Allocation    float64 `json:"allocation"`
}

// PortfolioMetrics is the advanced portfolio view with derived metrics.
type PortfolioMetrics struct {
	TotalBalance float64          `json:"totalBalance"`
	TotalPnL     float64          `json:"totalPnL"`
	DailyChange  float64          `json:"dailyChange"`
	WinRate      float64          `json:"winRate"`
	SharpeRatio  float64          `json:"sharpeRatio"`
	TotalAssets  int              `json:"totalAssets"`
	Assets       []PortfolioAsset `json:"assets"`
}

// PortfolioResult carries portfolio metrics with their provenance.
type PortfolioResult struct {
	Portfolio PortfolioMetrics `json:"portfolio"`
	Meta      meta.Signature   `json:"meta"`
}

// TradeStats summarizes closed trades for a user.
type TradeStats struct {
	TotalTrades   int
	WinningTrades int
	TotalPnL      float64
	DailyPnL      float64
}

// Transaction is a filled order from the trade history.
type Transaction struct {
	ID        int64   `json:"id"`
	Type      string  `json:"type"`
	Symbol    string  `json:"symbol"`
	Amount    float64 `json:"amount"`
	Price     float64 `json:"price"`
	Total     float64 `json:"total"`
	Fee       float64 `json:"fee"`
	Timestamp int64   `json:"timestamp"`
}

// TransactionsResult carries transaction history with its provenance.
type TransactionsResult struct {
	Transactions []Transaction  `json:"transactions"`
	Meta         meta.Signature `json:"meta"`
}
