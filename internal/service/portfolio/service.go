package portfolio

import (
	"context"
	"fmt"
	"math"
	"time"

	"titandash/internal/domain/models"
	drepo "titandash/internal/domain/repository"
	applogger "titandash/pkg/logger"
	"titandash/pkg/meta"
)

const portfolioTTLMs = 30000

// Annualization factor for the Sharpe ratio (trading days).
const tradingDays = 252

// Service computes portfolio views from the dashboard store.
type Service struct {
	store drepo.DashboardStore
	l     *applogger.Logger
	now   func() time.Time
}

// New creates a portfolio service.
func New(store drepo.DashboardStore, l *applogger.Logger) *Service {
	return &Service{store: store, l: l, now: time.Now}
}

// GetAdvancedPortfolio returns the portfolio with derived metrics.
func (s *Service) GetAdvancedPortfolio(ctx context.Context, userID string) (*models.PortfolioResult, error) {
	balance, err := s.store.PortfolioBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("portfolio balance: %w", err)
	}
	if balance == 0 {
		balance = 10000
	}

	stats, err := s.store.TradeStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("trade stats: %w", err)
	}

	assets, err := s.store.PortfolioAssets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("portfolio assets: %w", err)
	}

	winRate := 0.0
	if stats.TotalTrades > 0 {
		winRate = math.Round(float64(stats.WinningTrades) / float64(stats.TotalTrades) * 100)
	}

	sharpe := 0.0
	if stats.TotalTrades > 10 && balance > 0 {
		returns := stats.TotalPnL / balance
		sharpe = round2(returns * math.Sqrt(tradingDays))
	}

	dailyChange := 0.0
	if stats.DailyPnL != 0 && balance > 0 {
		dailyChange = round2(stats.DailyPnL / balance * 100)
	}

	totalValue := 0.0
	for _, a := range assets {
		totalValue += a.TotalValue
	}
	for i := range assets {
		if totalValue > 0 {
			assets[i].Allocation = round2(assets[i].TotalValue / totalValue * 100)
		}
	}
	if assets == nil {
		assets = []models.PortfolioAsset{}
	}

	s.l.Debug("portfolio computed",
		applogger.String("user", userID),
		applogger.Int("assets", len(assets)),
	)

	return &models.PortfolioResult{
		Portfolio: models.PortfolioMetrics{
			TotalBalance: math.Round(balance),
			TotalPnL:     math.Round(stats.TotalPnL),
			DailyChange:  dailyChange,
			WinRate:      winRate,
			SharpeRatio:  sharpe,
			TotalAssets:  len(assets),
			Assets:       assets,
		},
		Meta: meta.New(meta.SourceReal, portfolioTTLMs),
	}, nil
}

// GetTransactions returns the filled order history.
func (s *Service) GetTransactions(ctx context.Context, userID string, limit int) (*models.TransactionsResult, error) {
	if limit <= 0 {
		limit = 50
	}

	txs, err := s.store.Transactions(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}
	if txs == nil {
		txs = []models.Transaction{}
	}

	return &models.TransactionsResult{
		Transactions: txs,
		Meta:         meta.New(meta.SourceReal, portfolioTTLMs),
	}, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
