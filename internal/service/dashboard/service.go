package dashboard

import (
	"context"
	"math"
	"sync"
	"time"

	"titandash/internal/domain/models"
	drepo "titandash/internal/domain/repository"
	"titandash/internal/service/marketdata"
	"titandash/internal/service/portfolio"
	applogger "titandash/pkg/logger"
	"titandash/pkg/meta"
)

const dashboardTTLMs = 30000

// Symbols tracked on the comprehensive dashboard.
var dashboardSymbols = []string{"BTCUSDT", "ETHUSDT", "BNBUSDT", "SOLUSDT", "ADAUSDT"}

// totalAgents is the fixed number of agents in the system.
const totalAgents = 15

// Service assembles the comprehensive dashboard from independent
// sub-queries. Each slot fails in isolation and falls back to its
// default; the response as a whole never fails.
type Service struct {
	store     drepo.DashboardStore
	portfolio *portfolio.Service
	market    *marketdata.Service
	metrics   drepo.Metrics
	l         *applogger.Logger
	timeout   time.Duration
}

// New creates a dashboard service.
func New(store drepo.DashboardStore, pf *portfolio.Service, md *marketdata.Service, metrics drepo.Metrics, l *applogger.Logger) *Service {
	return &Service{
		store:     store,
		portfolio: pf,
		market:    md,
		metrics:   metrics,
		l:         l,
		timeout:   10 * time.Second,
	}
}

// GetComprehensiveDashboard returns the full dashboard for a user.
func (s *Service) GetComprehensiveDashboard(ctx context.Context, userID string) (*models.DashboardResult, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		portfolioSec = defaultPortfolio()
		marketPrices = models.MarketPrices{}
		fearGreed    = models.FearGreedIndex{Value: 50, Classification: "Neutral"}
		trading      = models.TradingSection{}
		aiAgents     = defaultAIAgents()
		risk         = defaultRisk()
	)

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 6)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := s.portfolio.GetAdvancedPortfolio(ctx, userID)
		ch <- item{"portfolio", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := s.market.FetchRealTimePrices(ctx, dashboardSymbols)
		ch <- item{"prices", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := s.market.GetFearGreedIndex(ctx)
		ch <- item{"feargreed", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := s.tradingStats(ctx, userID)
		ch <- item{"trading", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := s.aiAgentsData(ctx, userID)
		ch <- item{"agents", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := s.riskMetrics(ctx, userID)
		ch <- item{"risk", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			s.metrics.RecordSubQueryError(it.name)
			s.l.Warn("dashboard sub-query failed",
				applogger.String("slot", it.name),
				applogger.Error(it.err),
			)
			continue
		}
		switch it.name {
		case "portfolio":
			r := it.val.(*models.PortfolioResult)
			portfolioSec = models.PortfolioSection{
				TotalBalance: r.Portfolio.TotalBalance,
				DailyChange:  r.Portfolio.DailyChange,
				TotalPnL:     r.Portfolio.TotalPnL,
				WinRate:      r.Portfolio.WinRate,
				SharpeRatio:  r.Portfolio.SharpeRatio,
				Assets:       r.Portfolio.Assets,
			}
		case "prices":
			r := it.val.(*models.PricesResult)
			marketPrices = r.Prices
		case "feargreed":
			r := it.val.(*models.FearGreedResult)
			fearGreed = r.Index
		case "trading":
			trading = it.val.(models.TradingSection)
		case "agents":
			aiAgents = it.val.(models.AIAgentsSection)
		case "risk":
			risk = it.val.(models.RiskSection)
		}
	}

	charts := s.chartsData(ctx, userID)

	data := models.DashboardData{
		Portfolio: portfolioSec,
		Trading:   trading,
		Market: models.MarketSection{
			BTCPrice:                marketPrices["BTCUSDT"].Price,
			ETHPrice:                marketPrices["ETHUSDT"].Price,
			BNBPrice:                marketPrices["BNBUSDT"].Price,
			FearGreedIndex:          fearGreed.Value,
			FearGreedClassification: fearGreed.Classification,
			Prices:                  marketPrices,
		},
		Risk:     risk,
		AIAgents: aiAgents,
		Charts:   charts,
	}

	s.metrics.RecordLatency("comprehensive_dashboard", time.Since(start).Seconds())
	s.l.Info("comprehensive dashboard assembled",
		applogger.String("user", userID),
		applogger.Duration("duration", time.Since(start)),
	)

	return &models.DashboardResult{
		Data: data,
		Meta: meta.New(meta.SourceReal, dashboardTTLMs),
	}, nil
}

// GetQuickStats returns the condensed dashboard summary.
func (s *Service) GetQuickStats(ctx context.Context, userID string) (*models.QuickStatsResult, error) {
	res, err := s.GetComprehensiveDashboard(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.QuickStatsResult{
		Stats: models.QuickStats{
			TotalBalance: res.Data.Portfolio.TotalBalance,
			DailyChange:  res.Data.Portfolio.DailyChange,
			TotalPnL:     res.Data.Portfolio.TotalPnL,
			ActiveTrades: res.Data.Trading.ActiveTrades,
			WinRate:      res.Data.Portfolio.WinRate,
		},
		Meta: res.Meta,
	}, nil
}

func (s *Service) tradingStats(ctx context.Context, userID string) (models.TradingSection, error) {
	active, err := s.store.ActiveTradesCount(ctx, userID)
	if err != nil {
		return models.TradingSection{}, err
	}
	today, err := s.store.TodayTradesCount(ctx, userID)
	if err != nil {
		return models.TradingSection{}, err
	}
	pending, err := s.store.PendingOrdersCount(ctx, userID)
	if err != nil {
		return models.TradingSection{}, err
	}
	volume, err := s.store.Volume24h(ctx, userID)
	if err != nil {
		return models.TradingSection{}, err
	}
	return models.TradingSection{
		ActiveTrades:   active,
		TodayTrades:    today,
		PendingOrders:  pending,
		TotalVolume24h: volume,
	}, nil
}

func (s *Service) aiAgentsData(ctx context.Context, userID string) (models.AIAgentsSection, error) {
	signals, err := s.store.ActiveSignals(ctx, 10)
	if err != nil {
		return models.AIAgentsSection{}, err
	}
	active, err := s.store.ActiveStrategiesCount(ctx, userID)
	if err != nil {
		return models.AIAgentsSection{}, err
	}
	if signals == nil {
		signals = []models.AISignal{}
	}
	return models.AIAgentsSection{
		TotalAgents:  totalAgents,
		ActiveAgents: active,
		Signals:      signals,
		Performance: models.AgentPerformance{
			AvgWinRate:   65,
			TotalSignals: len(signals),
			SuccessRate:  70,
		},
	}, nil
}

func (s *Service) riskMetrics(ctx context.Context, userID string) (models.RiskSection, error) {
	totalValue, err := s.store.PortfolioBalance(ctx, userID)
	if err != nil {
		return models.RiskSection{}, err
	}
	if totalValue == 0 {
		totalValue = 10000
	}

	exposure, err := s.store.OpenExposure(ctx, userID)
	if err != nil {
		return models.RiskSection{}, err
	}

	ratio := 0.0
	if totalValue > 0 {
		ratio = exposure / totalValue
	}

	riskScore, action := AssessRisk(ratio)

	maxLoss, err := s.store.MaxLoss30d(ctx, userID)
	if err != nil {
		return models.RiskSection{}, err
	}

	return models.RiskSection{
		TotalExposure:     math.Round(exposure),
		CurrentDrawdown:   math.Round(math.Abs(maxLoss)),
		RiskScore:         riskScore,
		RecommendedAction: action,
	}, nil
}

// AssessRisk maps an exposure ratio to a risk score and recommendation.
// Exposed for reuse by alerting.
func AssessRisk(ratio float64) (int, string) {
	switch {
	case ratio > 0.8:
		return 90, "Reduce exposure immediately"
	case ratio > 0.5:
		return 60, "Consider reducing exposure"
	case ratio > 0.3:
		return 30, "Normal"
	default:
		return 0, "Normal"
	}
}

func (s *Service) chartsData(ctx context.Context, userID string) models.ChartsSection {
	charts := models.ChartsSection{
		PortfolioPerformance: []models.PnLPoint{},
		TradingVolume:        []models.VolumePoint{},
		AgentPerformance:     []models.AgentPerfPoint{},
	}

	pnl, err := s.store.DailyPnLSeries(ctx, userID, 30)
	if err != nil {
		s.metrics.RecordSubQueryError("charts")
		s.l.Warn("charts pnl series failed", applogger.Error(err))
		return charts
	}
	volume, err := s.store.DailyVolumeSeries(ctx, userID, 7)
	if err != nil {
		s.metrics.RecordSubQueryError("charts")
		s.l.Warn("charts volume series failed", applogger.Error(err))
		return charts
	}

	if pnl != nil {
		charts.PortfolioPerformance = pnl
	}
	if volume != nil {
		charts.TradingVolume = volume
	}
	charts.AgentPerformance = []models.AgentPerfPoint{
		{Agent: "Technical Analysis", WinRate: 68, Trades: 45},
		{Agent: "Sentiment Analysis", WinRate: 62, Trades: 38},
		{Agent: "Risk Management", WinRate: 75, Trades: 52},
	}

	return charts
}
