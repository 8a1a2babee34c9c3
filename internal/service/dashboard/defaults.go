package dashboard

import "titandash/internal/domain/models"

// Per-slot fallback values used when a sub-query fails.

func defaultPortfolio() models.PortfolioSection {
	return models.PortfolioSection{
		TotalBalance: 10000,
		Assets:       []models.PortfolioAsset{},
	}
}

func defaultAIAgents() models.AIAgentsSection {
	return models.AIAgentsSection{
		TotalAgents:  totalAgents,
		ActiveAgents: 0,
		Signals:      []models.AISignal{},
		Performance:  models.AgentPerformance{},
	}
}

func defaultRisk() models.RiskSection {
	return models.RiskSection{
		RecommendedAction: "No data",
	}
}
