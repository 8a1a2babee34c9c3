package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"titandash/internal/adapter"
	appflags "titandash/pkg/flags"
	applogger "titandash/pkg/logger"
	"titandash/pkg/meta"
)

// dashctl renders the dashboard in a terminal. It talks to the API
// through the adapter tier, so a dead backend still produces a full
// (mock) dashboard with a provenance badge instead of an error.
func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "dashboard API base URL")
	token := flag.String("token", "", "bearer token")
	quiet := flag.Bool("quiet", false, "suppress adapter logs")
	flag.Parse()

	l, err := applogger.New(&applogger.Config{Level: "warn", Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	if *quiet {
		l = applogger.Nop()
	}

	policy := appflags.FromEnv(l)

	opts := []adapter.Option{}
	if *token != "" {
		opts = append(opts, adapter.WithToken(*token))
	}
	c := adapter.New(*baseURL, policy, l, opts...)

	ctx := context.Background()
	data := c.Comprehensive(ctx)

	fmt.Printf("provenance: %s\n\n", provenanceBadge(ctx, c, policy))
	printDashboard(data)
}

// provenanceBadge probes the quick-stats endpoint for its signature and
// validates it against the active policy. Any failure means the
// rendered numbers came from the static records.
func provenanceBadge(ctx context.Context, c *adapter.Client, policy appflags.Policy) string {
	sig, err := c.QuickStatsMeta(ctx)
	if err != nil {
		return "MOCK (backend unreachable)"
	}
	if !meta.IsValidMetadata(sig, policy) {
		return fmt.Sprintf("STALE (source=%s reason=%q)", sig.Source, sig.Reason)
	}
	return fmt.Sprintf("LIVE (source=%s ttl=%dms)", sig.Source, sig.TTLMs)
}

func printDashboard(d adapter.ComprehensiveData) {
	fmt.Println("portfolio")
	fmt.Printf("  total balance   %14.2f\n", d.Portfolio.TotalBalance)
	fmt.Printf("  daily change    %13.2f%%\n", d.Portfolio.DailyChange)
	fmt.Printf("  total pnl       %14.2f\n", d.Portfolio.TotalPnL)
	fmt.Printf("  win rate        %13.1f%%\n", d.Portfolio.WinRate)
	fmt.Printf("  sharpe ratio    %14.2f\n", d.Portfolio.SharpeRatio)

	fmt.Println("market")
	fmt.Printf("  BTC             %14.2f\n", d.Market.BTCPrice)
	fmt.Printf("  ETH             %14.2f\n", d.Market.ETHPrice)
	fmt.Printf("  fear & greed    %14.0f\n", d.Market.FearGreedIndex)
	fmt.Printf("  BTC dominance   %13.1f%%\n", d.Market.Dominance)

	fmt.Println("trading")
	fmt.Printf("  active trades   %14d\n", d.Trading.ActiveTrades)
	fmt.Printf("  today trades    %14d\n", d.Trading.TodayTrades)
	fmt.Printf("  pending orders  %14d\n", d.Trading.PendingOrders)
	fmt.Printf("  24h volume      %14.2f\n", d.Trading.TotalVolume24h)

	fmt.Println("risk")
	fmt.Printf("  risk score      %14d\n", d.Risk.RiskScore)
	fmt.Printf("  exposure        %14.2f\n", d.Risk.TotalExposure)
	fmt.Printf("  drawdown        %14.2f\n", d.Risk.CurrentDrawdown)

	if len(d.AIAgents) > 0 {
		fmt.Println("agents")
		for _, a := range d.AIAgents {
			fmt.Printf("  %-20s %-8s perf=%.1f%% trades=%d\n", a.Name, a.Status, a.Performance, a.Trades)
		}
	}

	if len(d.Charts.Performance.Data) > 0 {
		fmt.Println("pnl trend")
		fmt.Printf("  %s\n", sparkline(d.Charts.Performance.Data))
	}
}

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

func sparkline(data []float64) string {
	if len(data) == 0 {
		return ""
	}
	min, max := data[0], data[0]
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	var b strings.Builder
	for _, v := range data {
		idx := 0
		if span > 0 {
			idx = int((v - min) / span * float64(len(sparkTicks)-1))
		}
		b.WriteRune(sparkTicks[idx])
	}
	return b.String()
}
