package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"titandash/internal/domain/models"
	pkgch "titandash/pkg/clickhouse"
	applogger "titandash/pkg/logger"
)

// SchemaStatements are the idempotent DDL statements for the dashboard store.
var SchemaStatements = []string{
	"CREATE DATABASE IF NOT EXISTS titandash",
	`CREATE TABLE IF NOT EXISTS titandash.market_data (
        symbol String,
        close_price Float64,
        high_price Float64,
        low_price Float64,
        volume Float64,
        change_24h Float64,
        ts DateTime64(3)
    ) ENGINE=MergeTree ORDER BY (symbol, ts)`,
	`CREATE TABLE IF NOT EXISTS titandash.trades (
        user_id String,
        symbol String,
        quantity Float64,
        entry_price Float64,
        pnl Float64,
        entry_time DateTime,
        exit_time Nullable(DateTime)
    ) ENGINE=MergeTree ORDER BY (user_id, entry_time)`,
	`CREATE TABLE IF NOT EXISTS titandash.trading_orders (
        id UInt64,
        user_id String,
        side String,
        symbol String,
        quantity Float64,
        avg_fill_price Float64,
        total_value Float64,
        fees Float64,
        status String,
        filled_at DateTime
    ) ENGINE=MergeTree ORDER BY (user_id, filled_at)`,
	`CREATE TABLE IF NOT EXISTS titandash.portfolio_assets (
        user_id String,
        symbol String,
        amount Float64,
        avg_buy_price Float64,
        current_price Float64,
        total_value_usd Float64,
        pnl_usd Float64,
        pnl_percentage Float64
    ) ENGINE=ReplacingMergeTree ORDER BY (user_id, symbol)`,
	`CREATE TABLE IF NOT EXISTS titandash.ai_signals (
        symbol String,
        signal_type String,
        confidence Float64,
        current_price Float64,
        target_price Float64,
        stop_loss_price Float64,
        reasoning String,
        status String,
        created_at DateTime
    ) ENGINE=MergeTree ORDER BY created_at`,
	`CREATE TABLE IF NOT EXISTS titandash.trading_strategies (
        user_id String,
        name String,
        status String
    ) ENGINE=MergeTree ORDER BY (user_id, name)`,
}

// CHDashboardStore implements DashboardStore backed by ClickHouse.
type CHDashboardStore struct {
	client *pkgch.Client
	db     *sql.DB
	l      *applogger.Logger
}

func NewCHDashboardStore(ch *pkgch.Client) *CHDashboardStore {
	return &CHDashboardStore{client: ch, db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHDashboardStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHDashboardStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, SchemaStatements)
}

func (s *CHDashboardStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *CHDashboardStore) Close() error {
	return s.client.Close()
}

func (s *CHDashboardStore) StorePrice(ctx context.Context, symbol string, p models.PriceData) error {
	const q = `
        INSERT INTO titandash.market_data
            (symbol, close_price, high_price, low_price, volume, change_24h, ts)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	ts := time.UnixMilli(p.LastUpdate)
	if p.LastUpdate <= 0 {
		ts = time.Now()
	}
	if _, err := s.db.ExecContext(ctx, q, symbol, p.Price, p.High24h, p.Low24h, p.Volume24h, p.Change24h, ts); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse store_price error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("store price: %w", err)
	}
	return nil
}

func (s *CHDashboardStore) LatestPrice(ctx context.Context, symbol string) (*models.PriceData, error) {
	const q = `
        SELECT close_price, high_price, low_price, volume, change_24h, toUnixTimestamp64Milli(ts)
        FROM titandash.market_data
        WHERE symbol = ?
        ORDER BY ts DESC
        LIMIT 1
    `
	var p models.PriceData
	err := s.db.QueryRowContext(ctx, q, symbol).
		Scan(&p.Price, &p.High24h, &p.Low24h, &p.Volume24h, &p.Change24h, &p.LastUpdate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest price: %w", err)
	}
	return &p, nil
}

func (s *CHDashboardStore) PortfolioBalance(ctx context.Context, userID string) (float64, error) {
	const q = `SELECT sum(total_value_usd) FROM titandash.portfolio_assets WHERE user_id = ?`
	var total sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, q, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("portfolio balance: %w", err)
	}
	return total.Float64, nil
}

func (s *CHDashboardStore) PortfolioAssets(ctx context.Context, userID string) ([]models.PortfolioAsset, error) {
	const q = `
        SELECT symbol, amount, avg_buy_price, current_price, total_value_usd, pnl_usd, pnl_percentage
        FROM titandash.portfolio_assets
        WHERE user_id = ?
        ORDER BY total_value_usd DESC
    `
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("portfolio assets: %w", err)
	}
	defer rows.Close()

	out := make([]models.PortfolioAsset, 0, 16)
	for rows.Next() {
		var a models.PortfolioAsset
		if err := rows.Scan(&a.Symbol, &a.Amount, &a.AvgBuyPrice, &a.CurrentPrice, &a.TotalValue, &a.PnL, &a.PnLPercentage); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *CHDashboardStore) TradeStats(ctx context.Context, userID string) (*models.TradeStats, error) {
	const q = `
        SELECT
            count() AS total_trades,
            countIf(pnl > 0) AS winning_trades,
            sum(pnl) AS total_pnl,
            sumIf(pnl, toDate(entry_time) = today()) AS daily_pnl
        FROM titandash.trades
        WHERE user_id = ? AND exit_time IS NOT NULL
    `
	var (
		st       models.TradeStats
		totalPnL sql.NullFloat64
		dailyPnL sql.NullFloat64
	)
	if err := s.db.QueryRowContext(ctx, q, userID).
		Scan(&st.TotalTrades, &st.WinningTrades, &totalPnL, &dailyPnL); err != nil {
		return nil, fmt.Errorf("trade stats: %w", err)
	}
	st.TotalPnL = totalPnL.Float64
	st.DailyPnL = dailyPnL.Float64
	return &st, nil
}

func (s *CHDashboardStore) Transactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	const q = `
        SELECT id, side, symbol, quantity, avg_fill_price, total_value, fees, toUnixTimestamp(filled_at)
        FROM titandash.trading_orders
        WHERE user_id = ? AND status = 'filled'
        ORDER BY filled_at DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}
	defer rows.Close()

	out := make([]models.Transaction, 0, limit)
	for rows.Next() {
		var (
			t  models.Transaction
			ts int64
		)
		if err := rows.Scan(&t.ID, &t.Type, &t.Symbol, &t.Amount, &t.Price, &t.Total, &t.Fee, &ts); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Timestamp = ts * 1000
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *CHDashboardStore) ActiveTradesCount(ctx context.Context, userID string) (int, error) {
	const q = `SELECT count() FROM titandash.trades WHERE user_id = ? AND exit_time IS NULL`
	return s.countQuery(ctx, q, userID)
}

func (s *CHDashboardStore) TodayTradesCount(ctx context.Context, userID string) (int, error) {
	const q = `SELECT count() FROM titandash.trades WHERE user_id = ? AND toDate(entry_time) = today()`
	return s.countQuery(ctx, q, userID)
}

func (s *CHDashboardStore) PendingOrdersCount(ctx context.Context, userID string) (int, error) {
	const q = `SELECT count() FROM titandash.trading_orders WHERE user_id = ? AND status IN ('pending', 'open')`
	return s.countQuery(ctx, q, userID)
}

func (s *CHDashboardStore) Volume24h(ctx context.Context, userID string) (float64, error) {
	const q = `
        SELECT sum(total_value)
        FROM titandash.trading_orders
        WHERE user_id = ? AND filled_at >= now() - INTERVAL 24 HOUR
    `
	var v sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, q, userID).Scan(&v); err != nil {
		return 0, fmt.Errorf("volume 24h: %w", err)
	}
	return v.Float64, nil
}

func (s *CHDashboardStore) ActiveSignals(ctx context.Context, limit int) ([]models.AISignal, error) {
	const q = `
        SELECT symbol, signal_type, confidence, current_price, target_price, stop_loss_price, reasoning,
               toString(created_at)
        FROM titandash.ai_signals
        WHERE status = 'active'
        ORDER BY created_at DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("active signals: %w", err)
	}
	defer rows.Close()

	out := make([]models.AISignal, 0, limit)
	for rows.Next() {
		var sig models.AISignal
		if err := rows.Scan(&sig.Symbol, &sig.SignalType, &sig.Confidence, &sig.CurrentPrice,
			&sig.TargetPrice, &sig.StopLossPrice, &sig.Reasoning, &sig.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}

func (s *CHDashboardStore) ActiveStrategiesCount(ctx context.Context, userID string) (int, error) {
	const q = `SELECT count() FROM titandash.trading_strategies WHERE user_id = ? AND status = 'active'`
	return s.countQuery(ctx, q, userID)
}

func (s *CHDashboardStore) OpenExposure(ctx context.Context, userID string) (float64, error) {
	const q = `
        SELECT sum(quantity * entry_price)
        FROM titandash.trades
        WHERE user_id = ? AND exit_time IS NULL
    `
	var v sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, q, userID).Scan(&v); err != nil {
		return 0, fmt.Errorf("open exposure: %w", err)
	}
	return v.Float64, nil
}

func (s *CHDashboardStore) MaxLoss30d(ctx context.Context, userID string) (float64, error) {
	const q = `
        SELECT min(pnl)
        FROM titandash.trades
        WHERE user_id = ? AND exit_time IS NOT NULL AND entry_time >= now() - INTERVAL 30 DAY
    `
	var v sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, q, userID).Scan(&v); err != nil {
		return 0, fmt.Errorf("max loss 30d: %w", err)
	}
	return v.Float64, nil
}

func (s *CHDashboardStore) DailyPnLSeries(ctx context.Context, userID string, days int) ([]models.PnLPoint, error) {
	const q = `
        SELECT toString(toDate(entry_time)) AS date, sum(pnl) AS daily_pnl
        FROM titandash.trades
        WHERE user_id = ? AND exit_time IS NOT NULL AND entry_time >= now() - INTERVAL ? DAY
        GROUP BY date
        ORDER BY date ASC
    `
	rows, err := s.db.QueryContext(ctx, q, userID, days)
	if err != nil {
		return nil, fmt.Errorf("daily pnl series: %w", err)
	}
	defer rows.Close()

	out := make([]models.PnLPoint, 0, days)
	for rows.Next() {
		var p models.PnLPoint
		if err := rows.Scan(&p.Date, &p.DailyPnL); err != nil {
			return nil, fmt.Errorf("scan pnl point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *CHDashboardStore) DailyVolumeSeries(ctx context.Context, userID string, days int) ([]models.VolumePoint, error) {
	const q = `
        SELECT toString(toDate(filled_at)) AS date, sum(total_value) AS volume
        FROM titandash.trading_orders
        WHERE user_id = ? AND filled_at >= now() - INTERVAL ? DAY
        GROUP BY date
        ORDER BY date ASC
    `
	rows, err := s.db.QueryContext(ctx, q, userID, days)
	if err != nil {
		return nil, fmt.Errorf("daily volume series: %w", err)
	}
	defer rows.Close()

	out := make([]models.VolumePoint, 0, days)
	for rows.Next() {
		var p models.VolumePoint
		if err := rows.Scan(&p.Date, &p.Volume); err != nil {
			return nil, fmt.Errorf("scan volume point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *CHDashboardStore) countQuery(ctx context.Context, q string, userID string) (int, error) {
	var n uint64
	if err := s.db.QueryRowContext(ctx, q, userID).Scan(&n); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse count query error", applogger.Error(err))
		}
		return 0, fmt.Errorf("count query: %w", err)
	}
	return int(n), nil
}
