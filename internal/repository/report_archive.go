package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"CoinPilot/internal/domain/models"
	"CoinPilot/internal/domain/repository"
)

// ClickHouseReportArchive appends every successful analysis to ClickHouse
// for historical queries. Rows are append-only; the serving path never
// waits on this store.
type ClickHouseReportArchive struct {
	db    *sql.DB
	table string
}

func NewClickHouseReportArchive(db *sql.DB, table string) repository.ReportArchive {
	return &ClickHouseReportArchive{db: db, table: table}
}

func (a *ClickHouseReportArchive) Append(ctx context.Context, r *models.SignalReport) error {
	q := fmt.Sprintf(`INSERT INTO %s
		(ts, symbol, direction, sentiment, risk_level, risk_off,
		 quant_score, social_score, risk_score, overall_score, regime, summary, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, a.table)
	_, err := a.db.ExecContext(ctx, q,
		r.GeneratedAt,
		r.Symbol,
		string(r.Quant.Direction),
		string(r.Social.Sentiment),
		string(r.Risk.Level),
		boolToUInt8(r.Risk.RiskOff),
		r.QuantScore,
		r.SocialScore,
		r.RiskScore,
		r.OverallScore,
		r.MarketRegime,
		r.Summary,
		string(r.FullReport),
	)
	return err
}

func (a *ClickHouseReportArchive) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.SignalReport, error) {
	q := fmt.Sprintf(`SELECT ts, symbol, direction, sentiment, risk_level, risk_off,
		quant_score, social_score, risk_score, overall_score, regime, summary, detail
		FROM %s WHERE symbol = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?`, a.table)
	rows, err := a.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.SignalReport
	for rows.Next() {
		var (
			r         models.SignalReport
			direction string
			sentiment string
			level     string
			riskOff   uint8
			detail    string
		)
		if err := rows.Scan(&r.GeneratedAt, &r.Symbol, &direction, &sentiment, &level, &riskOff,
			&r.QuantScore, &r.SocialScore, &r.RiskScore, &r.OverallScore, &r.MarketRegime, &r.Summary, &detail); err != nil {
			return nil, err
		}
		r.Quant = models.QuantSignal{Direction: models.Direction(direction), Timestamp: r.GeneratedAt}
		r.Social = models.SocialSignal{Sentiment: models.Sentiment(sentiment), Timestamp: r.GeneratedAt}
		r.Risk = models.RiskSignal{Level: models.RiskLevel(level), RiskOff: riskOff == 1, Timestamp: r.GeneratedAt}
		if detail != "" {
			r.FullReport = json.RawMessage(detail)
		}
		reports = append(reports, &r)
	}
	return reports, rows.Err()
}

func (a *ClickHouseReportArchive) Health(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *ClickHouseReportArchive) Close() error {
	return nil // connection pool managed by pkg/clickhouse
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
