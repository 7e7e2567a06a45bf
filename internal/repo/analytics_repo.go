package repo

import (
	"context"
	"database/sql"

	"github.com/clausewatch/clausewatch/internal/pkg/dbutil"
)

// TrendPoint is one time bucket in a drift trend series.
type TrendPoint struct {
	Bucket       int64   `json:"bucket"`
	ChangeCount  int     `json:"change_count"`
	AvgRiskScore float64 `json:"avg_risk_score"`
	MaxRiskScore int     `json:"max_risk_score"`
}

// VendorSummary aggregates drift activity per vendor.
type VendorSummary struct {
	Vendor        string  `json:"vendor"`
	ContractCount int     `json:"contract_count"`
	ChangeCount   int     `json:"change_count"`
	AvgRiskScore  float64 `json:"avg_risk_score"`
	MaxRiskScore  int     `json:"max_risk_score"`
}

// Totals is the dashboard headline block.
type Totals struct {
	Contracts     int `json:"contracts"`
	Versions      int `json:"versions"`
	Changes       int `json:"changes"`
	PendingAlerts int `json:"pending_alerts"`
}

// AnalyticsRepo holds the aggregate queries the dashboard feeds from. These
// are reporting reads, so raw SQL beats the query builder here.
type AnalyticsRepo struct {
	db *sql.DB
}

func NewAnalyticsRepo(db *sql.DB) *AnalyticsRepo {
	return &AnalyticsRepo{db: db}
}

// RiskDistribution counts non-unchanged changes per risk level, optionally
// scoped to one contract.
func (r *AnalyticsRepo) RiskDistribution(ctx context.Context, contractID string) (map[string]int, error) {
	query := "SELECT risk_level, COUNT(1) FROM changes WHERE change_type <> 'unchanged'"
	args := []interface{}{}
	if contractID != "" {
		query += " AND contract_id = ?"
		args = append(args, contractID)
	}
	query += " GROUP BY risk_level"
	sqlStr, finalArgs := dbutil.Finalize(query, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, finalArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make(map[string]int)
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, err
		}
		result[level] = count
	}
	return result, rows.Err()
}

func (r *AnalyticsRepo) ChangeTypeCounts(ctx context.Context, contractID string) (map[string]int, error) {
	query := "SELECT change_type, COUNT(1) FROM changes"
	args := []interface{}{}
	if contractID != "" {
		query += " WHERE contract_id = ?"
		args = append(args, contractID)
	}
	query += " GROUP BY change_type"
	sqlStr, finalArgs := dbutil.Finalize(query, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, finalArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make(map[string]int)
	for rows.Next() {
		var changeType string
		var count int
		if err := rows.Scan(&changeType, &count); err != nil {
			return nil, err
		}
		result[changeType] = count
	}
	return result, rows.Err()
}

// Trend buckets non-unchanged changes by time. bucketSeconds controls the
// resolution, since controls how far back the series goes.
func (r *AnalyticsRepo) Trend(ctx context.Context, contractID string, since int64, bucketSeconds int64) ([]TrendPoint, error) {
	if bucketSeconds <= 0 {
		bucketSeconds = 86400
	}
	query := `SELECT (ctime / ?) * ? AS bucket, COUNT(1), COALESCE(AVG(risk_score), 0), COALESCE(MAX(risk_score), 0)
FROM changes
WHERE change_type <> 'unchanged' AND ctime >= ?`
	args := []interface{}{bucketSeconds, bucketSeconds, since}
	if contractID != "" {
		query += " AND contract_id = ?"
		args = append(args, contractID)
	}
	query += " GROUP BY bucket ORDER BY bucket ASC"
	sqlStr, finalArgs := dbutil.Finalize(query, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, finalArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	points := make([]TrendPoint, 0)
	for rows.Next() {
		var point TrendPoint
		if err := rows.Scan(&point.Bucket, &point.ChangeCount, &point.AvgRiskScore, &point.MaxRiskScore); err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	return points, rows.Err()
}

func (r *AnalyticsRepo) VendorSummaries(ctx context.Context) ([]VendorSummary, error) {
	query := `SELECT co.vendor, COUNT(DISTINCT co.id),
	COUNT(ch.id) FILTER (WHERE ch.change_type <> 'unchanged'),
	COALESCE(AVG(ch.risk_score) FILTER (WHERE ch.change_type <> 'unchanged'), 0),
	COALESCE(MAX(ch.risk_score), 0)
FROM contracts co
LEFT JOIN changes ch ON ch.contract_id = co.id
GROUP BY co.vendor
ORDER BY co.vendor ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	summaries := make([]VendorSummary, 0)
	for rows.Next() {
		var summary VendorSummary
		if err := rows.Scan(&summary.Vendor, &summary.ContractCount, &summary.ChangeCount, &summary.AvgRiskScore, &summary.MaxRiskScore); err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

func (r *AnalyticsRepo) Stats(ctx context.Context) (*Totals, error) {
	query := `SELECT
	(SELECT COUNT(1) FROM contracts),
	(SELECT COUNT(1) FROM versions),
	(SELECT COUNT(1) FROM changes),
	(SELECT COUNT(1) FROM alerts WHERE status = 'pending')`
	var totals Totals
	if err := r.db.QueryRowContext(ctx, query).Scan(&totals.Contracts, &totals.Versions, &totals.Changes, &totals.PendingAlerts); err != nil {
		return nil, err
	}
	return &totals, nil
}
