package service

import (
	"context"
	"time"

	"github.com/clausewatch/clausewatch/internal/repo"
)

type AnalyticsService struct {
	analytics *repo.AnalyticsRepo
}

func NewAnalyticsService(analytics *repo.AnalyticsRepo) *AnalyticsService {
	return &AnalyticsService{analytics: analytics}
}

func (s *AnalyticsService) RiskDistribution(ctx context.Context, contractID string) (map[string]int, error) {
	return s.analytics.RiskDistribution(ctx, contractID)
}

func (s *AnalyticsService) ChangeTypes(ctx context.Context, contractID string) (map[string]int, error) {
	return s.analytics.ChangeTypeCounts(ctx, contractID)
}

// Trend returns daily change buckets for the last N days (default 30, cap
// 365).
func (s *AnalyticsService) Trend(ctx context.Context, contractID string, days int) ([]repo.TrendPoint, error) {
	if days <= 0 {
		days = 30
	}
	if days > 365 {
		days = 365
	}
	since := time.Now().AddDate(0, 0, -days).Unix()
	return s.analytics.Trend(ctx, contractID, since, 86400)
}

func (s *AnalyticsService) VendorSummaries(ctx context.Context) ([]repo.VendorSummary, error) {
	return s.analytics.VendorSummaries(ctx)
}

func (s *AnalyticsService) Stats(ctx context.Context) (*repo.Totals, error) {
	return s.analytics.Stats(ctx)
}
