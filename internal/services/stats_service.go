package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/crm-api/internal/policy"
	"github.com/yukikurage/crm-api/internal/repository"
)

// RecentOrderWindow is how far back the dashboard's recent order count reaches.
const RecentOrderWindow = 30 * 24 * time.Hour

// StatsService serves dashboard aggregates.
type StatsService struct {
	stats repository.StatsRepository
	now   func() time.Time
}

// NewStatsService creates a new StatsService
func NewStatsService(stats repository.StatsRepository) *StatsService {
	return &StatsService{stats: stats, now: time.Now}
}

// Dashboard counts only active rows.
func (s *StatsService) Dashboard(ctx context.Context, principal policy.Principal) (repository.DashboardCounts, error) {
	if err := principal.Require(policy.ActionView); err != nil {
		return repository.DashboardCounts{}, err
	}
	counts, err := s.stats.Dashboard(ctx, s.now().Add(-RecentOrderWindow))
	if err != nil {
		return repository.DashboardCounts{}, fmt.Errorf("failed to load dashboard: %w", err)
	}
	return counts, nil
}
