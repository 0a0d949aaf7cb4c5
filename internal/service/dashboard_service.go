package service

import (
	"context"

	"github.com/splicerhq/groupbuy_api/internal/repository"
)

// DashboardService assembles the authenticated user's deal overview.
type DashboardService struct {
	dashboardRepo *repository.DashboardRepository
}

func NewDashboardService(dashboardRepo *repository.DashboardRepository) *DashboardService {
	return &DashboardService{dashboardRepo: dashboardRepo}
}

// Dashboard bundles the user's participations with their aggregate stats.
type Dashboard struct {
	Stats          *repository.UserDealStats      `json:"stats"`
	Participations []repository.UserParticipation `json:"participations"`
}

func (s *DashboardService) GetDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	stats, err := s.dashboardRepo.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	participations, err := s.dashboardRepo.GetParticipations(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Stats: stats, Participations: participations}, nil
}
