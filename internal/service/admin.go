package service

import (
	"context"

	"github.com/ranchbox/backend/internal/model"
	"github.com/ranchbox/backend/internal/repository"
)

type AdminService struct {
	repo *repository.Repository
}

func NewAdminService(repo *repository.Repository) *AdminService {
	return &AdminService{repo: repo}
}

// ListCommissions returns commissions across all payees, optionally
// filtered by status.
func (s *AdminService) ListCommissions(ctx context.Context, status *model.CommissionStatus, limit, offset int) ([]model.Commission, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListCommissions(ctx, status, limit, offset)
}

func (s *AdminService) GetCommissionsByOrder(ctx context.Context, orderID string) ([]model.Commission, error) {
	return s.repo.GetCommissionsByOrder(ctx, orderID)
}

func (s *AdminService) GetSettings(ctx context.Context) (map[string]string, error) {
	return s.repo.GetAllSettings(ctx)
}
