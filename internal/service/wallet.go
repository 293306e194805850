package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ranchbox/backend/internal/model"
	"github.com/ranchbox/backend/internal/repository"
)

type WalletService struct {
	repo *repository.Repository
}

func NewWalletService(repo *repository.Repository) *WalletService {
	return &WalletService{repo: repo}
}

func (s *WalletService) GetPendingBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	return s.repo.GetPendingBalance(ctx, userID)
}

func (s *WalletService) GetTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.WalletTransaction, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetWalletTransactions(ctx, userID, limit, offset)
}
