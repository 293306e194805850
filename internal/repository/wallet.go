package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ranchbox/backend/internal/model"
)

// GetPendingBalance returns the user's current pending wallet balance.
func (r *Repository) GetPendingBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.GetContext(ctx, &balance, "SELECT pending_balance FROM users WHERE id = $1", userID)
	return balance, err
}

// GetWalletTransactions returns the wallet ledger for a user, newest first.
func (r *Repository) GetWalletTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.WalletTransaction, error) {
	var transactions []model.WalletTransaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT * FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	return transactions, err
}
