package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ranchbox/backend/internal/model"
)

var ErrCommissionNotFound = errors.New("commission not found")

// RecordCommission persists a commission and credits the payee's pending
// balance in a single transaction. The unique constraint on
// (order_id, payee_user_id) makes duplicate webhook deliveries a no-op:
// the function returns false and leaves the wallet untouched.
func (r *Repository) RecordCommission(ctx context.Context, c *model.Commission) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO commissions (id, order_id, payee_user_id, referred_user_id, tier_level,
			base_percentage, applied_rate, order_total, amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (order_id, payee_user_id) DO NOTHING`,
		c.ID, c.OrderID, c.PayeeUserID, c.ReferredUserID, c.TierLevel,
		c.BasePercentage, c.AppliedRate, c.OrderTotal, c.Amount, c.Status)
	if err != nil {
		return false, fmt.Errorf("failed to insert commission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	// Credit the wallet with a row lock and a ledger entry, same tx.
	var balanceBefore decimal.Decimal
	err = tx.GetContext(ctx, &balanceBefore,
		"SELECT pending_balance FROM users WHERE id = $1 FOR UPDATE", c.PayeeUserID)
	if err != nil {
		return false, fmt.Errorf("failed to get pending balance: %w", err)
	}

	balanceAfter := balanceBefore.Add(c.Amount)

	_, err = tx.ExecContext(ctx,
		"UPDATE users SET pending_balance = $1, updated_at = NOW() WHERE id = $2",
		balanceAfter, c.PayeeUserID)
	if err != nil {
		return false, fmt.Errorf("failed to update pending balance: %w", err)
	}

	description := fmt.Sprintf("Tier %d commission on order %s", c.TierLevel, c.OrderID)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_transactions (user_id, amount, type, description, reference_id, balance_before, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.PayeeUserID, c.Amount, model.TransactionTypeCommission, description, c.ID, balanceBefore, balanceAfter)
	if err != nil {
		return false, fmt.Errorf("failed to create ledger entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) GetCommission(ctx context.Context, id uuid.UUID) (*model.Commission, error) {
	var c model.Commission
	err := r.db.GetContext(ctx, &c, "SELECT * FROM commissions WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommissionNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repository) GetCommissionsByPayee(ctx context.Context, payeeID uuid.UUID, limit, offset int) ([]model.Commission, error) {
	var commissions []model.Commission
	err := r.db.SelectContext(ctx, &commissions, `
		SELECT * FROM commissions
		WHERE payee_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		payeeID, limit, offset)
	return commissions, err
}

func (r *Repository) GetCommissionsByOrder(ctx context.Context, orderID string) ([]model.Commission, error) {
	var commissions []model.Commission
	err := r.db.SelectContext(ctx, &commissions,
		"SELECT * FROM commissions WHERE order_id = $1 ORDER BY tier_level", orderID)
	return commissions, err
}

func (r *Repository) ListCommissions(ctx context.Context, status *model.CommissionStatus, limit, offset int) ([]model.Commission, error) {
	var commissions []model.Commission
	if status != nil {
		err := r.db.SelectContext(ctx, &commissions, `
			SELECT * FROM commissions WHERE status = $1
			ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			*status, limit, offset)
		return commissions, err
	}
	err := r.db.SelectContext(ctx, &commissions, `
		SELECT * FROM commissions
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	return commissions, err
}

// UpdateCommissionStatus moves a commission from one status to another.
// The old status is part of the WHERE clause so concurrent transitions
// cannot race past each other.
func (r *Repository) UpdateCommissionStatus(ctx context.Context, id uuid.UUID, from, to model.CommissionStatus) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE commissions SET status = $3 WHERE id = $1 AND status = $2", id, from, to)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCommissionNotFound
	}
	return nil
}
