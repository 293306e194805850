package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ranchbox/backend/internal/model"
)

var ErrUserNotFound = errors.New("user not found")

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, referral_code, commission_rate)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.ReferralCode,
		user.CommissionRate,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

// Referral codes are case-insensitive; they are stored uppercase.
func (r *Repository) GetUserByReferralCode(ctx context.Context, code string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE referral_code = $1", strings.ToUpper(code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) SetCommissionRate(ctx context.Context, id uuid.UUID, rate decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET commission_rate = $2, updated_at = NOW() WHERE id = $1", id, rate)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetCommissionOverride sets the override; nil clears it.
func (r *Repository) SetCommissionOverride(ctx context.Context, id uuid.UUID, override *decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET commission_override = $2, updated_at = NOW() WHERE id = $1", id, override)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *Repository) MarkPurchased(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET has_purchased = TRUE, updated_at = NOW() WHERE id = $1", id)
	return err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
