package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ranchbox/backend/internal/model"
)

var ErrAlreadyReferred = errors.New("user already has a referrer")

// CreateReferralLink sets the referrer on a user (once, immutable) and
// materializes the closure rows: the direct edge at level 1 plus the
// referrer's own ancestors shifted one level deeper, capped at MaxTierLevel.
// All of it happens in one transaction so the closure never disagrees with
// the referrer column.
func (r *Repository) CreateReferralLink(ctx context.Context, userID, referrerID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE users SET referrer_id = $2, updated_at = NOW() WHERE id = $1 AND referrer_id IS NULL",
		userID, referrerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the user does not exist or the referrer is already set.
		var exists bool
		if err := tx.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", userID); err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}
		return ErrAlreadyReferred
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO referral_closure (descendant_id, ancestor_id, level)
		VALUES ($1, $2, 1)
		ON CONFLICT DO NOTHING`,
		userID, referrerID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO referral_closure (descendant_id, ancestor_id, level)
		SELECT $1, ancestor_id, level + 1
		FROM referral_closure
		WHERE descendant_id = $2 AND level < $3
		ON CONFLICT DO NOTHING`,
		userID, referrerID, model.MaxTierLevel)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetAncestors returns the buyer's ancestors up to maxLevel, each paired
// with that ancestor's current rates. The join is LEFT so a closure row
// whose user vanished still comes back (with null rates) and can be
// skipped explicitly instead of silently dropped.
func (r *Repository) GetAncestors(ctx context.Context, userID uuid.UUID, maxLevel int) ([]model.AncestorEdge, error) {
	var edges []model.AncestorEdge
	query := `
		SELECT c.ancestor_id, c.level, u.commission_rate, u.commission_override
		FROM referral_closure c
		LEFT JOIN users u ON u.id = c.ancestor_id
		WHERE c.descendant_id = $1 AND c.level <= $2
		ORDER BY c.level`
	err := r.db.SelectContext(ctx, &edges, query, userID, maxLevel)
	return edges, err
}

// IsInReferralChain reports whether targetID appears anywhere above
// userID on the referrer chain. This walks users.referrer_id rather
// than the closure table: the closure stops at MaxTierLevel, but cycle
// checks must see the whole chain however deep it runs.
func (r *Repository) IsInReferralChain(ctx context.Context, userID, targetID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		WITH RECURSIVE chain AS (
			SELECT referrer_id FROM users WHERE id = $1
			UNION ALL
			SELECT u.referrer_id
			FROM users u
			JOIN chain ON u.id = chain.referrer_id
		)
		SELECT EXISTS (SELECT 1 FROM chain WHERE referrer_id = $2)`,
		userID, targetID)
	return exists, err
}

func (r *Repository) GetReferralStats(ctx context.Context, userID uuid.UUID) (*model.ReferralStats, error) {
	stats := &model.ReferralStats{
		NetworkByLevel:   make(map[int]int),
		PendingEarnings:  decimal.Zero,
		ApprovedEarnings: decimal.Zero,
		PaidEarnings:     decimal.Zero,
	}

	rows, err := r.db.QueryxContext(ctx,
		"SELECT level, COUNT(*) FROM referral_closure WHERE ancestor_id = $1 GROUP BY level", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var level, count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, err
		}
		stats.NetworkByLevel[level] = count
		if level == 1 {
			stats.DirectReferrals = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	earnings, err := r.db.QueryxContext(ctx,
		"SELECT status, COALESCE(SUM(amount), 0) FROM commissions WHERE payee_user_id = $1 GROUP BY status", userID)
	if err != nil {
		return nil, err
	}
	defer earnings.Close()

	for earnings.Next() {
		var status model.CommissionStatus
		var sum decimal.Decimal
		if err := earnings.Scan(&status, &sum); err != nil {
			return nil, err
		}
		switch status {
		case model.CommissionStatusPending:
			stats.PendingEarnings = sum
		case model.CommissionStatusApproved:
			stats.ApprovedEarnings = sum
		case model.CommissionStatusPaid:
			stats.PaidEarnings = sum
		}
	}
	return stats, earnings.Err()
}

func (r *Repository) GetReferredUsers(ctx context.Context, referrerID uuid.UUID) ([]model.User, error) {
	var users []model.User
	query := `
		SELECT * FROM users
		WHERE referrer_id = $1
		ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &users, query, referrerID)
	return users, err
}
