package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID                 uuid.UUID           `json:"id" db:"id"`
	Email              *string             `json:"email,omitempty" db:"email"`
	ReferralCode       string              `json:"referral_code" db:"referral_code"`
	ReferrerID         *uuid.UUID          `json:"referrer_id,omitempty" db:"referrer_id"`
	CommissionRate     decimal.Decimal     `json:"commission_rate" db:"commission_rate"`
	CommissionOverride decimal.NullDecimal `json:"commission_override" db:"commission_override"`
	HasPurchased       bool                `json:"has_purchased" db:"has_purchased"`
	PendingBalance     decimal.Decimal     `json:"pending_balance" db:"pending_balance"`
	CreatedAt          time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at" db:"updated_at"`
}

// EffectiveRate is the payout multiplier used for new commissions:
// the override when set, otherwise the base rate.
func (u *User) EffectiveRate() decimal.Decimal {
	if u.CommissionOverride.Valid {
		return u.CommissionOverride.Decimal
	}
	return u.CommissionRate
}
