package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxTierLevel is the deepest ancestor level that earns a commission.
const MaxTierLevel = 4

// AncestorEdge is one row of the referral closure for a buyer: an ancestor
// up the referral chain, its distance in hops, and that ancestor's payout
// rates as they are right now. Rates are nullable because the closure row
// may outlive the ancestor's user record.
type AncestorEdge struct {
	AncestorID uuid.UUID           `db:"ancestor_id"`
	Level      int                 `db:"level"`
	Rate       decimal.NullDecimal `db:"commission_rate"`
	Override   decimal.NullDecimal `db:"commission_override"`
}

// EffectiveRate resolves the multiplier for this edge. The second return
// is false when the ancestor's rate could not be read.
func (e AncestorEdge) EffectiveRate() (decimal.Decimal, bool) {
	if e.Override.Valid {
		return e.Override.Decimal, true
	}
	if e.Rate.Valid {
		return e.Rate.Decimal, true
	}
	return decimal.Decimal{}, false
}

type ReferralStats struct {
	DirectReferrals  int             `json:"direct_referrals"`
	NetworkByLevel   map[int]int     `json:"network_by_level"`
	PendingEarnings  decimal.Decimal `json:"pending_earnings"`
	ApprovedEarnings decimal.Decimal `json:"approved_earnings"`
	PaidEarnings     decimal.Decimal `json:"paid_earnings"`
}
