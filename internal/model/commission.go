package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CommissionStatus string

const (
	CommissionStatusPending  CommissionStatus = "pending"
	CommissionStatusApproved CommissionStatus = "approved"
	CommissionStatusPaid     CommissionStatus = "paid"
	CommissionStatusRejected CommissionStatus = "rejected"
)

// The engine only ever creates pending commissions; the payout process
// moves them forward. Rejected and paid are terminal.
var commissionTransitions = map[CommissionStatus][]CommissionStatus{
	CommissionStatusPending:  {CommissionStatusApproved, CommissionStatusRejected},
	CommissionStatusApproved: {CommissionStatusPaid, CommissionStatusRejected},
}

func (s CommissionStatus) Valid() bool {
	switch s {
	case CommissionStatusPending, CommissionStatusApproved, CommissionStatusPaid, CommissionStatusRejected:
		return true
	}
	return false
}

func (s CommissionStatus) CanTransitionTo(next CommissionStatus) bool {
	for _, allowed := range commissionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Commission struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	OrderID        string           `json:"order_id" db:"order_id"`
	PayeeUserID    uuid.UUID        `json:"payee_user_id" db:"payee_user_id"`
	ReferredUserID uuid.UUID        `json:"referred_user_id" db:"referred_user_id"`
	TierLevel      int              `json:"tier_level" db:"tier_level"`
	BasePercentage decimal.Decimal  `json:"base_percentage" db:"base_percentage"`
	AppliedRate    decimal.Decimal  `json:"applied_rate" db:"applied_rate"`
	OrderTotal     decimal.Decimal  `json:"order_total" db:"order_total"`
	Amount         decimal.Decimal  `json:"amount" db:"amount"`
	Status         CommissionStatus `json:"status" db:"status"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
}

// TierTable maps an ancestor level to its base commission percentage.
type TierTable map[int]decimal.Decimal

// DefaultTierTable is the payout schedule used when no override is
// stored in settings: 13% / 2% / 1% / 1%.
func DefaultTierTable() TierTable {
	return TierTable{
		1: decimal.NewFromInt(13),
		2: decimal.NewFromInt(2),
		3: decimal.NewFromInt(1),
		4: decimal.NewFromInt(1),
	}
}
