package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCommissionStatusTransitions(t *testing.T) {
	tests := []struct {
		from    CommissionStatus
		to      CommissionStatus
		allowed bool
	}{
		{CommissionStatusPending, CommissionStatusApproved, true},
		{CommissionStatusPending, CommissionStatusRejected, true},
		{CommissionStatusPending, CommissionStatusPaid, false},
		{CommissionStatusApproved, CommissionStatusPaid, true},
		{CommissionStatusApproved, CommissionStatusRejected, true},
		{CommissionStatusApproved, CommissionStatusPending, false},
		{CommissionStatusPaid, CommissionStatusRejected, false},
		{CommissionStatusPaid, CommissionStatusApproved, false},
		{CommissionStatusRejected, CommissionStatusPending, false},
		{CommissionStatusRejected, CommissionStatusApproved, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestCommissionStatusValid(t *testing.T) {
	assert.True(t, CommissionStatusPending.Valid())
	assert.True(t, CommissionStatusPaid.Valid())
	assert.False(t, CommissionStatus("refunded").Valid())
	assert.False(t, CommissionStatus("").Valid())
}

func TestDefaultTierTable(t *testing.T) {
	tiers := DefaultTierTable()

	assert.Len(t, tiers, MaxTierLevel)
	assert.True(t, tiers[1].Equal(decimal.NewFromInt(13)))
	assert.True(t, tiers[2].Equal(decimal.NewFromInt(2)))
	assert.True(t, tiers[3].Equal(decimal.NewFromInt(1)))
	assert.True(t, tiers[4].Equal(decimal.NewFromInt(1)))
}

func TestAncestorEdgeEffectiveRate(t *testing.T) {
	rate := decimal.RequireFromString("0.9")
	override := decimal.RequireFromString("0.5")

	edge := AncestorEdge{Rate: decimal.NullDecimal{Decimal: rate, Valid: true}}
	got, ok := edge.EffectiveRate()
	assert.True(t, ok)
	assert.True(t, got.Equal(rate))

	edge.Override = decimal.NullDecimal{Decimal: override, Valid: true}
	got, ok = edge.EffectiveRate()
	assert.True(t, ok)
	assert.True(t, got.Equal(override), "override wins over base rate")

	_, ok = AncestorEdge{}.EffectiveRate()
	assert.False(t, ok)
}

func TestUserEffectiveRate(t *testing.T) {
	user := User{CommissionRate: decimal.NewFromInt(1)}
	assert.True(t, user.EffectiveRate().Equal(decimal.NewFromInt(1)))

	user.CommissionOverride = decimal.NullDecimal{Decimal: decimal.RequireFromString("0.25"), Valid: true}
	assert.True(t, user.EffectiveRate().Equal(decimal.RequireFromString("0.25")))
}
