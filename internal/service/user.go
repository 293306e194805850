package service

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ranchbox/backend/internal/model"
	"github.com/ranchbox/backend/internal/repository"
)

var ErrInvalidRate = errors.New("commission rate must be between 0 and 1")

// UserAccountStore is what the user service needs from persistence.
type UserAccountStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*model.User, error)
	SetCommissionRate(ctx context.Context, id uuid.UUID, rate decimal.Decimal) error
	SetCommissionOverride(ctx context.Context, id uuid.UUID, override *decimal.Decimal) error
}

type UserService struct {
	store UserAccountStore
}

func NewUserService(repo *repository.Repository) *UserService {
	return NewUserServiceWith(repo)
}

// NewUserServiceWith wires an explicit store.
func NewUserServiceWith(store UserAccountStore) *UserService {
	return &UserService{store: store}
}

// CreateUser registers a new program participant with a fresh referral
// code. The default payout multiplier is 1.0.
func (s *UserService) CreateUser(ctx context.Context, email *string) (*model.User, error) {
	code, err := generateReferralCode()
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:             uuid.New(),
		Email:          email,
		ReferralCode:   code,
		CommissionRate: decimal.NewFromInt(1),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *UserService) GetUserByReferralCode(ctx context.Context, code string) (*model.User, error) {
	return s.store.GetUserByReferralCode(ctx, code)
}

// SetCommissionRate updates a user's base payout multiplier. Takes effect
// for commissions calculated after the change; existing records keep the
// rate they were computed with.
func (s *UserService) SetCommissionRate(ctx context.Context, id uuid.UUID, rate decimal.Decimal) error {
	if !validRate(rate) {
		return ErrInvalidRate
	}
	return s.store.SetCommissionRate(ctx, id, rate)
}

// SetCommissionOverride sets or clears (nil) the override multiplier.
func (s *UserService) SetCommissionOverride(ctx context.Context, id uuid.UUID, override *decimal.Decimal) error {
	if override != nil && !validRate(*override) {
		return ErrInvalidRate
	}
	return s.store.SetCommissionOverride(ctx, id, override)
}

func validRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(decimal.NewFromInt(1))
}

// referralCodeAlphabet avoids 0/1/O/I lookalikes; codes are compared
// case-insensitively and stored uppercase.
const referralCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const referralCodeLength = 8

func generateReferralCode() (string, error) {
	bytes := make([]byte, referralCodeLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, b := range bytes {
		sb.WriteByte(referralCodeAlphabet[int(b)%len(referralCodeAlphabet)])
	}
	return sb.String(), nil
}
