package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ranchbox/backend/internal/config"
	"github.com/ranchbox/backend/internal/model"
	"github.com/ranchbox/backend/internal/repository"
)

var (
	ErrSelfReferral          = errors.New("cannot apply your own referral code")
	ErrReferralAlreadyExists = errors.New("referrer is already set")
	ErrReferralCycle         = errors.New("referrer is part of the user's own network")
)

// ReferralStore is what the referral service needs from persistence.
// The concrete repository satisfies it; tests inject fakes.
type ReferralStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*model.User, error)
	IsInReferralChain(ctx context.Context, userID, targetID uuid.UUID) (bool, error)
	CreateReferralLink(ctx context.Context, userID, referrerID uuid.UUID) error
	GetReferralStats(ctx context.Context, userID uuid.UUID) (*model.ReferralStats, error)
	GetReferredUsers(ctx context.Context, referrerID uuid.UUID) ([]model.User, error)
}

type ReferralService struct {
	store ReferralStore
	cfg   *config.Config
}

func NewReferralService(repo *repository.Repository, cfg *config.Config) *ReferralService {
	return NewReferralServiceWith(repo, cfg)
}

// NewReferralServiceWith wires an explicit store.
func NewReferralServiceWith(store ReferralStore, cfg *config.Config) *ReferralService {
	return &ReferralService{store: store, cfg: cfg}
}

// ApplyReferralCode links userID under the owner of code. The link is
// set once and never mutated afterwards.
func (s *ReferralService) ApplyReferralCode(ctx context.Context, userID uuid.UUID, code string) error {
	referrer, err := s.store.GetUserByReferralCode(ctx, code)
	if err != nil {
		return err
	}
	return s.Link(ctx, userID, referrer.ID)
}

// Link attaches userID under referrerID and materializes the closure
// rows. Self-referral and cycles are rejected before anything is written;
// the graph must stay acyclic. The cycle check walks the referrer chain
// all the way up, not just the commissionable levels.
func (s *ReferralService) Link(ctx context.Context, userID, referrerID uuid.UUID) error {
	if userID == referrerID {
		return ErrSelfReferral
	}

	// A referrer whose own chain runs through this user would close a loop.
	cyclic, err := s.store.IsInReferralChain(ctx, referrerID, userID)
	if err != nil {
		return err
	}
	if cyclic {
		return ErrReferralCycle
	}

	err = s.store.CreateReferralLink(ctx, userID, referrerID)
	if errors.Is(err, repository.ErrAlreadyReferred) {
		return ErrReferralAlreadyExists
	}
	return err
}

func (s *ReferralService) GetReferralStats(ctx context.Context, userID uuid.UUID) (*model.ReferralStats, error) {
	return s.store.GetReferralStats(ctx, userID)
}

// GetReferralLink returns the storefront share URL for a user's code.
func (s *ReferralService) GetReferralLink(ctx context.Context, userID uuid.UUID) (string, string, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return s.cfg.Referral.StorefrontURL + "/?ref=" + user.ReferralCode, user.ReferralCode, nil
}

func (s *ReferralService) GetReferredUsers(ctx context.Context, referrerID uuid.UUID) ([]model.User, error) {
	return s.store.GetReferredUsers(ctx, referrerID)
}
