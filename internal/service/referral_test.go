package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranchbox/backend/internal/config"
	"github.com/ranchbox/backend/internal/model"
	"github.com/ranchbox/backend/internal/repository"
	"github.com/ranchbox/backend/internal/service"
)

// ReferralStore methods for fakeStore, alongside the engine methods in
// commission_test.go.

func (f *fakeStore) GetUserByReferralCode(_ context.Context, code string) (*model.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.ReferralCode, code) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeStore) IsInReferralChain(_ context.Context, userID, targetID uuid.UUID) (bool, error) {
	cur := f.users[userID]
	for cur != nil && cur.ReferrerID != nil {
		if *cur.ReferrerID == targetID {
			return true, nil
		}
		cur = f.users[*cur.ReferrerID]
	}
	return false, nil
}

func (f *fakeStore) CreateReferralLink(_ context.Context, userID, referrerID uuid.UUID) error {
	user, ok := f.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	if user.ReferrerID != nil {
		return repository.ErrAlreadyReferred
	}
	ref := referrerID
	user.ReferrerID = &ref

	chain := []uuid.UUID{referrerID}
	chain = append(chain, f.ancestry[referrerID]...)
	f.ancestry[userID] = chain
	return nil
}

func (f *fakeStore) GetReferralStats(_ context.Context, userID uuid.UUID) (*model.ReferralStats, error) {
	stats := &model.ReferralStats{NetworkByLevel: make(map[int]int)}
	for _, u := range f.users {
		if u.ReferrerID != nil && *u.ReferrerID == userID {
			stats.DirectReferrals++
		}
	}
	return stats, nil
}

func (f *fakeStore) GetReferredUsers(_ context.Context, referrerID uuid.UUID) ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		if u.ReferrerID != nil && *u.ReferrerID == referrerID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func newReferralService(f *fakeStore) *service.ReferralService {
	cfg := &config.Config{}
	cfg.Referral.StorefrontURL = "https://shop.example.com"
	return service.NewReferralServiceWith(f, cfg)
}

func TestLinkRejectsSelfReferral(t *testing.T) {
	f := newFakeStore()
	user := f.addUser("1", nil)

	svc := newReferralService(f)
	err := svc.Link(context.Background(), user.ID, user.ID)
	assert.ErrorIs(t, err, service.ErrSelfReferral)
}

func TestLinkIsImmutable(t *testing.T) {
	f := newFakeStore()
	first := f.addUser("1", nil)
	second := f.addUser("1", nil)
	user := f.addUser("1", nil)

	svc := newReferralService(f)
	require.NoError(t, svc.Link(context.Background(), user.ID, first.ID))

	err := svc.Link(context.Background(), user.ID, second.ID)
	assert.ErrorIs(t, err, service.ErrReferralAlreadyExists)
	assert.Equal(t, first.ID, *f.users[user.ID].ReferrerID, "original referrer must be kept")
}

func TestLinkRejectsDirectCycle(t *testing.T) {
	f := newFakeStore()
	a := f.addUser("1", nil)
	b := f.addUser("1", nil)

	svc := newReferralService(f)
	require.NoError(t, svc.Link(context.Background(), b.ID, a.ID))

	err := svc.Link(context.Background(), a.ID, b.ID)
	assert.ErrorIs(t, err, service.ErrReferralCycle)
}

func TestLinkRejectsCycleBeyondCommissionableDepth(t *testing.T) {
	f := newFakeStore()

	// Chain six deep: users[0] at the top, users[5] at the bottom. The
	// bottom sits past the commissionable window of the top, so only a
	// full chain walk can see the loop.
	users := make([]*model.User, 6)
	for i := range users {
		users[i] = f.addUser("1", nil)
	}

	svc := newReferralService(f)
	for i := 1; i < len(users); i++ {
		require.NoError(t, svc.Link(context.Background(), users[i].ID, users[i-1].ID))
	}

	err := svc.Link(context.Background(), users[0].ID, users[5].ID)
	assert.ErrorIs(t, err, service.ErrReferralCycle)
	assert.Nil(t, f.users[users[0].ID].ReferrerID, "no link may be written for a cyclic chain")
}

func TestApplyReferralCode(t *testing.T) {
	f := newFakeStore()
	referrer := f.addUser("1", nil)
	referrer.ReferralCode = "FRIEND42"
	user := f.addUser("1", nil)
	user.ReferralCode = "NEWBIE99"

	svc := newReferralService(f)

	err := svc.ApplyReferralCode(context.Background(), user.ID, "NOSUCHCD")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.Nil(t, f.users[user.ID].ReferrerID)

	// Codes are matched case-insensitively.
	require.NoError(t, svc.ApplyReferralCode(context.Background(), user.ID, "friend42"))
	assert.Equal(t, referrer.ID, *f.users[user.ID].ReferrerID)
}

func TestGetReferralLink(t *testing.T) {
	f := newFakeStore()
	user := f.addUser("1", nil)
	user.ReferralCode = "SHAREME1"

	svc := newReferralService(f)
	url, code, err := svc.GetReferralLink(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "SHAREME1", code)
	assert.Equal(t, "https://shop.example.com/?ref=SHAREME1", url)
}
