package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranchbox/backend/internal/config"
	"github.com/ranchbox/backend/internal/handler"
	"github.com/ranchbox/backend/internal/model"
	"github.com/ranchbox/backend/internal/repository"
	"github.com/ranchbox/backend/internal/service"
)

// accountStore fakes the user and referral persistence behind the
// signup flow.
type accountStore struct {
	users map[uuid.UUID]*model.User
}

func newAccountStore() *accountStore {
	return &accountStore{users: make(map[uuid.UUID]*model.User)}
}

func (s *accountStore) CreateUser(_ context.Context, user *model.User) error {
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *accountStore) GetUser(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *accountStore) GetUserByReferralCode(_ context.Context, code string) (*model.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.ReferralCode, code) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *accountStore) SetCommissionRate(_ context.Context, _ uuid.UUID, _ decimal.Decimal) error {
	return nil
}

func (s *accountStore) SetCommissionOverride(_ context.Context, _ uuid.UUID, _ *decimal.Decimal) error {
	return nil
}

func (s *accountStore) IsInReferralChain(_ context.Context, userID, targetID uuid.UUID) (bool, error) {
	cur := s.users[userID]
	for cur != nil && cur.ReferrerID != nil {
		if *cur.ReferrerID == targetID {
			return true, nil
		}
		cur = s.users[*cur.ReferrerID]
	}
	return false, nil
}

func (s *accountStore) CreateReferralLink(_ context.Context, userID, referrerID uuid.UUID) error {
	user, ok := s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	if user.ReferrerID != nil {
		return repository.ErrAlreadyReferred
	}
	ref := referrerID
	user.ReferrerID = &ref
	return nil
}

func (s *accountStore) GetReferralStats(_ context.Context, _ uuid.UUID) (*model.ReferralStats, error) {
	return &model.ReferralStats{NetworkByLevel: make(map[int]int)}, nil
}

func (s *accountStore) GetReferredUsers(_ context.Context, _ uuid.UUID) ([]model.User, error) {
	return nil, nil
}

func signupApp(store *accountStore) *fiber.App {
	cfg := &config.Config{}
	cfg.Referral.StorefrontURL = "https://shop.example.com"

	h := handler.New(cfg,
		service.NewUserServiceWith(store),
		service.NewReferralServiceWith(store, cfg),
		nil, nil)

	app := fiber.New()
	app.Post("/users", h.CreateUser)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return resp.StatusCode, decoded
}

func TestCreateUserWithoutCode(t *testing.T) {
	store := newAccountStore()
	app := signupApp(store)

	status, body := postJSON(t, app, "/users", `{}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.NotEmpty(t, body["referral_code"])
	assert.Len(t, store.users, 1)
}

func TestCreateUserWithValidCode(t *testing.T) {
	store := newAccountStore()
	referrerID := uuid.New()
	store.users[referrerID] = &model.User{ID: referrerID, ReferralCode: "FRIEND42"}
	app := signupApp(store)

	status, body := postJSON(t, app, "/users", `{"referral_code":"FRIEND42"}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, referrerID.String(), body["referrer_id"])
	assert.Len(t, store.users, 2)
}

func TestCreateUserUnknownCodeCreatesNothing(t *testing.T) {
	store := newAccountStore()
	app := signupApp(store)

	status, body := postJSON(t, app, "/users", `{"referral_code":"NOSUCHCD"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "unknown referral code", body["error"])

	// A rejected signup must not leave an account behind.
	assert.Empty(t, store.users)
}
