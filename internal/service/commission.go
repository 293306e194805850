package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ranchbox/backend/internal/model"
	"github.com/ranchbox/backend/internal/repository"
)

var (
	ErrBuyerNotFound     = errors.New("buyer not found")
	ErrInvalidOrderTotal = errors.New("order total must be non-negative")
	ErrInvalidTierLevel  = errors.New("tier level must be between 1 and 4")
	ErrInvalidTransition = errors.New("invalid commission status transition")
)

// Dependencies of the attribution engine. The concrete repository
// satisfies all of them; tests inject fakes.

type UserStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	MarkPurchased(ctx context.Context, id uuid.UUID) error
}

type AncestorSource interface {
	GetAncestors(ctx context.Context, userID uuid.UUID, maxLevel int) ([]model.AncestorEdge, error)
}

type CommissionStore interface {
	RecordCommission(ctx context.Context, c *model.Commission) (bool, error)
	GetCommission(ctx context.Context, id uuid.UUID) (*model.Commission, error)
	GetCommissionsByPayee(ctx context.Context, payeeID uuid.UUID, limit, offset int) ([]model.Commission, error)
	UpdateCommissionStatus(ctx context.Context, id uuid.UUID, from, to model.CommissionStatus) error
}

type OrderStore interface {
	UpsertOrder(ctx context.Context, order *model.Order) error
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	MarkOrderProcessed(ctx context.Context, orderID string) error
}

type SettingsStore interface {
	GetSettingDecimal(ctx context.Context, key string) (decimal.Decimal, error)
	SetSetting(ctx context.Context, key, value string) error
}

type CommissionService struct {
	users    UserStore
	graph    AncestorSource
	store    CommissionStore
	orders   OrderStore
	settings SettingsStore
	log      *zap.Logger
}

func NewCommissionService(repo *repository.Repository, log *zap.Logger) *CommissionService {
	return NewCommissionServiceWith(repo, repo, repo, repo, repo, log)
}

// NewCommissionServiceWith wires explicit dependencies.
func NewCommissionServiceWith(
	users UserStore,
	graph AncestorSource,
	store CommissionStore,
	orders OrderStore,
	settings SettingsStore,
	log *zap.Logger,
) *CommissionService {
	return &CommissionService{
		users:    users,
		graph:    graph,
		store:    store,
		orders:   orders,
		settings: settings,
		log:      log,
	}
}

// AttributionSummary reports what a single engine run did.
type AttributionSummary struct {
	OrderID           string             `json:"order_id"`
	Created           int                `json:"created"`
	DuplicatesSkipped int                `json:"duplicates_skipped"`
	AncestorsSkipped  int                `json:"ancestors_skipped"`
	Commissions       []model.Commission `json:"commissions"`
}

// SkippedEdge names an ancestor edge the calculator refused to pay.
type SkippedEdge struct {
	AncestorID uuid.UUID
	Level      int
	Reason     string
}

// CalculateCommissions turns a buyer's ancestor edges into pending
// commission records. It is pure: no clock, no store, no logger.
//
// Every edge is handled independently. An edge is skipped when it points
// back at the buyer, duplicates an ancestor already paid on this order,
// falls outside the tier table, or carries no resolvable rate. Amounts
// are kept exact here; rounding happens at persistence.
func CalculateCommissions(
	buyerID uuid.UUID,
	orderID string,
	orderTotal decimal.Decimal,
	edges []model.AncestorEdge,
	tiers model.TierTable,
) ([]model.Commission, []SkippedEdge) {
	var records []model.Commission
	var skipped []SkippedEdge
	seen := make(map[uuid.UUID]bool, len(edges))

	for _, edge := range edges {
		// A user never earns on their own purchase, even if the graph
		// store ever hands us such an edge.
		if edge.AncestorID == buyerID {
			skipped = append(skipped, SkippedEdge{edge.AncestorID, edge.Level, "self-referral"})
			continue
		}
		if seen[edge.AncestorID] {
			skipped = append(skipped, SkippedEdge{edge.AncestorID, edge.Level, "duplicate ancestor"})
			continue
		}

		base, ok := tiers[edge.Level]
		if !ok {
			skipped = append(skipped, SkippedEdge{edge.AncestorID, edge.Level, "no tier for level"})
			continue
		}

		rate, ok := edge.EffectiveRate()
		if !ok {
			skipped = append(skipped, SkippedEdge{edge.AncestorID, edge.Level, "rate unavailable"})
			continue
		}

		seen[edge.AncestorID] = true
		amount := orderTotal.Mul(base).Div(decimal.NewFromInt(100)).Mul(rate)

		records = append(records, model.Commission{
			OrderID:        orderID,
			PayeeUserID:    edge.AncestorID,
			ReferredUserID: buyerID,
			TierLevel:      edge.Level,
			BasePercentage: base,
			AppliedRate:    rate,
			OrderTotal:     orderTotal,
			Amount:         amount,
			Status:         model.CommissionStatusPending,
		})
	}

	return records, skipped
}

// ProcessOrder runs commission attribution for one completed order:
// validate, fetch ancestors with their current rates, calculate, record.
// Recording is per-payee transactional and idempotent, so the whole call
// is safe to retry and safe against duplicate webhook deliveries.
func (s *CommissionService) ProcessOrder(ctx context.Context, buyerID uuid.UUID, orderID string, orderTotal decimal.Decimal) (*AttributionSummary, error) {
	if orderTotal.IsNegative() {
		return nil, ErrInvalidOrderTotal
	}

	buyer, err := s.users.GetUser(ctx, buyerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBuyerNotFound, buyerID)
		}
		return nil, err
	}

	edges, err := s.graph.GetAncestors(ctx, buyerID, model.MaxTierLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to load ancestors: %w", err)
	}

	tiers := s.TierTable(ctx)
	records, skippedEdges := CalculateCommissions(buyerID, orderID, orderTotal, edges, tiers)
	for _, sk := range skippedEdges {
		s.log.Warn("skipping ancestor edge",
			zap.String("order_id", orderID),
			zap.String("ancestor_id", sk.AncestorID.String()),
			zap.Int("level", sk.Level),
			zap.String("reason", sk.Reason))
	}

	summary := &AttributionSummary{
		OrderID:          orderID,
		AncestorsSkipped: len(skippedEdges),
	}

	var recordErrs []error
	for i := range records {
		rec := records[i]
		rec.ID = uuid.New()
		rec.Amount = rec.Amount.Round(2)

		inserted, err := s.store.RecordCommission(ctx, &rec)
		if err != nil {
			// Keep going: each payee's write is independent, and the
			// caller can retry the whole order safely.
			recordErrs = append(recordErrs, fmt.Errorf("payee %s: %w", rec.PayeeUserID, err))
			s.log.Error("failed to record commission",
				zap.String("order_id", orderID),
				zap.String("payee_user_id", rec.PayeeUserID.String()),
				zap.Error(err))
			continue
		}
		if !inserted {
			summary.DuplicatesSkipped++
			continue
		}
		summary.Created++
		summary.Commissions = append(summary.Commissions, rec)
	}

	if !buyer.HasPurchased {
		if err := s.users.MarkPurchased(ctx, buyerID); err != nil {
			s.log.Warn("failed to mark buyer as purchased",
				zap.String("buyer_id", buyerID.String()), zap.Error(err))
		}
	}

	return summary, errors.Join(recordErrs...)
}

// HandleOrderEvent is the webhook entry point: it stores the order, runs
// attribution and stamps the order processed on success.
func (s *CommissionService) HandleOrderEvent(ctx context.Context, buyerID uuid.UUID, orderID string, orderTotal decimal.Decimal) (*AttributionSummary, error) {
	if orderTotal.IsNegative() {
		return nil, ErrInvalidOrderTotal
	}

	order := &model.Order{
		OrderID:     orderID,
		BuyerUserID: buyerID,
		Total:       orderTotal,
	}
	if err := s.orders.UpsertOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to store order: %w", err)
	}

	summary, err := s.ProcessOrder(ctx, buyerID, orderID, orderTotal)
	if err != nil {
		return summary, err
	}

	if err := s.orders.MarkOrderProcessed(ctx, orderID); err != nil {
		s.log.Warn("failed to mark order processed",
			zap.String("order_id", orderID), zap.Error(err))
	}
	return summary, nil
}

// ReplayOrder re-drives a stored order through attribution. Used when a
// buyer was set up after their first purchase, or after a transient
// recording failure. Idempotency makes repeats harmless.
func (s *CommissionService) ReplayOrder(ctx context.Context, orderID string) (*AttributionSummary, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	summary, err := s.ProcessOrder(ctx, order.BuyerUserID, order.OrderID, order.Total)
	if err != nil {
		return summary, err
	}

	if err := s.orders.MarkOrderProcessed(ctx, orderID); err != nil {
		s.log.Warn("failed to mark order processed",
			zap.String("order_id", orderID), zap.Error(err))
	}
	return summary, nil
}

// TransitionStatus moves a commission through its lifecycle on behalf of
// the payout process. The engine itself only ever writes pending.
func (s *CommissionService) TransitionStatus(ctx context.Context, id uuid.UUID, next model.CommissionStatus) (*model.Commission, error) {
	if !next.Valid() {
		return nil, ErrInvalidTransition
	}

	c, err := s.store.GetCommission(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, next)
	}

	if err := s.store.UpdateCommissionStatus(ctx, id, c.Status, next); err != nil {
		return nil, err
	}
	c.Status = next
	return c, nil
}

const tierSettingPrefix = "commission_tier_percent_"

// TierTable returns the current payout schedule: stored overrides where
// present, compiled-in defaults otherwise. Read on every calculation so
// changes apply going forward only.
func (s *CommissionService) TierTable(ctx context.Context) model.TierTable {
	tiers := model.DefaultTierTable()
	for level := 1; level <= model.MaxTierLevel; level++ {
		pct, err := s.settings.GetSettingDecimal(ctx, tierSettingPrefix+strconv.Itoa(level))
		if err != nil {
			if !errors.Is(err, repository.ErrSettingNotFound) {
				s.log.Warn("failed to read tier setting", zap.Int("level", level), zap.Error(err))
			}
			continue
		}
		tiers[level] = pct
	}
	return tiers
}

// SetTierPercent stores an override for one tier level.
func (s *CommissionService) SetTierPercent(ctx context.Context, level int, percent decimal.Decimal) error {
	if level < 1 || level > model.MaxTierLevel {
		return ErrInvalidTierLevel
	}
	if percent.IsNegative() {
		return errors.New("tier percentage must be non-negative")
	}
	return s.settings.SetSetting(ctx, tierSettingPrefix+strconv.Itoa(level), percent.String())
}

func (s *CommissionService) GetCommissionsByPayee(ctx context.Context, payeeID uuid.UUID, limit, offset int) ([]model.Commission, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.GetCommissionsByPayee(ctx, payeeID, limit, offset)
}
