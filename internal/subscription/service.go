package subscription

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/api"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/logger"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/metrics"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/store"
)

type CreateInput struct {
	UserID           string `json:"userId" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Name             string `json:"name"`
	SubscriptionType string `json:"subscriptionType" validate:"required"`
	StartDate        string `json:"startDate,omitempty"`
}

type UpdateInput struct {
	UserID             string  `json:"userId" validate:"required"`
	SubscriptionType   *string `json:"subscriptionType,omitempty"`
	SubscriptionStatus *string `json:"subscriptionStatus,omitempty"`
}

type RenewInput struct {
	UserID           string  `json:"userId" validate:"required"`
	SubscriptionType *string `json:"subscriptionType,omitempty"`
}

// Status is a member record with its eligibility derived at read time.
type Status struct {
	Member        *store.Member `json:"user"`
	IsActive      bool          `json:"isActive"`
	DaysRemaining int           `json:"daysRemaining"`
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (*store.Member, error)
	Get(ctx context.Context, userID string) (*Status, error)
	Update(ctx context.Context, in UpdateInput) (*store.Member, error)
	Renew(ctx context.Context, in RenewInput) (*store.Member, error)
	Cancel(ctx context.Context, userID string) (*store.Member, error)
}

type service struct {
	members store.Gateway
	now     func() time.Time
}

func NewService(members store.Gateway, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{members: members, now: now}
}

// Create writes a fresh active membership. An existing record with the same id is replaced.
func (s *service) Create(ctx context.Context, in CreateInput) (*store.Member, error) {
	if err := api.Validate(in); err != nil {
		return nil, err
	}

	plan, err := ParsePlan(in.SubscriptionType)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	start := now
	if in.StartDate != "" {
		if start, err = parseStartDate(in.StartDate); err != nil {
			return nil, err
		}
	}

	m := &store.Member{
		UserID:             in.UserID,
		Email:              in.Email,
		Name:               in.Name,
		SubscriptionType:   plan.Type,
		SubscriptionStatus: store.StatusActive,
		StartDate:          start,
		EndDate:            plan.EndDate(start),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.members.PutMember(ctx, m); err != nil {
		return nil, api.Dependency("failed to save subscription", err)
	}

	logger.Info("subscription created", "userId", m.UserID, "type", m.SubscriptionType, "endDate", m.EndDate)
	metrics.RecordSubscription(plan.Type)
	return m, nil
}

func (s *service) Get(ctx context.Context, userID string) (*Status, error) {
	m, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	status := &Status{Member: m, IsActive: m.IsActiveAt(now)}
	if status.IsActive {
		status.DaysRemaining = m.DaysRemaining(now)
	}
	return status, nil
}

func (s *service) Update(ctx context.Context, in UpdateInput) (*store.Member, error) {
	if err := api.Validate(in); err != nil {
		return nil, err
	}

	upd := store.MemberUpdate{UpdatedAt: s.now().UTC()}
	if v := trimmed(in.SubscriptionType); v != "" {
		plan, err := ParsePlan(v)
		if err != nil {
			return nil, err
		}
		upd.SubscriptionType = &plan.Type
	}
	if v := trimmed(in.SubscriptionStatus); v != "" {
		upd.SubscriptionStatus = &v
	}

	m, err := s.apply(ctx, in.UserID, upd)
	if err != nil {
		return nil, err
	}

	logger.Info("subscription updated", "userId", in.UserID)
	metrics.RecordSubscriptionUpdate("update")
	return m, nil
}

// Renew extends the membership by one plan period counted from the later of now and the
// current end date, and reactivates it.
func (s *service) Renew(ctx context.Context, in RenewInput) (*store.Member, error) {
	if err := api.Validate(in); err != nil {
		return nil, err
	}

	current, err := s.load(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	planType := current.SubscriptionType
	if v := trimmed(in.SubscriptionType); v != "" {
		planType = v
	}
	plan, err := ParsePlan(planType)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	base := now
	if current.EndDate.After(now) {
		base = current.EndDate
	}
	end := plan.EndDate(base)
	active := store.StatusActive

	m, err := s.apply(ctx, in.UserID, store.MemberUpdate{
		SubscriptionType:   &plan.Type,
		SubscriptionStatus: &active,
		EndDate:            &end,
		UpdatedAt:          now,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("subscription renewed", "userId", in.UserID, "type", plan.Type, "endDate", end)
	metrics.RecordSubscriptionUpdate("renew")
	return m, nil
}

func (s *service) Cancel(ctx context.Context, userID string) (*store.Member, error) {
	if userID == "" {
		return nil, api.Validation("userId is required")
	}

	cancelled := store.StatusCancelled
	m, err := s.apply(ctx, userID, store.MemberUpdate{
		SubscriptionStatus: &cancelled,
		UpdatedAt:          s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	logger.Info("subscription cancelled", "userId", userID)
	metrics.RecordSubscriptionUpdate("cancel")
	return m, nil
}

func (s *service) load(ctx context.Context, userID string) (*store.Member, error) {
	if userID == "" {
		return nil, api.Validation("userId is required")
	}

	m, err := s.members.GetMember(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, api.NotFound("member %s not found", userID)
	}
	if err != nil {
		return nil, api.Dependency("failed to load subscription", err)
	}
	return m, nil
}

func (s *service) apply(ctx context.Context, userID string, upd store.MemberUpdate) (*store.Member, error) {
	m, err := s.members.UpdateMember(ctx, userID, upd)
	if errors.Is(err, store.ErrNotFound) {
		return nil, api.NotFound("member %s not found", userID)
	}
	if err != nil {
		return nil, api.Dependency("failed to update subscription", err)
	}
	return m, nil
}

func parseStartDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	return time.Time{}, api.Validation("invalid startDate %q: use RFC 3339 or YYYY-MM-DD", v)
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
