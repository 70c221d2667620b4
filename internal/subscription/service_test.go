package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/api"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/store"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/store/storetest"
)

// clock is a manual time source that tests advance explicitly.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
}

func strPtr(s string) *string { return &s }

func TestCreate(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	gw := new(storetest.MockGateway)
	svc := NewService(gw, clk.Now)

	gw.On("PutMember", ctx, mock.MatchedBy(func(m *store.Member) bool {
		return m.UserID == "m1" &&
			m.SubscriptionType == TypeMonthly &&
			m.SubscriptionStatus == store.StatusActive &&
			m.StartDate.Equal(clk.Now()) &&
			m.EndDate.Equal(time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC)) &&
			m.CreatedAt.Equal(m.UpdatedAt)
	})).Return(nil)

	m, err := svc.Create(ctx, CreateInput{UserID: "m1", Email: "e@x.com", Name: "N", SubscriptionType: "Monthly"})
	require.NoError(t, err)
	assert.Equal(t, "monthly", m.SubscriptionType)
	gw.AssertExpectations(t)
}

func TestCreate_WithStartDate(t *testing.T) {
	ctx := context.Background()
	gw := storetest.NewMemory()
	svc := NewService(gw, newClock().Now)

	m, err := svc.Create(ctx, CreateInput{UserID: "m1", Email: "e@x.com", SubscriptionType: "monthly", StartDate: "2024-01-31"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), m.EndDate)

	m, err = svc.Create(ctx, CreateInput{UserID: "m2", Email: "e@x.com", SubscriptionType: "annual", StartDate: "2024-02-29T08:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 28, 8, 0, 0, 0, time.UTC), m.EndDate)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   CreateInput
	}{
		{"missing user", CreateInput{Email: "e@x.com", SubscriptionType: "monthly"}},
		{"missing email", CreateInput{UserID: "m1", SubscriptionType: "monthly"}},
		{"invalid email", CreateInput{UserID: "m1", Email: "nope", SubscriptionType: "monthly"}},
		{"missing type", CreateInput{UserID: "m1", Email: "e@x.com"}},
		{"unknown type", CreateInput{UserID: "m1", Email: "e@x.com", SubscriptionType: "weekly"}},
		{"bad start date", CreateInput{UserID: "m1", Email: "e@x.com", SubscriptionType: "monthly", StartDate: "31/01/2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := new(storetest.MockGateway)
			_, err := NewService(gw, newClock().Now).Create(context.Background(), tt.in)

			assert.Equal(t, api.KindValidation, api.KindOf(err))
			gw.AssertNotCalled(t, "PutMember", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_OverwritesExisting(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	gw := storetest.NewMemory(store.Member{UserID: "m1", Email: "old@x.com", SubscriptionStatus: store.StatusCancelled})
	svc := NewService(gw, clk.Now)

	_, err := svc.Create(ctx, CreateInput{UserID: "m1", Email: "new@x.com", SubscriptionType: "quarterly"})
	require.NoError(t, err)

	got, err := gw.GetMember(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", got.Email)
	assert.Equal(t, store.StatusActive, got.SubscriptionStatus)
}

func TestCreate_StoreFailure(t *testing.T) {
	ctx := context.Background()
	gw := new(storetest.MockGateway)
	gw.On("PutMember", ctx, mock.Anything).Return(errors.New("ProvisionedThroughputExceeded"))

	_, err := NewService(gw, newClock().Now).Create(ctx, CreateInput{UserID: "m1", Email: "e@x.com", SubscriptionType: "monthly"})
	assert.Equal(t, api.KindDependency, api.KindOf(err))
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	now := clk.Now()

	gw := storetest.NewMemory(
		store.Member{UserID: "active", SubscriptionStatus: store.StatusActive, EndDate: now.Add(36 * time.Hour)},
		store.Member{UserID: "expired", SubscriptionStatus: store.StatusActive, EndDate: now.Add(-time.Hour)},
		store.Member{UserID: "inactive", SubscriptionStatus: store.StatusInactive, EndDate: now.AddDate(0, 1, 0)},
	)
	svc := NewService(gw, clk.Now)

	st, err := svc.Get(ctx, "active")
	require.NoError(t, err)
	assert.True(t, st.IsActive)
	assert.Equal(t, 2, st.DaysRemaining)

	st, err = svc.Get(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, st.IsActive)
	assert.Equal(t, 0, st.DaysRemaining)

	st, err = svc.Get(ctx, "inactive")
	require.NoError(t, err)
	assert.False(t, st.IsActive)
	assert.Equal(t, 0, st.DaysRemaining)

	_, err = svc.Get(ctx, "ghost")
	assert.Equal(t, api.KindNotFound, api.KindOf(err))

	_, err = svc.Get(ctx, "")
	assert.Equal(t, api.KindValidation, api.KindOf(err))
}

func TestUpdate_PartialFields(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	gw := new(storetest.MockGateway)
	svc := NewService(gw, clk.Now)

	gw.On("UpdateMember", ctx, "m1", store.MemberUpdate{
		SubscriptionType: strPtr("annual"),
		UpdatedAt:        clk.Now(),
	}).Return(&store.Member{UserID: "m1", SubscriptionType: "annual"}, nil)

	m, err := svc.Update(ctx, UpdateInput{UserID: "m1", SubscriptionType: strPtr("ANNUAL")})
	require.NoError(t, err)
	assert.Equal(t, "annual", m.SubscriptionType)
	gw.AssertExpectations(t)
}

func TestUpdate_NoFieldsRefreshesTimestamp(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	gw := storetest.NewMemory(store.Member{UserID: "m1", SubscriptionType: "monthly", UpdatedAt: clk.Now()})
	svc := NewService(gw, clk.Now)

	clk.Advance(time.Minute)
	m, err := svc.Update(ctx, UpdateInput{UserID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, clk.Now(), m.UpdatedAt)
	assert.Equal(t, "monthly", m.SubscriptionType)
}

func TestUpdate_Errors(t *testing.T) {
	ctx := context.Background()
	gw := storetest.NewMemory()
	svc := NewService(gw, newClock().Now)

	_, err := svc.Update(ctx, UpdateInput{})
	assert.Equal(t, api.KindValidation, api.KindOf(err))

	_, err = svc.Update(ctx, UpdateInput{UserID: "m1", SubscriptionType: strPtr("weekly")})
	assert.Equal(t, api.KindValidation, api.KindOf(err))

	_, err = svc.Update(ctx, UpdateInput{UserID: "ghost", SubscriptionStatus: strPtr("inactive")})
	assert.Equal(t, api.KindNotFound, api.KindOf(err))
}

func TestUpdate_CancelRoundTrip(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	gw := storetest.NewMemory()
	svc := NewService(gw, clk.Now)

	created, err := svc.Create(ctx, CreateInput{UserID: "m1", Email: "e@x.com", SubscriptionType: "monthly"})
	require.NoError(t, err)

	clk.Advance(time.Second)
	_, err = svc.Update(ctx, UpdateInput{UserID: "m1", SubscriptionStatus: strPtr("cancelled")})
	require.NoError(t, err)

	st, err := svc.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusCancelled, st.Member.SubscriptionStatus)
	assert.True(t, st.Member.UpdatedAt.After(created.UpdatedAt))
	assert.False(t, st.IsActive)
}

func TestRenew(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	now := clk.Now()

	gw := storetest.NewMemory(
		store.Member{UserID: "current", SubscriptionType: "monthly", SubscriptionStatus: store.StatusActive, EndDate: date(2024, 3, 31)},
		store.Member{UserID: "lapsed", SubscriptionType: "monthly", SubscriptionStatus: store.StatusInactive, EndDate: now.AddDate(0, -2, 0)},
	)
	svc := NewService(gw, clk.Now)

	m, err := svc.Renew(ctx, RenewInput{UserID: "current"})
	require.NoError(t, err)
	assert.Equal(t, date(2024, 4, 30), m.EndDate)

	m, err = svc.Renew(ctx, RenewInput{UserID: "lapsed", SubscriptionType: strPtr("quarterly")})
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 3, 0), m.EndDate)
	assert.Equal(t, store.StatusActive, m.SubscriptionStatus)
	assert.Equal(t, TypeQuarterly, m.SubscriptionType)

	_, err = svc.Renew(ctx, RenewInput{UserID: "ghost"})
	assert.Equal(t, api.KindNotFound, api.KindOf(err))
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	gw := storetest.NewMemory(store.Member{UserID: "m1", SubscriptionStatus: store.StatusActive})
	svc := NewService(gw, clk.Now)

	m, err := svc.Cancel(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusCancelled, m.SubscriptionStatus)

	_, err = svc.Cancel(ctx, "ghost")
	assert.Equal(t, api.KindNotFound, api.KindOf(err))

	_, err = svc.Cancel(ctx, "")
	assert.Equal(t, api.KindValidation, api.KindOf(err))
}
