// Package storetest provides Gateway doubles for service tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/store"
)

var (
	_ store.Gateway = (*MockGateway)(nil)
	_ store.Gateway = (*Memory)(nil)
)

type MockGateway struct{ mock.Mock }

func (m *MockGateway) GetMember(ctx context.Context, userID string) (*store.Member, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Member), args.Error(1)
}

func (m *MockGateway) PutMember(ctx context.Context, member *store.Member) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MockGateway) UpdateMember(ctx context.Context, userID string, upd store.MemberUpdate) (*store.Member, error) {
	args := m.Called(ctx, userID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Member), args.Error(1)
}

func (m *MockGateway) PutAttendance(ctx context.Context, rec *store.AttendanceRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockGateway) QueryAttendance(ctx context.Context, userID string, limit int) ([]store.AttendanceRecord, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.AttendanceRecord), args.Error(1)
}

func (m *MockGateway) ScanActiveMembers(ctx context.Context) ([]store.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Member), args.Error(1)
}

// Memory is an in-process Gateway with the same ordering and not-found rules as the real ones.
type Memory struct {
	mu         sync.Mutex
	members    map[string]store.Member
	attendance []store.AttendanceRecord
}

func NewMemory(members ...store.Member) *Memory {
	g := &Memory{members: make(map[string]store.Member)}
	for _, m := range members {
		g.members[m.UserID] = m
	}
	return g
}

func (g *Memory) GetMember(_ context.Context, userID string) (*store.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	m, ok := g.members[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

func (g *Memory) PutMember(_ context.Context, m *store.Member) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.members[m.UserID] = *m
	return nil
}

func (g *Memory) UpdateMember(_ context.Context, userID string, upd store.MemberUpdate) (*store.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	m, ok := g.members[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if upd.SubscriptionType != nil {
		m.SubscriptionType = *upd.SubscriptionType
	}
	if upd.SubscriptionStatus != nil {
		m.SubscriptionStatus = *upd.SubscriptionStatus
	}
	if upd.EndDate != nil {
		m.EndDate = *upd.EndDate
	}
	m.UpdatedAt = upd.UpdatedAt
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now().UTC()
	}
	g.members[userID] = m
	return &m, nil
}

func (g *Memory) PutAttendance(_ context.Context, rec *store.AttendanceRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.attendance = append(g.attendance, *rec)
	return nil
}

func (g *Memory) QueryAttendance(_ context.Context, userID string, limit int) ([]store.AttendanceRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := []store.AttendanceRecord{}
	for _, rec := range g.attendance {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (g *Memory) ScanActiveMembers(_ context.Context) ([]store.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := []store.Member{}
	for _, m := range g.members {
		if m.SubscriptionStatus == store.StatusActive {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// Attendance returns every stored record in write order.
func (g *Memory) Attendance() []store.AttendanceRecord {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]store.AttendanceRecord(nil), g.attendance...)
}
