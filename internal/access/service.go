package access

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/api"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/logger"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/metrics"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/store"
)

type Service interface {
	VerifyAccess(ctx context.Context, userID string) (*Decision, error)
	CheckIn(ctx context.Context, userID string) (*CheckInResult, error)
	CheckOut(ctx context.Context, userID string) (*CheckOutResult, error)
	History(ctx context.Context, userID string, limit int) (*History, error)
}

type service struct {
	members store.Gateway
	now     func() time.Time
	newID   func() string
}

func NewService(members store.Gateway, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{members: members, now: now, newID: uuid.NewString}
}

func (s *service) VerifyAccess(ctx context.Context, userID string) (*Decision, error) {
	d, _, err := s.verify(ctx, userID)
	return d, err
}

func (s *service) verify(ctx context.Context, userID string) (*Decision, *store.Member, error) {
	if userID == "" {
		return nil, nil, api.Validation("userId is required")
	}

	m, err := s.members.GetMember(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, nil, api.Dependency("failed to load member", err)
	}
	if err != nil {
		m = nil
	}

	d := decide(m, s.now())
	result := "allowed"
	if !d.HasAccess {
		result = d.Reason
	}
	metrics.RecordAccessCheck(result)
	return d, m, nil
}

// CheckIn admits an eligible member and appends a check-in record carrying the member's
// name and email as they were at the door.
func (s *service) CheckIn(ctx context.Context, userID string) (*CheckInResult, error) {
	d, m, err := s.verify(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !d.HasAccess {
		logger.Warn("check-in denied", "userId", userID, "reason", d.Reason)
		return nil, api.AccessDenied(d.Reason)
	}

	now := s.now().UTC()
	rec := &store.AttendanceRecord{
		ID:          s.newID(),
		UserID:      userID,
		Timestamp:   now.UnixMilli(),
		Action:      store.ActionCheckIn,
		CheckInTime: now.Format(time.RFC3339Nano),
		UserName:    m.Name,
		UserEmail:   m.Email,
	}
	if err := s.members.PutAttendance(ctx, rec); err != nil {
		return nil, api.Dependency("failed to record check-in", err)
	}

	logger.Info("check-in registered", "userId", userID, "asistenciaId", rec.ID)
	metrics.RecordAttendance(store.ActionCheckIn)

	return &CheckInResult{
		Message:      "¡Bienvenido/a " + m.Name + "!",
		Action:       store.ActionCheckIn,
		Timestamp:    now,
		User:         d.User,
		AttendanceID: rec.ID,
	}, nil
}

// CheckOut records a departure without checking eligibility or a prior check-in, so a member
// whose plan lapsed while inside can still leave.
func (s *service) CheckOut(ctx context.Context, userID string) (*CheckOutResult, error) {
	if userID == "" {
		return nil, api.Validation("userId is required")
	}

	now := s.now().UTC()
	rec := &store.AttendanceRecord{
		ID:           s.newID(),
		UserID:       userID,
		Timestamp:    now.UnixMilli(),
		Action:       store.ActionCheckOut,
		CheckOutTime: now.Format(time.RFC3339Nano),
	}
	if err := s.members.PutAttendance(ctx, rec); err != nil {
		return nil, api.Dependency("failed to record check-out", err)
	}

	logger.Info("check-out registered", "userId", userID, "asistenciaId", rec.ID)
	metrics.RecordAttendance(store.ActionCheckOut)

	return &CheckOutResult{
		Message:      "¡Hasta pronto!",
		Action:       store.ActionCheckOut,
		Timestamp:    now,
		AttendanceID: rec.ID,
	}, nil
}

func (s *service) History(ctx context.Context, userID string, limit int) (*History, error) {
	if userID == "" {
		return nil, api.Validation("userId is required")
	}
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	records, err := s.members.QueryAttendance(ctx, userID, limit)
	if err != nil {
		return nil, api.Dependency("failed to load attendance history", err)
	}

	return &History{
		UserID:       userID,
		TotalRecords: len(records),
		History:      records,
	}, nil
}
