package access

import (
	"time"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/store"
)

const (
	ReasonNotFound = "not found"
	ReasonInactive = "inactive"
	ReasonExpired  = "expired"

	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// MemberSummary is the part of a member record shown at the door.
type MemberSummary struct {
	UserID             string     `json:"userId"`
	Name               string     `json:"name"`
	Email              string     `json:"email,omitempty"`
	SubscriptionType   string     `json:"subscriptionType,omitempty"`
	SubscriptionStatus string     `json:"subscriptionStatus,omitempty"`
	EndDate            *time.Time `json:"endDate,omitempty"`
	DaysRemaining      int        `json:"daysRemaining,omitempty"`
}

type Decision struct {
	HasAccess bool           `json:"hasAccess"`
	Reason    string         `json:"reason,omitempty"`
	User      *MemberSummary `json:"user,omitempty"`
}

type CheckInResult struct {
	Message      string         `json:"message"`
	Action       string         `json:"action"`
	Timestamp    time.Time      `json:"timestamp"`
	User         *MemberSummary `json:"user"`
	AttendanceID string         `json:"asistenciaId"`
}

type CheckOutResult struct {
	Message      string    `json:"message"`
	Action       string    `json:"action"`
	Timestamp    time.Time `json:"timestamp"`
	AttendanceID string    `json:"asistenciaId"`
}

type History struct {
	UserID       string                   `json:"userId"`
	TotalRecords int                      `json:"totalRecords"`
	History      []store.AttendanceRecord `json:"history"`
}

func decide(m *store.Member, now time.Time) *Decision {
	if m == nil {
		return &Decision{Reason: ReasonNotFound}
	}

	if m.SubscriptionStatus != store.StatusActive {
		return &Decision{
			Reason: ReasonInactive,
			User: &MemberSummary{
				UserID:             m.UserID,
				Name:               m.Name,
				SubscriptionStatus: m.SubscriptionStatus,
			},
		}
	}

	// the door admits only with time left, so an end date equal to now is expired
	end := m.EndDate
	if !end.After(now) {
		return &Decision{
			Reason: ReasonExpired,
			User:   &MemberSummary{UserID: m.UserID, Name: m.Name, EndDate: &end},
		}
	}

	return &Decision{
		HasAccess: true,
		User: &MemberSummary{
			UserID:           m.UserID,
			Name:             m.Name,
			Email:            m.Email,
			SubscriptionType: m.SubscriptionType,
			EndDate:          &end,
			DaysRemaining:    m.DaysRemaining(now),
		},
	}
}
