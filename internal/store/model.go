package store

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("record not found")

const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusCancelled = "cancelled"

	ActionCheckIn  = "check-in"
	ActionCheckOut = "check-out"
)

// Member is the subscription record of one gym member. Attribute names follow the
// existing usuarios table.
type Member struct {
	UserID             string    `json:"userId" dynamodbav:"userId" db:"user_id"`
	Email              string    `json:"email" dynamodbav:"email" db:"email"`
	Name               string    `json:"name" dynamodbav:"name" db:"name"`
	SubscriptionType   string    `json:"subscriptionType" dynamodbav:"subscriptionType" db:"subscription_type"`
	SubscriptionStatus string    `json:"subscriptionStatus" dynamodbav:"subscriptionStatus" db:"subscription_status"`
	StartDate          time.Time `json:"startDate" dynamodbav:"startDate" db:"start_date"`
	EndDate            time.Time `json:"endDate" dynamodbav:"endDate" db:"end_date"`
	CreatedAt          time.Time `json:"createdAt" dynamodbav:"createdAt" db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" dynamodbav:"updatedAt" db:"updated_at"`
}

func (m Member) IsActiveAt(now time.Time) bool {
	return m.SubscriptionStatus == StatusActive && !now.After(m.EndDate)
}

// DaysRemaining counts whole days until EndDate, rounding a partial day up. It is 0 once
// EndDate is not after now.
func (m Member) DaysRemaining(now time.Time) int {
	return DaysUntil(m.EndDate, now)
}

func DaysUntil(end, now time.Time) int {
	left := end.Sub(now)
	if left <= 0 {
		return 0
	}
	days := int(left / (24 * time.Hour))
	if left%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// AttendanceRecord is one immutable check-in or check-out event.
type AttendanceRecord struct {
	ID           string `json:"asistenciaId" dynamodbav:"asistenciaId" db:"id"`
	UserID       string `json:"userId" dynamodbav:"userId" db:"user_id"`
	Timestamp    int64  `json:"timestamp" dynamodbav:"timestamp" db:"recorded_at"`
	Action       string `json:"action" dynamodbav:"action" db:"action"`
	CheckInTime  string `json:"checkInTime,omitempty" dynamodbav:"checkInTime,omitempty" db:"check_in_time"`
	CheckOutTime string `json:"checkOutTime,omitempty" dynamodbav:"checkOutTime,omitempty" db:"check_out_time"`
	UserName     string `json:"userName,omitempty" dynamodbav:"userName,omitempty" db:"user_name"`
	UserEmail    string `json:"userEmail,omitempty" dynamodbav:"userEmail,omitempty" db:"user_email"`
}

// MemberUpdate lists the fields a partial update may change. Nil fields are left as stored.
type MemberUpdate struct {
	SubscriptionType   *string
	SubscriptionStatus *string
	EndDate            *time.Time
	UpdatedAt          time.Time
}

func (u MemberUpdate) withTimestamp() MemberUpdate {
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = time.Now().UTC()
	}
	return u
}
