package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/api"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/email"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/logger"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/metrics"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/store"
)

// ReminderWindow is how far ahead the expiration sweep looks.
const ReminderWindow = 7 * 24 * time.Hour

type SendInput struct {
	UserID           string `json:"userId" validate:"required"`
	Message          string `json:"message" validate:"required"`
	NotificationType string `json:"notificationType"`
}

type SendResult struct {
	Message          string `json:"message"`
	Recipient        string `json:"recipient"`
	NotificationType string `json:"notificationType"`
	Sent             bool   `json:"sent"`
	MessageID        string `json:"messageId,omitempty"`
}

type Recipient struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	DaysRemaining int    `json:"daysRemaining"`
}

type SweepResult struct {
	Message    string      `json:"message"`
	TotalSent  int         `json:"totalSent"`
	Recipients []Recipient `json:"recipients"`
}

type Service interface {
	SendToUser(ctx context.Context, in SendInput) (*SendResult, error)
	SendExpirationReminders(ctx context.Context) (*SweepResult, error)
	SendWelcome(ctx context.Context, userID string) (*SendResult, error)
}

type service struct {
	members store.Gateway
	mailer  email.Sender
	now     func() time.Time
}

func NewService(members store.Gateway, mailer email.Sender, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{members: members, mailer: mailer, now: now}
}

func (s *service) SendToUser(ctx context.Context, in SendInput) (*SendResult, error) {
	if err := api.Validate(in); err != nil {
		return nil, err
	}

	m, err := s.members.GetMember(ctx, in.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, api.NotFound("member %s not found", in.UserID)
	}
	if err != nil {
		return nil, api.Dependency("failed to load member", err)
	}

	return s.dispatch(ctx, m, in.NotificationType, in.Message)
}

func (s *service) dispatch(ctx context.Context, m *store.Member, notificationType, message string) (*SendResult, error) {
	r, err := Render(notificationType, m.Name, message)
	if err != nil {
		return nil, api.Dependency("failed to compose notification", err)
	}

	id, err := s.mailer.Send(ctx, email.Message{
		To:       m.Email,
		ToName:   m.Name,
		Subject:  r.Subject,
		HTMLBody: r.HTML,
		TextBody: r.Text,
	})
	if err != nil {
		metrics.RecordNotification(r.Type, "failed")
		return nil, api.Dependency("failed to send notification", err)
	}

	metrics.RecordNotification(r.Type, "success")
	logger.Info("notification sent", "userId", m.UserID, "email", m.Email, "type", r.Type)

	return &SendResult{
		Message:          "Notificación enviada exitosamente",
		Recipient:        m.Email,
		NotificationType: r.Type,
		Sent:             true,
		MessageID:        id,
	}, nil
}

// SendExpirationReminders warns every active member whose plan ends within the next
// ReminderWindow. A failed send is logged and left out of the result; the sweep goes on.
func (s *service) SendExpirationReminders(ctx context.Context) (*SweepResult, error) {
	members, err := s.members.ScanActiveMembers(ctx)
	if err != nil {
		return nil, api.Dependency("failed to scan active members", err)
	}

	now := s.now()
	horizon := now.Add(ReminderWindow)
	recipients := []Recipient{}

	for i := range members {
		m := &members[i]
		if !m.EndDate.After(now) || m.EndDate.After(horizon) {
			continue
		}

		days := m.DaysRemaining(now)
		if _, err := s.dispatch(ctx, m, TypeWarning, reminderMessage(days)); err != nil {
			logger.WithError(err).Error("expiration reminder failed", "userId", m.UserID)
			continue
		}
		recipients = append(recipients, Recipient{UserID: m.UserID, Email: m.Email, DaysRemaining: days})
	}

	logger.Info("expiration reminders sent", "total", len(recipients), "scanned", len(members))
	metrics.RecordReminderSweep(len(recipients))

	return &SweepResult{
		Message:    "Recordatorios de expiración enviados",
		TotalSent:  len(recipients),
		Recipients: recipients,
	}, nil
}

func (s *service) SendWelcome(ctx context.Context, userID string) (*SendResult, error) {
	if userID == "" {
		return nil, api.Validation("userId is required")
	}

	m, err := s.members.GetMember(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, api.NotFound("member %s not found", userID)
	}
	if err != nil {
		return nil, api.Dependency("failed to load member", err)
	}

	return s.dispatch(ctx, m, TypeSuccess, welcomeMessage(m.SubscriptionType))
}

func reminderMessage(days int) string {
	unit := "días"
	if days == 1 {
		unit = "día"
	}
	return fmt.Sprintf("Tu suscripción expira en %d %s. ¡Renueva ahora para continuar disfrutando de todos nuestros servicios!", days, unit)
}

func welcomeMessage(subscriptionType string) string {
	return fmt.Sprintf("¡Bienvenido/a a El Mundo Fitness! Tu suscripción %s está activa. Estamos emocionados de tenerte con nosotros.", subscriptionType)
}
