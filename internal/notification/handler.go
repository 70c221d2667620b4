package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/api"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/logger"
)

const (
	ServiceName  = "notification-service"
	AllowMethods = "POST, OPTIONS"

	ActionSendToUser              = "send-to-user"
	ActionSendExpirationReminders = "send-expiration-reminders"
	ActionSendWelcome             = "send-welcome"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Router() *api.Router {
	r := api.NewRouter(ServiceName, AllowMethods, api.BodyAction(""))
	r.Handle(ActionSendToUser, h.sendToUser)
	r.Handle(ActionSendExpirationReminders, h.sendExpirationReminders)
	r.Handle(ActionSendWelcome, h.sendWelcome)
	return r
}

func (h *Handler) sendToUser(ctx context.Context, req api.Request) (any, error) {
	var in SendInput
	if err := req.DecodeBody(&in); err != nil {
		return nil, err
	}
	return h.svc.SendToUser(ctx, in)
}

func (h *Handler) sendExpirationReminders(ctx context.Context, _ api.Request) (any, error) {
	return h.svc.SendExpirationReminders(ctx)
}

func (h *Handler) sendWelcome(ctx context.Context, req api.Request) (any, error) {
	var in struct {
		UserID string `json:"userId"`
	}
	if err := req.DecodeBody(&in); err != nil {
		return nil, err
	}
	return h.svc.SendWelcome(ctx, in.UserID)
}

// LambdaHandler serves both API Gateway requests and EventBridge scheduled events; the
// latter run the expiration sweep.
func (h *Handler) LambdaHandler() func(context.Context, json.RawMessage) (any, error) {
	httpHandler := api.LambdaHandler(h.Router())

	return func(ctx context.Context, payload json.RawMessage) (any, error) {
		if isScheduledEvent(payload) {
			logger.Info("scheduled expiration sweep triggered")
			res, err := h.svc.SendExpirationReminders(ctx)
			if err != nil {
				return nil, fmt.Errorf("scheduled sweep: %w", err)
			}
			return res, nil
		}

		var ev events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		return httpHandler(ctx, ev)
	}
}

func isScheduledEvent(payload json.RawMessage) bool {
	var ev events.CloudWatchEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return false
	}
	return ev.Source == "aws.events" || ev.DetailType == "Scheduled Event"
}
