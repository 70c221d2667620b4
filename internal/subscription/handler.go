package subscription

import (
	"context"
	"net/http"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/api"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/store"
)

const (
	ServiceName  = "subscription-control"
	AllowMethods = "GET, POST, PUT, OPTIONS"

	ActionCreate = "create"
	ActionGet    = "get"
	ActionUpdate = "update"
	ActionRenew  = "renew"
	ActionCancel = "cancel"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type Result struct {
	Message      string        `json:"message"`
	Subscription *store.Member `json:"subscription"`
}

func (h *Handler) Router() *api.Router {
	r := api.NewRouter(ServiceName, AllowMethods, selectAction)
	r.Handle(ActionCreate, h.create)
	r.Handle(ActionGet, h.get)
	r.Handle(ActionUpdate, h.update)
	r.Handle(ActionRenew, h.renew)
	r.Handle(ActionCancel, h.cancel)
	return r
}

// selectAction prefers an explicit action (body, then path) over the HTTP method.
func selectAction(req api.Request) (string, error) {
	var body struct {
		Action string `json:"action"`
	}
	if err := req.DecodeBody(&body); err != nil {
		return "", err
	}
	if body.Action != "" {
		return body.Action, nil
	}
	if action := req.PathParam("action"); action != "" {
		return action, nil
	}

	switch req.Method {
	case http.MethodPost:
		return ActionCreate, nil
	case http.MethodGet:
		return ActionGet, nil
	case http.MethodPut:
		return ActionUpdate, nil
	default:
		return "", api.Validation("unsupported method %q", req.Method)
	}
}

func (h *Handler) create(ctx context.Context, req api.Request) (any, error) {
	var in CreateInput
	if err := req.DecodeBody(&in); err != nil {
		return nil, err
	}
	m, err := h.svc.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return Result{Message: "Suscripción creada exitosamente", Subscription: m}, nil
}

func (h *Handler) get(ctx context.Context, req api.Request) (any, error) {
	userID := req.PathParam("userId")
	if userID == "" {
		var in struct {
			UserID string `json:"userId"`
		}
		if err := req.DecodeBody(&in); err != nil {
			return nil, err
		}
		userID = in.UserID
	}
	return h.svc.Get(ctx, userID)
}

func (h *Handler) update(ctx context.Context, req api.Request) (any, error) {
	var in UpdateInput
	if err := req.DecodeBody(&in); err != nil {
		return nil, err
	}
	m, err := h.svc.Update(ctx, in)
	if err != nil {
		return nil, err
	}
	return Result{Message: "Suscripción actualizada exitosamente", Subscription: m}, nil
}

func (h *Handler) renew(ctx context.Context, req api.Request) (any, error) {
	var in RenewInput
	if err := req.DecodeBody(&in); err != nil {
		return nil, err
	}
	m, err := h.svc.Renew(ctx, in)
	if err != nil {
		return nil, err
	}
	return Result{Message: "Suscripción renovada exitosamente", Subscription: m}, nil
}

func (h *Handler) cancel(ctx context.Context, req api.Request) (any, error) {
	var in struct {
		UserID string `json:"userId"`
	}
	if err := req.DecodeBody(&in); err != nil {
		return nil, err
	}
	m, err := h.svc.Cancel(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	return Result{Message: "Suscripción cancelada exitosamente", Subscription: m}, nil
}
