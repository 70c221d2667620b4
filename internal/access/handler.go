package access

import (
	"context"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/api"
)

const (
	ServiceName  = "access-control"
	AllowMethods = "GET, POST, OPTIONS"

	ActionCheckIn      = "check-in"
	ActionCheckOut     = "check-out"
	ActionVerifyAccess = "verify-access"
	ActionGetHistory   = "get-history"
)

type Request struct {
	UserID string `json:"userId" validate:"required"`
	Action string `json:"action"`
	Limit  int    `json:"limit"`
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Router dispatches on the body's action. A request without one is a check-in.
func (h *Handler) Router() *api.Router {
	r := api.NewRouter(ServiceName, AllowMethods, api.BodyAction(ActionCheckIn))
	r.Handle(ActionCheckIn, h.checkIn)
	r.Handle(ActionCheckOut, h.checkOut)
	r.Handle(ActionVerifyAccess, h.verifyAccess)
	r.Handle(ActionGetHistory, h.history)
	return r
}

func decode(req api.Request) (Request, error) {
	var in Request
	if err := req.DecodeBody(&in); err != nil {
		return in, err
	}
	return in, api.Validate(in)
}

func (h *Handler) checkIn(ctx context.Context, req api.Request) (any, error) {
	in, err := decode(req)
	if err != nil {
		return nil, err
	}
	return h.svc.CheckIn(ctx, in.UserID)
}

func (h *Handler) checkOut(ctx context.Context, req api.Request) (any, error) {
	in, err := decode(req)
	if err != nil {
		return nil, err
	}
	return h.svc.CheckOut(ctx, in.UserID)
}

func (h *Handler) verifyAccess(ctx context.Context, req api.Request) (any, error) {
	in, err := decode(req)
	if err != nil {
		return nil, err
	}
	return h.svc.VerifyAccess(ctx, in.UserID)
}

func (h *Handler) history(ctx context.Context, req api.Request) (any, error) {
	in, err := decode(req)
	if err != nil {
		return nil, err
	}
	return h.svc.History(ctx, in.UserID, in.Limit)
}
