package api

import (
	"context"
	"sort"
	"time"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/logger"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/metrics"
)

type HandlerFunc func(ctx context.Context, req Request) (any, error)

// Selector picks the action name for a request.
type Selector func(req Request) (string, error)

// BodyAction selects on the "action" field of the JSON body, falling back to def when it is empty.
func BodyAction(def string) Selector {
	return func(req Request) (string, error) {
		var body struct {
			Action string `json:"action"`
		}
		if err := req.DecodeBody(&body); err != nil {
			return "", err
		}
		if body.Action == "" {
			return def, nil
		}
		return body.Action, nil
	}
}

type Router struct {
	service      string
	allowMethods string
	selector     Selector
	routes       map[string]HandlerFunc
	now          func() time.Time
}

func NewRouter(service, allowMethods string, selector Selector) *Router {
	return &Router{
		service:      service,
		allowMethods: allowMethods,
		selector:     selector,
		routes:       make(map[string]HandlerFunc),
		now:          time.Now,
	}
}

func (r *Router) Handle(action string, h HandlerFunc) {
	r.routes[action] = h
}

func (r *Router) Service() string {
	return r.service
}

func (r *Router) AllowMethods() string {
	return r.allowMethods
}

func (r *Router) Actions() []string {
	actions := make([]string, 0, len(r.routes))
	for action := range r.routes {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions
}

// Dispatch runs the handler selected for req and converts its outcome into a Response.
func (r *Router) Dispatch(ctx context.Context, req Request) Response {
	if req.IsPreflight() {
		return OK(nil, r.allowMethods, r.now())
	}

	action, err := r.selector(req)
	if err != nil {
		return r.fail(action, err)
	}

	h, ok := r.routes[action]
	if !ok {
		return r.fail(action, Validation("unsupported action %q", action))
	}

	logger.Info("request received", "service", r.service, "action", action, "method", req.Method)

	data, err := h(ctx, req)
	if err != nil {
		return r.fail(action, err)
	}
	return OK(data, r.allowMethods, r.now())
}

func (r *Router) fail(action string, err error) Response {
	kind := KindOf(err)
	metrics.RecordHandlerError(r.service, string(kind))

	resp := Fail(err, r.allowMethods, r.now())
	if resp.StatusCode >= 500 {
		logger.WithError(err).Error("request failed", "service", r.service, "action", action, "kind", kind)
	} else {
		logger.Warn("request rejected", "service", r.service, "action", action, "kind", kind, "error", err.Error())
	}
	return resp
}
