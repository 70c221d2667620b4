package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/access"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/config"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/email"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/notification"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/store/storetest"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/subscription"
)

type outbox struct{ sent []email.Message }

func (o *outbox) Send(_ context.Context, msg email.Message) (string, error) {
	o.sent = append(o.sent, msg)
	return "msg-1", nil
}

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	Timestamp string          `json:"timestamp"`
}

func newTestServer(t *testing.T) (http.Handler, *outbox) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gw := storetest.NewMemory()
	mail := &outbox{}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv := New(ctx, &config.Config{Port: "0", RateLimitRPS: 1000, RateLimitBurst: 1000}, Routers{
		Access:       access.NewHandler(access.NewService(gw, nil)).Router(),
		Subscription: subscription.NewHandler(subscription.NewService(gw, nil)).Router(),
		Notification: notification.NewHandler(notification.NewService(gw, mail, nil)).Router(),
	})
	return srv.Handler(), mail
}

func call(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))

	var env envelope
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestServer_MemberLifecycle(t *testing.T) {
	h, mail := newTestServer(t)

	w, env := call(t, h, http.MethodPost, "/subscriptions",
		`{"userId":"u1","email":"ana@example.com","name":"Ana","subscriptionType":"monthly"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"subscriptionStatus":"active"`)
	assert.Equal(t, "GET, POST, PUT, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))

	w, env = call(t, h, http.MethodGet, "/subscriptions/u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"isActive":true`)

	w, env = call(t, h, http.MethodPost, "/access", `{"userId":"u1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Ana")
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))

	w, _ = call(t, h, http.MethodPost, "/subscriptions/cancel", `{"userId":"u1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = call(t, h, http.MethodPost, "/access", `{"userId":"u1","action":"verify-access"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"hasAccess":false`)

	w, env = call(t, h, http.MethodPost, "/access", `{"userId":"u1","action":"check-in"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "access denied: inactive", env.Error)

	w, _ = call(t, h, http.MethodPost, "/notifications", `{"action":"send-welcome","userId":"u1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "ana@example.com", mail.sent[0].To)
}

func TestServer_Errors(t *testing.T) {
	h, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"malformed body", http.MethodPost, "/access", `{"userId":`, http.StatusInternalServerError},
		{"missing user id", http.MethodPost, "/access", `{}`, http.StatusBadRequest},
		{"unknown member", http.MethodGet, "/subscriptions/ghost", "", http.StatusNotFound},
		{"invalid plan", http.MethodPost, "/subscriptions",
			`{"userId":"u1","email":"a@b.co","subscriptionType":"weekly"}`, http.StatusBadRequest},
		{"notification without action", http.MethodPost, "/notifications", `{"userId":"u1"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := call(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
			_, err := time.Parse(time.RFC3339Nano, env.Timestamp)
			assert.NoError(t, err)
		})
	}
}

func TestServer_Preflight(t *testing.T) {
	h, _ := newTestServer(t)

	for _, path := range []string{"/access", "/subscriptions", "/subscriptions/renew", "/notifications"} {
		w, env := call(t, h, http.MethodOptions, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.True(t, env.Success, path)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"), path)
		assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"), path)
	}
}

func TestServer_SystemRoutes(t *testing.T) {
	h, _ := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var health struct {
		Status   string              `json:"status"`
		Services map[string][]string `json:"services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Contains(t, health.Services[subscription.ServiceName], subscription.ActionRenew)
	assert.Contains(t, health.Services[access.ServiceName], access.ActionGetHistory)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "elmundo_http_requests_total")
}

func TestServer_RateLimitedResponseKeepsServiceHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw := storetest.NewMemory()
	h := New(ctx, &config.Config{Port: "0", RateLimitRPS: 0.001, RateLimitBurst: 1}, Routers{
		Access:       access.NewHandler(access.NewService(gw, nil)).Router(),
		Subscription: subscription.NewHandler(subscription.NewService(gw, nil)).Router(),
		Notification: notification.NewHandler(notification.NewService(gw, &outbox{}, nil)).Router(),
	}).Handler()

	call(t, h, http.MethodGet, "/subscriptions/ghost", "")
	w, env := call(t, h, http.MethodGet, "/subscriptions/ghost", "")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "GET, POST, PUT, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_Swagger(t *testing.T) {
	h, _ := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	for _, path := range []string{"/access", "/subscriptions", "/subscriptions/{userId}", "/subscriptions/{action}", "/notifications", "/health"} {
		assert.Contains(t, doc.Paths, path)
	}
	assert.Contains(t, doc.Paths["/subscriptions"], "put")

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/openapi.json")
}
