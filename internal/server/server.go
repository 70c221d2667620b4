package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/api"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/config"
)

// Routers groups the per-service dispatchers mounted by the HTTP server.
type Routers struct {
	Access       *api.Router
	Subscription *api.Router
	Notification *api.Router
}

type Server struct {
	router *gin.Engine
	http   *http.Server
}

// New builds the engine. Background work started here, such as rate limiter eviction,
// stops when ctx is done.
func New(ctx context.Context, cfg *config.Config, routers Routers) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	router.GET("/health", Health(routers))
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	limiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 3*time.Minute)
	go limiter.Run(ctx, time.Minute)

	access := Dispatch(routers.Access)
	accessGroup := router.Group("/access", limiter.Middleware(routers.Access.AllowMethods()))
	{
		accessGroup.POST("", access)
		accessGroup.OPTIONS("", access)
	}

	subs := Dispatch(routers.Subscription)
	subsGroup := router.Group("/subscriptions", limiter.Middleware(routers.Subscription.AllowMethods()))
	{
		subsGroup.GET("", subs)
		subsGroup.POST("", subs)
		subsGroup.PUT("", subs)
		subsGroup.OPTIONS("", subs)
		subsGroup.GET("/:userId", subs)
		subsGroup.POST("/:action", subs)
		subsGroup.OPTIONS("/:action", subs)
	}

	notify := Dispatch(routers.Notification)
	notifyGroup := router.Group("/notifications", limiter.Middleware(routers.Notification.AllowMethods()))
	{
		notifyGroup.POST("", notify)
		notifyGroup.OPTIONS("", notify)
	}

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
