package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/access"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/bootstrap"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/config"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/logger"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/notification"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/server"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/subscription"
)

func main() {
	logger.Init()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLevel(cfg.LogLevel)
	logger.Info("Starting El Mundo Fitness API", "store", cfg.StoreBackend, "mail", cfg.MailDriver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw, closeStore, err := bootstrap.Gateway(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to open member store: %v", err)
	}
	defer closeStore()

	mailer, queue, closeMailer, err := bootstrap.Mailer(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to set up mail channel: %v", err)
	}
	defer closeMailer()
	if queue != nil {
		go queue.Start(ctx)
		logger.Info("Email queue worker started")
	}

	srv := server.New(ctx, cfg, server.Routers{
		Access:       access.NewHandler(access.NewService(gw, nil)).Router(),
		Subscription: subscription.NewHandler(subscription.NewService(gw, nil)).Router(),
		Notification: notification.NewHandler(notification.NewService(gw, mailer, nil)).Router(),
	})

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
