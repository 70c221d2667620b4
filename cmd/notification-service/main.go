package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/bootstrap"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/config"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/logger"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/notification"
)

// Serves the notifications API route and the scheduled expiration sweep.
func main() {
	logger.Init()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLevel(cfg.LogLevel)

	ctx := context.Background()
	gw, _, err := bootstrap.Gateway(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to open member store: %v", err)
	}

	mailer, queue, _, err := bootstrap.Mailer(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to set up mail channel: %v", err)
	}
	if queue != nil {
		logger.Fatalf("MAIL_DRIVER=%s needs a long-running worker; use ses or smtp here", cfg.MailDriver)
	}

	h := notification.NewHandler(notification.NewService(gw, mailer, nil))
	lambda.Start(h.LambdaHandler())
}
