package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/access"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/api"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/bootstrap"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/config"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/logger"
)

func main() {
	logger.Init()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLevel(cfg.LogLevel)

	gw, _, err := bootstrap.Gateway(context.Background(), cfg)
	if err != nil {
		logger.Fatalf("Failed to open member store: %v", err)
	}

	h := access.NewHandler(access.NewService(gw, nil))
	lambda.Start(api.LambdaHandler(h.Router()))
}
