// Package bootstrap turns a loaded Config into the store gateway and mail channel shared by
// the HTTP server and the Lambda entry points.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/redis/go-redis/v9"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/config"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/email"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/logger"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/store"
)

// Closer releases whatever a constructor opened. It is never nil.
type Closer func() error

func noop() error { return nil }

func awsConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

// Gateway opens the configured member store. The postgres backend runs pending migrations.
func Gateway(ctx context.Context, cfg *config.Config) (store.Gateway, Closer, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		if err := store.Migrate(db, cfg.MigrationsPath); err != nil {
			db.Close()
			return nil, noop, err
		}
		logger.Info("member store ready", "backend", cfg.StoreBackend)
		return store.NewPostgresGateway(db), db.Close, nil

	case config.StoreDynamoDB:
		awsCfg, err := awsConfig(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.DynamoDBEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
			}
		})
		logger.Info("member store ready", "backend", cfg.StoreBackend, "members", cfg.MembersTable)
		return store.NewDynamoGateway(client, store.Tables{
			Members:         cfg.MembersTable,
			Attendance:      cfg.AttendanceTable,
			AttendanceIndex: cfg.AttendanceIndex,
		}), noop, nil

	default:
		return nil, noop, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
}

// Mailer builds the outbound mail channel. With the queue driver the returned Queue must be
// started by the caller; messages are delivered over SMTP by its worker.
func Mailer(ctx context.Context, cfg *config.Config) (email.Sender, *email.Queue, Closer, error) {
	switch cfg.MailDriver {
	case config.MailSES:
		awsCfg, err := awsConfig(ctx, cfg)
		if err != nil {
			return nil, nil, noop, err
		}
		return email.NewSESSender(sesv2.NewFromConfig(awsCfg), cfg.SenderEmail, cfg.SenderName), nil, noop, nil

	case config.MailSMTP:
		return smtpSender(cfg), nil, noop, nil

	case config.MailQueue:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		q := email.NewQueue(rdb, smtpSender(cfg))
		return q, q, q.Close, nil

	default:
		return nil, nil, noop, fmt.Errorf("unsupported mail driver %q", cfg.MailDriver)
	}
}

func smtpSender(cfg *config.Config) *email.SMTPSender {
	return email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SenderEmail, cfg.SenderName)
}
