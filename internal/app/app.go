// Package app initializes the application: it loads configuration, builds
// the storage and cache clients, and wires the services into the Lambda
// handler.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/dmitrijs2005/trainspotter/internal/cache"
	"github.com/dmitrijs2005/trainspotter/internal/config"
	"github.com/dmitrijs2005/trainspotter/internal/handlers"
	"github.com/dmitrijs2005/trainspotter/internal/identity"
	"github.com/dmitrijs2005/trainspotter/internal/journeys"
	"github.com/dmitrijs2005/trainspotter/internal/logging"
	"github.com/dmitrijs2005/trainspotter/internal/repositories/credentials"
	"github.com/dmitrijs2005/trainspotter/internal/repositories/documents"
	"github.com/dmitrijs2005/trainspotter/internal/spottings"
)

type App struct {
	config *config.Config
	logger logging.Logger
	mux    *handlers.Mux
}

func NewApp(ctx context.Context) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	cfg := config.LoadConfig()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(awscreds.NewStaticCredentialsProvider(
			cfg.AWSAccessKey, cfg.AWSSecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config error: %w", err)
	}

	dyn := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		}
	})
	repo := credentials.NewDynamoRepository(dyn, cfg.UsersTable)

	sessions := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.BackendTimeout)

	store, err := documents.NewElasticStore(cfg.ElasticAddr, cfg.BackendTimeout)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch init error: %w", err)
	}

	mux := handlers.NewMux(
		identity.NewService(repo, sessions, logger),
		journeys.NewService(store, logger),
		spottings.NewService(store, logger),
		logger,
	)

	return &App{config: cfg, logger: logger, mux: mux}, nil
}

// Handler returns the function given to the Lambda runtime.
func (app *App) Handler() func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return app.mux.Handle
}
