// Package main is the entry point for the prompt relay Lambda function.
package main

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/candidlabs/prompt-relay/internal/appconfig"
	"github.com/candidlabs/prompt-relay/internal/genai"
	"github.com/candidlabs/prompt-relay/internal/handler"
	"github.com/candidlabs/prompt-relay/internal/secrets"
)

func main() {
	cfg := appconfig.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to init logger")
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	// Built once per process; the resolver and factory hold the caches
	// that survive across warm invocations.
	store := secrets.NewAWSStore(cfg.Region)
	resolver := secrets.NewResolver(store, cfg.SecretName)
	factory := genai.NewFactory(resolver, cfg.ModelID, cfg.BaseURL)
	h := handler.New(cfg, factory, log)

	lambda.Start(func(ctx context.Context, event json.RawMessage) (interface{}, error) {
		// Warmup detection (MUST be first - before any other processing)
		if warmup, ok := IsWarmupEvent(event); ok {
			return HandleWarmup(ctx, warmup, factory, log)
		}

		return h.Handle(ctx, event)
	})
}
