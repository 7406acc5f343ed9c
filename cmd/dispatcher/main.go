// Package main is the entry point for the profile update dispatcher Lambda function.
package main

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"github.com/pricofy/profile-dispatcher/internal/config"
	"github.com/pricofy/profile-dispatcher/internal/handler"
	"github.com/pricofy/profile-dispatcher/internal/logging"
	"github.com/pricofy/profile-dispatcher/internal/queue"
	"github.com/pricofy/profile-dispatcher/internal/warmup"
)

// app is built once per instance and shared by every invocation it serves.
type app struct {
	dispatcher *handler.Handler
	warmer     *warmup.Warmer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logger := logging.New(cfg.LogLevel)

	sender, err := queue.New(context.Background(), cfg.Region, cfg.QueueURL, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create SQS client")
	}

	a := &app{
		dispatcher: handler.New(sender, logger),
		warmer:     warmup.New(cfg.FunctionName, cfg.Region, logger),
	}

	lambda.Start(a.handleRequest)
}

func (a *app) handleRequest(ctx context.Context, event json.RawMessage) (interface{}, error) {
	// Warmup detection must run before the event is decoded as a request
	if w, ok := warmup.Detect(event); ok {
		return a.warmer.Handle(ctx, w), nil
	}

	return a.dispatcher.HandleEvent(ctx, event)
}
