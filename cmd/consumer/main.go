// Package main is the entry point for the profile update queue consumer Lambda function.
package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"github.com/pricofy/profile-dispatcher/internal/config"
	"github.com/pricofy/profile-dispatcher/internal/consumer"
	"github.com/pricofy/profile-dispatcher/internal/logging"
	"github.com/pricofy/profile-dispatcher/internal/profile"
	"github.com/pricofy/profile-dispatcher/internal/warmup"
)

type app struct {
	consumer *consumer.Consumer
	warmer   *warmup.Warmer
	logger   logrus.FieldLogger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logger := logging.New(cfg.LogLevel)

	a := &app{
		consumer: consumer.New(profile.NewSimulatedUpdater(cfg.ProcessingDelay), logger),
		warmer:   warmup.New(cfg.FunctionName, cfg.Region, logger),
		logger:   logger,
	}

	lambda.Start(a.handleRequest)
}

// handleRequest never fails the batch: per-record outcomes are only logged.
// An event that is not an SQS batch is logged and reported to the runtime.
func (a *app) handleRequest(ctx context.Context, event json.RawMessage) (interface{}, error) {
	if w, ok := warmup.Detect(event); ok {
		return a.warmer.Handle(ctx, w), nil
	}

	var batch events.SQSEvent
	if err := json.Unmarshal(event, &batch); err != nil {
		logging.WithInvocation(ctx, a.logger).WithError(err).Error("Failed to decode SQS event")
		return nil, fmt.Errorf("failed to decode SQS event: %w", err)
	}

	a.consumer.ProcessQueue(ctx, batch)
	return nil, nil
}
