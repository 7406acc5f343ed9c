// Package config loads the function configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment keys.
const (
	KeyQueueURL        = "SQS_QUEUE_URL"
	KeyLogLevel        = "LOGGING_LEVEL"
	KeyRegion          = "AWS_REGION"
	KeyProcessingDelay = "PROCESSING_DELAY"
	KeyFunctionName    = "AWS_LAMBDA_FUNCTION_NAME"
)

// Defaults
const (
	DefaultLogLevel        = "INFO"
	DefaultRegion          = "us-east-1"
	DefaultProcessingDelay = 3 * time.Second
)

// Config holds all configuration for both functions.
type Config struct {
	// QueueURL is not validated here; an empty value only fails when a send is attempted.
	QueueURL        string
	LogLevel        string
	Region          string
	ProcessingDelay time.Duration
	FunctionName    string
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyRegion, DefaultRegion)
	v.SetDefault(KeyProcessingDelay, DefaultProcessingDelay.String())

	// cast would read "3" as 3ns and garbage as 0s; insist on a unit.
	delay, err := time.ParseDuration(v.GetString(KeyProcessingDelay))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyProcessingDelay, err)
	}
	if delay < 0 {
		delay = 0
	}

	return &Config{
		QueueURL:        v.GetString(KeyQueueURL),
		LogLevel:        v.GetString(KeyLogLevel),
		Region:          v.GetString(KeyRegion),
		ProcessingDelay: delay,
		FunctionName:    v.GetString(KeyFunctionName),
	}, nil
}
