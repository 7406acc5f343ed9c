package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(KeyQueueURL, "")
	t.Setenv(KeyLogLevel, "")
	t.Setenv(KeyRegion, "")
	t.Setenv(KeyProcessingDelay, "")
	t.Setenv(KeyFunctionName, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.QueueURL)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, 3*time.Second, cfg.ProcessingDelay)
	assert.Empty(t, cfg.FunctionName)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(KeyQueueURL, "https://sqs.eu-west-1.amazonaws.com/123456789012/profiles")
	t.Setenv(KeyLogLevel, "debug")
	t.Setenv(KeyRegion, "eu-west-1")
	t.Setenv(KeyProcessingDelay, "250ms")
	t.Setenv(KeyFunctionName, "profile-dispatcher")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://sqs.eu-west-1.amazonaws.com/123456789012/profiles", cfg.QueueURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, 250*time.Millisecond, cfg.ProcessingDelay)
	assert.Equal(t, "profile-dispatcher", cfg.FunctionName)
}

func TestLoadNegativeDelayClamped(t *testing.T) {
	t.Setenv(KeyProcessingDelay, "-5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), cfg.ProcessingDelay)
}

func TestLoadInvalidDelay(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"unitless number", "3"},
		{"garbage", "abc"},
		{"bad unit", "3 seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(KeyProcessingDelay, tt.value)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), KeyProcessingDelay)
		})
	}
}

func TestLoadZeroDelay(t *testing.T) {
	t.Setenv(KeyProcessingDelay, "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), cfg.ProcessingDelay)
}
