// Package logging builds the structured logger shared by both functions.
package logging

import (
	"context"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// New returns a JSON logger writing to stdout at the given level.
// Unknown levels fall back to info.
func New(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// ParseLevel parses a level name case-insensitively.
func ParseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

// WithInvocation returns an entry tagged with the Lambda request id.
// Outside the Lambda runtime a random id is generated so log lines from one
// invocation can still be correlated.
func WithInvocation(ctx context.Context, logger logrus.FieldLogger) *logrus.Entry {
	fields := logrus.Fields{}
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		fields["request_id"] = lc.AwsRequestID
	} else {
		fields["request_id"] = uuid.New().String()
	}
	if lambdacontext.FunctionName != "" {
		fields["function"] = lambdacontext.FunctionName
	}
	return logger.WithFields(fields)
}
