// Package queue publishes profile update messages to SQS.
package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pricofy/profile-dispatcher/internal/domain"
)

// CorrelationAttribute is the message attribute carrying a per-message id.
const CorrelationAttribute = "correlation_id"

// ErrNoQueueURL is returned when no queue is configured.
var ErrNoQueueURL = errors.New("queue url is not configured")

// SQSAPI is the part of the SQS client used by the Sender.
type SQSAPI interface {
	SendMessage(context.Context, *sqs.SendMessageInput, ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Sender publishes messages to a single queue. It is safe for concurrent use.
type Sender struct {
	client   SQSAPI
	queueURL string
	logger   logrus.FieldLogger
}

// New creates a Sender backed by a real SQS client.
func New(ctx context.Context, region, queueURL string, logger logrus.FieldLogger) (*Sender, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewWithClient(sqs.NewFromConfig(cfg), queueURL, logger), nil
}

// NewWithClient creates a Sender around an existing client.
func NewWithClient(client SQSAPI, queueURL string, logger logrus.FieldLogger) *Sender {
	return &Sender{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
	}
}

// Send publishes msg. Failures are logged and returned as a
// *domain.TransportError; there is no retry beyond the SDK's own.
func (s *Sender) Send(ctx context.Context, msg domain.QueueMessage) error {
	if strings.TrimSpace(s.queueURL) == "" {
		s.logger.Error("Failed to send SQS message: no queue url configured")
		return &domain.TransportError{Op: "send message", Err: ErrNoQueueURL}
	}

	body, err := encode(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	correlationID := uuid.New().String()
	out, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			CorrelationAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(correlationID),
			},
		},
	})
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"correlation_id": correlationID,
			"error":          err.Error(),
		}).Errorf("Failed to send SQS message: %v", err)
		return &domain.TransportError{Op: "send message", Err: err}
	}

	fields := logrus.Fields{"correlation_id": correlationID, "type": msg.Type}
	if out != nil && out.MessageId != nil {
		fields["message_id"] = *out.MessageId
	}
	s.logger.WithFields(fields).Debug("SQS message sent")
	return nil
}

// encode renders msg as JSON without escaping HTML characters, so user ids
// travel exactly as received.
func encode(msg domain.QueueMessage) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
