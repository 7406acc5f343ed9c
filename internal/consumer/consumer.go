// Package consumer drains batches of queued profile updates.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"github.com/pricofy/profile-dispatcher/internal/domain"
	"github.com/pricofy/profile-dispatcher/internal/logging"
	"github.com/pricofy/profile-dispatcher/internal/profile"
	"github.com/pricofy/profile-dispatcher/internal/queue"
)

// Outcome is the result of processing one record.
type Outcome struct {
	MessageID string
	UserID    string
	Err       error
}

// Succeeded reports whether the record was processed without error.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// UnknownTypeError is returned for messages whose type has no handler.
type UnknownTypeError struct {
	Type domain.MessageType
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("Unknown message type: %s", e.Type)
}

// Consumer processes queue batches one record at a time.
type Consumer struct {
	updater profile.Updater
	logger  logrus.FieldLogger
}

// New creates a Consumer.
func New(updater profile.Updater, logger logrus.FieldLogger) *Consumer {
	return &Consumer{updater: updater, logger: logger}
}

// ProcessQueue handles every record of the batch in order. A failing record
// is logged and skipped; it never stops the rest of the batch.
func (c *Consumer) ProcessQueue(ctx context.Context, event events.SQSEvent) []Outcome {
	log := logging.WithInvocation(ctx, c.logger)
	log.WithField("records", len(event.Records)).Info("SQS invoked")

	outcomes := make([]Outcome, 0, len(event.Records))
	for _, record := range event.Records {
		outcomes = append(outcomes, c.ProcessRecord(ctx, log, record))
	}

	log.WithFields(logrus.Fields{
		"records": len(outcomes),
		"failed":  len(Failed(outcomes)),
	}).Debug("SQS batch finished")
	return outcomes
}

// ProcessRecord handles a single record, recovering from panics in the update step.
func (c *Consumer) ProcessRecord(ctx context.Context, log *logrus.Entry, record events.SQSMessage) (outcome Outcome) {
	outcome.MessageID = record.MessageId
	log = log.WithField("message_id", record.MessageId)
	if attr, ok := record.MessageAttributes[queue.CorrelationAttribute]; ok && attr.StringValue != nil {
		log = log.WithField("correlation_id", *attr.StringValue)
	}

	defer func() {
		if r := recover(); r != nil {
			outcome.Err = fmt.Errorf("panic: %v", r)
			log.WithField("stack", string(debug.Stack())).
				Errorf("Error processing message: %v", outcome.Err)
		}
	}()

	var msg domain.QueueMessage
	if err := json.Unmarshal([]byte(record.Body), &msg); err != nil {
		outcome.Err = fmt.Errorf("failed to decode message body: %w", err)
		log.WithField("stack", string(debug.Stack())).
			Errorf("Error processing message: %v", outcome.Err)
		return outcome
	}

	if msg.Type != domain.UserProfile {
		outcome.Err = &UnknownTypeError{Type: msg.Type}
		log.Error(outcome.Err.Error())
		return outcome
	}

	if err := msg.Validate(); err != nil {
		outcome.Err = err
		log.Errorf("Error processing message: %v", err)
		return outcome
	}
	outcome.UserID = msg.UserID

	log.Infof("Simulating SQS processing profile for user_id: %s", msg.UserID)
	if err := c.updater.Apply(ctx, msg.UserID); err != nil {
		outcome.Err = fmt.Errorf("failed to update profile for user_id %s: %w", msg.UserID, err)
		log.WithField("stack", string(debug.Stack())).
			Errorf("Error processing message: %v", outcome.Err)
		return outcome
	}
	log.Infof("Updated user with id %s profile in database.", msg.UserID)

	return outcome
}

// Failed returns the outcomes that did not succeed.
func Failed(outcomes []Outcome) []Outcome {
	var failed []Outcome
	for _, o := range outcomes {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}
