// Package domain contains the core domain types for the profile dispatcher.
package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Classification selects how a profile update request is executed.
type Classification string

const (
	// Sync answers the request immediately without touching the queue.
	Sync Classification = "sync"
	// Queued hands the work to the queue consumer. The literal names the queue backend.
	Queued Classification = "sqs"
)

// ParseClassification maps a raw header value to a Classification.
// Anything other than the two known literals is rejected.
func ParseClassification(value string) (Classification, error) {
	switch Classification(value) {
	case Sync:
		return Sync, nil
	case Queued:
		return Queued, nil
	default:
		return "", NewInvalidHeader("Invalid type header. Must be 'sqs' or 'sync'.")
	}
}

// MessageType identifies the payload carried by a QueueMessage.
type MessageType string

// UserProfile is the only message type currently produced.
const UserProfile MessageType = "user_profile"

// QueueMessage is the body exchanged between the dispatcher and the consumer.
type QueueMessage struct {
	Type   MessageType `json:"type" validate:"required,oneof=user_profile"`
	UserID string      `json:"user_id" validate:"required"`
}

// NewUserProfileMessage builds the message queued for a profile update.
func NewUserProfileMessage(userID string) QueueMessage {
	return QueueMessage{Type: UserProfile, UserID: userID}
}

// validate is safe for concurrent use and caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their wire names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the message fields and reports the first offending field
// as an InvalidInput error.
func (m QueueMessage) Validate() error {
	err := validate.Struct(m)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return NewInvalidInput(fmt.Sprintf("Invalid message field %s: failed %q check", fe.Field(), fe.Tag()))
	}
	return NewInvalidInput(fmt.Sprintf("Invalid message: %v", err))
}
