// Package handler provides the Lambda handler for the profile update dispatcher.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"github.com/pricofy/profile-dispatcher/internal/domain"
	"github.com/pricofy/profile-dispatcher/internal/logging"
	"github.com/pricofy/profile-dispatcher/internal/router"
)

// UnexpectedErrorMessage is the only detail returned for server-side faults.
const UnexpectedErrorMessage = "An unexpected error occurred"

// Sender enqueues a message for the queue consumer.
type Sender interface {
	Send(ctx context.Context, msg domain.QueueMessage) error
}

// Response is the API Gateway proxy output. Unlike events.APIGatewayProxyResponse
// it always serializes isBase64Encoded.
type Response struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

// MessageBody is the JSON body of every response.
type MessageBody struct {
	Message string `json:"message"`
}

// Handler dispatches profile update requests.
type Handler struct {
	sender Sender
	logger logrus.FieldLogger
}

// New creates a Handler. sender may be shared between concurrent invocations.
func New(sender Sender, logger logrus.FieldLogger) *Handler {
	return &Handler{sender: sender, logger: logger}
}

// HandleEvent decodes a raw API Gateway event and handles it. An event that
// does not decode is answered like any other invalid input.
func (h *Handler) HandleEvent(ctx context.Context, event json.RawMessage) (Response, error) {
	var req events.APIGatewayProxyRequest
	if err := json.Unmarshal(event, &req); err != nil {
		log := logging.WithInvocation(ctx, h.logger)
		log.Info("Lambda Function Started.")
		return h.failure(log, domain.NewInvalidInput(fmt.Sprintf("Invalid request event: %v", err))), nil
	}
	return h.Handle(ctx, req)
}

// Handle processes one request. It never returns an error: every failure is
// rendered as a 400 or 500 response.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (resp Response, err error) {
	log := logging.WithInvocation(ctx, h.logger)
	log.Info("Lambda Function Started.")

	defer func() {
		if r := recover(); r != nil {
			resp = h.failure(log, fmt.Errorf("panic: %v", r))
			err = nil
		}
	}()

	status, body, err := h.dispatch(ctx, log, req)
	if err != nil {
		return h.failure(log, err), nil
	}

	log.Info("Lambda Function Finished Successfully.")
	return respond(status, body), nil
}

// dispatch runs Classify -> {sync | queued}.
func (h *Handler) dispatch(ctx context.Context, log *logrus.Entry, req events.APIGatewayProxyRequest) (int, MessageBody, error) {
	route, err := router.Resolve(req.Headers, req.PathParameters)
	if err != nil {
		return 0, MessageBody{}, err
	}
	log = log.WithField("user_id", route.UserID)

	switch route.Classification {
	case domain.Sync:
		log.Infof("User profile data processing queued for user_id: %s", route.UserID)
		return http.StatusOK, MessageBody{
			Message: fmt.Sprintf("Not sending to SQS, handling response synchronously. User profile data processing queued for user_id: %s", route.UserID),
		}, nil

	case domain.Queued:
		msg := domain.NewUserProfileMessage(route.UserID)
		if err := msg.Validate(); err != nil {
			return 0, MessageBody{}, err
		}
		if err := h.sender.Send(ctx, msg); err != nil {
			return 0, MessageBody{}, err
		}
		log.Infof("User profile data processing queued for user_id: %s", route.UserID)
		return http.StatusAccepted, MessageBody{
			Message: fmt.Sprintf("Response sent to SQS. User profile data processing queued for user_id: %s", route.UserID),
		}, nil

	default:
		return 0, MessageBody{}, domain.NewInvalidHeader("Invalid environment type")
	}
}

// failure maps err to a client or server error response. Server errors are
// logged with the current stack; inside a recover that includes the panic site.
func (h *Handler) failure(log *logrus.Entry, err error) Response {
	if domain.IsClientError(err) {
		log.Errorf("Client error: %s", err.Error())
		return respond(http.StatusBadRequest, MessageBody{Message: err.Error()})
	}

	log.WithField("stack", string(debug.Stack())).Errorf("Unexpected error: %s", err.Error())
	return respond(http.StatusInternalServerError, MessageBody{Message: UnexpectedErrorMessage})
}

func respond(status int, body MessageBody) Response {
	return Response{
		StatusCode:      status,
		Headers:         map[string]string{"Content-Type": "application/json"},
		Body:            encode(body),
		IsBase64Encoded: false,
	}
}

// encode keeps non-ASCII and HTML characters as-is.
func encode(body MessageBody) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// MessageBody holds a single string and cannot fail to encode.
	_ = enc.Encode(body)
	return strings.TrimSuffix(buf.String(), "\n")
}
