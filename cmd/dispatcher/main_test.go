package main

import (
	"context"
	"encoding/json"
	"testing"

	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pricofy/profile-dispatcher/internal/handler"
	"github.com/pricofy/profile-dispatcher/internal/queue"
	"github.com/pricofy/profile-dispatcher/internal/warmup"
)

type mockSQS struct{ mock.Mock }

func (m *mockSQS) SendMessage(ctx context.Context, input *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*sqs.SendMessageOutput)
	return out, args.Error(1)
}

type mockLambda struct{ mock.Mock }

func (m *mockLambda) Invoke(ctx context.Context, input *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*lambdasdk.InvokeOutput)
	return out, args.Error(1)
}

func newTestApp() (*app, *mockSQS, *mockLambda) {
	logger, _ := test.NewNullLogger()
	sqsClient := &mockSQS{}
	lambdaClient := &mockLambda{}
	sender := queue.NewWithClient(sqsClient, "https://sqs.us-east-1.amazonaws.com/123456789012/profiles", logger)
	return &app{
		dispatcher: handler.New(sender, logger),
		warmer:     warmup.NewWithClient("profile-dispatcher", lambdaClient, logger),
	}, sqsClient, lambdaClient
}

func message(t *testing.T, out interface{}) (int, string) {
	t.Helper()
	resp, ok := out.(handler.Response)
	require.True(t, ok, "expected handler.Response, got %T", out)
	var body handler.MessageBody
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	return resp.StatusCode, body.Message
}

func TestHandleRequest_Warmup(t *testing.T) {
	a, sqsClient, lambdaClient := newTestApp()
	lambdaClient.On("Invoke", mock.Anything, mock.Anything).Return(&lambdasdk.InvokeOutput{StatusCode: 202}, nil)

	out, err := a.handleRequest(context.Background(), json.RawMessage(`{"source":"warmup","concurrency":2}`))

	require.NoError(t, err)
	resp, ok := out.(warmup.Response)
	require.True(t, ok, "expected warmup.Response, got %T", out)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 3, resp.Body.InstancesWarmed)
	lambdaClient.AssertNumberOfCalls(t, "Invoke", 2)
	sqsClient.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}

func TestHandleRequest_Requests(t *testing.T) {
	tests := []struct {
		name    string
		event   string
		status  int
		message string
		sends   int
	}{
		{
			name:    "sync",
			event:   `{"headers":{"type":"sync"},"pathParameters":{"user_id":"42"}}`,
			status:  200,
			message: "Not sending to SQS, handling response synchronously. User profile data processing queued for user_id: 42",
		},
		{
			name:    "queued",
			event:   `{"headers":{"type":"sqs"},"pathParameters":{"user_id":"42"}}`,
			status:  202,
			message: "Response sent to SQS. User profile data processing queued for user_id: 42",
			sends:   1,
		},
		{
			name:    "event with a warmup-like source of another kind",
			event:   `{"source":"aws.events","headers":{"type":"sync"},"pathParameters":{"user_id":"42"}}`,
			status:  200,
			message: "Not sending to SQS, handling response synchronously. User profile data processing queued for user_id: 42",
		},
		{
			name:    "invalid type header",
			event:   `{"headers":{"type":"batch"},"pathParameters":{"user_id":"42"}}`,
			status:  400,
			message: "Invalid type header. Must be 'sqs' or 'sync'.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, sqsClient, lambdaClient := newTestApp()
			sqsClient.On("SendMessage", mock.Anything, mock.Anything).Return(&sqs.SendMessageOutput{}, nil)

			out, err := a.handleRequest(context.Background(), json.RawMessage(tt.event))

			require.NoError(t, err)
			status, msg := message(t, out)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, msg)
			sqsClient.AssertNumberOfCalls(t, "SendMessage", tt.sends)
			lambdaClient.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
		})
	}
}

func TestHandleRequest_UndecodableEvent(t *testing.T) {
	events := []string{
		`{"headers":{"type":5},"pathParameters":{"user_id":"42"}}`,
		`{"headers":{"type":"sqs"},"pathParameters":{"user_id":42}}`,
		`"just a string"`,
	}

	for _, event := range events {
		t.Run(event, func(t *testing.T) {
			a, sqsClient, _ := newTestApp()

			out, err := a.handleRequest(context.Background(), json.RawMessage(event))

			require.NoError(t, err)
			status, msg := message(t, out)
			assert.Equal(t, 400, status)
			assert.Contains(t, msg, "Invalid request event")
			sqsClient.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
		})
	}
}
