// Package warmup answers scheduled keep-warm events for both functions.
// EventBridge rules invoke the functions periodically with a warmup payload;
// the handler can fan out extra asynchronous invocations to keep several
// instances warm at once.
package warmup

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/sirupsen/logrus"
)

const (
	// Source is the value of "source" in a warmup payload.
	Source = "warmup"

	// Delay is how long a warmup invocation stays busy before returning.
	Delay = 75 * time.Millisecond
)

// Event is the scheduled warmup payload.
type Event struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// Result is the body returned by a warmup invocation.
type Result struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// Response wraps Result in the same shape as an HTTP response.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       Result `json:"body"`
}

// InvokeAPI is the part of the Lambda client used for self-invocation.
type InvokeAPI interface {
	Invoke(context.Context, *lambdasdk.InvokeInput, ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error)
}

// Warmer handles warmup events for one function.
type Warmer struct {
	functionName string
	logger       logrus.FieldLogger
	delay        time.Duration

	clientOnce sync.Once
	client     InvokeAPI
	clientErr  error
	newClient  func(ctx context.Context) (InvokeAPI, error)
}

// New returns a Warmer that self-invokes functionName. The Lambda client is
// only created the first time fan-out is requested.
func New(functionName, region string, logger logrus.FieldLogger) *Warmer {
	return &Warmer{
		functionName: functionName,
		logger:       logger,
		delay:        Delay,
		newClient: func(ctx context.Context) (InvokeAPI, error) {
			cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
			if err != nil {
				return nil, err
			}
			return lambdasdk.NewFromConfig(cfg), nil
		},
	}
}

// NewWithClient returns a Warmer around an existing client.
func NewWithClient(functionName string, client InvokeAPI, logger logrus.FieldLogger) *Warmer {
	return &Warmer{
		functionName: functionName,
		logger:       logger,
		delay:        Delay,
		client:       client,
		newClient: func(context.Context) (InvokeAPI, error) {
			return client, nil
		},
	}
}

// Detect reports whether event is a warmup payload. Anything that does not
// decode into Event, or names another source, is left for the real handler.
func Detect(event json.RawMessage) (*Event, bool) {
	var e Event
	if err := json.Unmarshal(event, &e); err != nil || e.Source != Source {
		return nil, false
	}
	if e.Concurrency < 0 {
		e.Concurrency = 0
	}
	return &e, true
}

// Handle answers a warmup event, fanning out when Concurrency > 0.
func (w *Warmer) Handle(ctx context.Context, event *Event) Response {
	instancesWarmed := 1

	if event.Concurrency > 0 {
		invoked, err := w.selfInvoke(ctx, event.Concurrency)
		if err != nil {
			w.logger.WithError(err).Warn("Warmup self-invocation failed")
		}
		instancesWarmed += invoked
	}

	// Hold this instance busy so the async children land on fresh ones.
	time.Sleep(w.delay)

	w.logger.WithField("instances_warmed", instancesWarmed).Debug("Warmup handled")
	return Response{
		StatusCode: 200,
		Body: Result{
			Status:          "warm",
			InstancesWarmed: instancesWarmed,
		},
	}
}

// selfInvoke invokes this function count times asynchronously and returns
// how many invocations were accepted.
func (w *Warmer) selfInvoke(ctx context.Context, count int) (int, error) {
	w.clientOnce.Do(func() {
		if w.client == nil {
			w.client, w.clientErr = w.newClient(ctx)
		}
	})
	if w.clientErr != nil {
		return 0, w.clientErr
	}

	// Children must not fan out again.
	payload, err := json.Marshal(Event{Source: Source, Concurrency: 0})
	if err != nil {
		return 0, err
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		accepted  int
		invokeErr error
	)

	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := w.client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(w.functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if invokeErr == nil {
					invokeErr = err
				}
				return
			}
			accepted++
		}()
	}

	wg.Wait()
	return accepted, invokeErr
}
