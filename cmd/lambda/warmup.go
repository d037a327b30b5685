// Warmup handling for scheduled keep-warm events. EventBridge invokes the
// function periodically with a {"source": "warmup"} payload; the instance
// primes its credential and client caches so real traffic never pays the
// cold-start cost of the secret fetch.
package main

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"go.uber.org/zap"

	"github.com/candidlabs/prompt-relay/internal/genai"
)

const (
	// WarmupSource identifies warmup events from EventBridge.
	WarmupSource = "warmup"

	// WarmupDelay ensures instances overlap to create true concurrency.
	WarmupDelay = 75 * time.Millisecond
)

// WarmupEvent is the scheduled trigger payload.
type WarmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// WarmupResponse reports the outcome of a warmup invocation.
type WarmupResponse struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
	CachesPrimed    bool   `json:"cachesPrimed"`
}

// IsWarmupEvent checks whether the event is a warmup event. Any other
// scheduled payload flows through normal prompt handling.
func IsWarmupEvent(event json.RawMessage) (*WarmupEvent, bool) {
	var eventMap map[string]interface{}
	if err := json.Unmarshal(event, &eventMap); err != nil {
		return nil, false
	}

	source, ok := eventMap["source"].(string)
	if !ok || source != WarmupSource {
		return nil, false
	}

	warmup := &WarmupEvent{Source: source}
	if concurrency, ok := eventMap["concurrency"].(float64); ok {
		warmup.Concurrency = int(concurrency)
	}

	return warmup, true
}

// HandleWarmup primes this instance's caches and optionally self-invokes
// to keep additional instances warm. Priming failures are logged, not
// fatal: warming is best-effort and real invocations will retry.
func HandleWarmup(ctx context.Context, warmup *WarmupEvent, factory *genai.Factory, log *zap.SugaredLogger) (interface{}, error) {
	primed := true
	if _, err := factory.Get(ctx); err != nil {
		primed = false
		log.Warnw("cache priming failed during warmup", "error", err)
	}

	instancesWarmed := 1 // This instance counts as 1
	if warmup.Concurrency > 0 {
		if err := selfInvoke(ctx, warmup.Concurrency); err != nil {
			log.Warnw("warmup self-invoke failed", "error", err)
		} else {
			instancesWarmed += warmup.Concurrency
		}
	}

	// Brief delay so concurrent instances overlap
	time.Sleep(WarmupDelay)

	return map[string]interface{}{
		"statusCode": 200,
		"body": WarmupResponse{
			Status:          "warm",
			InstancesWarmed: instancesWarmed,
			CachesPrimed:    primed,
		},
	}, nil
}

// selfInvoke fires count async invocations of this function so the
// runtime spins up additional warm instances. Child payloads carry
// concurrency=0 to stop the fan-out from recursing.
func selfInvoke(ctx context.Context, count int) error {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return err
	}
	client := lambdasdk.NewFromConfig(cfg)
	functionName := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")

	payload, err := json.Marshal(WarmupEvent{Source: WarmupSource, Concurrency: 0})
	if err != nil {
		return err
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return firstErr
}
