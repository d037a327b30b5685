// Package secrets resolves the generative API credential from AWS Secrets
// Manager and caches it for the lifetime of the process.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// ResolutionError wraps any failure to produce a usable credential:
// store unreachable, access denied, or a payload that cannot be reduced
// to a non-empty string.
type ResolutionError struct {
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("credential resolution failed: %v", e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Store retrieves a raw secret payload by identifier.
type Store interface {
	GetSecret(ctx context.Context, secretID string) (string, error)
}

// Resolver fetches the credential once and serves it from memory for the
// remainder of the process. A failed fetch leaves the cache unset so the
// next invocation retries from scratch.
type Resolver struct {
	store    Store
	secretID string

	mu     sync.Mutex
	cached string
}

// NewResolver creates a Resolver for the given secret identifier.
func NewResolver(store Store, secretID string) *Resolver {
	return &Resolver{store: store, secretID: secretID}
}

// Resolve returns the credential, querying the store only on the first
// call within a process. Idempotent across calls.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != "" {
		return r.cached, nil
	}

	raw, err := r.store.GetSecret(ctx, r.secretID)
	if err != nil {
		return "", &ResolutionError{Err: err}
	}

	cred, err := reduce(raw)
	if err != nil {
		return "", &ResolutionError{Err: err}
	}

	r.cached = cred
	return cred, nil
}

// reduce turns a secret payload into a credential string. Secrets Manager
// secrets are commonly stored as a one-key JSON object ({"api_key": "..."})
// or as the bare string itself; both are accepted.
func reduce(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("secret value is empty")
	}

	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		// Not JSON: the payload is the credential itself.
		return trimmed, nil
	}

	switch v := parsed.(type) {
	case string:
		return nonEmpty(v)
	case map[string]any:
		if len(v) != 1 {
			return "", fmt.Errorf("secret object has %d keys, want exactly 1", len(v))
		}
		for _, inner := range v {
			s, ok := inner.(string)
			if !ok {
				return "", fmt.Errorf("secret object value is %T, want string", inner)
			}
			return nonEmpty(s)
		}
		return "", errors.New("secret object is empty")
	default:
		return "", fmt.Errorf("secret is %T, want string or one-key object", parsed)
	}
}

func nonEmpty(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("secret value is empty")
	}
	return s, nil
}

// awsStore is the Secrets Manager backed Store. The SDK client is built
// lazily on first use so a misconfigured environment fails per invocation
// rather than crashing the process at startup.
type awsStore struct {
	region string

	mu     sync.Mutex
	client *secretsmanager.Client
}

// NewAWSStore creates a Store backed by AWS Secrets Manager in the given region.
func NewAWSStore(region string) Store {
	return &awsStore{region: region}
}

func (s *awsStore) GetSecret(ctx context.Context, secretID string) (string, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return "", err
	}

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %q: %w", secretID, err)
	}

	if out.SecretString != nil {
		return *out.SecretString, nil
	}
	if len(out.SecretBinary) > 0 {
		return string(out.SecretBinary), nil
	}
	return "", fmt.Errorf("secret %q has no value", secretID)
}

func (s *awsStore) getClient(ctx context.Context) (*secretsmanager.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(s.region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		s.client = secretsmanager.NewFromConfig(cfg)
	}
	return s.client, nil
}
