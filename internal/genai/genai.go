// Package genai calls the hosted generative-text API and caches the
// configured client for the lifetime of the process.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultTimeout = 60 * time.Second

// InitializationError wraps credential resolution or client construction
// failures. The factory cache stays empty when one occurs.
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("client initialization failed: %v", e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// GenerationError wraps upstream generative call failures. StatusCode is
// zero when the request never reached the API.
type GenerationError struct {
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// CredentialSource provides the API key. Satisfied by *secrets.Resolver.
type CredentialSource interface {
	Resolve(ctx context.Context) (string, error)
}

// Client is a handle bound to one {credential, model} pair.
type Client struct {
	apiKey  string
	modelID string
	baseURL string
	hc      *http.Client
}

// ModelID returns the model this client is configured for.
func (c *Client) ModelID() string { return c.modelID }

// Wire format for the generateContent endpoint.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends the prompt to the API and returns the generated text.
// Single attempt, no retries; cancellation follows ctx.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", &GenerationError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.modelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", &GenerationError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", &GenerationError{Err: fmt.Errorf("call generative API: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &GenerationError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	var out generateResponse
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &out) == nil && out.Error != nil {
			msg = out.Error.Message
		}
		return "", &GenerationError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("upstream returned %d: %s", resp.StatusCode, msg),
		}
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return "", &GenerationError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", &GenerationError{StatusCode: resp.StatusCode, Err: errors.New("response contained no candidates")}
	}

	return out.Candidates[0].Content.Parts[0].Text, nil
}

// Factory builds the Client on first use and serves the same handle for
// the remainder of the process. Construction failures are not cached.
type Factory struct {
	creds   CredentialSource
	modelID string
	baseURL string
	hc      *http.Client

	mu     sync.Mutex
	cached *Client
}

// NewFactory creates a Factory bound to the given credential source,
// model and API base URL.
func NewFactory(creds CredentialSource, modelID, baseURL string) *Factory {
	return &Factory{
		creds:   creds,
		modelID: modelID,
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: defaultTimeout},
	}
}

// Get returns the cached client, constructing it on first call. Idempotent.
func (f *Factory) Get(ctx context.Context) (*Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cached != nil {
		return f.cached, nil
	}

	key, err := f.creds.Resolve(ctx)
	if err != nil {
		return nil, &InitializationError{Err: err}
	}

	f.cached = &Client{
		apiKey:  key,
		modelID: f.modelID,
		baseURL: f.baseURL,
		hc:      f.hc,
	}
	return f.cached, nil
}
