// Package handler orchestrates one invocation: extract the prompt, obtain
// the cached client, call the generative API, shape the response envelope.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/candidlabs/prompt-relay/internal/appconfig"
	"github.com/candidlabs/prompt-relay/internal/genai"
	"github.com/candidlabs/prompt-relay/internal/preview"
	"github.com/candidlabs/prompt-relay/internal/prompt"
)

// SuccessBody is the JSON body of a successful response.
type SuccessBody struct {
	Model    string `json:"model"`
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}

// ErrorBody is the JSON body of a failed response. It carries only the
// error message; stack context and secret material stay in the logs.
type ErrorBody struct {
	Error string `json:"error"`
}

// Handler processes invocation events. The factory it holds owns the
// process-lifetime caches, so constructing a Handler with a fresh factory
// models a cold start and reusing one models a warm start.
type Handler struct {
	cfg     appconfig.Config
	factory *genai.Factory
	log     *zap.SugaredLogger
}

// New creates a Handler.
func New(cfg appconfig.Config, factory *genai.Factory, log *zap.SugaredLogger) *Handler {
	return &Handler{cfg: cfg, factory: factory, log: log}
}

// Handle processes one event to completion. Errors are encoded in the
// envelope rather than returned, so the runtime never sees a handler
// failure for an upstream problem.
func (h *Handler) Handle(ctx context.Context, event json.RawMessage) (events.LambdaFunctionURLResponse, error) {
	id := invocationID(ctx)
	p := prompt.ExtractWithDefault(event, h.cfg.DefaultPrompt)

	client, err := h.factory.Get(ctx)
	if err != nil {
		h.log.Errorw("client initialization failed",
			"invocation_id", id,
			"error", err,
		)
		return errorResponse(err), nil
	}

	text, err := client.Generate(ctx, p)
	if err != nil {
		h.log.Errorw("generation failed",
			"invocation_id", id,
			"model", client.ModelID(),
			"prompt", p,
			"error", err,
		)
		return errorResponse(err), nil
	}

	h.log.Infow("request completed",
		"invocation_id", id,
		"model", client.ModelID(),
		"prompt", p,
		"response_preview", preview.Truncate(text, preview.DefaultMaxChars),
		"response_len", preview.Len(text),
	)

	body, err := marshalBody(SuccessBody{
		Model:    client.ModelID(),
		Prompt:   p,
		Response: text,
	})
	if err != nil {
		h.log.Errorw("response serialization failed", "invocation_id", id, "error", err)
		return errorResponse(err), nil
	}

	return events.LambdaFunctionURLResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: body,
	}, nil
}

// invocationID prefers the runtime's request id and falls back to a
// generated one for direct local invocation.
func invocationID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}

func errorResponse(err error) events.LambdaFunctionURLResponse {
	body, mErr := marshalBody(ErrorBody{Error: err.Error()})
	if mErr != nil {
		body = `{"error": "internal error"}`
	}
	return events.LambdaFunctionURLResponse{
		StatusCode: http.StatusInternalServerError,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: body,
	}
}

// marshalBody serializes without HTML escaping so the body stays plain
// UTF-8 JSON.
func marshalBody(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
