// Package prompt extracts the user prompt from an invocation event.
//
// The event shape varies by trigger: direct invokes carry a top-level
// prompt field, function-URL GETs put it in queryStringParameters, and
// POSTs carry a JSON body that may be base64-encoded. Extraction probes
// each shape in a fixed order and never fails; when nothing matches it
// falls back to a default prompt.
package prompt

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Default is the prompt used when the event carries none.
const Default = "Explain quantum computing in simple terms."

// A source probes one event shape for a usable prompt.
type source func(event map[string]any) (string, bool)

// Tried in priority order; first match wins.
var sources = []source{fromTopLevel, fromQueryString, fromBody}

// Extract returns the prompt carried by the event, or Default.
func Extract(event json.RawMessage) string {
	return ExtractWithDefault(event, Default)
}

// ExtractWithDefault is Extract with a caller-chosen fallback. Pure
// function: malformed events and malformed bodies are never an error,
// they simply yield the fallback.
func ExtractWithDefault(event json.RawMessage, fallback string) string {
	var m map[string]any
	if err := json.Unmarshal(event, &m); err != nil {
		return fallback
	}

	for _, src := range sources {
		if p, ok := src(m); ok {
			return p
		}
	}
	return fallback
}

func fromTopLevel(event map[string]any) (string, bool) {
	return usable(event["prompt"])
}

func fromQueryString(event map[string]any) (string, bool) {
	params, ok := event["queryStringParameters"].(map[string]any)
	if !ok {
		return "", false
	}
	return usable(params["prompt"])
}

func fromBody(event map[string]any) (string, bool) {
	body, ok := event["body"].(string)
	if !ok {
		return "", false
	}

	if encoded, _ := event["isBase64Encoded"].(bool); encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return "", false
		}
		body = string(decoded)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return "", false
	}
	return usable(payload["prompt"])
}

// usable accepts only non-empty strings, trimmed. Absent, non-string and
// whitespace-only values all count as not found.
func usable(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}
