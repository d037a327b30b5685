// Package appconfig loads runtime configuration from the environment.
package appconfig

import (
	"os"

	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultSecretName = "gemini-api-key"
	DefaultModelID    = "gemini-2.5-flash"
	DefaultRegion     = "us-east-1"
	DefaultPrompt     = "Explain quantum computing in simple terms."
	DefaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
)

// Config holds everything the handler needs from the environment.
type Config struct {
	// SecretName identifies the API key secret in Secrets Manager (SECRET_NAME).
	SecretName string
	// ModelID is the generative model to invoke (MODEL_ID).
	ModelID string
	// Region is the AWS region for the secret store (AWS_REGION).
	Region string
	// DefaultPrompt is used when an invocation carries no prompt (DEFAULT_PROMPT).
	DefaultPrompt string
	// BaseURL is the generative API endpoint (GENAI_BASE_URL). Overridable for tests.
	BaseURL string
}

// Load reads configuration from the environment. It never fails; every
// field has a default. A .env file is honored when present so the binary
// can be exercised outside Lambda.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		SecretName:    getEnv("SECRET_NAME", DefaultSecretName),
		ModelID:       getEnv("MODEL_ID", DefaultModelID),
		Region:        getEnv("AWS_REGION", DefaultRegion),
		DefaultPrompt: getEnv("DEFAULT_PROMPT", DefaultPrompt),
		BaseURL:       getEnv("GENAI_BASE_URL", DefaultBaseURL),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
