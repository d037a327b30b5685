package appconfig

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SECRET_NAME", "MODEL_ID", "AWS_REGION", "DEFAULT_PROMPT", "GENAI_BASE_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.SecretName != DefaultSecretName {
		t.Errorf("SecretName = %q, want %q", cfg.SecretName, DefaultSecretName)
	}
	if cfg.ModelID != DefaultModelID {
		t.Errorf("ModelID = %q, want %q", cfg.ModelID, DefaultModelID)
	}
	if cfg.Region != DefaultRegion {
		t.Errorf("Region = %q, want %q", cfg.Region, DefaultRegion)
	}
	if cfg.DefaultPrompt != DefaultPrompt {
		t.Errorf("DefaultPrompt = %q, want %q", cfg.DefaultPrompt, DefaultPrompt)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SECRET_NAME", "my-secret")
	t.Setenv("MODEL_ID", "gemini-2.5-pro")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("DEFAULT_PROMPT", "Say hello.")
	t.Setenv("GENAI_BASE_URL", "http://localhost:8080/v1beta")

	cfg := Load()

	if cfg.SecretName != "my-secret" {
		t.Errorf("SecretName = %q, want %q", cfg.SecretName, "my-secret")
	}
	if cfg.ModelID != "gemini-2.5-pro" {
		t.Errorf("ModelID = %q, want %q", cfg.ModelID, "gemini-2.5-pro")
	}
	if cfg.Region != "eu-west-1" {
		t.Errorf("Region = %q, want %q", cfg.Region, "eu-west-1")
	}
	if cfg.DefaultPrompt != "Say hello." {
		t.Errorf("DefaultPrompt = %q, want %q", cfg.DefaultPrompt, "Say hello.")
	}
	if cfg.BaseURL != "http://localhost:8080/v1beta" {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, "http://localhost:8080/v1beta")
	}
}
