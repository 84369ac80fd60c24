package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Digest.Hours != 24 {
		t.Errorf("expected 24 hour window, got %d", cfg.Digest.Hours)
	}
	if cfg.Digest.TopN != 10 {
		t.Errorf("expected top 10, got %d", cfg.Digest.TopN)
	}
	if cfg.Digest.MaxBodyChars != 8000 {
		t.Errorf("expected 8000 body chars, got %d", cfg.Digest.MaxBodyChars)
	}
	if cfg.Sources.MaxDescription != 500 {
		t.Errorf("expected 500 description chars, got %d", cfg.Sources.MaxDescription)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("unexpected model: %q", cfg.Gemini.Model)
	}
	if cfg.Schedule.Cron != "0 7 * * *" {
		t.Errorf("unexpected schedule: %q", cfg.Schedule.Cron)
	}

	urls, ok := cfg.Sources.Feeds["openai"]
	if !ok || len(urls) == 0 {
		t.Error("default feed registry should include openai")
	}
	if ok && !strings.Contains(urls[0], "openai.com") {
		t.Errorf("unexpected openai feed: %q", urls[0])
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("CURATOR_FROM_EMAIL", "digest@example.com")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Gemini.APIKey != "test-key" {
		t.Errorf("api key not bound from environment: %q", cfg.Gemini.APIKey)
	}
	if cfg.Email.FromAddress != "digest@example.com" {
		t.Errorf("from address not bound from environment: %q", cfg.Email.FromAddress)
	}
}

func TestValidateScoring(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateScoring(); err == nil {
		t.Error("expected error for missing api key")
	}

	cfg.Gemini.APIKey = "key"
	if err := cfg.ValidateScoring(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateDelivery(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateDelivery(); err == nil {
		t.Error("expected error for missing smtp host")
	}

	cfg.Email.SMTP.Host = "smtp.example.com"
	if err := cfg.ValidateDelivery(); err == nil {
		t.Error("expected error for missing from address")
	}

	cfg.Email.FromAddress = "digest@example.com"
	if err := cfg.ValidateDelivery(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
