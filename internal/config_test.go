package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestLoadConfigDefaults tests that default values are applied when loading
// a minimal config file.
func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxBodyBytes != 1<<20 {
		t.Fatalf("expected default max body, got %d", cfg.Server.MaxBodyBytes)
	}
	if cfg.Stripe.Path != "/webhooks/stripe" {
		t.Fatalf("expected default stripe path, got %q", cfg.Stripe.Path)
	}
	if cfg.Stripe.ToleranceSeconds != 300 {
		t.Fatalf("expected default tolerance 300s, got %d", cfg.Stripe.ToleranceSeconds)
	}
	if cfg.Slack.TimeoutMS != 10000 {
		t.Fatalf("expected default slack timeout, got %d", cfg.Slack.TimeoutMS)
	}
}

// TestLoadConfigFromFile tests YAML loading with environment expansion in
// the file content.
func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("TEST_STRIPE_SECRET", "whsec_from_env")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
stripe:
  webhook_secret: ${TEST_STRIPE_SECRET}
slack:
  webhook_url: https://hooks.slack.com/services/T/B/X
filters:
  allow:
    - "invoice.*"
  deny:
    - "invoice.created"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Stripe.WebhookSecret != "whsec_from_env" {
		t.Fatalf("expected expanded secret, got %q", cfg.Stripe.WebhookSecret)
	}
	if len(cfg.Filters.Allow) != 1 || cfg.Filters.Allow[0] != "invoice.*" {
		t.Fatalf("unexpected allow list %v", cfg.Filters.Allow)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

// TestLoadConfigEnvOverrides tests the environment-only surface: secret,
// destination, and CSV allow/deny lists override the file.
func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_env")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/Y")
	t.Setenv("STRIPE_EVENT_ALLOWLIST", "invoice.*, charge.* ,")
	t.Setenv("STRIPE_EVENT_DENYLIST", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Stripe.WebhookSecret != "whsec_env" {
		t.Fatalf("expected env secret, got %q", cfg.Stripe.WebhookSecret)
	}
	if cfg.Slack.WebhookURL != "https://hooks.slack.com/services/T/B/Y" {
		t.Fatalf("expected env slack url, got %q", cfg.Slack.WebhookURL)
	}
	if len(cfg.Filters.Allow) != 2 || cfg.Filters.Allow[1] != "charge.*" {
		t.Fatalf("unexpected allow list %v", cfg.Filters.Allow)
	}
	if len(cfg.Filters.Deny) != 0 {
		t.Fatalf("expected empty deny list, got %v", cfg.Filters.Deny)
	}
}

// TestValidateRequiresSecretAndDestination tests that validation fails with
// ErrConfigInvalid when either required value is missing.
func TestValidateRequiresSecretAndDestination(t *testing.T) {
	var cfg Config
	if err := cfg.Validate(); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for empty config, got %v", err)
	}

	cfg.Stripe.WebhookSecret = "whsec_x"
	if err := cfg.Validate(); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid without a destination, got %v", err)
	}

	cfg.Slack.WebhookURL = "https://hooks.slack.com/services/T/B/Z"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

// TestParseCSV tests trimming and empty-entry handling.
func TestParseCSV(t *testing.T) {
	got := ParseCSV(" invoice.* ,, charge.succeeded ")
	if len(got) != 2 || got[0] != "invoice.*" || got[1] != "charge.succeeded" {
		t.Fatalf("unexpected result %v", got)
	}
	if got := ParseCSV(""); len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
}
