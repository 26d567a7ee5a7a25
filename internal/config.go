package internal

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration. It is built once at startup
// and passed into every component that needs it; nothing reads the process
// environment after that.
type Config struct {
	// Server holds HTTP server configuration.
	Server struct {
		Port           int    `yaml:"port"`
		ReadTimeoutMS  int64  `yaml:"read_timeout_ms"`
		WriteTimeoutMS int64  `yaml:"write_timeout_ms"`
		IdleTimeoutMS  int64  `yaml:"idle_timeout_ms"`
		MaxBodyBytes   int64  `yaml:"max_body_bytes"`
		RateLimitRPS   int64  `yaml:"rate_limit_rps"`
		RateLimitBurst int    `yaml:"rate_limit_burst"`
		MetricsEnabled bool   `yaml:"metrics_enabled"`
		MetricsPath    string `yaml:"metrics_path"`
	} `yaml:"server"`
	// Stripe holds the inbound webhook endpoint configuration.
	Stripe struct {
		Path             string `yaml:"path"`
		WebhookSecret    string `yaml:"webhook_secret"`
		ToleranceSeconds int64  `yaml:"signature_tolerance_seconds"`
	} `yaml:"stripe"`
	// Slack holds the outbound delivery configuration.
	Slack struct {
		WebhookURL string `yaml:"webhook_url"`
		TimeoutMS  int64  `yaml:"timeout_ms"`
	} `yaml:"slack"`
	// Filters holds the event-type allow and deny glob lists.
	Filters struct {
		Allow []string `yaml:"allow"`
		Deny  []string `yaml:"deny"`
	} `yaml:"filters"`
	// Rules holds optional expression rules that suppress delivery of events
	// which already passed the filter.
	Rules []Rule `yaml:"rules"`
}

// LoadConfig loads configuration from a YAML file, expanding environment
// variables in its content, then applies environment overrides and defaults.
// A missing file is not an error: a deployment may be configured through the
// environment alone.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
				return cfg, err
			}
		case os.IsNotExist(err):
			// fall through to env-only configuration
		default:
			return cfg, err
		}
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	normalizeFilters(&cfg)
	return cfg, nil
}

// Validate reports whether the pipeline can run at all. Both the endpoint
// secret and the Slack destination are required.
func (c *Config) Validate() error {
	if c.Stripe.WebhookSecret == "" {
		return fmt.Errorf("%w: stripe webhook secret is required", ErrConfigInvalid)
	}
	if c.Slack.WebhookURL == "" {
		return fmt.Errorf("%w: slack webhook url is required", ErrConfigInvalid)
	}
	return nil
}

// applyEnvOverrides layers the original environment surface on top of the
// file: secret, destination, and comma-separated allow/deny lists.
func applyEnvOverrides(cfg *Config) {
	if secret := os.Getenv("STRIPE_WEBHOOK_SECRET"); secret != "" {
		cfg.Stripe.WebhookSecret = secret
	}
	if url := os.Getenv("SLACK_WEBHOOK_URL"); url != "" {
		cfg.Slack.WebhookURL = url
	}
	if csv, ok := os.LookupEnv("STRIPE_EVENT_ALLOWLIST"); ok {
		cfg.Filters.Allow = ParseCSV(csv)
	}
	if csv, ok := os.LookupEnv("STRIPE_EVENT_DENYLIST"); ok {
		cfg.Filters.Deny = ParseCSV(csv)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeoutMS == 0 {
		cfg.Server.ReadTimeoutMS = 5000
	}
	if cfg.Server.WriteTimeoutMS == 0 {
		cfg.Server.WriteTimeoutMS = 15000
	}
	if cfg.Server.IdleTimeoutMS == 0 {
		cfg.Server.IdleTimeoutMS = 60000
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.Server.MetricsPath == "" {
		cfg.Server.MetricsPath = "/metrics"
	}
	if cfg.Stripe.Path == "" {
		cfg.Stripe.Path = "/webhooks/stripe"
	}
	if cfg.Stripe.ToleranceSeconds == 0 {
		cfg.Stripe.ToleranceSeconds = int64(DefaultTolerance.Seconds())
	}
	if cfg.Slack.TimeoutMS == 0 {
		cfg.Slack.TimeoutMS = 10000
	}
}

func normalizeFilters(cfg *Config) {
	cfg.Filters.Allow = trimGlobs(cfg.Filters.Allow)
	cfg.Filters.Deny = trimGlobs(cfg.Filters.Deny)
}

func trimGlobs(globs []string) []string {
	out := make([]string, 0, len(globs))
	for _, glob := range globs {
		trimmed := strings.TrimSpace(glob)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseCSV splits a comma-separated pattern list, trimming whitespace and
// dropping empty entries.
func ParseCSV(value string) []string {
	return trimGlobs(strings.Split(value, ","))
}
