// Package config handles loading and validation of tradewatch.yaml project
// configuration. Secrets are never read from yaml; they come from the
// environment only.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oquants/tradewatch/internal/poll"
	"github.com/oquants/tradewatch/pkg/types"
)

// Environment variables recognized for secrets. GMAIL_APP_PASSWORD is the
// shared fallback for both, matching the single Gmail app password the
// original deployment used for reading and sending.
const (
	EnvMailPassword = "TRADEWATCH_MAIL_PASSWORD"
	EnvSMTPPassword = "TRADEWATCH_SMTP_PASSWORD"
	EnvGmailAppPass = "GMAIL_APP_PASSWORD"
)

// Load reads and parses tradewatch.yaml from the given directory.
func Load(dir string) (*types.ProjectConfig, error) {
	path := filepath.Join(dir, "tradewatch.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg types.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault is Load, except a missing config file yields an empty config
// so flag-only invocations work without a tradewatch.yaml.
func LoadOrDefault(dir string) (*types.ProjectConfig, error) {
	cfg, err := Load(dir)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		cfg = &types.ProjectConfig{}
		applyEnv(cfg)
		return cfg, nil
	}
	return cfg, err
}

func applyEnv(cfg *types.ProjectConfig) {
	cfg.Mail.Password = getEnv(EnvMailPassword, getEnv(EnvGmailAppPass, ""))
	for i := range cfg.Notify {
		if cfg.Notify[i].Type == types.SinkEmail && cfg.Notify[i].SMTP != nil {
			cfg.Notify[i].SMTP.Password = getEnv(EnvSMTPPassword, getEnv(EnvGmailAppPass, ""))
		}
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func validate(cfg *types.ProjectConfig) error {
	for _, sink := range cfg.Notify {
		switch sink.Type {
		case types.SinkConsole:
		case types.SinkWebhook:
			if sink.URL == "" {
				return fmt.Errorf("webhook sink requires url")
			}
		case types.SinkFile:
			if sink.Path == "" {
				return fmt.Errorf("file sink requires path")
			}
		case types.SinkSNS:
			if sink.TopicARN == "" {
				return fmt.Errorf("sns sink requires topicArn")
			}
		case types.SinkEmail:
			if sink.SMTP == nil || len(sink.SMTP.To) == 0 {
				return fmt.Errorf("email sink requires smtp recipients")
			}
		default:
			return fmt.Errorf("unknown sink type %q", sink.Type)
		}
	}
	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		return fmt.Errorf("gateway port %d out of range", cfg.Gateway.Port)
	}
	return nil
}

// GatewayPort resolves the gateway API port: an explicit port wins, else the
// live/paper trading convention applies.
func GatewayPort(cfg types.GatewayConfig) int {
	if cfg.Port != 0 {
		return cfg.Port
	}
	if cfg.Paper {
		return types.PaperGatewayPort
	}
	return types.LiveGatewayPort
}

// GatewayPolicy builds the validated retry policy for the gateway readiness
// run, falling back to defaults for unset knobs.
func GatewayPolicy(cfg types.GatewayConfig) (types.RetryPolicy, error) {
	policy := poll.DefaultGatewayPolicy()
	if cfg.MaxAttempts != 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.Interval != "" {
		d, err := time.ParseDuration(cfg.Interval)
		if err != nil {
			return policy, fmt.Errorf("gateway interval: %w", err)
		}
		policy.Interval = d
	}
	return policy, poll.Validate(policy)
}

// MailPolicy builds the validated retry policy for the mailbox polling run.
func MailPolicy(cfg types.MailConfig) (types.RetryPolicy, error) {
	policy := poll.DefaultMailPolicy()
	if cfg.MaxAttempts != 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.Interval != "" {
		d, err := time.ParseDuration(cfg.Interval)
		if err != nil {
			return policy, fmt.Errorf("mail interval: %w", err)
		}
		policy.Interval = d
	}
	if cfg.SettleDelay != "" {
		d, err := time.ParseDuration(cfg.SettleDelay)
		if err != nil {
			return policy, fmt.Errorf("mail settleDelay: %w", err)
		}
		policy.Settle = &types.SettlePolicy{
			Delay:              d,
			RequireSecondProbe: cfg.SettleProbe,
		}
	}
	return policy, poll.Validate(policy)
}

// Warmup resolves the fixed warm-up period after launching the gateway.
func Warmup(cfg types.GatewayConfig) (time.Duration, error) {
	if cfg.Warmup == "" {
		return 45 * time.Second, nil
	}
	d, err := time.ParseDuration(cfg.Warmup)
	if err != nil {
		return 0, fmt.Errorf("gateway warmup: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("gateway warmup must be >= 0, got %s", d)
	}
	return d, nil
}
