// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"course-payment-service/internal/domain/model"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
	// Fixed-window rate limit applied to the public verify endpoint,
	// per client IP. Zero disables limiting.
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	APIKey     string        `yaml:"api_key"`
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type GatewayConfig struct {
	KeyID string `yaml:"key_id"`
	// KeySecret signs checkout confirmations (the MAC secret) and
	// authenticates API calls.
	KeySecret string `yaml:"key_secret"`
}

type LedgerConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	// Optional value for the x-make-apikey header.
	APIKey string `yaml:"api_key"`
}

type InstallmentConfig struct {
	Policy model.InstallmentPolicy `yaml:"policy"` // fixed_test|derived_remainder|pre_provisioned

	// fixed_test: minor-unit amount charged per installment.
	FixedAmountPaise int64 `yaml:"fixed_amount_paise"`
	// derived_remainder: rupees already captured upfront; the rest is split
	// across Count installments.
	UpfrontAmount int64 `yaml:"upfront_amount"`
	// pre_provisioned: plan already created at the gateway.
	PlanID string `yaml:"plan_id"`

	Count    int    `yaml:"count"`    // number of installments
	Period   string `yaml:"period"`   // plan billing period, e.g. "weekly"
	Interval int    `yaml:"interval"` // charge every N periods

	Schedule       model.SchedulePolicy `yaml:"schedule"` // days_ahead|next_month
	StartDaysAhead int                  `yaml:"start_days_ahead"`
}

type ProvisioningConfig struct {
	// Idempotent keys provisioning by (order_id, payment_id) and treats
	// repeats as no-ops. Off by default: the gateway checkout flow does not
	// replay confirmations in normal operation.
	Idempotent bool `yaml:"idempotent"`
}

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Log          LogConfig          `yaml:"log"`
	Admin        AdminConfig        `yaml:"admin"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Gateway      GatewayConfig      `yaml:"gateway"`
	Ledger       LedgerConfig       `yaml:"ledger"`
	Installment  InstallmentConfig  `yaml:"installment"`
	Provisioning ProvisioningConfig `yaml:"provisioning"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateWindow <= 0 {
		cfg.Server.RateWindow = time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	if cfg.Installment.Policy == "" {
		cfg.Installment.Policy = model.PolicyFixedTest
	}
	if cfg.Installment.FixedAmountPaise <= 0 {
		cfg.Installment.FixedAmountPaise = 150
	}
	if cfg.Installment.Count <= 0 {
		cfg.Installment.Count = 2
	}
	if cfg.Installment.Period == "" {
		cfg.Installment.Period = "weekly"
	}
	if cfg.Installment.Interval <= 0 {
		cfg.Installment.Interval = 2
	}
	if cfg.Installment.Schedule == "" {
		cfg.Installment.Schedule = model.ScheduleDaysAhead
	}
	if cfg.Installment.StartDaysAhead <= 0 {
		cfg.Installment.StartDaysAhead = 14
	}

	// Minimal validation
	if cfg.Gateway.KeySecret == "" {
		return nil, errors.New("gateway.key_secret is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	switch cfg.Installment.Policy {
	case model.PolicyFixedTest:
		// defaults above are enough
	case model.PolicyDerivedRemainder:
		if cfg.Installment.UpfrontAmount <= 0 {
			return nil, errors.New("installment.upfront_amount is required for the derived_remainder policy")
		}
	case model.PolicyPreProvisioned:
		if cfg.Installment.PlanID == "" {
			return nil, errors.New("installment.plan_id is required for the pre_provisioned policy")
		}
	default:
		return nil, fmt.Errorf("unknown installment.policy %q", cfg.Installment.Policy)
	}
	switch cfg.Installment.Schedule {
	case model.ScheduleDaysAhead, model.ScheduleNextMonth:
	default:
		return nil, fmt.Errorf("unknown installment.schedule %q", cfg.Installment.Schedule)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
