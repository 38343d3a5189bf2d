package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"

	"github.com/Tiliavir/paymo-paybot/internal/model"
	"github.com/Tiliavir/paymo-paybot/internal/payroll"
	"github.com/Tiliavir/paymo-paybot/internal/timecalc"
)

// Config is the process configuration, read from the environment once at startup.
type Config struct {
	LogLevel    string `env:"LOG_LEVEL, default=info"`
	LogPretty   bool   `env:"LOG_PRETTY, default=false"`
	Timezone    string `env:"PAY_TIMEZONE, default=cst"`
	MetricsAddr string `env:"METRICS_ADDR"`

	Paymo    PaymoConfig
	Telegram TelegramConfig
	Redis    RedisConfig
}

// PaymoConfig holds the time-tracking API settings.
type PaymoConfig struct {
	BaseURL string `env:"PAYMO_BASE_URL, default=https://app.paymoapp.com"`
	// APIKey is sent as the basic-auth user with an empty password.
	APIKey string `env:"PAYMO_API_KEY"`
	// AccessToken is an OAuth2 bearer token; it takes precedence over APIKey.
	AccessToken string        `env:"PAYMO_ACCESS_TOKEN"`
	Timeout     time.Duration `env:"PAYMO_TIMEOUT, default=30s"`
}

// TelegramConfig holds the chat bot settings.
type TelegramConfig struct {
	Token string `env:"TELEGRAM_BOT_TOKEN"`
	// AllowedChats limits who may query pay figures. Empty allows any chat.
	AllowedChats []int64 `env:"TELEGRAM_ALLOWED_CHATS"`
}

// RedisConfig configures the optional user-id cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	DB       int           `env:"REDIS_DB, default=0"`
	CacheTTL time.Duration `env:"USER_CACHE_TTL, default=24h"`
}

// Load reads the process configuration from the environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads the process configuration from l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if _, err := timecalc.ParseZone(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("PAY_TIMEZONE: %w", err)
	}
	return &cfg, nil
}

// Location returns the configured default pay-period offset.
func (c *Config) Location() *time.Location {
	loc, err := timecalc.ParseZone(c.Timezone)
	if err != nil {
		return timecalc.CST
	}
	return loc
}

// CredentialsSet reports whether any Paymo credential is configured.
func (c PaymoConfig) CredentialsSet() bool {
	return c.APIKey != "" || c.AccessToken != ""
}

// payEnv mirrors the pay parameters as they appear in the environment.
type payEnv struct {
	BaseWeeklyPay float64 `env:"BASE_WEEKLY_PAY, required" validate:"gte=0"`
	OvertimeRate  float64 `env:"OVERTIME_RATE, required" validate:"gte=0"`
	TaxRate       float64 `env:"TAX_RATE, required" validate:"gte=0,lte=1"`
}

var envNames = map[string]string{
	"BaseWeeklyPay": "BASE_WEEKLY_PAY",
	"OvertimeRate":  "OVERTIME_RATE",
	"TaxRate":       "TAX_RATE",
}

// PayLoader reads pay parameters on every call, so a computation always sees
// the values present when it starts.
type PayLoader struct {
	Lookuper envconfig.Lookuper
	validate *validator.Validate
}

// NewPayLoader returns a PayLoader reading from l, or from the process
// environment when l is nil.
func NewPayLoader(l envconfig.Lookuper) *PayLoader {
	if l == nil {
		l = envconfig.OsLookuper()
	}
	return &PayLoader{Lookuper: l, validate: validator.New()}
}

// LoadPayConfig returns the pay parameters or a *model.ConfigurationError when
// any is missing, non-numeric or out of range.
func (p *PayLoader) LoadPayConfig(ctx context.Context) (payroll.PayConfig, error) {
	var env payEnv
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &env, Lookuper: p.Lookuper}); err != nil {
		return payroll.PayConfig{}, &model.ConfigurationError{Err: err}
	}

	if err := p.validate.Struct(env); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return payroll.PayConfig{}, &model.ConfigurationError{Field: envNames[ve[0].Field()], Err: errors.New(fieldError(ve[0]))}
		}
		return payroll.PayConfig{}, &model.ConfigurationError{Err: err}
	}

	cfg := payroll.PayConfig{
		BaseWeeklyPay: env.BaseWeeklyPay,
		OvertimeRate:  env.OvertimeRate,
		TaxRate:       env.TaxRate,
	}
	if err := cfg.Validate(); err != nil {
		return payroll.PayConfig{}, err
	}
	return cfg, nil
}

func fieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return fmt.Sprintf("failed validation (%s)", strings.ToLower(fe.Tag()))
	}
}
