// Package config handles loading and validation of application configuration
// from environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/fleetdesk/fleetdesk-backend/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	minJWTSecretLength = 32
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
}

// DatabaseConfig holds PostgreSQL database connection details.
type DatabaseConfig struct {
	Host         string `mapstructure:"HOST" yaml:"host"`
	Port         int    `mapstructure:"PORT" yaml:"port"`
	User         string `mapstructure:"USER" yaml:"user"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	Name         string `mapstructure:"NAME" yaml:"name"`
	SSLMode      string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"MAX_OPEN_CONNS" yaml:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"MAX_IDLE_CONNS" yaml:"max_idle_conns"`
	ConnMaxLife  string `mapstructure:"CONN_MAX_LIFE" yaml:"conn_max_life"`
}

// URL returns a postgres:// connection URL suitable for golang-migrate and
// other URL-based database tools.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
	)
}

// RedisConfig holds Redis connection details for the event publisher.
type RedisConfig struct {
	Address  string `mapstructure:"ADDRESS" yaml:"address"`
	Password string `mapstructure:"PASSWORD" yaml:"password"`
	DB       int    `mapstructure:"DB" yaml:"db"`
	UseTLS   bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
}

// AuthConfig holds settings for validating Supabase-issued access tokens.
type AuthConfig struct {
	SupabaseJWTSecret string `mapstructure:"SUPABASE_JWT_SECRET" yaml:"supabase_jwt_secret"`
}

// PayoutConfig holds the commission schedule used by the payout engine.
// Defaults match the business formula: 30% of revenue up to the daily target,
// 70% of revenue above it.
type PayoutConfig struct {
	TargetAmount  string `mapstructure:"TARGET_AMOUNT" yaml:"target_amount"`
	BaseRate      string `mapstructure:"BASE_RATE" yaml:"base_rate"`
	IncentiveRate string `mapstructure:"INCENTIVE_RATE" yaml:"incentive_rate"`
	// Timezone is the IANA location used to resolve the daily trip window.
	Timezone string `mapstructure:"TIMEZONE" yaml:"timezone"`
}

// TargetAmountDecimal returns the parsed target amount.
func (p *PayoutConfig) TargetAmountDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(p.TargetAmount)
}

// BaseRateDecimal returns the parsed base commission rate.
func (p *PayoutConfig) BaseRateDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(p.BaseRate)
}

// IncentiveRateDecimal returns the parsed incentive commission rate.
func (p *PayoutConfig) IncentiveRateDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(p.IncentiveRate)
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"SERVER" yaml:"server"`
	Database DatabaseConfig `mapstructure:"DATABASE" yaml:"database"`
	Redis    RedisConfig    `mapstructure:"REDIS" yaml:"redis"`
	Auth     AuthConfig     `mapstructure:"AUTH" yaml:"auth"`
	Payout   PayoutConfig   `mapstructure:"PAYOUT" yaml:"payout"`
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables using Viper,
// sets defaults, unmarshals the configuration, and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "fleetdesk_dev")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_OPEN_CONNS", 5)
	v.SetDefault("DATABASE.MAX_IDLE_CONNS", 2)
	v.SetDefault("DATABASE.CONN_MAX_LIFE", "1h")
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("PAYOUT.TARGET_AMOUNT", "2250")
	v.SetDefault("PAYOUT.BASE_RATE", "0.30")
	v.SetDefault("PAYOUT.INCENTIVE_RATE", "0.70")
	v.SetDefault("PAYOUT.TIMEZONE", "Local")
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"DATABASE.HOST", "DB_HOST"},
		{"DATABASE.PORT", "DB_PORT"},
		{"DATABASE.USER", "DB_USER"},
		{"DATABASE.PASSWORD", "DB_PASSWORD"},
		{"DATABASE.NAME", "DB_NAME"},
		{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		{"AUTH.SUPABASE_JWT_SECRET", "SUPABASE_JWT_SECRET"},
		{"PAYOUT.TARGET_AMOUNT", "PAYOUT_TARGET_AMOUNT"},
		{"PAYOUT.BASE_RATE", "PAYOUT_BASE_RATE"},
		{"PAYOUT.INCENTIVE_RATE", "PAYOUT_INCENTIVE_RATE"},
		{"PAYOUT.TIMEZONE", "PAYOUT_TIMEZONE"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", v.GetString("SERVER.ENVIRONMENT"),
		"server_port", v.GetString("SERVER.PORT"),
		"db_host", v.GetString("DATABASE.HOST"),
		"payout_target", v.GetString("PAYOUT.TARGET_AMOUNT"),
	)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("Configuration validated successfully")
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	if cfg.Database.Host == "" || cfg.Database.Name == "" {
		return fmt.Errorf("database host and name are required")
	}

	if cfg.IsProduction() {
		if len(cfg.Auth.SupabaseJWTSecret) < minJWTSecretLength {
			return fmt.Errorf("SUPABASE_JWT_SECRET must be at least %d characters long", minJWTSecretLength)
		}
		if cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("database SSL must be enabled in production")
		}
	}

	target, err := cfg.Payout.TargetAmountDecimal()
	if err != nil {
		return fmt.Errorf("invalid payout target amount %q: %w", cfg.Payout.TargetAmount, err)
	}
	if target.IsNegative() {
		return fmt.Errorf("payout target amount cannot be negative")
	}
	for name, parse := range map[string]func() (decimal.Decimal, error){
		"base rate":      cfg.Payout.BaseRateDecimal,
		"incentive rate": cfg.Payout.IncentiveRateDecimal,
	} {
		rate, err := parse()
		if err != nil {
			return fmt.Errorf("invalid payout %s: %w", name, err)
		}
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("payout %s must be between 0 and 1", name)
		}
	}

	return nil
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
