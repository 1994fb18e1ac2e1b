package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Payments  PaymentsConfig  `yaml:"payments"`
	Wallet    WalletConfig    `yaml:"wallet"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpc_port"`
}

// DatabaseConfig contains PostgreSQL connection settings.
// Driver "memory" runs the wallet on in-process stores.
type DatabaseConfig struct {
	Driver       string `yaml:"driver"` // "postgres" or "memory"
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// JWTConfig holds the identity provider's token verification settings
type JWTConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// PaymentsConfig authenticates the payment confirmation source
type PaymentsConfig struct {
	WebhookKeyHash string `yaml:"webhook_key_hash"` // bcrypt hash of the shared key
}

// WalletConfig contains credit amounts and wallet limits
type WalletConfig struct {
	SignupCredits          int64  `yaml:"signup_credits"`
	VendorSignupCredits    int64  `yaml:"vendor_signup_credits"`
	FreeAppliesPerMonth    int64  `yaml:"free_applies_per_month"`
	MaxHistoryLimit        int32  `yaml:"max_history_limit"`
	CatalogCacheTTLSeconds int    `yaml:"catalog_cache_ttl_seconds"`
	RefundAttempts         int    `yaml:"refund_attempts"`
	RefundBackoffMillis    int    `yaml:"refund_backoff_ms"`
	CatalogSeedFile        string `yaml:"catalog_seed_file"` // memory driver only
}

func (w WalletConfig) CatalogCacheTTL() time.Duration {
	return time.Duration(w.CatalogCacheTTLSeconds) * time.Second
}

func (w WalletConfig) RefundBackoff() time.Duration {
	return time.Duration(w.RefundBackoffMillis) * time.Millisecond
}

// SchedulerConfig contains cron schedule settings (with seconds field)
type SchedulerConfig struct {
	ReconcileBalances     string `yaml:"reconcile_balances"`
	RollupMonthlySpending string `yaml:"rollup_monthly_spending"`
}

// Load reads configuration from a YAML file. A .env file in the working
// directory, if present, is loaded into the environment first.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_DRIVER"); val != "" {
		c.Database.Driver = val
	}
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Payments
	if val := os.Getenv("PAYMENT_WEBHOOK_KEY_HASH"); val != "" {
		c.Payments.WebhookKeyHash = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("GRPC_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.GRPCPort)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Wallet
	if val := os.Getenv("WALLET_SIGNUP_CREDITS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Wallet.SignupCredits)
	}
	if val := os.Getenv("WALLET_FREE_APPLIES_PER_MONTH"); val != "" {
		fmt.Sscanf(val, "%d", &c.Wallet.FreeAppliesPerMonth)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.Server.GRPCPort)
	}

	// Database validation
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database driver: %q", c.Database.Driver)
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	// Wallet defaults
	if c.Wallet.SignupCredits < 0 || c.Wallet.VendorSignupCredits < 0 || c.Wallet.FreeAppliesPerMonth < 0 {
		return fmt.Errorf("wallet credit amounts must not be negative")
	}
	if c.Wallet.SignupCredits == 0 {
		c.Wallet.SignupCredits = 100
	}
	if c.Wallet.VendorSignupCredits == 0 {
		c.Wallet.VendorSignupCredits = 2000
	}
	if c.Wallet.FreeAppliesPerMonth == 0 {
		c.Wallet.FreeAppliesPerMonth = 5
	}
	if c.Wallet.MaxHistoryLimit <= 0 {
		c.Wallet.MaxHistoryLimit = 100
	}
	if c.Wallet.CatalogCacheTTLSeconds == 0 {
		c.Wallet.CatalogCacheTTLSeconds = 300
	}
	if c.Wallet.RefundAttempts <= 0 {
		c.Wallet.RefundAttempts = 3
	}
	if c.Wallet.RefundBackoffMillis == 0 {
		c.Wallet.RefundBackoffMillis = 200
	}

	// Scheduler defaults
	if c.Scheduler.ReconcileBalances == "" {
		c.Scheduler.ReconcileBalances = "0 15 * * * *" // hourly at :15
	}
	if c.Scheduler.RollupMonthlySpending == "" {
		c.Scheduler.RollupMonthlySpending = "0 30 1 * * *" // 1:30 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetGRPCAddress returns the gRPC listen address, or "" when disabled
func (c *Config) GetGRPCAddress() string {
	if c.Server.GRPCPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}
