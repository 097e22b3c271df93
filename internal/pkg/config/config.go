// internal/pkg/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// Config holds all application configuration
type Config struct {
	// Application
	App AppConfig

	// Database
	Database DatabaseConfig

	// Wallet
	Wallet WalletConfig

	// Query
	Query QueryConfig

	// AWS
	AWS AWSConfig
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Version     string
	LogLevel    string
	LogFormat   string // json, text
	Debug       bool
}

// DatabaseConfig holds OIPA database configuration
type DatabaseConfig struct {
	Host            string
	Port            int
	ServiceName     string
	Username        string
	Password        string
	DefaultSchema   string
	PoolMinSize     int
	PoolMaxSize     int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
	RetryCount      int
	RetryDelay      time.Duration
	LogBindParams   bool
}

// WalletConfig holds Oracle wallet configuration. A non-empty Location
// switches the connection strategy from direct to wallet.
type WalletConfig struct {
	Location   string
	Passphrase string
}

// QueryConfig holds query execution limits
type QueryConfig struct {
	Timeout         time.Duration
	DefaultMaxRows  int
	MaxQueryResults int
}

// AWSConfig holds AWS configuration for secrets resolution
type AWSConfig struct {
	Region     string
	SecretName string
	UseSecrets bool
}

// UsesWallet reports whether wallet-based connectivity is configured.
func (c *Config) UsesWallet() bool {
	return c.Wallet.Location != ""
}

// Load loads configuration from environment variables
func Load(logger *slog.Logger) (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Load .env file in development
	if env == "development" || env == "local" {
		if err := godotenv.Load(); err != nil {
			logger.Warn("no .env file found, using environment variables",
				slog.String("error", err.Error()))
		} else {
			logger.Info(".env file loaded successfully")
		}
	}

	viper.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "oipa-mcp"),
			Environment: env,
			Version:     getEnv("APP_VERSION", "dev"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "json"),
			Debug:       getBoolEnv("APP_DEBUG", env == "development"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("OIPA_DB_HOST", "localhost"),
			Port:            getIntEnv("OIPA_DB_PORT", 1521),
			ServiceName:     getEnv("OIPA_DB_SERVICE_NAME", ""),
			Username:        getEnv("OIPA_DB_USERNAME", ""),
			Password:        getEnv("OIPA_DB_PASSWORD", ""),
			DefaultSchema:   getEnv("OIPA_DB_DEFAULT_SCHEMA", ""),
			PoolMinSize:     getIntEnv("DB_POOL_MIN_SIZE", 1),
			PoolMaxSize:     getIntEnv("DB_POOL_MAX_SIZE", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
			ConnectTimeout:  getDurationEnv("DB_POOL_TIMEOUT", 30*time.Second),
			RetryCount:      getIntEnv("DB_RETRY_COUNT", 3),
			RetryDelay:      getDurationEnv("DB_RETRY_DELAY", 2*time.Second),
			LogBindParams:   getBoolEnv("DB_LOG_BIND_PARAMS", env == "development"),
		},
		Wallet: WalletConfig{
			Location:   getEnv("OIPA_DB_WALLET_LOCATION", ""),
			Passphrase: getEnv("OIPA_DB_WALLET_PASSWORD", ""),
		},
		Query: QueryConfig{
			Timeout:         getDurationEnv("QUERY_TIMEOUT", 30*time.Second),
			DefaultMaxRows:  getIntEnv("DEFAULT_MAX_ROWS", 100),
			MaxQueryResults: getIntEnv("MAX_QUERY_RESULTS", 1000),
		},
		AWS: AWSConfig{
			Region:     getEnv("AWS_REGION", "us-east-1"),
			SecretName: getEnv("AWS_SECRET_NAME", ""),
			UseSecrets: getBoolEnv("AWS_USE_SECRETS", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration. All failures are reported together
// rather than one at a time.
func (c *Config) Validate() error {
	var err error

	if c.Database.Host == "" {
		err = multierr.Append(err, ErrMissingHost)
	}
	if c.Database.ServiceName == "" {
		err = multierr.Append(err, ErrMissingServiceName)
	}
	if c.Database.Username == "" {
		err = multierr.Append(err, ErrMissingUsername)
	}
	// Password may arrive later through Secrets Manager.
	if c.Database.Password == "" && !c.AWS.UseSecrets {
		err = multierr.Append(err, ErrMissingPassword)
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("%w: %d", ErrInvalidPort, c.Database.Port))
	}
	if c.Database.PoolMaxSize <= 0 || c.Database.PoolMaxSize < c.Database.PoolMinSize {
		err = multierr.Append(err, ErrInvalidPoolBounds)
	}
	if c.Query.Timeout <= 0 {
		err = multierr.Append(err, ErrInvalidQueryTimeout)
	}
	if c.Query.MaxQueryResults <= 0 {
		err = multierr.Append(err, ErrInvalidResultCap)
	}
	if c.Query.DefaultMaxRows <= 0 {
		err = multierr.Append(err, ErrInvalidDefaultRows)
	}
	if c.AWS.UseSecrets && c.AWS.SecretName == "" {
		err = multierr.Append(err, ErrMissingSecretName)
	}

	return err
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "local"
}

// Env helpers. Each registers its default with viper and reads the value
// back through it, so AutomaticEnv supplies overrides.

func getEnv(key, defaultValue string) string {
	viper.SetDefault(key, defaultValue)
	return viper.GetString(key)
}

func getBoolEnv(key string, defaultValue bool) bool {
	viper.SetDefault(key, defaultValue)
	return viper.GetBool(key)
}

func getIntEnv(key string, defaultValue int) int {
	viper.SetDefault(key, defaultValue)
	return viper.GetInt(key)
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	viper.SetDefault(key, defaultValue)
	return viper.GetDuration(key)
}
