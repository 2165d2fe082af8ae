package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/cold-outreach/")
	v.AddConfigPath("$HOME/.cold-outreach")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.listen_address", "0.0.0.0:8080")
	v.SetDefault("server.cors_origins", []string{"*"})

	// Lead store defaults
	v.SetDefault("leads.snapshot_path", "./data/leads.json")

	// Outbound SMTP defaults
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 465)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from_name", "")

	// Sending defaults
	v.SetDefault("send.emails_per_minute", 5)
	v.SetDefault("send.daily_cap", 50)

	// Verification defaults
	v.SetDefault("verify.strategy", "smart")
	v.SetDefault("verify.from_email", "verify@example.com")
	v.SetDefault("verify.helo_domain", "")
	v.SetDefault("verify.timeout", "15s")
	v.SetDefault("verify.delay", "1.5s")
	v.SetDefault("verify.catch_all_samples", 2)
	v.SetDefault("verify.trusted_domains", []string{})

	// Verification provider defaults
	v.SetDefault("providers.order", []string{"trumail", "hunter", "kickbox", "abstractapi"})
	v.SetDefault("providers.timeout", "15s")
	v.SetDefault("providers.trumail.api_url", "https://api.trumail.io/v2/lookups/json")
	v.SetDefault("providers.hunter.api_key", "")
	v.SetDefault("providers.kickbox.api_key", "")
	v.SetDefault("providers.abstractapi.api_key", "")

	// Scheduler defaults
	v.SetDefault("scheduler.store_type", "sqlite")
	v.SetDefault("scheduler.sqlite_path", "./data/scheduled_jobs.db")
	v.SetDefault("scheduler.mysql_dsn", "user:password@tcp(localhost:3306)/cold_outreach")
	v.SetDefault("scheduler.crash_policy", "remove_before_send")

	// Send time defaults
	v.SetDefault("sendtime.timezone", "America/New_York")
	v.SetDefault("sendtime.hours", []int{10, 14})
	v.SetDefault("sendtime.weekdays", []int{2, 3, 4})

	// Bulk operation defaults
	v.SetDefault("bulk.workers", 3)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetIntSlice gets an int slice value from the configuration
func (c *Config) GetIntSlice(key string) []int {
	return c.v.GetIntSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
