// Package config loads service configuration from environment variables or a
// local .env file so main stays lean.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config stores all configuration for the application. Values are read by
// viper from the environment, with a .env file as a development convenience.
type Config struct {
	ServerAddr       string        `mapstructure:"SERVER_ADDR"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	HTTPWriteTimeout time.Duration `mapstructure:"HTTP_WRITE_TIMEOUT"`
	HTTPIdleTimeout  time.Duration `mapstructure:"HTTP_IDLE_TIMEOUT"`

	PostgresDSN string `mapstructure:"POSTGRES_DSN"`
	RedisURL    string `mapstructure:"REDIS_URL"`
	AMQPURL     string `mapstructure:"AMQP_URL"`

	ProfileAPIURL         string `mapstructure:"PROFILE_API_URL"`
	ProfileAPIServiceType string `mapstructure:"PROFILE_API_SERVICE_TYPE"`
	UIBaseURL             string `mapstructure:"UI_BASE_URL"`

	JWTSigningKey string `mapstructure:"JWT_SIGNING_KEY"`
	JWTIssuer     string `mapstructure:"JWT_ISSUER"`
	JWTAudience   string `mapstructure:"JWT_AUDIENCE"`

	SeasonEndDay           int `mapstructure:"SEASON_END_DAY"`
	SeasonEndMonth         int `mapstructure:"SEASON_END_MONTH"`
	FullSeasonStartMonth   int `mapstructure:"FULL_SEASON_START_MONTH"`
	MembershipNumberLength int `mapstructure:"MEMBERSHIP_NUMBER_LENGTH"`

	GDPREnabled     bool   `mapstructure:"GDPR_API_ENABLED"`
	GDPRQueryScope  string `mapstructure:"GDPR_QUERY_SCOPE"`
	GDPRDeleteScope string `mapstructure:"GDPR_DELETE_SCOPE"`

	RetentionSchedule string        `mapstructure:"RETENTION_SCHEDULE"`
	ShutdownTimeout   time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

// Load reads configuration from the environment. A missing .env file is not
// an error; explicit environment variables always win.
func Load() (Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_ADDR", ":8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_WRITE_TIMEOUT", 30*time.Second)
	viper.SetDefault("HTTP_IDLE_TIMEOUT", 2*time.Minute)
	viper.SetDefault("PROFILE_API_SERVICE_TYPE", "YOUTH_MEMBERSHIP")
	viper.SetDefault("UI_BASE_URL", "http://localhost:3000")
	viper.SetDefault("JWT_SIGNING_KEY", "dev-secret-key-change-in-production")
	viper.SetDefault("JWT_ISSUER", "jassari")
	viper.SetDefault("JWT_AUDIENCE", "jassari")
	viper.SetDefault("SEASON_END_DAY", 31)
	viper.SetDefault("SEASON_END_MONTH", 8)
	viper.SetDefault("FULL_SEASON_START_MONTH", 5)
	viper.SetDefault("MEMBERSHIP_NUMBER_LENGTH", 6)
	viper.SetDefault("GDPR_API_ENABLED", true)
	viper.SetDefault("GDPR_QUERY_SCOPE", "gdprquery")
	viper.SetDefault("GDPR_DELETE_SCOPE", "gdprdelete")
	viper.SetDefault("RETENTION_SCHEDULE", "0 3 * * *")
	viper.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)

	for _, key := range []string{
		"SERVER_ADDR", "LOG_LEVEL", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT",
		"POSTGRES_DSN", "REDIS_URL", "AMQP_URL",
		"PROFILE_API_URL", "PROFILE_API_SERVICE_TYPE", "UI_BASE_URL",
		"JWT_SIGNING_KEY", "JWT_ISSUER", "JWT_AUDIENCE",
		"SEASON_END_DAY", "SEASON_END_MONTH", "FULL_SEASON_START_MONTH",
		"MEMBERSHIP_NUMBER_LENGTH",
		"GDPR_API_ENABLED", "GDPR_QUERY_SCOPE", "GDPR_DELETE_SCOPE",
		"RETENTION_SCHEDULE", "SHUTDOWN_TIMEOUT",
	} {
		_ = viper.BindEnv(key)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.SeasonEndDay < 1 || c.SeasonEndDay > 31 {
		return fmt.Errorf("season end day out of range: %d", c.SeasonEndDay)
	}
	if c.SeasonEndMonth < 1 || c.SeasonEndMonth > 12 {
		return fmt.Errorf("season end month out of range: %d", c.SeasonEndMonth)
	}
	if c.FullSeasonStartMonth < 1 || c.FullSeasonStartMonth > 12 {
		return fmt.Errorf("full season start month out of range: %d", c.FullSeasonStartMonth)
	}
	if c.MembershipNumberLength < 1 {
		return fmt.Errorf("membership number length must be positive: %d", c.MembershipNumberLength)
	}
	return nil
}
