package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invobase/invobase/internal/types"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment   DeploymentConfig   `validate:"required"`
	Logging      LoggingConfig      `validate:"required"`
	Postgres     PostgresConfig     `validate:"required"`
	Cache        CacheConfig        `validate:"required"`
	Notification NotificationConfig `validate:"required"`
	Email        EmailConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled bool
	// StatsTTL bounds how stale a cached tenant usage summary may be.
	StatsTTL time.Duration
}

type NotificationConfig struct {
	Topic string `validate:"required"`
	// Delivery is at-least-once: MaxAttempts total deliveries (the first
	// one included) with InitialInterval between them. A message that
	// still fails after the last attempt is logged and dropped, never
	// redelivered.
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration
}

type EmailConfig struct {
	Enabled     bool
	APIKey      string
	FromAddress string
	ReplyTo     string
}

func NewConfig() (*Configuration, error) {
	// .env is optional; deployed environments set variables directly
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/invobase")

	v.SetEnvPrefix("INVOBASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.statsttl", 5*time.Minute)
	v.SetDefault("notification.topic", "notifications")
	v.SetDefault("notification.maxattempts", 3)
	v.SetDefault("notification.initialinterval", 60*time.Second)
	v.SetDefault("notification.maxinterval", 60*time.Second)
	v.SetDefault("notification.multiplier", 1.0)
	v.SetDefault("notification.maxelapsedtime", 5*time.Minute)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// and tests.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelInfo},
		Cache: CacheConfig{
			Enabled:  true,
			StatsTTL: 5 * time.Minute,
		},
		Notification: NotificationConfig{
			Topic:           "notifications",
			MaxAttempts:     3,
			InitialInterval: 60 * time.Second,
			MaxInterval:     60 * time.Second,
			Multiplier:      1.0,
			MaxElapsedTime:  5 * time.Minute,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
