package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
)

const developmentSecret = "development-secret"

type Config struct {
	Env               string `env:"ENVIRONMENT" envDefault:"development"`
	ServerPort        int    `env:"SERVER_PORT" envDefault:"3000"`
	SecretAccessToken string `env:"SECRET_ACCESS_TOKEN"`

	Database struct {
		Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
		DSN    string `env:"DATABASE_DSN" envDefault:"vitalwatch.sqlite"`
	}
	Delivery struct {
		Timeout time.Duration `env:"DELIVERY_TIMEOUT" envDefault:"10s"`
	}
	Expo struct {
		PushURL     string `env:"EXPO_PUSH_URL" envDefault:"https://exp.host/--/api/v2/push/send"`
		AccessToken string `env:"EXPO_ACCESS_TOKEN"`
	}
	Mailgun struct {
		Domain      string `env:"MAILGUN_DOMAIN"`
		APIKey      string `env:"MAILGUN_API_KEY"`
		SenderFrom  string `env:"MAILGUN_SENDER_FROM"`
		TimeoutSecs int    `env:"MAILGUN_TIMEOUT_SECS" envDefault:"10"`
	}
}

func NewConfig(log *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if cfg.usingDevelopmentSecret() {
		log.Sugar().Info("SECRET_ACCESS_TOKEN is unset, using the development secret")
	}
	return cfg, nil
}

// Load parses the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg.SecretAccessToken == "" {
		if cfg.Env != "development" {
			return errors.New("SECRET_ACCESS_TOKEN envvar must be populated outside development")
		}
		cfg.SecretAccessToken = developmentSecret
	}

	switch cfg.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q, expected one of sqlite, postgres, mysql", cfg.Database.Driver)
	}
	if cfg.Database.DSN == "" {
		return errors.New("DATABASE_DSN envvar must be populated")
	}
	if cfg.ServerPort <= 0 {
		return fmt.Errorf("invalid SERVER_PORT %d", cfg.ServerPort)
	}
	if cfg.Delivery.Timeout <= 0 {
		return fmt.Errorf("invalid DELIVERY_TIMEOUT %s", cfg.Delivery.Timeout)
	}
	return nil
}

func (cfg *Config) usingDevelopmentSecret() bool {
	return cfg.SecretAccessToken == developmentSecret
}
