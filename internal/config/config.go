// Package config reads the process configuration from the environment.
// When DEBUG=1 a .env file in the working directory is loaded first.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug     bool            `env:"DEBUG" env-default:"false"`
	HTTP      HTTPConfig      `env-prefix:"HTTP_"`
	GRPC      GRPCConfig      `env-prefix:"GRPC_"`
	Postgres  PostgresConfig  `env-prefix:"POSTGRES_"`
	Kafka     KafkaConfig     `env-prefix:"KAFKA_"`
	S3        S3Config        `env-prefix:"S3_"`
	JWT       JWTConfig       `env-prefix:"JWT_"`
	RateLimit RateLimitConfig `env-prefix:"RATE_LIMIT_"`
}

type HTTPConfig struct {
	Host    string        `env:"HOST" env-default:"0.0.0.0"`
	Port    string        `env:"PORT" env-default:"8080"`
	Timeout time.Duration `env:"TIMEOUT" env-default:"15s"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// GRPCConfig is the health-check listener; an empty port disables it.
type GRPCConfig struct {
	Host string `env:"HOST" env-default:"0.0.0.0"`
	Port string `env:"PORT" env-default:"8081"`
}

type PostgresConfig struct {
	Host     string `env:"HOST" env-default:"127.0.0.1"`
	Port     string `env:"PORT" env-default:"5432"`
	User     string `env:"USER" env-default:"postgres"`
	Password string `env:"PASSWORD" env-default:"postgres"`
	Database string `env:"DATABASE" env-default:"backoffice"`
}

// KafkaConfig is disabled when Host is empty.
type KafkaConfig struct {
	Host  string `env:"HOST"`
	Port  string `env:"PORT" env-default:"9092"`
	Topic string `env:"TOPIC" env-default:"backoffice"`
	Group string `env:"GROUP" env-default:"backoffice"`
}

func (k KafkaConfig) Enabled() bool { return k.Host != "" }

// S3Config is disabled when Bucket is empty. Endpoint targets an
// S3-compatible store such as MinIO.
type S3Config struct {
	Bucket   string `env:"BUCKET"`
	Endpoint string `env:"ENDPOINT"`
}

func (s S3Config) Enabled() bool { return s.Bucket != "" }

type JWTConfig struct {
	Secret string `env:"SECRET"`
}

type RateLimitConfig struct {
	RPS   float64 `env:"RPS" env-default:"20"`
	Burst int     `env:"BURST" env-default:"40"`
}

func Load() (*Config, error) {
	if os.Getenv("DEBUG") == "1" {
		// A missing .env is fine; the environment may already be complete.
		_ = godotenv.Load()
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.Port == "" {
		errs = append(errs, errors.New("HTTP_PORT is required"))
	}
	if c.Postgres.Host == "" || c.Postgres.Database == "" {
		errs = append(errs, errors.New("POSTGRES_HOST and POSTGRES_DATABASE are required"))
	}
	if c.JWT.Secret == "" && !c.Debug {
		errs = append(errs, errors.New("JWT_SECRET is required outside debug mode"))
	}
	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC is required when KAFKA_HOST is set"))
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	return errors.Join(errs...)
}

// DebugJWTSecret signs tokens in debug mode when JWT_SECRET is unset.
const DebugJWTSecret = "123456"

func (c *Config) JWTSecret() string {
	if c.JWT.Secret == "" {
		return DebugJWTSecret
	}
	return c.JWT.Secret
}
