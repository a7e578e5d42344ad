// Package config loads application settings from config.yml, .env and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "change-me-in-production"

const (
	CacheNone     = "none"
	CacheMongo    = "mongo"
	CacheRedis    = "redis"
	CacheDynamoDB = "dynamodb"
	CacheBadger   = "badger"
)

type Config struct {
	Env      string `mapstructure:"APP_ENV"`
	Port     int    `mapstructure:"PORT"`
	Runtime  string `mapstructure:"RUNTIME"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoHost     string `mapstructure:"MONGO_HOST"`
	MongoPort     int    `mapstructure:"MONGO_PORT"`
	MongoUser     string `mapstructure:"MONGO_USER"`
	MongoPassword string `mapstructure:"MONGO_PASSWORD"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	TokenTTL        time.Duration `mapstructure:"TOKEN_TTL"`
	PasswordEncoder string        `mapstructure:"PASSWORD_ENCODER"`
	PBKDF2Secret    string        `mapstructure:"PBKDF2_SECRET"`
	PBKDF2Iteration int           `mapstructure:"PBKDF2_ITERATIONS"`
	PBKDF2KeyLength int           `mapstructure:"PBKDF2_KEY_LENGTH"`
	AdminEmail      string        `mapstructure:"ADMIN_EMAIL"`
	AdminUsername   string        `mapstructure:"ADMIN_USERNAME"`
	AdminPassword   string        `mapstructure:"ADMIN_PASSWORD"`

	CacheBackend   string        `mapstructure:"CACHE_BACKEND"`
	CacheTTL       time.Duration `mapstructure:"CACHE_TTL"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	DynamoDBTable  string        `mapstructure:"DYNAMODB_TABLE"`
	DynamoEndpoint string        `mapstructure:"DYNAMODB_ENDPOINT"`
	BadgerPath     string        `mapstructure:"BADGER_PATH"`

	AWSRegion   string        `mapstructure:"AWS_REGION"`
	S3Bucket    string        `mapstructure:"S3_BUCKET"`
	S3Endpoint  string        `mapstructure:"S3_ENDPOINT"`
	S3URLExpiry time.Duration `mapstructure:"S3_URL_EXPIRY"`

	AllowedOrigins     string `mapstructure:"ALLOWED_ORIGINS"`
	TracingEnabled     bool   `mapstructure:"TRACING_ENABLED"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
}

var keys = []string{
	"APP_ENV", "PORT", "RUNTIME", "LOG_LEVEL",
	"MONGO_URI", "MONGO_HOST", "MONGO_PORT", "MONGO_USER", "MONGO_PASSWORD", "MONGO_DATABASE",
	"JWT_SECRET", "TOKEN_TTL", "PASSWORD_ENCODER", "PBKDF2_SECRET", "PBKDF2_ITERATIONS", "PBKDF2_KEY_LENGTH",
	"ADMIN_EMAIL", "ADMIN_USERNAME", "ADMIN_PASSWORD",
	"CACHE_BACKEND", "CACHE_TTL", "REDIS_ADDR", "DYNAMODB_TABLE", "DYNAMODB_ENDPOINT", "BADGER_PATH",
	"AWS_REGION", "S3_BUCKET", "S3_ENDPOINT", "S3_URL_EXPIRY",
	"ALLOWED_ORIGINS", "TRACING_ENABLED", "RATE_LIMIT_PER_MINUTE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", 8080)
	v.SetDefault("RUNTIME", "http")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_HOST", "localhost")
	v.SetDefault("MONGO_PORT", 27017)
	v.SetDefault("MONGO_USER", "")
	v.SetDefault("MONGO_PASSWORD", "")
	v.SetDefault("MONGO_DATABASE", "blog")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("PASSWORD_ENCODER", "bcrypt")
	v.SetDefault("PBKDF2_SECRET", "")
	v.SetDefault("PBKDF2_ITERATIONS", 10000)
	v.SetDefault("PBKDF2_KEY_LENGTH", 32)
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("CACHE_BACKEND", CacheNone)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("DYNAMODB_TABLE", "blog_cache")
	v.SetDefault("DYNAMODB_ENDPOINT", "")
	v.SetDefault("BADGER_PATH", "")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_URL_EXPIRY", "15m")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
}

// Load reads config.yml from the working directory or its parents when
// present, then .env, then the process environment. Later sources win.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	// AutomaticEnv only resolves keys viper already knows about
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(cfg.CacheBackend))
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d is out of range", c.Port)
	}
	if c.Runtime != "http" && c.Runtime != "lambda" {
		return fmt.Errorf("RUNTIME must be http or lambda, got %q", c.Runtime)
	}
	if c.MongoURI == "" && c.MongoHost == "" {
		return errors.New("MONGO_URI or MONGO_HOST is required")
	}
	if c.MongoDatabase == "" {
		return errors.New("MONGO_DATABASE is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}

	switch c.PasswordEncoder {
	case "bcrypt":
	case "pbkdf2":
		if c.PBKDF2Secret == "" {
			return errors.New("PBKDF2_SECRET is required when PASSWORD_ENCODER is pbkdf2")
		}
	default:
		return fmt.Errorf("unknown PASSWORD_ENCODER %q", c.PasswordEncoder)
	}

	switch c.CacheBackend {
	case CacheNone, CacheMongo, CacheBadger:
	case CacheRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when CACHE_BACKEND is redis")
		}
	case CacheDynamoDB:
		if c.DynamoDBTable == "" {
			return errors.New("DYNAMODB_TABLE is required when CACHE_BACKEND is dynamodb")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.AllowedOrigins == "*" {
			slog.Warn("ALLOWED_ORIGINS is set to '*' in production")
		}
	} else if len(c.JWTSecret) < 32 {
		slog.Warn("JWT_SECRET is shorter than 32 characters, use a stronger secret for production")
	}

	return nil
}
