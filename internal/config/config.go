package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI               string `mapstructure:"uri"`
	Database          string `mapstructure:"database"`
	MaxPoolSize       uint64 `mapstructure:"max_pool_size"`
	ConnectTimeoutSec int    `mapstructure:"connect_timeout_sec"`
}

// DatabaseConfig holds PostgreSQL connection settings for the audit log.
// The audit log is disabled when Host is empty.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               string `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Name               string `mapstructure:"name"`
	SSLMode            string `mapstructure:"sslmode"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSec int    `mapstructure:"conn_max_lifetime_sec"`
}

// Enabled reports whether an audit database is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// MinIOConfig holds object storage settings for MinIO or any S3-compatible backend.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// AuthConfig holds JWT settings.
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	Issuer     string        `mapstructure:"issuer"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

// AIConfig configures the optional OpenAI-compatible completion endpoint.
// With an empty APIKey every AI feature falls back to templated output.
type AIConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost            string         `mapstructure:"app_host"`
	Port               string         `mapstructure:"port"`
	Timezone           string         `mapstructure:"tz"`
	LogLevel           string         `mapstructure:"log_level"`
	BodyLimitMB        int            `mapstructure:"body_limit_mb"`
	CORSOrigins        string         `mapstructure:"cors_origins"`
	ShutdownTimeoutSec int            `mapstructure:"shutdown_timeout_sec"`
	Mongo              MongoConfig    `mapstructure:"mongo"`
	Database           DatabaseConfig `mapstructure:"db"`
	MinIO              MinIOConfig    `mapstructure:"minio"`
	Auth               AuthConfig     `mapstructure:"auth"`
	AI                 AIConfig       `mapstructure:"ai"`
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate ensures required fields are present.
func (c *AppConfig) Validate() error {
	if c.Mongo.URI == "" {
		return errors.New("MONGO_URI is required")
	}
	if c.Mongo.Database == "" {
		return errors.New("MONGO_DATABASE is required")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("AUTH_JWT_SECRET must be at least 16 characters")
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return errors.New("AUTH_ACCESS_TTL and AUTH_REFRESH_TTL must be positive")
	}
	return nil
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence over the file.
func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	for _, k := range v.AllKeys() {
		_ = v.BindEnv(k)
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_host", "localhost:8080")
	v.SetDefault("port", "8080")
	v.SetDefault("tz", "UTC")
	v.SetDefault("log_level", "info")
	v.SetDefault("body_limit_mb", 25)
	v.SetDefault("cors_origins", "*")
	v.SetDefault("shutdown_timeout_sec", 10)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "portfolio")
	v.SetDefault("mongo.max_pool_size", 50)
	v.SetDefault("mongo.connect_timeout_sec", 10)

	v.SetDefault("db.host", "")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime_sec", 300)

	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", "portfolio-files")
	v.SetDefault("minio.use_ssl", false)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "portfolioapi")
	v.SetDefault("auth.access_ttl", 30*time.Minute)
	v.SetDefault("auth.refresh_ttl", 7*24*time.Hour)

	v.SetDefault("ai.endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout_sec", 30)
}
