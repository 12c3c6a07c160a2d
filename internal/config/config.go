package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	PersistenceFile     = "file"
	PersistencePostgres = "postgres"
)

// Config is read from the environment; every key has a default.
type Config struct {
	Port         string `mapstructure:"PORT" validate:"required,numeric"`
	FallbackPort string `mapstructure:"FALLBACK_PORT" validate:"omitempty,numeric"`
	LogLevel     string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	CORSOrigin   string `mapstructure:"CORS_ORIGIN" validate:"required"`

	Persistence   string        `mapstructure:"PERSISTENCE" validate:"oneof=file postgres"`
	DataFile      string        `mapstructure:"DATA_FILE" validate:"required_if=Persistence file"`
	DatabaseURL   string        `mapstructure:"DATABASE_URL" validate:"required_if=Persistence postgres"`
	FlushInterval time.Duration `mapstructure:"SAVE_FLUSH_INTERVAL" validate:"gt=0"`

	MetricsEnabled bool   `mapstructure:"METRICS_ENABLED"`
	MetricsToken   string `mapstructure:"METRICS_TOKEN"`

	WriteTokenSecret string `mapstructure:"WRITE_TOKEN_SECRET" validate:"omitempty,min=32"`

	UploadMaxBytes  int64 `mapstructure:"UPLOAD_MAX_BYTES" validate:"gt=0"`
	UploadRateLimit int   `mapstructure:"UPLOAD_RATE_LIMIT" validate:"gt=0"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "3001")
	v.SetDefault("FALLBACK_PORT", "3002")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGIN", "http://localhost:3000")

	v.SetDefault("PERSISTENCE", PersistenceFile)
	v.SetDefault("DATA_FILE", "data/products.json")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SAVE_FLUSH_INTERVAL", "100ms")

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_TOKEN", "")

	v.SetDefault("WRITE_TOKEN_SECRET", "")

	v.SetDefault("UPLOAD_MAX_BYTES", 5<<20)
	v.SetDefault("UPLOAD_RATE_LIMIT", 10)
}

// Load reads the process environment.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	defaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) Addr() string { return ":" + c.Port }

func (c Config) FallbackAddr() string {
	if c.FallbackPort == "" {
		return ""
	}
	return ":" + c.FallbackPort
}
