package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Vocabulary VocabularyConfig `mapstructure:"vocabulary"`
	Review     ReviewConfig     `mapstructure:"review"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Progress   ProgressConfig   `mapstructure:"progress"`
	Outputs    OutputsConfig    `mapstructure:"outputs"`
}

type ServerConfig struct {
	Port      int             `mapstructure:"port" validate:"min=1,max=65535"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type DatabaseConfig struct {
	Driver          string            `mapstructure:"driver" validate:"oneof=mysql postgres sqlite"`
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	Path            string            `mapstructure:"path" validate:"required_if=Driver sqlite"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type VocabularyConfig struct {
	Source string               `mapstructure:"source" validate:"oneof=database http"`
	HTTP   VocabularyHTTPConfig `mapstructure:"http"`
}

type VocabularyHTTPConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ReviewConfig struct {
	BatchSize int          `mapstructure:"batch_size" validate:"min=1,max=500"`
	Outbox    OutboxConfig `mapstructure:"outbox"`
}

type OutboxConfig struct {
	MaxAttempts  uint          `mapstructure:"max_attempts" validate:"min=1"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
}

// SchedulingConfig overrides the box level interval tables per training type.
// Keys are training type names, values are the intervals in days for box levels 1 to 6.
type SchedulingConfig struct {
	Intervals map[string][]int `mapstructure:"intervals" validate:"dive,keys,oneof=vocabulary sentence translation listening,endkeys,len=6,ascending"`
}

type ProgressConfig struct {
	RecomputeInterval time.Duration `mapstructure:"recompute_interval"`
	Concurrency       int           `mapstructure:"concurrency" validate:"min=1"`
}

type OutputsConfig struct {
	ReportDirectory string `mapstructure:"report_directory"`
	// ReportTemplate replaces the embedded progress report template when set.
	ReportTemplate string `mapstructure:"report_template"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/vocabox")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

// BindFlag lets a command line flag override the configuration key.
// The flag only wins when it was explicitly set.
func (loader *ConfigLoader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("flag for %s is not defined", key)
	}
	if err := loader.viper.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
	}
	return nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit.requests_per_second", 10)
	v.SetDefault("server.rate_limit.burst", 20)
	v.SetDefault("auth.issuer", "vocabox")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "local")
	v.SetDefault("database.username", "user")
	v.SetDefault("database.path", filepath.Join("data", "vocabox.db"))
	v.SetDefault("vocabulary.source", "database")
	v.SetDefault("vocabulary.http.timeout", 10*time.Second)
	v.SetDefault("review.batch_size", 50)
	v.SetDefault("review.outbox.max_attempts", 4)
	v.SetDefault("review.outbox.initial_delay", 500*time.Millisecond)
	v.SetDefault("review.outbox.max_delay", 10*time.Second)
	v.SetDefault("progress.recompute_interval", 10*time.Minute)
	v.SetDefault("progress.concurrency", 4)
	v.SetDefault("outputs.report_directory", filepath.Join("outputs", "reports"))

	// Secrets are bound to environment variables only
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("auth.jwt_secret", "VOCABOX_JWT_SECRET"); err != nil {
		return nil, fmt.Errorf("failed to bind VOCABOX_JWT_SECRET environment variable: %w", err)
	}
	if err := v.BindEnv("vocabulary.http.api_key", "VOCABOX_VOCABULARY_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind VOCABOX_VOCABULARY_API_KEY environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
