// Package config loads settings from defaults, an optional config file,
// .env files and VLMBENCH_* environment variables.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, as in VLMBENCH_PORT.
const EnvPrefix = "VLMBENCH"

// Data source names.
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceDatabase = "database"
)

// Config holds application settings.
type Config struct {
	Port             string
	DataSource       string
	DataFile         string
	DatabaseURL      string
	DatabaseSecretID string
	LogLevel         string
	LogFormat        string
	CacheTTL         time.Duration
	Debounce         time.Duration
	SearchThreshold  float64
	ExportBucket     string
	AWSRegion        string
	LeaderboardURL   string
	ConfigFile       string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("data_source", SourceEmbedded)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("debounce", 300*time.Millisecond)
	v.SetDefault("search_threshold", 0.3)
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("leaderboard_url", "http://opencompass.openxlab.space/assets/OpenVLM.json")
}

// Load reads configuration in order of precedence:
//  1. Environment variables (VLMBENCH_*)
//  2. .env.local, then .env
//  3. Config file (configFile, or vlmbench.yaml in . or $HOME)
//  4. Defaults
func Load(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("vlmbench")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		// A missing default config file is fine.
		_ = v.ReadInConfig()
	}

	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Port:             v.GetString("port"),
		DataSource:       strings.ToLower(v.GetString("data_source")),
		DataFile:         v.GetString("data_file"),
		DatabaseURL:      v.GetString("database_url"),
		DatabaseSecretID: v.GetString("database_secret_id"),
		LogLevel:         v.GetString("log_level"),
		LogFormat:        v.GetString("log_format"),
		CacheTTL:         v.GetDuration("cache_ttl"),
		Debounce:         v.GetDuration("debounce"),
		SearchThreshold:  v.GetFloat64("search_threshold"),
		ExportBucket:     v.GetString("export_bucket"),
		AWSRegion:        v.GetString("aws_region"),
		LeaderboardURL:   v.GetString("leaderboard_url"),
		ConfigFile:       v.ConfigFileUsed(),
	}
}

// Validate checks that the selected data source has what it needs.
func (c *Config) Validate() error {
	switch c.DataSource {
	case SourceEmbedded:
	case SourceFile:
		if c.DataFile == "" {
			return fmt.Errorf("data_source %q requires data_file", c.DataSource)
		}
	case SourceDatabase:
		if c.DatabaseURL == "" && c.DatabaseSecretID == "" {
			return fmt.Errorf("data_source %q requires database_url or database_secret_id", c.DataSource)
		}
	default:
		return fmt.Errorf("unknown data_source %q", c.DataSource)
	}
	if c.SearchThreshold <= 0 || c.SearchThreshold > 1 {
		return fmt.Errorf("search_threshold %v out of range (0,1]", c.SearchThreshold)
	}
	if c.CacheTTL < 0 || c.Debounce < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

// loadEnvFiles loads .env files. Values already in the environment win, and
// .env.local is loaded first so it overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// SecretGetter is the subset of the Secrets Manager client used here.
type SecretGetter interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ResolveDatabaseURL returns DatabaseURL, or reads it from Secrets Manager
// when DatabaseSecretID is set.
func (c *Config) ResolveDatabaseURL(ctx context.Context, sm SecretGetter) (string, error) {
	if c.DatabaseSecretID == "" {
		if c.DatabaseURL == "" {
			return "", fmt.Errorf("database_url is required")
		}
		return c.DatabaseURL, nil
	}
	if sm == nil {
		return "", fmt.Errorf("secrets manager client required for database_secret_id")
	}
	out, err := sm.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(c.DatabaseSecretID),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", c.DatabaseSecretID, err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return "", fmt.Errorf("secret %s has no string value", c.DatabaseSecretID)
	}
	return strings.TrimSpace(*out.SecretString), nil
}
