// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Supabase struct {
		URL    string `mapstructure:"url" yaml:"url"`
		APIKey string `mapstructure:"api_key" yaml:"-"` // Never serialize the API key
	} `mapstructure:"supabase" yaml:"supabase"`

	Sheets struct {
		CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`
		SpreadsheetID   string `mapstructure:"spreadsheet_id" yaml:"spreadsheet_id"`
		SheetName       string `mapstructure:"sheet_name" yaml:"sheet_name"`
	} `mapstructure:"sheets" yaml:"sheets"`

	Slack struct {
		WebhookURL string `mapstructure:"webhook_url" yaml:"-"` // Webhook URLs embed a secret
	} `mapstructure:"slack" yaml:"slack"`

	GCS struct {
		Bucket string `mapstructure:"bucket" yaml:"bucket"`
	} `mapstructure:"gcs" yaml:"gcs"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.ibkr-csv")
	v.AddConfigPath(".ibkr-csv")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("IBKR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
		// Config file not found or invalid is OK, we'll use defaults and env vars
	}

	// 5. Secrets always come from unprefixed environment variables
	bindings := map[string]string{
		"supabase.url":            "SUPABASE_URL",
		"supabase.api_key":        "SUPABASE_API_KEY",
		"slack.webhook_url":       "SLACK_WEBHOOK_URL",
		"sheets.credentials_file": "GOOGLE_SHEETS_CREDENTIALS_FILE",
		"sheets.spreadsheet_id":   "GOOGLE_SHEET_ID",
		"gcs.bucket":              "GCS_BUCKET",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			fmt.Printf("Warning: failed to bind %s environment variable: %v\n", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("sheets.sheet_name", "Transactions")
}

// validateConfig checks configuration values that have a constrained domain
func validateConfig(config *Config) error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[strings.ToLower(config.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	switch strings.ToLower(config.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", config.Log.Format)
	}

	return nil
}
