// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"fedelife/expense-extractor/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
		Output string `mapstructure:"output" yaml:"output"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Currency struct {
		Local          string  `mapstructure:"local" yaml:"local"`
		Foreign        string  `mapstructure:"foreign" yaml:"foreign"`
		FallbackRate   float64 `mapstructure:"fallback_rate" yaml:"fallback_rate"`
		RateSource     string  `mapstructure:"rate_source" yaml:"rate_source"`
		RateURL        string  `mapstructure:"rate_url" yaml:"rate_url"`
		RateXPath      string  `mapstructure:"rate_xpath" yaml:"rate_xpath"`
		TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	} `mapstructure:"currency" yaml:"currency"`

	Extraction struct {
		MinLineLength        int     `mapstructure:"min_line_length" yaml:"min_line_length"`
		MinAmount            float64 `mapstructure:"min_amount" yaml:"min_amount"`
		MaxAmount            float64 `mapstructure:"max_amount" yaml:"max_amount"`
		DescriptionMaxLength int     `mapstructure:"description_max_length" yaml:"description_max_length"`
		KeywordsFile         string  `mapstructure:"keywords_file" yaml:"keywords_file"`
	} `mapstructure:"extraction" yaml:"extraction"`

	Merge struct {
		WordOverlapThreshold float64 `mapstructure:"word_overlap_threshold" yaml:"word_overlap_threshold"`
		AmountEpsilon        float64 `mapstructure:"amount_epsilon" yaml:"amount_epsilon"`
	} `mapstructure:"merge" yaml:"merge"`

	Recovery struct {
		MaxFallbackElements int `mapstructure:"max_fallback_elements" yaml:"max_fallback_elements"`
	} `mapstructure:"recovery" yaml:"recovery"`

	AI struct {
		Enabled        bool    `mapstructure:"enabled" yaml:"enabled"`
		Model          string  `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		MaxInputChars  int     `mapstructure:"max_input_chars" yaml:"max_input_chars"`
		Temperature    float64 `mapstructure:"temperature" yaml:"temperature"`
		APIKey         string  `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Server struct {
		Port int `mapstructure:"port" yaml:"port"`
	} `mapstructure:"server" yaml:"server"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading:
// defaults, then config.yaml, then EXPENSE_* environment variables.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.expense-extractor")
	v.AddConfigPath(".expense-extractor")
	v.AddConfigPath(".")

	v.SetEnvPrefix("EXPENSE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// The API key is read from the conventional variable, not the prefixed one.
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
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

// Default returns the configuration built from defaults only, ignoring files and environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Sprintf("default configuration does not decode: %v", err))
	}
	return &config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("currency.local", "UYU")
	v.SetDefault("currency.foreign", "USD")
	v.SetDefault("currency.fallback_rate", 40.0)
	v.SetDefault("currency.rate_source", "json")
	v.SetDefault("currency.rate_url", "https://open.er-api.com/v6/latest/USD")
	v.SetDefault("currency.rate_xpath", "")
	v.SetDefault("currency.timeout_seconds", 10)

	v.SetDefault("extraction.min_line_length", 10)
	v.SetDefault("extraction.min_amount", 1.0)
	v.SetDefault("extraction.max_amount", 10000000.0)
	v.SetDefault("extraction.description_max_length", 100)
	v.SetDefault("extraction.keywords_file", "keywords.yaml")

	v.SetDefault("merge.word_overlap_threshold", 0.5)
	v.SetDefault("merge.amount_epsilon", 1.0)

	v.SetDefault("recovery.max_fallback_elements", 50)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout_seconds", 60)
	v.SetDefault("ai.max_input_chars", 10000)
	v.SetDefault("ai.temperature", 0.0)
	v.SetDefault("ai.api_key", "")

	v.SetDefault("server.port", 3000)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	config.Log.Level = strings.ToLower(strings.TrimSpace(config.Log.Level))
	config.Log.Format = strings.ToLower(strings.TrimSpace(config.Log.Format))

	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if len(config.Currency.Local) != 3 || len(config.Currency.Foreign) != 3 {
		return fmt.Errorf("currency codes must have three letters, got local=%q foreign=%q",
			config.Currency.Local, config.Currency.Foreign)
	}
	if strings.EqualFold(config.Currency.Local, config.Currency.Foreign) {
		return fmt.Errorf("local and foreign currency must differ, both are %s", config.Currency.Local)
	}
	if config.Currency.FallbackRate <= 0 {
		return fmt.Errorf("currency.fallback_rate must be positive, got: %f", config.Currency.FallbackRate)
	}
	switch config.Currency.RateSource {
	case "json", "static":
	case "xml":
		if config.Currency.RateXPath == "" {
			return fmt.Errorf("currency.rate_xpath is required when rate_source is xml")
		}
	default:
		return fmt.Errorf("invalid currency.rate_source: %s (must be 'json', 'xml' or 'static')", config.Currency.RateSource)
	}

	if config.Extraction.MinAmount < 0 || config.Extraction.MaxAmount <= config.Extraction.MinAmount {
		return fmt.Errorf("extraction amount bounds are inconsistent: min=%f max=%f",
			config.Extraction.MinAmount, config.Extraction.MaxAmount)
	}
	if config.Extraction.DescriptionMaxLength < 10 {
		return fmt.Errorf("extraction.description_max_length must be at least 10, got: %d", config.Extraction.DescriptionMaxLength)
	}

	if config.Merge.WordOverlapThreshold <= 0 || config.Merge.WordOverlapThreshold > 1 {
		return fmt.Errorf("merge.word_overlap_threshold must be in (0, 1], got: %f", config.Merge.WordOverlapThreshold)
	}
	if config.Merge.AmountEpsilon < 0 {
		return fmt.Errorf("merge.amount_epsilon must not be negative, got: %f", config.Merge.AmountEpsilon)
	}

	if config.Recovery.MaxFallbackElements < 1 {
		return fmt.Errorf("recovery.max_fallback_elements must be at least 1, got: %d", config.Recovery.MaxFallbackElements)
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}
	if config.AI.MaxInputChars < 1000 {
		return fmt.Errorf("ai.max_input_chars must be at least 1000, got: %d", config.AI.MaxInputChars)
	}

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", config.Server.Port)
	}

	return nil
}

// ConfigureLoggingFromConfig builds the logrus logger described by the log section.
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	return logging.NewLogrusLogger(logging.Options{
		Level:  config.Log.Level,
		Format: config.Log.Format,
		Output: config.Log.Output,
	})
}
