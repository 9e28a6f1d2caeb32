package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	AI     AIConfig     `mapstructure:"ai"`
	Batch  BatchConfig  `mapstructure:"batch"`
	Logger LoggerConfig `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AIConfig holds the document AI service configuration. The default base
// URL points at Gemini's OpenAI-compatible endpoint.
type AIConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	Model      string        `mapstructure:"model"`
	MaxPages   int           `mapstructure:"max_pages"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// BatchConfig holds batch upload limits and defaults
type BatchConfig struct {
	MaxFiles           int   `mapstructure:"max_files"`
	MaxFileSize        int64 `mapstructure:"max_file_size"`
	DefaultStartNumber int   `mapstructure:"default_start_number"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine as long as env vars supply the rest.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// AI defaults
	viper.SetDefault("ai.base_url", "https://generativelanguage.googleapis.com/v1beta/openai/")
	viper.SetDefault("ai.model", "gemini-2.5-flash")
	viper.SetDefault("ai.max_pages", 2)
	viper.SetDefault("ai.retry_delay", 10*time.Second)
	viper.SetDefault("ai.timeout", 120*time.Second)

	// Batch defaults
	viper.SetDefault("batch.max_files", 50)
	viper.SetDefault("batch.max_file_size", int64(20<<20))
	viper.SetDefault("batch.default_start_number", 1)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("ai.api_key", "GEMINI_API_KEY")
	viper.BindEnv("ai.base_url", "GEMINI_BASE_URL")
	viper.BindEnv("ai.model", "GEMINI_MODEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is required (set GEMINI_API_KEY)")
	}
	if c.Batch.MaxFiles < 1 {
		return fmt.Errorf("batch.max_files must be positive")
	}
	if c.Batch.DefaultStartNumber < 1 {
		return fmt.Errorf("batch.default_start_number must be positive")
	}
	return nil
}
