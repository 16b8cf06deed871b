// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Generation GenerationConfig `mapstructure:"generation"`
	Dataset    DatasetConfig    `mapstructure:"dataset"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// PipelineConfig contains the retrieval pipeline configuration
type PipelineConfig struct {
	EmbeddingDimension int  `mapstructure:"embedding_dimension"`
	QueryCacheSize     int  `mapstructure:"query_cache_size"`
	DefaultResults     int  `mapstructure:"default_results"`
	MaxResults         int  `mapstructure:"max_results"`
	DynamicByDefault   bool `mapstructure:"dynamic_by_default"`
}

// GenerationConfig contains synthetic candidate generation configuration
type GenerationConfig struct {
	Seed    int64 `mapstructure:"seed"`
	Enabled bool  `mapstructure:"enabled"`
}

// DatasetConfig contains dataset loading configuration
type DatasetConfig struct {
	Dir         string `mapstructure:"dir"`
	UseEmbedded bool   `mapstructure:"use_embedded"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/nutrimatch")
	}

	v.SetEnvPrefix("NUTRIMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "NutriMatch")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Pipeline defaults
	v.SetDefault("pipeline.embedding_dimension", 384)
	v.SetDefault("pipeline.query_cache_size", 256)
	v.SetDefault("pipeline.default_results", 5)
	v.SetDefault("pipeline.max_results", 50)
	v.SetDefault("pipeline.dynamic_by_default", true)

	// Generation defaults
	v.SetDefault("generation.seed", 42)
	v.SetDefault("generation.enabled", true)

	// Dataset defaults
	v.SetDefault("dataset.dir", "")
	v.SetDefault("dataset.use_embedded", true)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if c.Pipeline.EmbeddingDimension < 1 {
		return fmt.Errorf("pipeline.embedding_dimension must be positive")
	}

	if c.Pipeline.MaxResults < c.Pipeline.DefaultResults {
		return fmt.Errorf("pipeline.max_results must be at least pipeline.default_results")
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Address returns the host:port the server binds to
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
