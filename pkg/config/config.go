package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/soundprediction/rembed/pkg/utils"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Dispatch configuration
	Dispatch DispatchConfig `mapstructure:"dispatch"`

	// Transport configuration
	Transport TransportConfig `mapstructure:"transport"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// Alert configuration
	Alert AlertConfig `mapstructure:"alert"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Clients registered at startup, keyed by client name. Values use any of
	// the client configuration syntaxes (string or structured map).
	Clients map[string]any `mapstructure:"clients"`
}

// AlertConfig holds configuration for alerting
type AlertConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	// ParquetPath is the directory batch statistics and error logs are written to.
	// Empty disables telemetry.
	ParquetPath string `mapstructure:"parquet_path"`
	// FlushSize is the number of buffered records that triggers a write.
	FlushSize int `mapstructure:"flush_size"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text, json
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// DispatchConfig holds batch dispatch and vision defaults
type DispatchConfig struct {
	MaxConcurrentRequests int    `mapstructure:"max_concurrent_requests"`
	VisionPrompt          string `mapstructure:"vision_prompt"`
	VisionSystemPrompt    string `mapstructure:"vision_system_prompt"`
}

// TransportConfig holds provider transport settings
type TransportConfig struct {
	Timeout           int     `mapstructure:"timeout"` // in seconds
	MaxRetries        int     `mapstructure:"max_retries"`
	InitialDelayMs    int     `mapstructure:"initial_delay_ms"`
	MaxDelayMs        int     `mapstructure:"max_delay_ms"`
	BackoffMultiplier float64 `mapstructure:"backoff_multiplier"`
	// MockEmbeddings routes every provider to the deterministic mock transport.
	MockEmbeddings bool `mapstructure:"mock_embeddings"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (t TransportConfig) TimeoutDuration() time.Duration {
	return time.Duration(t.Timeout) * time.Second
}

// Default vision prompts used for the describe stage of image embedding.
const (
	DefaultVisionSystemPrompt = "You are a helpful vision AI. Describe images accurately and concisely for embedding purposes. " +
		"Focus on key visual elements, objects, scene context, colors, and composition."
	DefaultVisionPrompt = "Describe this image in detail for search and embedding purposes:"
)

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// Default returns the configuration used when no file or environment is present.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{Host: "localhost", Port: 8080, Mode: "debug"},
		Dispatch: DispatchConfig{
			MaxConcurrentRequests: 4,
			VisionPrompt:          DefaultVisionPrompt,
			VisionSystemPrompt:    DefaultVisionSystemPrompt,
		},
		Transport: TransportConfig{
			Timeout:           30,
			MaxRetries:        0,
			InitialDelayMs:    1000,
			MaxDelayMs:        60000,
			BackoffMultiplier: 2.0,
		},
		Telemetry: TelemetryConfig{FlushSize: 100},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         60,
			Timeout:          30,
			ReadyToTripRatio: 0.6,
		},
		Clients: map[string]any{},
	}
}

// setDefaults sets default configuration values
func setDefaults() {
	d := Default()

	// Log defaults
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)

	// Server defaults
	viper.SetDefault("server.host", d.Server.Host)
	viper.SetDefault("server.port", d.Server.Port)
	viper.SetDefault("server.mode", d.Server.Mode)

	// Dispatch defaults
	viper.SetDefault("dispatch.max_concurrent_requests", d.Dispatch.MaxConcurrentRequests)
	viper.SetDefault("dispatch.vision_prompt", d.Dispatch.VisionPrompt)
	viper.SetDefault("dispatch.vision_system_prompt", d.Dispatch.VisionSystemPrompt)

	// Transport defaults
	viper.SetDefault("transport.timeout", d.Transport.Timeout)
	viper.SetDefault("transport.max_retries", d.Transport.MaxRetries)
	viper.SetDefault("transport.initial_delay_ms", d.Transport.InitialDelayMs)
	viper.SetDefault("transport.max_delay_ms", d.Transport.MaxDelayMs)
	viper.SetDefault("transport.backoff_multiplier", d.Transport.BackoffMultiplier)
	viper.SetDefault("transport.mock_embeddings", false)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", d.CircuitBreaker.Enabled)
	viper.SetDefault("circuit_breaker.max_requests", d.CircuitBreaker.MaxRequests)
	viper.SetDefault("circuit_breaker.interval", d.CircuitBreaker.Interval)
	viper.SetDefault("circuit_breaker.timeout", d.CircuitBreaker.Timeout)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", d.CircuitBreaker.ReadyToTripRatio)

	// Telemetry defaults
	viper.SetDefault("telemetry.flush_size", d.Telemetry.FlushSize)
	home, err := os.UserHomeDir()
	if err == nil {
		defaultPath := fmt.Sprintf("%s/.rembed/telemetry", home)
		viper.SetDefault("telemetry.parquet_path", defaultPath)
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if config.Clients == nil {
		config.Clients = make(map[string]any)
	}

	// Dispatch settings
	if n, err := strconv.Atoi(os.Getenv("REMBED_MAX_CONCURRENT_REQUESTS")); err == nil && n > 0 {
		config.Dispatch.MaxConcurrentRequests = n
	}
	if prompt := os.Getenv("REMBED_VISION_PROMPT"); prompt != "" {
		config.Dispatch.VisionPrompt = prompt
	}

	// Transport settings
	if utils.GetEnvBool("MOCK_EMBEDDINGS") {
		config.Transport.MockEmbeddings = true
	}
	if n, err := strconv.Atoi(os.Getenv("REMBED_TIMEOUT")); err == nil && n > 0 {
		config.Transport.Timeout = n
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port, err := strconv.Atoi(os.Getenv("SERVER_PORT")); err == nil && port > 0 {
		config.Server.Port = port
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
