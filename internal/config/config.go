package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      App      `mapstructure:"app"`
	AI       AI       `mapstructure:"ai"`
	Research Research `mapstructure:"research"`
	TTS      TTS      `mapstructure:"tts"`
	Storage  Storage  `mapstructure:"storage"`
	Server   Server   `mapstructure:"server"`
	Logging  Logging  `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
}

// AI holds chat-completion provider configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// Research holds research-capability configuration
type Research struct {
	Provider      string `mapstructure:"provider"` // perplexity | mock
	APIKey        string `mapstructure:"api_key"`
	Model         string `mapstructure:"model"`
	Timeout       string `mapstructure:"timeout"`        // Outer budget for the whole research batch
	QueryStagger  string `mapstructure:"query_stagger"`  // Delay between parallel query dispatches
	MaxCategories int    `mapstructure:"max_categories"` // Upper bound on parallel category queries
}

// TTS holds text-to-speech configuration
type TTS struct {
	Provider        string  `mapstructure:"provider"` // openai | elevenlabs | mock
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	DefaultVoice    string  `mapstructure:"default_voice"`
	DefaultSpeed    float64 `mapstructure:"default_speed"`
	OutputDirectory string  `mapstructure:"output_directory"`
	Timeout         string  `mapstructure:"timeout"`
}

// Storage holds persistence configuration
type Storage struct {
	Backend string `mapstructure:"backend"` // sqlite | memory
	DataDir string `mapstructure:"data_dir"`
}

// Server holds HTTP server configuration
type Server struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORS          `mapstructure:"cors"`
}

// CORS holds cross-origin configuration for the browser UI
type CORS struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var globalConfig *Config

// Load loads the configuration from .env, the config file, environment
// variables and defaults, in that order of increasing precedence.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".podforge")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached global configuration. Intended for tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".podforge-data")

	// AI defaults
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.timeout", "30s")
	viper.SetDefault("ai.gemini.max_tokens", 8192)
	viper.SetDefault("ai.gemini.temperature", 0.7)

	// Research defaults. Deep research queries are slow, hence the long
	// outer budget before the orchestrator falls back.
	viper.SetDefault("research.provider", "perplexity")
	viper.SetDefault("research.model", "sonar-deep-research")
	viper.SetDefault("research.timeout", "6m")
	viper.SetDefault("research.query_stagger", "1s")
	viper.SetDefault("research.max_categories", 5)

	// TTS defaults
	viper.SetDefault("tts.provider", "openai")
	viper.SetDefault("tts.model", "tts-1")
	viper.SetDefault("tts.default_voice", "alloy")
	viper.SetDefault("tts.default_speed", 1.0)
	viper.SetDefault("tts.output_directory", "audio")
	viper.SetDefault("tts.timeout", "60s")

	// Storage defaults
	viper.SetDefault("storage.backend", "sqlite")
	viper.SetDefault("storage.data_dir", ".podforge-data")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "10m")
	viper.SetDefault("server.request_timeout", "10m")
	viper.SetDefault("server.shutdown_timeout", "15s")
	viper.SetDefault("server.cors.enabled", true)
	viper.SetDefault("server.cors.allowed_origins", []string{"*"})

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	// Gemini API key - support multiple formats
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	// Research provider
	bindEnvKeys("research.api_key", []string{
		"PERPLEXITY_API_KEY",
		"RESEARCH_API_KEY",
	})

	// TTS provider
	bindEnvKeys("tts.api_key", []string{
		"OPENAI_API_KEY",
		"ELEVENLABS_API_KEY",
	})
}

// bindEnvKeys binds the first set environment variable from names to key
func bindEnvKeys(key string, names []string) {
	for _, name := range names {
		if value := os.Getenv(name); value != "" {
			viper.Set(key, value)
			return
		}
	}
}

// validateConfig performs basic sanity checks on loaded configuration
func validateConfig(config *Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.TTS.DefaultSpeed != 0 && (config.TTS.DefaultSpeed < 0.5 || config.TTS.DefaultSpeed > 2.0) {
		return fmt.Errorf("tts default speed must be between 0.5 and 2.0, got %v", config.TTS.DefaultSpeed)
	}
	switch config.Storage.Backend {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unknown storage backend: %s", config.Storage.Backend)
	}
	return nil
}

// ParseDurationOr parses d, returning fallback when d is empty or invalid.
func ParseDurationOr(d string, fallback time.Duration) time.Duration {
	if d == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(d)
	if err != nil {
		return fallback
	}
	return parsed
}
