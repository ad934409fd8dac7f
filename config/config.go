// Package config loads CLI settings from flags, CONVO_* environment variables and an
// optional convo.yaml, in that order of precedence, and sets up the global logger.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rickchristie/convo/models"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys shared by flags, environment variables and the config file.
const (
	KeyProvider      = "provider"
	KeyAPIKey        = "api-key"
	KeyBaseURL       = "base-url"
	KeyModel         = "model"
	KeyTemperature   = "temperature"
	KeyMaxIterations = "max-iterations"
	KeyCheckpoints   = "checkpoints"
	KeyTavilyKey     = "tavily-key"
	KeyEvents        = "events"
	KeyLogLevel      = "log-level"
	KeyLogFormat     = "log-format"
	KeyLogFile       = "log-file"
)

// Defaults.
const (
	DefaultProvider      = models.ProviderLangChainGo
	DefaultModel         = "gpt-4o-mini"
	DefaultMaxIterations = 10
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "text"
)

// ErrInvalidConfig is wrapped by every Validate error.
var ErrInvalidConfig = errors.New("config: invalid")

// Config is the resolved CLI configuration.
type Config struct {
	Provider      string  `mapstructure:"provider"`
	APIKey        string  `mapstructure:"api-key"`
	BaseURL       string  `mapstructure:"base-url"`
	Model         string  `mapstructure:"model"`
	Temperature   float64 `mapstructure:"temperature"`
	MaxIterations int     `mapstructure:"max-iterations"`

	// CheckpointDSN is a SQLite path for thread checkpoints. Empty keeps them in memory.
	CheckpointDSN string `mapstructure:"checkpoints"`

	// TavilyKey enables web search for reflexion. Empty uses the built-in corpus.
	TavilyKey string `mapstructure:"tavily-key"`

	// Events publishes run events on an in-process watermill channel.
	Events bool `mapstructure:"events"`

	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
	LogFile   string `mapstructure:"log-file"`
}

// Settings returns the backend selection for models.New.
func (c Config) Settings() models.Settings {
	return models.Settings{
		Provider: c.Provider,
		APIKey:   c.APIKey,
		BaseURL:  c.BaseURL,
		Model:    c.Model,
	}
}

// Validate checks value ranges. It does not require an API key: some commands never call
// the backend.
func (c Config) Validate() error {
	if !slices.Contains(models.Providers(), c.Provider) {
		return fmt.Errorf("%w: provider %q (want one of %s)",
			ErrInvalidConfig, c.Provider, strings.Join(models.Providers(), ", "))
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: max-iterations must be at least 1, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be within [0, 2], got %g", ErrInvalidConfig, c.Temperature)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log-level: %w", ErrInvalidConfig, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: log-format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// RegisterFlags defines the persistent flags every command accepts.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String(KeyProvider, DefaultProvider, "LLM backend: "+strings.Join(models.Providers(), ", "))
	flags.String(KeyAPIKey, "", "API key (default $OPENAI_API_KEY)")
	flags.String(KeyBaseURL, "", "OpenAI-compatible base URL")
	flags.String(KeyModel, DefaultModel, "model name")
	flags.Float64(KeyTemperature, 0, "sampling temperature")
	flags.Int(KeyMaxIterations, DefaultMaxIterations, "iteration budget for react")
	flags.String(KeyCheckpoints, "", "SQLite file for thread checkpoints (default in-memory)")
	flags.String(KeyTavilyKey, "", "Tavily API key for reflexion web search")
	flags.Bool(KeyEvents, false, "publish run events and log them at debug level")
	flags.String(KeyLogLevel, DefaultLogLevel, "log level: trace, debug, info, warn, error")
	flags.String(KeyLogFormat, DefaultLogFormat, "log format: text or json")
	flags.String(KeyLogFile, "", "also write logs to this file, rotated")
}

// NewViper creates a viper instance reading configFile, or convo.yaml from the working
// directory, $HOME/.convo or the user config dir when configFile is empty. A missing
// default file is not an error.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault(KeyProvider, DefaultProvider)
	v.SetDefault(KeyAPIKey, "")
	v.SetDefault(KeyBaseURL, "")
	v.SetDefault(KeyModel, DefaultModel)
	v.SetDefault(KeyTemperature, 0.0)
	v.SetDefault(KeyMaxIterations, DefaultMaxIterations)
	v.SetDefault(KeyCheckpoints, "")
	v.SetDefault(KeyTavilyKey, "")
	v.SetDefault(KeyEvents, false)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetDefault(KeyLogFile, "")

	v.SetEnvPrefix("convo")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(KeyAPIKey, "CONVO_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv(KeyTavilyKey, "CONVO_TAVILY_KEY", "TAVILY_API_KEY"); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("convo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.convo")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "convo"))
		}
	}

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
