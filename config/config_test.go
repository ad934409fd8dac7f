package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rickchristie/convo/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Provider:      DefaultProvider,
		Model:         DefaultModel,
		MaxIterations: DefaultMaxIterations,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		input    func(c *Config)
		expected string
	}{
		{name: "defaults", input: func(*Config) {}},
		{name: "openai provider", input: func(c *Config) { c.Provider = models.ProviderOpenAI }},
		{name: "json logs", input: func(c *Config) { c.LogFormat = "json" }},
		{
			name:     "unknown provider",
			input:    func(c *Config) { c.Provider = "bard" },
			expected: `provider "bard"`,
		},
		{
			name:     "zero iterations",
			input:    func(c *Config) { c.MaxIterations = 0 },
			expected: "max-iterations must be at least 1",
		},
		{
			name:     "temperature too high",
			input:    func(c *Config) { c.Temperature = 2.5 },
			expected: "temperature must be within",
		},
		{
			name:     "bad log level",
			input:    func(c *Config) { c.LogLevel = "loud" },
			expected: "log-level",
		},
		{
			name:     "bad log format",
			input:    func(c *Config) { c.LogFormat = "xml" },
			expected: "log-format must be text or json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.input(&c)

			err := c.Validate()
			if tt.expected == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.expected)
		})
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"OPENAI_API_KEY", "CONVO_API_KEY", "CONVO_MODEL", "CONVO_MAX_ITERATIONS", "TAVILY_API_KEY"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	v, err := NewViper("")
	require.NoError(t, err)
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, validConfig(), c)
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)

	file := filepath.Join(t.TempDir(), "convo.yaml")
	require.NoError(t, os.WriteFile(file, []byte(
		"model: gpt-4o\nmax-iterations: 4\nprovider: openai\ncheckpoints: threads.db\n",
	), 0o600))

	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("CONVO_MAX_ITERATIONS", "6")

	v, err := NewViper(file)
	require.NoError(t, err)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse([]string{"--model", "gpt-4.1-mini", "--temperature", "0.5"}))
	require.NoError(t, v.BindPFlags(flags))

	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4.1-mini", c.Model, "flag beats file")
	assert.Equal(t, 6, c.MaxIterations, "env beats file")
	assert.Equal(t, "sk-env", c.APIKey)
	assert.Equal(t, models.ProviderOpenAI, c.Provider)
	assert.Equal(t, "threads.db", c.CheckpointDSN)
	assert.Equal(t, 0.5, c.Temperature)
	assert.Equal(t, models.Settings{
		Provider: models.ProviderOpenAI,
		APIKey:   "sk-env",
		Model:    "gpt-4.1-mini",
	}, c.Settings())
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := NewViper(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "convo.yaml")
	require.NoError(t, os.WriteFile(file, []byte("provider: bard\n"), 0o600))
	v, err := NewViper(file)
	require.NoError(t, err)
	_, err = Load(v)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestInitLogger(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	file := filepath.Join(t.TempDir(), "convo.log")
	c := validConfig()
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.LogFile = file

	var stderr bytes.Buffer
	closer, err := InitLogger(c, &stderr)
	require.NoError(t, err)

	log.Info().Str("thread", "user_1").Msg("checkpoint saved")
	log.Debug().Msg("hidden")
	require.NoError(t, closer.Close())

	assert.Contains(t, stderr.String(), `"message":"checkpoint saved"`)
	assert.NotContains(t, stderr.String(), "hidden")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "checkpoint saved")
	assert.Contains(t, string(data), "thread=user_1")

	c.LogLevel = "loud"
	_, err = InitLogger(c, &stderr)
	assert.Error(t, err)
}
