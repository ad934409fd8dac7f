package models

import (
	"errors"
	"fmt"

	"github.com/rickchristie/convo"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider names accepted by New.
const (
	ProviderLangChainGo = "langchaingo"
	ProviderOpenAI      = "openai"
	ProviderGitHub      = "github"
)

var (
	// ErrUnknownProvider is returned by New for an unrecognised provider name.
	ErrUnknownProvider = errors.New("models: unknown provider")

	// ErrMissingAPIKey is returned when a provider needs a key and none was given.
	ErrMissingAPIKey = errors.New("models: missing api key")
)

// Providers lists the names New accepts.
func Providers() []string {
	return []string{ProviderLangChainGo, ProviderOpenAI, ProviderGitHub}
}

// Settings selects and configures a backend.
type Settings struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

// New builds the backend named by s.Provider.
func New(s Settings) (convo.Model, error) {
	switch s.Provider {
	case ProviderLangChainGo, "":
		return NewLangChainGoOpenAI(s.APIKey, s.BaseURL, s.Model)
	case ProviderOpenAI:
		if s.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewOpenAI(s.APIKey, s.BaseURL, s.Model), nil
	case ProviderGitHub:
		return NewGitHubModel(GitHubModelName(s.Model), s.APIKey)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, s.Provider)
}

// NewLangChainGoOpenAI creates an LCGWrapper over LangChainGo's OpenAI client. An empty
// baseURL uses api.openai.com.
func NewLangChainGoOpenAI(apiKey, baseURL, model string) (*LCGWrapper, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	opts := []openai.Option{openai.WithToken(apiKey)}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangChainGo OpenAI client: %w", err)
	}
	return NewLCGWrapper(llm).WithModelName(model), nil
}
