package models

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/llms/openai"
)

// GitHubModelsBaseURL is the base URL for the GitHub Models API.
// The OpenAI-compatible chat completions endpoint is at {baseURL}/chat/completions.
const GitHubModelsBaseURL = "https://models.github.ai/inference"

// GitHubModelName returns name in the publisher/model form GitHub Models expects. Bare names
// such as "gpt-4o-mini" are assumed to be OpenAI models.
func GitHubModelName(name string) string {
	if name == "" || strings.Contains(name, "/") {
		return name
	}
	return "openai/" + name
}

// githubDoer injects the GitHub API version header into every request.
type githubDoer struct {
	client *http.Client
}

func (d *githubDoer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	return d.client.Do(req)
}

// NewGitHubModel creates a Model backed by the GitHub Models API.
//
// The token must be a GitHub fine-grained personal access token with the models:read
// permission. Model names use the publisher/model format, e.g. "openai/gpt-4o-mini".
func NewGitHubModel(model, token string, opts ...openai.Option) (*LCGWrapper, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: github token with models:read is required", ErrMissingAPIKey)
	}

	baseOpts := []openai.Option{
		openai.WithBaseURL(GitHubModelsBaseURL),
		openai.WithToken(token),
		openai.WithModel(model),
		openai.WithHTTPClient(&githubDoer{client: http.DefaultClient}),
	}
	// Caller options come last so they can override the defaults.
	llm, err := openai.New(append(baseOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub Models client: %w", err)
	}
	return NewLCGWrapper(llm).WithModelName(model), nil
}
