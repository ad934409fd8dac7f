package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_Search(t *testing.T) {
	type input struct {
		query      string
		maxResults int
	}

	tests := []struct {
		name     string
		input    input
		expected []string
	}{
		{
			name:     "best match first then corpus order",
			input:    input{query: "solar photovoltaic cost", maxResults: 2},
			expected: []string{"https://example.org/energy/solar-cost", "https://example.org/climate/power-emissions"},
		},
		{
			name:     "case insensitive",
			input:    input{query: "OFFSHORE Wind", maxResults: 1},
			expected: []string{"https://example.org/energy/wind-capacity"},
		},
		{
			name:     "no overlap",
			input:    input{query: "medieval poetry", maxResults: 2},
			expected: []string{},
		},
		{
			name:     "stop words only",
			input:    input{query: "what are the", maxResults: 2},
			expected: []string{},
		},
		{
			name:     "zero results requested",
			input:    input{query: "solar", maxResults: 0},
			expected: []string{},
		},
	}

	s := DefaultCorpus()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.Search(context.Background(), tt.input.query, tt.input.maxResults)
			require.NoError(t, err)

			urls := make([]string, 0, len(results))
			for _, r := range results {
				urls = append(urls, r.URL)
				assert.Greater(t, r.Score, 0.0)
			}
			assert.Equal(t, tt.expected, urls)
		})
	}
}

func TestStatic_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DefaultCorpus().Search(ctx, "solar", 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseStatic(t *testing.T) {
	s, err := ParseStatic([]byte(`
- title: Tidal energy
  url: https://example.org/tidal
  content: Tidal turbines exploit predictable ocean currents.
`))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	results, err := s.Search(context.Background(), "ocean tidal", 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Tidal energy", results[0].Title)
	assert.Equal(t, 1.0, results[0].Score)

	_, err = ParseStatic([]byte("title: [unclosed"))
	assert.Error(t, err)
}

func TestTavily_Search(t *testing.T) {
	var received tavilyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tvly-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [
			{"title": "A", "url": "https://a", "content": "first", "score": 0.9},
			{"title": "B", "url": "https://b", "content": "second", "score": 0.8},
			{"title": "C", "url": "https://c", "content": "third", "score": 0.7}
		]}`))
	}))
	defer server.Close()

	s := NewTavily("tvly-test", WithTavilyURL(server.URL), WithHTTPClient(server.Client()))
	results, err := s.Search(context.Background(), "renewables", 2)
	require.NoError(t, err)

	assert.Equal(t, tavilyRequest{Query: "renewables", MaxResults: 2}, received)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Content)
	assert.Equal(t, 0.8, results[1].Score)
}

func TestTavily_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewTavily("bad", WithTavilyURL(server.URL)).Search(context.Background(), "q", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid api key")
}
