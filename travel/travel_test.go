package travel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rickchristie/convo/toolbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_CheckWeather(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "tokyo", input: "Tokyo", expected: "Tokyo: Partly cloudy, 22°C, high humidity"},
		{name: "paris", input: "Paris", expected: "Paris: Sunny, 18°C, comfortable"},
		{name: "new york", input: "New York", expected: "New York: Rainy, 15°C, cool"},
		{name: "sydney", input: "Sydney", expected: "Sydney: Clear, 25°C, warm"},
		{name: "unknown city", input: "Atlantis", expected: "Atlantis: City not found"},
		{name: "case sensitive", input: "tokyo", expected: "tokyo: City not found"},
	}

	d := DefaultDirectory()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, d.CheckWeather(tt.input))
		})
	}
}

func TestDirectory_SearchHotels(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "city and budget",
			input:    "Paris, budget",
			expected: "Budget hotels in Paris: Ace Hotel Paris, St Christopher Inn",
		},
		{
			name:     "budget defaults to mid",
			input:    "Tokyo",
			expected: "Mid hotels in Tokyo: Shibuya Excel Hotel, Mitsui Garden Hotel",
		},
		{
			name:     "surrounding whitespace",
			input:    "  Tokyo ,  luxury ",
			expected: "Luxury hotels in Tokyo: Four Seasons Tokyo, Mandarin Oriental Tokyo",
		},
		{
			name:     "unknown budget yields empty list",
			input:    "Tokyo, hostel",
			expected: "Hostel hotels in Tokyo: ",
		},
		{
			name:     "unknown city",
			input:    "Sydney, mid",
			expected: "No hotels found for Sydney",
		},
	}

	d := DefaultDirectory()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, d.SearchHotels(tt.input))
		})
	}
}

func TestDirectory_GetAttractions(t *testing.T) {
	d := DefaultDirectory()

	assert.Equal(t,
		"Eiffel Tower, Louvre Museum, Notre-Dame, Champs-Élysées",
		d.GetAttractions("Paris"))
	assert.Equal(t, "No attractions data for Sydney", d.GetAttractions("Sydney"))
}

func TestLoadDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
weather:
  Lisbon: Windy, 19°C
hotels:
  Lisbon:
    mid: [Hotel Avenida]
`), 0o600))

	d, err := LoadDirectory(path)
	require.NoError(t, err)

	assert.Equal(t, "Lisbon: Windy, 19°C", d.CheckWeather("Lisbon"))
	assert.Equal(t, "Mid hotels in Lisbon: Hotel Avenida", d.SearchHotels("Lisbon"))
	assert.Equal(t, "No attractions data for Lisbon", d.GetAttractions("Lisbon"))

	_, err = LoadDirectory(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestTools(t *testing.T) {
	reg, err := toolbox.NewRegistry(Tools(DefaultDirectory())...)
	require.NoError(t, err)

	assert.Equal(t, []string{"check_weather", "search_hotels", "get_attractions"}, reg.Names())

	out, err := reg.Invoke(context.Background(), "search_hotels", "Tokyo, mid")
	require.NoError(t, err)
	assert.Equal(t, "Mid hotels in Tokyo: Shibuya Excel Hotel, Mitsui Garden Hotel", out)
}

func TestSystemPrompt(t *testing.T) {
	reg := toolbox.MustNewRegistry(Tools(DefaultDirectory())...)
	prompt := SystemPrompt(reg)

	assert.Contains(t, prompt, "You are a helpful travel assistant. When users ask questions")
	assert.Contains(t, prompt, "- check_weather: <city> - Get current weather and forecast")
	assert.Contains(t, prompt, "- search_hotels: <city, budget> - Find hotels matching criteria")
	assert.Contains(t, prompt, "- get_attractions: <city> - List top attractions in the area")
	assert.Contains(t, prompt, "Use these tools to help users plan trips. Call one tool per response, then STOP.")
	assert.Contains(t, prompt, "Action: check_weather: Tokyo")
}
