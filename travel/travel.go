// Package travel provides the demo travel-assistant tools: weather, hotel and attraction
// lookups over a small in-memory directory.
package travel

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/rickchristie/convo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultBudget is used by SearchHotels when the input names no budget.
const DefaultBudget = "mid"

//go:embed data.yaml
var defaultData []byte

// Directory is the data the travel tools look things up in. City and budget keys are
// matched exactly.
type Directory struct {
	Weather     map[string]string              `yaml:"weather"`
	Hotels      map[string]map[string][]string `yaml:"hotels"`
	Attractions map[string][]string            `yaml:"attractions"`
}

// ParseDirectory decodes a YAML directory.
func ParseDirectory(data []byte) (*Directory, error) {
	var d Directory
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("travel: parse directory: %w", err)
	}
	return &d, nil
}

// LoadDirectory reads a YAML directory from path.
func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("travel: read directory: %w", err)
	}
	return ParseDirectory(data)
}

// DefaultDirectory returns the built-in mock data (Tokyo, Paris, New York, Sydney).
func DefaultDirectory() *Directory {
	d, err := ParseDirectory(defaultData)
	if err != nil {
		panic(err)
	}
	return d
}

// CheckWeather returns "<city>: <weather>", or "<city>: City not found".
func (d *Directory) CheckWeather(city string) string {
	weather, ok := d.Weather[city]
	if !ok {
		weather = "City not found"
	}
	return city + ": " + weather
}

// SearchHotels takes "<city>, <budget>" and lists the matching hotels. The budget defaults
// to [DefaultBudget]. An unknown budget yields an empty list rather than an error.
func (d *Directory) SearchHotels(cityAndBudget string) string {
	parts := strings.Split(cityAndBudget, ",")
	city := strings.TrimSpace(parts[0])
	budget := DefaultBudget
	if len(parts) > 1 {
		budget = strings.TrimSpace(parts[1])
	}

	byBudget, ok := d.Hotels[city]
	if !ok {
		return "No hotels found for " + city
	}
	hotels := byBudget[budget]
	return fmt.Sprintf("%s hotels in %s: %s",
		cases.Title(language.Und).String(budget), city, strings.Join(hotels, ", "))
}

// GetAttractions lists the top attractions of city.
func (d *Directory) GetAttractions(city string) string {
	attractions, ok := d.Attractions[city]
	if !ok {
		return "No attractions data for " + city
	}
	return strings.Join(attractions, ", ")
}

// Tools returns check_weather, search_hotels and get_attractions bound to d.
func Tools(d *Directory) []convo.Tool {
	return []convo.Tool{
		convo.NewLookupTool("check_weather",
			"<city> - Get current weather and forecast", d.CheckWeather),
		convo.NewLookupTool("search_hotels",
			"<city, budget> - Find hotels matching criteria", d.SearchHotels),
		convo.NewLookupTool("get_attractions",
			"<city> - List top attractions in the area", d.GetAttractions),
	}
}
