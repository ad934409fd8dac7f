// Package search provides the research backends used by the reflexion writer.
package search

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Result is one search hit.
type Result struct {
	Title   string  `yaml:"title" json:"title"`
	URL     string  `yaml:"url" json:"url"`
	Content string  `yaml:"content" json:"content"`
	Score   float64 `yaml:"-" json:"score"`
}

// Searcher looks up documents for a query, returning at most maxResults hits, best first.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

//go:embed corpus.yaml
var defaultCorpus []byte

// Static searches a fixed in-memory corpus by keyword overlap. It is deterministic, which
// makes it the default backend for offline runs and tests.
type Static struct {
	docs []Result
}

// NewStatic creates a searcher over docs.
func NewStatic(docs []Result) *Static {
	return &Static{docs: docs}
}

// ParseStatic decodes a YAML list of results into a searcher.
func ParseStatic(data []byte) (*Static, error) {
	var docs []Result
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("search: parse corpus: %w", err)
	}
	return NewStatic(docs), nil
}

// LoadStatic reads a YAML corpus from path.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("search: read corpus: %w", err)
	}
	return ParseStatic(data)
}

// DefaultCorpus returns a searcher over the built-in renewable energy corpus.
func DefaultCorpus() *Static {
	s, err := ParseStatic(defaultCorpus)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of documents.
func (s *Static) Len() int {
	return len(s.docs)
}

// Search scores each document by how many distinct query terms occur in its title or
// content. Documents without any match are never returned; ties keep corpus order.
func (s *Static) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	terms := tokenize(query)
	if len(terms) == 0 || maxResults <= 0 {
		return nil, nil
	}

	hits := make([]Result, 0)
	for _, doc := range s.docs {
		words := make(map[string]struct{})
		for _, w := range tokenize(doc.Title + " " + doc.Content) {
			words[w] = struct{}{}
		}
		matched := 0
		for _, term := range terms {
			if _, ok := words[term]; ok {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		hit := doc
		hit.Score = float64(matched) / float64(len(terms))
		hits = append(hits, hit)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	return hits, nil
}

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "that": {}, "this": {},
	"are": {}, "was": {}, "what": {}, "how": {}, "its": {}, "into": {}, "about": {},
}

// tokenize lowercases text and returns its distinct words of three or more letters,
// skipping stop words.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < 3 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

var _ Searcher = (*Static)(nil)
