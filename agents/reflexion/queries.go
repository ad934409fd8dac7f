package reflexion

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rickchristie/convo/schema"
)

// ErrStructuredOutput is returned when the model's reply cannot be read as [Queries].
var ErrStructuredOutput = errors.New("reflexion: invalid structured output")

// Queries is the structured reply of the research nodes.
type Queries struct {
	Queries []string `json:"queries" jsonschema:"minItems=1,description=Search engine queries"`
}

var queriesSchema = schema.MustFor[Queries]()

// QueriesSchema returns the JSON Schema the research nodes ask the model to follow.
func QueriesSchema() *schema.Schema {
	return queriesSchema
}

// ParseQueries finds the first JSON object in reply (bare, inside prose or inside a ```
// fence) that matches [QueriesSchema] and decodes it. Braces that do not start a valid
// object are skipped.
func ParseQueries(reply string) (Queries, error) {
	var lastErr error
	for _, raw := range jsonObjects(reply) {
		q, err := schema.DecodeJSON[Queries](queriesSchema, raw)
		if err == nil {
			return q, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		return Queries{}, fmt.Errorf("%w: no JSON object in reply", ErrStructuredOutput)
	}
	return Queries{}, fmt.Errorf("%w: %w", ErrStructuredOutput, lastErr)
}

// jsonObjects returns every JSON object that starts at a '{' in text and decodes cleanly,
// in order of appearance. Objects nested in an earlier match are skipped.
func jsonObjects(text string) []json.RawMessage {
	out := make([]json.RawMessage, 0)
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			continue
		}
		out = append(out, raw)
		i += int(dec.InputOffset()) - 1
	}
	return out
}
