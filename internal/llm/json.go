package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"blogagent/internal/core"
)

// fencedJSON matches a response that is a single fenced block from start to
// end, so fences inside string values are left alone.
var fencedJSON = regexp.MustCompile("(?s)^\\s*```(?:json|JSON)?\\s*(.*)\\s*```\\s*$")

// ExtractJSON returns the JSON object embedded in a model response. A bare
// object is used as is, then a response wrapped in one fence, then the
// outermost braces.
func ExtractJSON(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if isObject(text) {
		return text, nil
	}
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		inner := strings.TrimSpace(m[1])
		if isObject(inner) {
			return inner, nil
		}
		text = inner
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no JSON object in response", core.ErrValidation)
	}
	return text[start : end+1], nil
}

func isObject(text string) bool {
	return strings.HasPrefix(text, "{") && json.Valid([]byte(text))
}

// DecodeJSON parses a model response into its top-level fields and checks
// that every field the schema declares is present.
func DecodeJSON(raw string, schema *Schema) (map[string]json.RawMessage, error) {
	body, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", core.ErrValidation, err)
	}

	if schema != nil {
		for _, name := range schema.Names() {
			if _, ok := fields[name]; !ok {
				return nil, fmt.Errorf("%w: missing field %q", core.ErrValidation, name)
			}
		}
	}
	return fields, nil
}
