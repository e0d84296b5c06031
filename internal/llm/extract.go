package llm

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractJSONObject returns the span from the first '{' to the last '}' in raw
// when that span is a valid JSON object.
//
// The scan tolerates prose and markdown fences around the object. It fails on
// replies with several top-level objects or stray braces outside the intended
// object.
func ExtractJSONObject(raw string) (json.RawMessage, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	candidate := raw[start : end+1]
	if !gjson.Valid(candidate) {
		return nil, false
	}
	if !gjson.Parse(candidate).IsObject() {
		return nil, false
	}
	return json.RawMessage(candidate), true
}

// ExtractJSON parses the object located by ExtractJSONObject. It never panics;
// any failure is reported as not found.
func ExtractJSON(raw string) (map[string]any, bool) {
	candidate, ok := ExtractJSONObject(raw)
	if !ok {
		return nil, false
	}
	var out map[string]any
	if err := json.Unmarshal(candidate, &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}
