package pipeline

import (
	"encoding/json"

	"hirevision-backend/internal/llm"
)

const malformedMessage = "The AI service returned a response that could not be read. Please try again."

// Extraction is the JSON object located in a provider reply.
type Extraction struct {
	Raw    json.RawMessage
	Fields map[string]any
}

// Extract locates the JSON object in reply. When none is found it returns
// (nil, nil) under PolicyDegrade so the caller can build its fallback result,
// and an OutcomeMalformedResponse failure under PolicyStrict.
func Extract(reply string, policy MalformedPolicy) (*Extraction, error) {
	raw, ok := llm.ExtractJSONObject(reply)
	if ok {
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err == nil && fields != nil {
			return &Extraction{Raw: raw, Fields: fields}, nil
		}
	}
	if policy == PolicyStrict {
		return nil, Fail(OutcomeMalformedResponse, malformedMessage)
	}
	return nil, nil
}
