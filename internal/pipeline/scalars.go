package pipeline

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Text decodes a field that should be a string. null becomes "", and any
// other non-string value is kept as compact JSON.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, b); err != nil {
		return err
	}
	*t = Text(compact.String())
	return nil
}

func (t Text) String() string { return string(t) }

// Flag decodes a boolean that models often send as "true"/"false" strings.
// Unrecognised values decode as false.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*f = Flag(t)
	case float64:
		*f = t != 0
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			parsed = strings.EqualFold(strings.TrimSpace(t), "yes")
		}
		*f = Flag(parsed)
	default:
		*f = false
	}
	return nil
}
