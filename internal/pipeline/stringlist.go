package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// StringList decodes model output that should be a list of strings. Models
// sometimes return objects inside the list or a bare value instead of a list,
// so non-string items are kept as compact JSON and a bare value becomes a
// one-item list.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = StringList{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = StringList{}
		if strings.TrimSpace(s) != "" {
			*l = StringList{s}
		}
		return nil
	}
	if b[0] != '[' {
		var compact bytes.Buffer
		if err := json.Compact(&compact, b); err != nil {
			return err
		}
		*l = StringList{compact.String()}
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	out := make(StringList, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
			continue
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, item); err != nil {
			return err
		}
		if compact.String() != "null" {
			out = append(out, compact.String())
		}
	}
	*l = out
	return nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// ObjectList decodes b as a list of T for fields the model may send as a
// list, a single object or a bare string. Objects decode into T, strings go
// through fromString, and anything else is skipped. Only malformed JSON is
// an error.
func ObjectList[T any](b []byte, fromString func(string) T) ([]T, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return []T{}, nil
	}
	items := []json.RawMessage{b}
	if b[0] == '[' {
		if err := json.Unmarshal(b, &items); err != nil {
			return nil, err
		}
	} else if !json.Valid(b) {
		return nil, errors.New("invalid JSON")
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			continue
		}
		switch item[0] {
		case '{':
			var v T
			if err := json.Unmarshal(item, &v); err == nil {
				out = append(out, v)
			}
		case '"':
			var s string
			if err := json.Unmarshal(item, &s); err == nil && strings.TrimSpace(s) != "" && fromString != nil {
				out = append(out, fromString(strings.TrimSpace(s)))
			}
		}
	}
	return out, nil
}
