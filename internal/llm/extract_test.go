package llm

import (
	"reflect"
	"testing"
)

func TestExtractJSONFromProse(t *testing.T) {
	raw := "Here is the analysis: {\"ats_score\": \"82\", \"strengths\": [\"x\"]}"
	got, ok := ExtractJSON(raw)
	if !ok {
		t.Fatalf("expected JSON to be found")
	}
	want := map[string]any{"ats_score": "82", "strengths": []any{"x"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestExtractJSONMarkdownFence(t *testing.T) {
	raw := "```json\n{\"role_analysis\": \"ok\", \"nested\": {\"a\": 1}}\n```\nThanks!"
	got, ok := ExtractJSON(raw)
	if !ok {
		t.Fatalf("expected JSON to be found")
	}
	nested, _ := got["nested"].(map[string]any)
	if got["role_analysis"] != "ok" || nested["a"] != float64(1) {
		t.Fatalf("unexpected parse: %#v", got)
	}
}

func TestExtractJSONNotFound(t *testing.T) {
	inputs := []string{
		"",
		"no braces at all",
		"}{",
		"{ unbalanced",
		"unbalanced }",
		"{not json}",
		"[1,2,3]",
		"{\"a\": 1} and then {\"b\": 2}",
		"\xff\xfe{\x00",
		"{",
	}
	for _, in := range inputs {
		got, ok := ExtractJSON(in)
		if ok || got != nil {
			t.Fatalf("ExtractJSON(%q) = %#v, %v; want not found", in, got, ok)
		}
	}
}

func TestExtractJSONObjectReturnsSpan(t *testing.T) {
	raw, ok := ExtractJSONObject("prefix {\"latex_content\": \"x\"} suffix")
	if !ok {
		t.Fatalf("expected span")
	}
	if string(raw) != "{\"latex_content\": \"x\"}" {
		t.Fatalf("unexpected span %q", string(raw))
	}
}
