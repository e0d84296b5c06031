package llm

import "testing"

func TestSanitizeRemovesDeniedTokens(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain", in: "  Go, Kubernetes  ", want: "Go, Kubernetes"},
		{name: "markup", in: "<b>Senior</b> & Lead", want: "bSenior/b  Lead"},
		{name: "quotes", in: `"quoted" 'single' ` + "`tick`", want: "quoted single tick"},
		{name: "script tag", in: "<script>alert(1)</script>", want: "alert(1)/"},
		{name: "javascript scheme", in: "JavaScript:void(0)", want: ":void(0)"},
		{name: "nested token", in: "scrscriptipt", want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"5 years Python, Django, REST APIs",
		"<<script>>",
		"java<script>script",
		"scr<ipt",
		" & ' \" ` ",
		"jjavascriptavascript",
		"\xff\xfe<broken utf8>",
		"  trailing script  ",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Fatalf("Sanitize not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}
