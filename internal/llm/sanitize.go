package llm

import (
	"regexp"
	"strings"
)

var deniedInput = regexp.MustCompile("(?i)javascript|script|[<>\"'`&]")

// Sanitize strips markup and quote characters from free text before it is
// embedded in a prompt, then trims surrounding whitespace.
//
// This is a blunt denylist, not an HTML sanitizer: it reduces prompt and
// markup injection noise but offers no guarantee for rendering untrusted text.
// Removal repeats until nothing changes, so Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(text string) string {
	out := strings.TrimSpace(text)
	for {
		next := strings.TrimSpace(deniedInput.ReplaceAllString(out, ""))
		if next == out {
			return out
		}
		out = next
	}
}
