package providers

import (
	"regexp"
	"strings"
)

var (
	rxFenceOpen  = regexp.MustCompile("(?i)^```[a-z]*[ \t]*\r?\n?")
	rxFenceClose = regexp.MustCompile("\r?\n?```[ \t]*$")
	rxQuoteOpen  = regexp.MustCompile(`^['"]{1,3}`)
	rxQuoteClose = regexp.MustCompile(`['"]{1,3}$`)
)

// CleanModelOutput normalizes raw model text before JSON parsing. Order
// matters: code fences come off first, then stray wrapping quotes, then the
// first balanced JSON object or array is cut out. When nothing balanced is
// found the cleaned text is returned as-is and the caller's json.Unmarshal
// decides what to do with it.
func CleanModelOutput(raw string) string {
	s := strings.TrimSpace(raw)
	s = rxFenceOpen.ReplaceAllString(s, "")
	s = rxFenceClose.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = rxQuoteOpen.ReplaceAllString(s, "")
	s = rxQuoteClose.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if obj, ok := ExtractJSON(s); ok {
		return obj
	}
	return s
}

// ExtractJSON returns the first balanced {...} or [...] substring. The
// scanner is string-aware, so braces inside quoted values don't throw the
// count off (a plain regex does exactly that on quiz explanations).
func ExtractJSON(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", false
	}

	var stack []byte
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, ch)
		case '}', ']':
			if len(stack) == 0 {
				return "", false
			}
			open := stack[len(stack)-1]
			if (ch == '}' && open != '{') || (ch == ']' && open != '[') {
				return "", false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
