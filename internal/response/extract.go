// Package response turns raw generation-service output into the canonical
// record collection. The service is told to emit strict JSON but does not
// always comply, so every step here is defensive.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when no parsable JSON value can be recovered.
var ErrNoJSON = errors.New("no JSON object found in model output")

const diagnosticPrefix = 200

// ExtractJSON returns the JSON document contained in text. It tries a direct
// parse first, then the first balanced {...} region that parses.
func ExtractJSON(text string) ([]byte, error) {
	text = cleanJSONBlock(text)
	if text != "" && json.Valid([]byte(text)) {
		return []byte(text), nil
	}

	for start := strings.IndexByte(text, '{'); start >= 0; {
		end := matchingBrace(text, start)
		if end < 0 {
			break
		}
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return []byte(candidate), nil
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}

	return nil, fmt.Errorf("%w: %q", ErrNoJSON, prefix(text, diagnosticPrefix))
}

// matchingBrace returns the index of the brace closing the one at start, or -1
// when the region is unbalanced. Braces inside string literals are ignored.
func matchingBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// cleanJSONBlock removes markdown code fences the model sometimes adds.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		lang := strings.TrimSpace(text[:idx])
		if !strings.ContainsAny(lang, "{[ ") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
