package personageneration

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spacesedan/redditpersona/internal/models"
)

// ParseError means the model reply held no usable JSON object.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse persona: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParsePersona accepts a bare JSON object, a fenced one, or one embedded in prose.
func ParsePersona(text string) (*models.Persona, error) {
	cleaned := cleanLLMResponse(text)
	if cleaned == "" {
		return nil, &ParseError{Raw: text, Err: fmt.Errorf("empty response")}
	}

	// a strict parse only counts for an object; "null" or a bare scalar would
	// otherwise decode into an empty persona
	err := fmt.Errorf("response is not a JSON object")
	if strings.HasPrefix(cleaned, "{") {
		var persona models.Persona
		if err = json.Unmarshal([]byte(cleaned), &persona); err == nil {
			return &persona, nil
		}
	}

	for _, candidate := range balancedObjects(cleaned) {
		var p models.Persona
		if json.Unmarshal([]byte(candidate), &p) == nil {
			slog.Debug("[PersonaGenerator] Recovered persona from surrounding text",
				slog.Int("raw_length", len(text)),
				slog.Int("object_length", len(candidate)))
			return &p, nil
		}
	}

	return nil, &ParseError{Raw: text, Err: err}
}

// cleanLLMResponse trims whitespace and markdown code fences.
func cleanLLMResponse(response string) string {
	cleaned := strings.TrimSpace(response)

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		// drop the info string, e.g. "json"
		if nl := strings.IndexByte(cleaned, '\n'); nl >= 0 {
			if info := strings.TrimSpace(cleaned[:nl]); !strings.ContainsAny(info, "{}") {
				cleaned = cleaned[nl+1:]
			}
		}
		cleaned = strings.TrimSpace(cleaned)
		cleaned = strings.TrimSuffix(cleaned, "```")
	}

	return strings.TrimSpace(cleaned)
}

// balancedObjects returns every top level {...} span in order of appearance.
// Braces inside JSON strings are ignored.
func balancedObjects(s string) []string {
	var out []string
	for start := strings.IndexByte(s, '{'); start >= 0; {
		end := matchBrace(s, start)
		if end < 0 {
			next := strings.IndexByte(s[start+1:], '{')
			if next < 0 {
				break
			}
			start += next + 1
			continue
		}
		out = append(out, s[start:end+1])
		next := strings.IndexByte(s[end+1:], '{')
		if next < 0 {
			break
		}
		start = end + 1 + next
	}
	return out
}

func matchBrace(s string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
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
