package cognition

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON reports that a reply contained no locatable JSON value.
// Engine replies wrapped in commentary are tolerated; replies with no
// JSON at all fail loudly rather than being silently mis-parsed.
var ErrNoJSON = errors.New("no JSON found in engine reply")

// ExtractJSON locates the JSON payload inside a raw engine reply.
//
// Models frequently wrap their JSON in Markdown code fences or surround
// it with commentary. The recovery here is deliberately conservative:
// strip a ```json or ``` fence if present, otherwise take the span of
// whichever delimiter pair ('{'…'}' or '['…']') opens first. No
// arbitrary repair is attempted; if the candidate span does not parse,
// the original decode error is returned.
func ExtractJSON(raw string) (json.RawMessage, error) {
	cleaned := strings.TrimSpace(raw)

	if idx := strings.Index(cleaned, "```json"); idx >= 0 {
		cleaned = cleaned[idx+len("```json"):]
		if end := strings.Index(cleaned, "```"); end >= 0 {
			cleaned = cleaned[:end]
		}
	} else if idx := strings.Index(cleaned, "```"); idx >= 0 {
		cleaned = cleaned[idx+len("```"):]
		if end := strings.Index(cleaned, "```"); end >= 0 {
			cleaned = cleaned[:end]
		}
	}
	cleaned = strings.TrimSpace(cleaned)

	if json.Valid([]byte(cleaned)) {
		return json.RawMessage(cleaned), nil
	}

	objSpan, objOK := span(cleaned, '{', '}')
	listSpan, listOK := span(cleaned, '[', ']')

	var candidate string
	switch {
	case objOK && listOK:
		// A list reply usually holds objects inside the array, so the
		// pair whose opener appears first is the outer value.
		if strings.IndexByte(cleaned, '[') < strings.IndexByte(cleaned, '{') {
			candidate = listSpan
		} else {
			candidate = objSpan
		}
	case objOK:
		candidate = objSpan
	case listOK:
		candidate = listSpan
	default:
		return nil, ErrNoJSON
	}
	if !json.Valid([]byte(candidate)) {
		return nil, fmt.Errorf("located JSON span does not parse: %w", ErrNoJSON)
	}
	return json.RawMessage(candidate), nil
}

// ExtractObject decodes an object-shaped engine reply.
func ExtractObject(raw string) (map[string]any, error) {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil, fmt.Errorf("engine reply is not a JSON object: %w", err)
	}
	return obj, nil
}

// ExtractList decodes a list-shaped engine reply. An object reply with a
// "patterns" list field is unwrapped, matching the most common deviation
// real models produce for list prompts.
func ExtractList(raw string) ([]any, error) {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	var list []any
	if err := json.Unmarshal(payload, &list); err == nil {
		return list, nil
	}

	var obj map[string]any
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil, fmt.Errorf("engine reply is neither a JSON list nor an object: %w", err)
	}
	if wrapped, ok := obj["patterns"].([]any); ok {
		return wrapped, nil
	}
	return nil, fmt.Errorf("engine reply object has no patterns list: %w", ErrNoJSON)
}

// span returns the substring from the first open delimiter to the last
// close delimiter, when both exist in order.
func span(s string, open, closing byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, closing)
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// stubReply reports whether a parsed object is a stub marker, covering
// misconfigured real engines that proxy a stub backend.
func stubReply(obj map[string]any) bool {
	marked, _ := obj["stub"].(bool)
	return marked
}
