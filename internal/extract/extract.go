// Package extract pulls structured payloads out of chat model replies.
// Models wrap JSON in markdown fences, emit single quotes, or skip the
// fence entirely, so every helper here is tolerant by construction.
package extract

import (
	"encoding/json"
	"strings"
)

// RawTagsKey is the metadata key used to preserve a tag reply that could not
// be decoded as JSON.
const RawTagsKey = "tags_raw"

// TagResult carries decoded tag pairs, or the raw reply when decoding failed.
type TagResult struct {
	Tags map[string]string
	Raw  string
}

// FencedBlock returns the body of the first fenced code block in the reply.
// A language tag on the opening fence is ignored. Replies without a fence
// come back whole, trimmed.
func FencedBlock(reply string) string {
	trimmed := strings.TrimSpace(reply)
	start := strings.Index(trimmed, "```")
	if start < 0 {
		return trimmed
	}
	rest := trimmed[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// Drop the language tag line (```json, ```python, or bare ```).
		rest = rest[nl+1:]
	}
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// Tags decodes a tag reply into a name/description mapping. The expected
// shape is an array of {Name, Description} objects; a flat object is accepted
// too. Single-quoted pseudo-JSON is normalized before decoding, malformed
// entries are skipped, and a reply that fails to decode at all is preserved
// raw instead of being dropped.
func Tags(reply string) TagResult {
	body := normalizeQuotes(FencedBlock(reply))

	var entries []map[string]any
	if err := json.Unmarshal([]byte(body), &entries); err == nil {
		pairs := make(map[string]string, len(entries))
		for _, entry := range entries {
			name, ok := entry["Name"].(string)
			if !ok || strings.TrimSpace(name) == "" {
				continue
			}
			pairs[name] = stringifyValue(entry["Description"])
		}
		return TagResult{Tags: pairs}
	}

	var loose map[string]any
	if err := json.Unmarshal([]byte(body), &loose); err == nil && len(loose) > 0 {
		pairs := make(map[string]string, len(loose))
		for k, v := range loose {
			pairs[k] = stringifyValue(v)
		}
		return TagResult{Tags: pairs}
	}

	return TagResult{Raw: strings.TrimSpace(reply)}
}

func stringifyValue(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

// Checklist decodes a checklist reply into ordered item texts. Items may be
// plain strings or objects with a text-like field. Undecodable replies yield
// an empty list so the pipeline can proceed without checklist items.
func Checklist(reply string) []string {
	body := normalizeQuotes(FencedBlock(reply))

	var items []string
	if err := json.Unmarshal([]byte(body), &items); err == nil {
		return compactStrings(items)
	}

	var loose []any
	if err := json.Unmarshal([]byte(body), &loose); err != nil {
		return nil
	}
	out := make([]string, 0, len(loose))
	for _, entry := range loose {
		switch v := entry.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			if text := objectText(v); text != "" {
				out = append(out, text)
			}
		}
	}
	return compactStrings(out)
}

func objectText(obj map[string]any) string {
	for _, key := range []string{"text", "item", "step", "description"} {
		if v, ok := obj[key].(string); ok {
			return v
		}
	}
	return ""
}

func compactStrings(items []string) []string {
	out := items[:0]
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// normalizeQuotes converts single-quoted pseudo-JSON into decodable JSON.
// Quotes inside double-quoted strings are left alone.
func normalizeQuotes(body string) string {
	if !strings.Contains(body, "'") {
		return body
	}
	var b strings.Builder
	b.Grow(len(body))
	inString := false
	escaped := false
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case c == '\'' && !inString:
			c = '"'
		}
		b.WriteByte(c)
	}
	return b.String()
}
