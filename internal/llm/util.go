// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import (
	"encoding/json"
	"strings"
)

// CleanJSONBlock removes markdown code block wrappers and any conversational
// text around the first JSON object or array in a response.
func CleanJSONBlock(text string) string {
	text = stripFence(text)

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	var value string
	if text[start] == '{' {
		value = extractJSONObject(text[start:])
	} else {
		value = extractJSONArray(text[start:])
	}
	if value == "" {
		return strings.TrimSpace(text[start:])
	}
	return value
}

// stripFence drops a leading ``` or ```lang line and a trailing ``` if present.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := text[:idx]
		// Language identifier: short, no spaces, no JSON
		if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.ContainsAny(firstLine, "{[") {
			text = text[idx+1:]
		}
	} else if !strings.ContainsAny(text, "{[") {
		return ""
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// extractJSONObject returns the balanced object at the start of text, or "".
func extractJSONObject(text string) string {
	if !strings.HasPrefix(text, "{") {
		return ""
	}
	return balanced(text)
}

// extractJSONArray returns the balanced array at the start of text, or "".
func extractJSONArray(text string) string {
	if !strings.HasPrefix(text, "[") {
		return ""
	}
	return balanced(text)
}

func balanced(text string) string {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(text); i++ {
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
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return ""
}

// CompletePartialJSON turns the prefix of a JSON document that is still being
// generated into a valid document by closing open strings and containers.
// Dangling keys, literals and commas are cut back to the last complete value.
// It reports false when nothing usable has arrived yet.
func CompletePartialJSON(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		} else {
			return "", false
		}
	}
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", false
	}
	text = text[start:]

	var (
		closers           []byte
		inString, escaped bool
		cutPos            = -1
		cutClosers        string
	)
	closing := func() string {
		out := make([]byte, len(closers))
		for i := range closers {
			out[i] = closers[len(closers)-1-i]
		}
		return string(out)
	}

	for i := 0; i < len(text); i++ {
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
			closers = append(closers, '}')
			cutPos, cutClosers = i+1, closing()
		case '[':
			closers = append(closers, ']')
			cutPos, cutClosers = i+1, closing()
		case '}', ']':
			if len(closers) > 0 {
				closers = closers[:len(closers)-1]
			}
			if len(closers) == 0 {
				doc := text[:i+1]
				return doc, json.Valid([]byte(doc))
			}
			cutPos, cutClosers = i+1, closing()
		case ',':
			cutPos, cutClosers = i, closing()
		}
	}

	tail := text
	if inString {
		if escaped {
			tail = tail[:len(tail)-1]
		}
		tail += `"`
	}
	candidate := strings.TrimRight(tail, " \t\r\n") + closing()
	if json.Valid([]byte(candidate)) {
		return candidate, true
	}
	if cutPos < 0 {
		return "", false
	}
	candidate = text[:cutPos] + cutClosers
	return candidate, json.Valid([]byte(candidate))
}
