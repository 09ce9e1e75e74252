package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock_MarkdownCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "code block with language",
			input:    "```javascript\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestCleanJSONBlock_PreambleText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "preamble before JSON object",
			input:    "As requested, here is the JSON:\n{\"tldr\": \"Backend role\"}",
			expected: `{"tldr": "Backend role"}`,
		},
		{
			name:     "preamble before JSON array",
			input:    "Here are the items:\n[\"item1\", \"item2\"]",
			expected: `["item1", "item2"]`,
		},
		{
			name:     "JSON with trailing text",
			input:    "{\"key\": \"value\"}\n\nLet me know if you need anything else!",
			expected: `{"key": "value"}`,
		},
		{
			name:     "JSON with escaped quotes",
			input:    "Result: {\"message\": \"He said \\\"hello\\\"\"}",
			expected: `{"message": "He said \"hello\""}`,
		},
		{
			name:     "braces inside strings",
			input:    `{"template": "Hello {name}!"} trailing`,
			expected: `{"template": "Hello {name}!"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"outer": {"inner": [1, 2]}}`, extractJSONObject(`{"outer": {"inner": [1, 2]}} more`))
	assert.Equal(t, "", extractJSONObject("not json"))
	assert.Equal(t, "", extractJSONObject(`{"unterminated": 1`))
}

func TestExtractJSONArray(t *testing.T) {
	assert.Equal(t, `[{"id": 1}, {"id": 2}]`, extractJSONArray(`[{"id": 1}, {"id": 2}] extra`))
	assert.Equal(t, "", extractJSONArray("not array"))
}

func TestCompletePartialJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"nothing yet", "", "", false},
		{"fence only", "```json", "", false},
		{"open object", "{", "{}", true},
		{"open string value", `{"tldr": "Builds data pip`, `{"tldr": "Builds data pip"}`, true},
		{"dangling key", `{"tldr": "x", "requ`, `{"tldr": "x"}`, true},
		{"key without value", `{"tldr": "x", "requirements":`, `{"tldr": "x"}`, true},
		{"trailing comma", `{"tldr": "x",`, `{"tldr": "x"}`, true},
		{"open array", `{"tldr": "x", "requirements": ["Go", "SQ`, `{"tldr": "x", "requirements": ["Go", "SQ"]}`, true},
		{"nested object", `{"matchAssessment": {"matchScore": 80, "matchedSkills": [`, `{"matchAssessment": {"matchScore": 80, "matchedSkills": []}}`, true},
		{"partial literal", `{"a": 1, "b": tr`, `{"a": 1}`, true},
		{"dangling escape", `{"a": "line\`, `{"a": "line"}`, true},
		{"fenced prefix", "```json\n{\"a\": \"b", `{"a": "b"}`, true},
		{"complete document", `{"a": [1, 2]}` + "\n```", `{"a": [1, 2]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CompletePartialJSON(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}
