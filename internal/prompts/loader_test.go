package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("generation.json", "summary-instructions")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Return ONLY valid JSON")
	assert.Contains(t, prompt, "{{.MatchField}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("generation.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestGenerationPrompts_AllPresent(t *testing.T) {
	ClearCache()

	keys, err := List("generation.json")
	require.NoError(t, err)
	for _, key := range []string{
		"summary-instructions",
		"candidate-profile",
		"summary-match",
		"summary-input",
		"comparison-instructions",
		"comparison-match",
		"comparison-fit",
		"comparison-general",
		"comparison-listing",
	} {
		assert.Contains(t, keys, key)
	}
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", Format(template, data))
}

func TestFormat_ValuesAreNotReexpanded(t *testing.T) {
	template := "Text: {{.Text}} / {{.Name}}"
	data := map[string]string{
		"Text": "literal {{.Name}}",
		"Name": "Bob",
	}

	assert.Equal(t, "Text: literal {{.Name}} / Bob", Format(template, data))
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	assert.Equal(t, template, Format(template, map[string]string{}))
}

func TestRender(t *testing.T) {
	ClearCache()

	out := Render("generation.json", "comparison-listing", map[string]string{
		"ListingID": "L1",
		"Header":    "Job title: Engineer",
		"Text":      "Build things.",
	})
	assert.Contains(t, out, "--- Listing L1 ---")
	assert.Contains(t, out, "Build things.")
	assert.NotContains(t, out, "{{.")
}

func TestCaching(t *testing.T) {
	ClearCache()

	prompt1, err := Get("generation.json", "summary-match")
	require.NoError(t, err)
	prompt2, err := Get("generation.json", "summary-match")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
