package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("skills.json", "extract-cv-skills")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "JSON array")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("skills.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_ValidPrompt(t *testing.T) {
	ClearCache()

	assert.NotPanics(t, func() {
		prompt := MustGet("optimize.json", "generate-cv")
		assert.NotEmpty(t, prompt)
	})
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	result := Format(template, data)
	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", result)
}

func TestFormat_MissingPlaceholderLeftIntact(t *testing.T) {
	template := "Hello {{.Name}}!"
	result := Format(template, map[string]string{"Other": "x"})
	assert.Equal(t, "Hello {{.Name}}!", result)
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("assistant.json")
	require.NoError(t, err)
	assert.Contains(t, keys, "decide-next-step")
	assert.Contains(t, keys, "final-answer")
}

func TestAllPromptFilesParse(t *testing.T) {
	ClearCache()

	for _, filename := range []string{"skills.json", "optimize.json", "assistant.json", "letter.json"} {
		keys, err := List(filename)
		require.NoError(t, err, filename)
		assert.NotEmpty(t, keys, filename)
	}
}
