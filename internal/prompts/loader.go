// Package prompts loads the LLM prompt templates shipped with the
// binary. Each embedded JSON file maps prompt keys to template strings
// containing {{.Key}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var files embed.FS

// Parsed files are cached after the first load.
var (
	mu     sync.RWMutex
	loaded = make(map[string]map[string]string)
)

// Get returns the template stored under key in the given file. The
// filename carries no path ("skills.json", not "prompts/skills.json").
func Get(filename, key string) (string, error) {
	templates, err := load(filename)
	if err != nil {
		return "", err
	}

	template, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return template, nil
}

// MustGet is Get for prompts whose absence is a packaging bug.
func MustGet(filename, key string) string {
	template, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return template
}

// Format substitutes {{.Key}} placeholders with the given values.
// Placeholders without a value are left in place.
func Format(template string, data map[string]string) string {
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// load parses a prompt file once and serves it from cache afterwards.
func load(filename string) (map[string]string, error) {
	mu.RLock()
	templates, ok := loaded[filename]
	mu.RUnlock()
	if ok {
		return templates, nil
	}

	data, err := files.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	mu.Lock()
	loaded[filename] = templates
	mu.Unlock()
	return templates, nil
}

// ClearCache drops all parsed files. Tests use it for isolation.
func ClearCache() {
	mu.Lock()
	loaded = make(map[string]map[string]string)
	mu.Unlock()
}

// List returns the prompt keys available in a file.
func List(filename string) ([]string, error) {
	templates, err := load(filename)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(templates))
	for key := range templates {
		keys = append(keys, key)
	}
	return keys, nil
}
