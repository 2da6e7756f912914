// Package skills provides LLM-backed skill extraction and embedding-based
// skill comparison between a CV and a job posting.
package skills

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/jonathan/cv-optimizer/internal/prompts"
	"github.com/jonathan/cv-optimizer/internal/schemas"
)

// Kind selects which extraction prompt to use.
type Kind string

const (
	// KindCV extracts skills a candidate demonstrates in their CV.
	KindCV Kind = "cv"
	// KindJob extracts skills a job posting requires or prefers.
	KindJob Kind = "job"
)

// promptKey maps an extraction kind to its prompt in skills.json.
func (k Kind) promptKey() string {
	if k == KindJob {
		return "extract-job-skills"
	}
	return "extract-cv-skills"
}

// Extractor extracts normalized skill lists from free text. Results are
// cached by document hash, so re-extracting an unchanged document is free.
type Extractor struct {
	client llm.Generator
	cache  *extractionCache
}

// NewExtractor creates an extractor backed by the given LLM client.
func NewExtractor(client llm.Generator) *Extractor {
	return &Extractor{
		client: client,
		cache:  newExtractionCache(),
	}
}

// Extract returns the normalized list of skills found in text.
// Empty or whitespace-only text yields an empty list without an API call.
func (e *Extractor) Extract(ctx context.Context, text string, kind Kind) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	key := cacheKey(text, kind, e.client.GetModel(llm.TierLite))
	if cached, ok := e.cache.get(key); ok {
		return cached, nil
	}

	template, err := prompts.Get("skills.json", kind.promptKey())
	if err != nil {
		return nil, &ExtractionError{Kind: kind, Message: "loading prompt", Cause: err}
	}
	prompt := prompts.Format(template, map[string]string{"Text": text})

	// Extraction is a classification-grade task; the lite tier is enough.
	response, err := e.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, &ExtractionError{Kind: kind, Message: "calling LLM", Cause: err}
	}

	if err := schemas.ValidateSkillList(response); err != nil {
		return nil, &ExtractionError{Kind: kind, Message: "invalid response shape", Cause: err}
	}

	var raw []string
	if err := json.Unmarshal([]byte(response), &raw); err != nil {
		return nil, &ExtractionError{Kind: kind, Message: "parsing response", Cause: err}
	}

	result := Normalize(raw)
	e.cache.put(key, result)
	return result, nil
}

// Normalize trims whitespace, drops empties, deduplicates
// case-insensitively keeping the first spelling seen, and sorts
// case-insensitively for stable output.
func Normalize(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	result := make([]string, 0, len(raw))
	for _, skill := range raw {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		lower := strings.ToLower(skill)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		result = append(result, skill)
	}

	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i]) < strings.ToLower(result[j])
	})
	return result
}
