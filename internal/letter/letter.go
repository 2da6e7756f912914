// Package letter generates personalized cover letters from a CV and a
// job posting.
package letter

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/jonathan/cv-optimizer/internal/prompts"
	"github.com/jonathan/cv-optimizer/internal/types"
)

// Letters read better with a warmer temperature than the low default
// used for extraction and tool selection.
const (
	DefaultTargetWords = 300
	DefaultTemperature = 0.7
)

// Request holds the inputs for one cover letter. OptimizedCV is
// optional and falls back to CVText; zero-valued settings use defaults.
type Request struct {
	CVText      string
	OptimizedCV string
	JobText     string
	Language    string
	TargetWords int
	Model       string
	Temperature float64
}

// Result is one generated cover letter.
type Result struct {
	Letter      string `json:"cover_letter"`
	WordCount   int    `json:"word_count"`
	TargetWords int    `json:"target_words"`
	ModelUsed   string `json:"model_used"`
}

// conventions maps a language code to its business-letter guidance.
var conventions = map[string]string{
	"en": "Open with 'Dear [Name]' or 'Dear Hiring Manager' and close with 'Sincerely' or 'Best regards'.",
	"fr": "Open with 'Madame, Monsieur' and close with 'Cordialement' or 'Bien cordialement'.",
	"es": "Open with 'Estimado/a [Nombre]' or 'A quien corresponda' and close with 'Atentamente' or 'Saludos cordiales'.",
}

// Generate writes a cover letter connecting the candidate's background
// to the job posting, in the requested language and around the
// requested length.
func Generate(ctx context.Context, client llm.Client, req Request) (*Result, error) {
	optimizedCV := req.OptimizedCV
	if strings.TrimSpace(optimizedCV) == "" {
		optimizedCV = req.CVText
	}

	targetWords := roundTargetWords(req.TargetWords)

	temperature := req.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	client = client.WithSettings(req.Model, float32(temperature))

	template, err := prompts.Get("letter.json", "generate-letter")
	if err != nil {
		return nil, &GenerationError{Message: "loading prompt", Cause: err}
	}
	prompt := prompts.Format(template, map[string]string{
		"Language":    types.LanguageName(req.Language),
		"Conventions": conventionsFor(req.Language),
		"TargetWords": strconv.Itoa(targetWords),
		"Job":         req.JobText,
		"CV":          req.CVText,
		"OptimizedCV": optimizedCV,
	})

	text, err := client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &GenerationError{Message: "generating cover letter", Cause: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &GenerationError{Message: "model returned an empty letter"}
	}

	return &Result{
		Letter:      text,
		WordCount:   len(strings.Fields(text)),
		TargetWords: targetWords,
		ModelUsed:   client.GetModel(llm.TierAdvanced),
	}, nil
}

// roundTargetWords snaps the requested length to the nearest ten words.
func roundTargetWords(words int) int {
	if words <= 0 {
		return DefaultTargetWords
	}
	return int(math.Round(float64(words)/10)) * 10
}

func conventionsFor(language string) string {
	if c, ok := conventions[language]; ok {
		return c
	}
	return conventions["en"]
}
