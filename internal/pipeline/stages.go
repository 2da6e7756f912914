package pipeline

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/jonathan/cv-optimizer/internal/parsing"
	"github.com/jonathan/cv-optimizer/internal/prompts"
	"github.com/jonathan/cv-optimizer/internal/rag"
	"github.com/jonathan/cv-optimizer/internal/skills"
	"github.com/jonathan/cv-optimizer/internal/types"
)

// Retrieval depth for generation context.
const (
	generateCVChunks  = 5
	generateJobChunks = 3
)

// Deps holds the collaborators the stages call out to.
type Deps struct {
	Client     llm.Client
	Extractor  *skills.Extractor
	Comparator *skills.Comparator
}

// NewDeps wires the standard stage collaborators from one client.
func NewDeps(client llm.Client) *Deps {
	return &Deps{
		Client:     client,
		Extractor:  skills.NewExtractor(client),
		Comparator: skills.NewComparator(client),
	}
}

// StageFunc runs one stage, mutating state and appending its log line.
type StageFunc func(ctx context.Context, deps *Deps, state *State)

// namedStage pairs a stage with its name for the runner.
type namedStage struct {
	name string
	run  StageFunc
}

// stages lists the pipeline in execution order.
var stages = []namedStage{
	{StageAnalyzeStructure, analyzeStructure},
	{StageExtractCVSkills, extractCVSkills},
	{StageIndexCV, indexCV},
	{StageExtractJobSkills, extractJobSkills},
	{StageIndexJob, indexJob},
	{StageCompareSkills, compareSkills},
	{StageGenerateCV, generateCV},
}

func analyzeStructure(_ context.Context, _ *Deps, state *State) {
	if strings.TrimSpace(state.CVText) == "" {
		state.fail(StageAnalyzeStructure, ErrKindInput, "CV text is empty", nil)
		return
	}
	if strings.TrimSpace(state.JobText) == "" {
		state.fail(StageAnalyzeStructure, ErrKindInput, "job text is empty", nil)
		return
	}

	state.Structure = parsing.AnalyzeStructure(state.CVText)
	state.ok(StageAnalyzeStructure)
}

func extractCVSkills(ctx context.Context, deps *Deps, state *State) {
	extracted, err := deps.Extractor.Extract(ctx, state.CVText, skills.KindCV)
	if err != nil {
		state.fail(StageExtractCVSkills, ErrKindExtraction, "extracting CV skills", err)
		return
	}
	state.CVSkills = extracted
	state.ok(StageExtractCVSkills)
}

func indexCV(ctx context.Context, deps *Deps, state *State) {
	index := rag.NewIndex(deps.Client)
	if err := index.IndexDocument(ctx, state.CVText); err != nil {
		state.fail(StageIndexCV, ErrKindIndexing, "indexing CV", err)
		return
	}
	state.CVIndex = index
	state.ok(StageIndexCV)
}

func extractJobSkills(ctx context.Context, deps *Deps, state *State) {
	extracted, err := deps.Extractor.Extract(ctx, state.JobText, skills.KindJob)
	if err != nil {
		state.fail(StageExtractJobSkills, ErrKindExtraction, "extracting job skills", err)
		return
	}
	state.JobSkills = extracted
	state.ok(StageExtractJobSkills)
}

func indexJob(ctx context.Context, deps *Deps, state *State) {
	index := rag.NewIndex(deps.Client)
	if err := index.IndexDocument(ctx, state.JobText); err != nil {
		state.fail(StageIndexJob, ErrKindIndexing, "indexing job posting", err)
		return
	}
	state.JobIndex = index
	state.ok(StageIndexJob)
}

func compareSkills(ctx context.Context, deps *Deps, state *State) {
	comparison, err := deps.Comparator.Compare(ctx, state.CVSkills, state.JobSkills)
	if err != nil {
		state.fail(StageCompareSkills, ErrKindComparison, "comparing skills", err)
		return
	}
	state.Comparison = comparison
	state.ok(StageCompareSkills)
}

func generateCV(ctx context.Context, deps *Deps, state *State) {
	query := retrievalQuery(state)

	// An empty index means no evidence to retrieve, not a failure:
	// generation proceeds without that context.
	cvResults, err := state.CVIndex.Query(ctx, query, generateCVChunks)
	if err != nil && !errors.Is(err, rag.ErrIndexEmpty) {
		state.fail(StageGenerateCV, ErrKindGeneration, "retrieving CV context", err)
		return
	}
	jobResults, err := state.JobIndex.Query(ctx, query, generateJobChunks)
	if err != nil && !errors.Is(err, rag.ErrIndexEmpty) {
		state.fail(StageGenerateCV, ErrKindGeneration, "retrieving job context", err)
		return
	}

	for _, r := range cvResults {
		state.Sources.CVChunks = append(state.Sources.CVChunks, r.Chunk.Text)
	}
	for _, r := range jobResults {
		state.Sources.JobChunks = append(state.Sources.JobChunks, r.Chunk.Text)
	}

	// Per-run settings override the client's configured generation
	// model and temperature; the derived client shares the connection.
	client := deps.Client
	if state.Settings.Model != "" || state.Settings.Temperature > 0 {
		client = client.WithSettings(state.Settings.Model, float32(state.Settings.Temperature))
	}
	state.ModelUsed = client.GetModel(llm.TierAdvanced)

	prompt := buildGenerationPrompt(state)
	optimized, err := client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		state.fail(StageGenerateCV, ErrKindGeneration, "generating optimized CV", err)
		return
	}
	if strings.TrimSpace(optimized) == "" {
		state.fail(StageGenerateCV, ErrKindGeneration, "model returned empty CV", nil)
		return
	}

	state.OptimizedCV = strings.TrimSpace(optimized)
	state.ok(StageGenerateCV)
}

// retrievalQuery synthesizes the retrieval query from the extracted job
// skills, falling back to the start of the posting when none were found.
func retrievalQuery(state *State) string {
	if len(state.JobSkills) > 0 {
		return strings.Join(state.JobSkills, ", ")
	}
	runes := []rune(state.JobText)
	if len(runes) > 200 {
		runes = runes[:200]
	}
	return string(runes)
}

func buildGenerationPrompt(state *State) string {
	settings := state.Settings
	settings.Normalize()
	template := prompts.MustGet("optimize.json", "generate-cv")
	return prompts.Format(template, map[string]string{
		"Language":       types.LanguageName(settings.Language),
		"CVContext":      strings.Join(state.Sources.CVChunks, "\n---\n"),
		"JobContext":     strings.Join(state.Sources.JobChunks, "\n---\n"),
		"MatchedSkills":  strings.Join(state.Comparison.MatchedCVSkills(), ", "),
		"MissingSkills":  strings.Join(state.Comparison.Missing, ", "),
		"CV":             state.CVText,
		"MinExperiences": strconv.Itoa(settings.MinExperiences),
		"MaxExperiences": strconv.Itoa(settings.MaxExperiences),
		"MaxDateYears":   strconv.Itoa(settings.MaxDateYears),
	})
}
