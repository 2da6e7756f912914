package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/cv-optimizer/internal/parsing"
	"github.com/jonathan/cv-optimizer/internal/rag"
	"github.com/jonathan/cv-optimizer/internal/skills"
)

// Tool names the model may call. The set is closed: anything else is a
// protocol violation and fails the turn.
const (
	ToolSearch        = "search"
	ToolUpdateSection = "update_section"
	ToolExtractSkills = "extract_skills"
	ToolCompareSkills = "compare_skills"
)

// Actions a final answer may carry.
const (
	ActionNone         = "none"
	ActionUpdateCV     = "update_cv"
	ActionUpdateSkills = "update_skills"
	ActionUpdateBoth   = "update_both"
)

// searchChunks caps how many chunks a search tool call returns per index.
const searchChunks = 3

// toolArgs holds the union of arguments across tools.
type toolArgs struct {
	Query   string `json:"query"`
	Section string `json:"section"`
	Content string `json:"content"`
}

// UnknownToolError reports a tool name outside the closed set.
type UnknownToolError struct {
	Tool string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Tool)
}

// ToolExecutionError reports a tool call that ran and failed. It is fed
// back to the model as an observation rather than ending the turn, so
// the conversation can recover or try another tool.
type ToolExecutionError struct {
	Tool  string
	Cause error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Cause)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Cause
}

// executeTool dispatches one tool call against the session and returns
// an observation string for the next loop iteration. The caller holds
// the session lock.
func (a *Agent) executeTool(ctx context.Context, session *Session, tool string, rawArgs json.RawMessage) (string, error) {
	var args toolArgs
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return "", fmt.Errorf("parsing tool args: %w", err)
		}
	}

	switch tool {
	case ToolSearch:
		return a.runSearch(ctx, session, args.Query)
	case ToolUpdateSection:
		return a.runUpdateSection(ctx, session, args.Section, args.Content)
	case ToolExtractSkills:
		return a.runExtractSkills(ctx, session)
	case ToolCompareSkills:
		return a.runCompareSkills(ctx, session)
	default:
		return "", &UnknownToolError{Tool: tool}
	}
}

// runSearch retrieves the most relevant chunks from both indexes.
// Empty indexes are reported as an observation, not an error, so the
// model can proceed without context.
func (a *Agent) runSearch(ctx context.Context, session *Session, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "search: empty query, nothing to do", nil
	}

	var sb strings.Builder
	sb.WriteString("search results:\n")

	cvResults, err := session.CVIndex().Query(ctx, query, searchChunks)
	switch {
	case errors.Is(err, rag.ErrIndexEmpty):
		sb.WriteString("CV: (no CV indexed)\n")
	case err != nil:
		return "", fmt.Errorf("searching CV: %w", err)
	default:
		for _, r := range cvResults {
			fmt.Fprintf(&sb, "CV [%.2f]: %s\n", r.Score, r.Chunk.Text)
		}
	}

	jobResults, err := session.JobIndex().Query(ctx, query, searchChunks)
	switch {
	case errors.Is(err, rag.ErrIndexEmpty):
		sb.WriteString("job: (no job posting indexed)\n")
	case err != nil:
		return "", fmt.Errorf("searching job posting: %w", err)
	default:
		for _, r := range jobResults {
			fmt.Fprintf(&sb, "job [%.2f]: %s\n", r.Score, r.Chunk.Text)
		}
	}

	return sb.String(), nil
}

// runUpdateSection edits the session CV and re-indexes it so later
// searches see the new text.
func (a *Agent) runUpdateSection(ctx context.Context, session *Session, section, content string) (string, error) {
	if strings.TrimSpace(section) == "" {
		return "", fmt.Errorf("update_section: section name is required")
	}

	updated := parsing.UpdateSection(session.CVText(), section, content)
	session.SetCV(updated)
	if err := session.CVIndex().IndexDocument(ctx, updated); err != nil {
		return "", fmt.Errorf("re-indexing CV after edit: %w", err)
	}

	return fmt.Sprintf("update_section: section %q updated, CV re-indexed", section), nil
}

func (a *Agent) runExtractSkills(ctx context.Context, session *Session) (string, error) {
	extracted, err := a.extractor.Extract(ctx, session.CVText(), skills.KindCV)
	if err != nil {
		return "", err
	}
	session.SetCVSkills(extracted)
	return fmt.Sprintf("extract_skills: %s", strings.Join(extracted, ", ")), nil
}

func (a *Agent) runCompareSkills(ctx context.Context, session *Session) (string, error) {
	comparison, err := a.comparator.Compare(ctx, session.CVSkills(), session.JobSkills())
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"compare_skills: %.1f%% match; matched: %s; missing: %s",
		comparison.Stats.MatchPercentage,
		strings.Join(comparison.MatchedJobSkills(), ", "),
		strings.Join(comparison.Missing, ", "),
	), nil
}
