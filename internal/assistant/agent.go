package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/jonathan/cv-optimizer/internal/prompts"
	"github.com/jonathan/cv-optimizer/internal/rag"
	"github.com/jonathan/cv-optimizer/internal/schemas"
	"github.com/jonathan/cv-optimizer/internal/skills"
	"github.com/jonathan/cv-optimizer/internal/types"
)

// maxIterations bounds the tool loop per turn. The model gets this many
// decisions before a final answer is forced.
const maxIterations = 6

// Retrieval depth for the conversational context.
const (
	contextCVChunks  = 3
	contextJobChunks = 2
)

// ErrIterationCap signals that the model never produced a final answer
// within the iteration budget. A best-effort response may accompany it.
var ErrIterationCap = errors.New("assistant: iteration cap reached")

// Response is the outcome of one assistant turn.
type Response struct {
	Action        string   `json:"action"`
	UpdatedCV     string   `json:"updated_cv,omitempty"`
	UpdatedSkills []string `json:"updated_skills,omitempty"`
	Explanation   string   `json:"explanation"`
	// ToolTrace lists the tools called this turn, in order.
	ToolTrace []string `json:"tool_trace,omitempty"`
}

// decision is one parsed loop step: either a tool call or a final answer.
type decision struct {
	Tool string          `json:"tool"`
	Args json.RawMessage `json:"args"`

	Final         bool     `json:"final"`
	Action        string   `json:"action"`
	UpdatedCV     string   `json:"updated_cv"`
	UpdatedSkills []string `json:"updated_skills"`
	Explanation   string   `json:"explanation"`
}

// Agent runs the conversational editing loop.
type Agent struct {
	client     llm.Client
	extractor  *skills.Extractor
	comparator *skills.Comparator
}

// NewAgent creates an agent backed by the given client.
func NewAgent(client llm.Client) *Agent {
	return &Agent{
		client:     client,
		extractor:  skills.NewExtractor(client),
		comparator: skills.NewComparator(client),
	}
}

// Handle runs one assistant turn for a session. The caller must hold
// the session lock. On success the session already reflects any updates
// the response announces. When the iteration cap is hit, Handle returns
// a best-effort response together with ErrIterationCap.
func (a *Agent) Handle(ctx context.Context, session *Session, message, language string) (*Response, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("assistant: message is empty")
	}

	cvContext := a.retrieve(ctx, session.CVIndex(), message, contextCVChunks)
	jobContext := a.retrieve(ctx, session.JobIndex(), message, contextJobChunks)

	var observations []string
	var trace []string

	for i := 0; i < maxIterations; i++ {
		d, err := a.decide(ctx, session, message, language, cvContext, jobContext, observations)
		if err != nil {
			return nil, err
		}

		if d.Final {
			resp, err := a.applyFinal(ctx, session, message, d)
			if err != nil {
				return nil, err
			}
			resp.ToolTrace = trace
			return resp, nil
		}

		trace = append(trace, d.Tool)
		observation, err := a.executeTool(ctx, session, d.Tool, d.Args)
		if err != nil {
			var unknownTool *UnknownToolError
			if errors.As(err, &unknownTool) {
				return nil, fmt.Errorf("assistant: %w", err)
			}
			// A failed tool becomes an observation; the iteration cap
			// bounds repeated failures.
			observation = (&ToolExecutionError{Tool: d.Tool, Cause: err}).Error()
		}
		observations = append(observations, observation)
	}

	// Budget exhausted: force a final answer from what we have.
	resp, err := a.forceFinal(ctx, session, message, language, observations)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIterationCap, err)
	}
	resp.ToolTrace = trace
	return resp, ErrIterationCap
}

// retrieve fetches conversational context, treating an empty index as
// no context rather than a failure.
func (a *Agent) retrieve(ctx context.Context, index *rag.Index, query string, k int) string {
	results, err := index.Query(ctx, query, k)
	if err != nil {
		return ""
	}

	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Chunk.Text)
	}
	return strings.Join(texts, "\n---\n")
}

// decide asks the model for the next step and validates its shape.
func (a *Agent) decide(ctx context.Context, session *Session, message, language, cvContext, jobContext string, observations []string) (*decision, error) {
	template, err := prompts.Get("assistant.json", "decide-next-step")
	if err != nil {
		return nil, fmt.Errorf("assistant: loading prompt: %w", err)
	}

	prompt := prompts.Format(template, map[string]string{
		"History":      formatHistory(session.History()),
		"Message":      message,
		"CVContext":    cvContext,
		"JobContext":   jobContext,
		"Observations": formatObservations(observations),
		"Language":     types.LanguageName(language),
	})

	response, err := a.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("assistant: deciding next step: %w", err)
	}

	return parseDecision(response)
}

// forceFinal makes one last call that only permits a final answer.
func (a *Agent) forceFinal(ctx context.Context, session *Session, message, language string, observations []string) (*Response, error) {
	template, err := prompts.Get("assistant.json", "final-answer")
	if err != nil {
		return nil, err
	}

	prompt := prompts.Format(template, map[string]string{
		"Message":      message,
		"Observations": formatObservations(observations),
		"Language":     types.LanguageName(language),
	})

	response, err := a.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, err
	}

	d, err := parseDecision(response)
	if err != nil {
		return nil, err
	}
	if !d.Final {
		return nil, fmt.Errorf("model returned a tool call instead of a final answer")
	}

	return a.applyFinal(ctx, session, message, d)
}

// applyFinal applies the announced updates to the session, records the
// exchange, and builds the response.
func (a *Agent) applyFinal(ctx context.Context, session *Session, message string, d *decision) (*Response, error) {
	updatesCV := d.Action == ActionUpdateCV || d.Action == ActionUpdateBoth
	updatesSkills := d.Action == ActionUpdateSkills || d.Action == ActionUpdateBoth

	if updatesCV {
		if strings.TrimSpace(d.UpdatedCV) == "" {
			return nil, fmt.Errorf("assistant: action %s without updated_cv", d.Action)
		}
		session.SetCV(d.UpdatedCV)
		if err := session.CVIndex().IndexDocument(ctx, d.UpdatedCV); err != nil {
			return nil, fmt.Errorf("assistant: re-indexing updated CV: %w", err)
		}
	}
	if updatesSkills {
		session.SetCVSkills(skills.Normalize(d.UpdatedSkills))
	}

	session.AppendExchange(message, d.Explanation)

	resp := &Response{
		Action:      d.Action,
		Explanation: d.Explanation,
	}
	if updatesCV {
		resp.UpdatedCV = d.UpdatedCV
	}
	if updatesSkills {
		resp.UpdatedSkills = session.CVSkills()
	}
	return resp, nil
}

// parseDecision validates and unmarshals one loop step.
func parseDecision(response string) (*decision, error) {
	if err := schemas.ValidateAssistantDecision(response); err != nil {
		return nil, fmt.Errorf("assistant: invalid decision: %w", err)
	}

	var d decision
	if err := json.Unmarshal([]byte(response), &d); err != nil {
		return nil, fmt.Errorf("assistant: parsing decision: %w", err)
	}
	return &d, nil
}

func formatHistory(history []Exchange) string {
	if len(history) == 0 {
		return "(no previous exchanges)"
	}

	var sb strings.Builder
	for _, e := range history {
		fmt.Fprintf(&sb, "user: %s\nassistant: %s\n", e.User, e.Assistant)
	}
	return sb.String()
}

func formatObservations(observations []string) string {
	if len(observations) == 0 {
		return "(none yet)"
	}
	return strings.Join(observations, "\n")
}
