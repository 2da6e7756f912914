// Package assistant implements the conversational CV editing agent: a
// bounded tool loop over per-session state.
package assistant

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/jonathan/cv-optimizer/internal/rag"
)

// maxHistoryExchanges bounds per-session conversation memory. Older
// exchanges are dropped oldest-first.
const maxHistoryExchanges = 20

// Exchange is one user turn and the assistant's reply.
type Exchange struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Session holds the documents, indexes and conversation memory for one
// client. All access goes through its mutex; the registry hands out the
// same instance for the same ID.
type Session struct {
	ID string

	mu        sync.Mutex
	cvText    string
	jobText   string
	cvSkills  []string
	jobSkills []string
	cvIndex   *rag.Index
	jobIndex  *rag.Index
	history   []Exchange
}

func newSession(id string, embedder llm.Embedder) *Session {
	return &Session{
		ID:       id,
		cvIndex:  rag.NewIndex(embedder),
		jobIndex: rag.NewIndex(embedder),
	}
}

// Lock serializes agent turns for this session. Concurrent requests on
// the same session ID queue rather than interleave edits.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Snapshot-style accessors. Callers must hold the session lock during a
// turn; these exist so the agent and handlers share one access pattern.

func (s *Session) CVText() string      { return s.cvText }
func (s *Session) JobText() string     { return s.jobText }
func (s *Session) CVSkills() []string  { return s.cvSkills }
func (s *Session) JobSkills() []string { return s.jobSkills }
func (s *Session) CVIndex() *rag.Index  { return s.cvIndex }
func (s *Session) JobIndex() *rag.Index { return s.jobIndex }

// SetCV replaces the session CV text. The index is not rebuilt here;
// callers re-index explicitly because that needs a context.
func (s *Session) SetCV(text string) { s.cvText = text }

// SetJob replaces the session job posting text.
func (s *Session) SetJob(text string) { s.jobText = text }

// SetCVSkills replaces the extracted CV skill list.
func (s *Session) SetCVSkills(skills []string) { s.cvSkills = skills }

// SetJobSkills replaces the extracted job skill list.
func (s *Session) SetJobSkills(skills []string) { s.jobSkills = skills }

// SetIndexes adopts already-built indexes, so callers that indexed the
// documents elsewhere do not pay for embedding them twice.
func (s *Session) SetIndexes(cvIndex, jobIndex *rag.Index) {
	if cvIndex != nil {
		s.cvIndex = cvIndex
	}
	if jobIndex != nil {
		s.jobIndex = jobIndex
	}
}

// History returns a copy of the conversation memory.
func (s *Session) History() []Exchange {
	out := make([]Exchange, len(s.history))
	copy(out, s.history)
	return out
}

// AppendExchange records one completed turn, evicting the oldest
// exchange past the memory bound.
func (s *Session) AppendExchange(user, assistant string) {
	s.history = append(s.history, Exchange{User: user, Assistant: assistant})
	if len(s.history) > maxHistoryExchanges {
		s.history = s.history[len(s.history)-maxHistoryExchanges:]
	}
}

// Registry maps session IDs to sessions. Safe for concurrent use.
type Registry struct {
	embedder llm.Embedder

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry. New sessions get
// indexes backed by the given embedder.
func NewRegistry(embedder llm.Embedder) *Registry {
	return &Registry{
		embedder: embedder,
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the session for id, creating it on first use.
// An empty id gets a fresh random one.
func (r *Registry) GetOrCreate(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}

	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return session
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		return session
	}
	session = newSession(id, r.embedder)
	r.sessions[id] = session
	return session
}

// Get returns the session for id, or nil when it does not exist.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Delete removes a session and all its state. Deleting an unknown id
// is a no-op.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
