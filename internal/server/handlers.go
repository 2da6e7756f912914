package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/cv-optimizer/internal/assistant"
	"github.com/jonathan/cv-optimizer/internal/ingestion"
	"github.com/jonathan/cv-optimizer/internal/letter"
	"github.com/jonathan/cv-optimizer/internal/pipeline"
	"github.com/jonathan/cv-optimizer/internal/skills"
	"github.com/jonathan/cv-optimizer/internal/types"
)

// decodeRequest decodes a JSON body into dst and runs struct validation.
func (s *Server) decodeRequest(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}

	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ErrValidation{Field: fe.Field(), Message: "failed '" + fe.Tag() + "' validation"}
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

type optimizeRequest struct {
	SessionID  string                 `json:"session_id"`
	CVText     string                 `json:"cv_text" validate:"required"`
	JobText    string                 `json:"job_text"`
	JobURL     string                 `json:"job_url" validate:"omitempty,url"`
	UseBrowser bool                   `json:"use_browser"`
	Settings   types.OptimizeSettings `json:"settings"`
}

type optimizeResponse struct {
	SessionID   string                 `json:"session_id"`
	OptimizedCV string                 `json:"optimized_cv"`
	CVSkills    []string               `json:"cv_skills"`
	JobSkills   []string               `json:"job_skills"`
	Comparison  *types.SkillComparison `json:"comparison"`
	Structure   *types.CVStructure     `json:"structure"`
	Sources     pipeline.Sources       `json:"sources"`
	AgentLogs   []string               `json:"agent_logs"`
	ModelUsed   string                 `json:"model_used"`
	WordCount   int                    `json:"word_count"`
	RunID       string                 `json:"run_id,omitempty"`
}

// handleOptimize runs the full optimization pipeline for one CV and job
// posting pair. The session keeps the documents, skills and indexes so
// the assistant can pick up where the run left off.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	hasText := strings.TrimSpace(req.JobText) != ""
	hasURL := req.JobURL != ""
	if hasText == hasURL {
		err := &ErrValidation{Field: "job_text", Message: "exactly one of job_text and job_url is required"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	jobText := req.JobText
	if hasURL {
		ingested, _, err := ingestion.IngestFromURL(r.Context(), req.JobURL, req.UseBrowser || s.useBrowser)
		if err != nil {
			ingestErr := &ErrIngestFailed{URL: req.JobURL, Cause: err}
			s.errorResponse(w, HTTPStatus(ingestErr), ingestErr.Error())
			return
		}
		jobText = ingested
	}

	session := s.registry.GetOrCreate(req.SessionID)
	session.Lock()
	defer session.Unlock()

	state := pipeline.Run(r.Context(), s.deps, pipeline.State{
		CVText:   ingestion.CleanUpload(req.CVText),
		JobText:  ingestion.CleanText(jobText),
		Settings: req.Settings,
	})

	if state.Err != nil {
		if s.db != nil {
			if _, err := s.db.SaveRun(r.Context(), session.ID, "failed", 0); err != nil {
				log.Printf("Error saving failed run: %v", err)
			}
		}
		s.jsonResponse(w, HTTPStatus(state.Err), map[string]any{
			"error":      state.Err.Error(),
			"stage":      state.Err.Stage,
			"kind":       state.Err.Kind,
			"agent_logs": state.Logs,
		})
		return
	}

	session.SetCV(state.CVText)
	session.SetJob(state.JobText)
	session.SetCVSkills(state.CVSkills)
	session.SetJobSkills(state.JobSkills)
	session.SetIndexes(state.CVIndex, state.JobIndex)

	resp := optimizeResponse{
		SessionID:   session.ID,
		OptimizedCV: state.OptimizedCV,
		CVSkills:    state.CVSkills,
		JobSkills:   state.JobSkills,
		Comparison:  state.Comparison,
		Structure:   state.Structure,
		Sources:     state.Sources,
		AgentLogs:   state.Logs,
		ModelUsed:   state.ModelUsed,
		WordCount:   len(strings.Fields(state.OptimizedCV)),
	}

	if s.db != nil {
		runID, err := s.db.SaveRun(r.Context(), session.ID, "completed", state.Comparison.Stats.MatchPercentage)
		if err != nil {
			log.Printf("Error saving run: %v", err)
		} else {
			resp.RunID = runID.String()
		}
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

type assistantRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Message   string `json:"message" validate:"required"`
	Language  string `json:"language" validate:"omitempty,oneof=en fr es"`
}

type assistantResponse struct {
	SessionID     string   `json:"session_id"`
	Action        string   `json:"action"`
	UpdatedCV     string   `json:"updated_cv,omitempty"`
	UpdatedSkills []string `json:"updated_skills,omitempty"`
	Explanation   string   `json:"explanation"`
	ToolTrace     []string `json:"tool_trace,omitempty"`
	Truncated     bool     `json:"truncated,omitempty"`
}

// handleAssistant runs one conversational editing turn. Turns on the
// same session are serialized by the session lock.
func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	session := s.registry.GetOrCreate(req.SessionID)
	session.Lock()
	defer session.Unlock()

	resp, err := s.agent.Handle(r.Context(), session, req.Message, req.Language)
	truncated := errors.Is(err, assistant.ErrIterationCap) && resp != nil
	if err != nil && !truncated {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	if s.db != nil {
		if err := s.db.SaveMessage(r.Context(), session.ID, "user", req.Message); err != nil {
			log.Printf("Error saving user message: %v", err)
		}
		if err := s.db.SaveMessage(r.Context(), session.ID, "assistant", resp.Explanation); err != nil {
			log.Printf("Error saving assistant message: %v", err)
		}
	}

	s.jsonResponse(w, http.StatusOK, assistantResponse{
		SessionID:     session.ID,
		Action:        resp.Action,
		UpdatedCV:     resp.UpdatedCV,
		UpdatedSkills: resp.UpdatedSkills,
		Explanation:   resp.Explanation,
		ToolTrace:     resp.ToolTrace,
		Truncated:     truncated,
	})
}

// handleDeleteSession drops a session's in-memory state and, when
// persistence is enabled, its stored history.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if s.registry.Get(id) == nil {
		err := &ErrSessionNotFound{SessionID: id}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.registry.Delete(id)
	if s.db != nil {
		if err := s.db.ClearSession(r.Context(), id); err != nil {
			log.Printf("Error clearing session %s: %v", id, err)
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":     "deleted",
		"session_id": id,
	})
}

// handleSessionHistory returns a session's conversation history. The
// database is preferred when configured because it survives restarts.
func (s *Server) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if s.db != nil {
		messages, err := s.db.GetMessages(r.Context(), id, 0)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.jsonResponse(w, http.StatusOK, map[string]any{
			"session_id": id,
			"messages":   messages,
		})
		return
	}

	session := s.registry.Get(id)
	if session == nil {
		err := &ErrSessionNotFound{SessionID: id}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	session.Lock()
	history := session.History()
	session.Unlock()

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"session_id": id,
		"history":    history,
	})
}

type generateLetterRequest struct {
	SessionID   string  `json:"session_id"`
	CVText      string  `json:"cv_text" validate:"required"`
	OptimizedCV string  `json:"optimized_cv"`
	JobText     string  `json:"job_text" validate:"required"`
	Language    string  `json:"language" validate:"omitempty,oneof=en fr es"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature" validate:"omitempty,gte=0,lte=2"`
	LetterWords int     `json:"letter_words" validate:"omitempty,gte=0"`
}

// handleGenerateLetter writes a cover letter for the CV and job posting
// pair. When the caller already optimized the CV, passing it along
// grounds the letter in the tailored version.
func (s *Server) handleGenerateLetter(w http.ResponseWriter, r *http.Request) {
	var req generateLetterRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	result, err := letter.Generate(r.Context(), s.client, letter.Request{
		CVText:      ingestion.CleanUpload(req.CVText),
		OptimizedCV: req.OptimizedCV,
		JobText:     ingestion.CleanText(req.JobText),
		Language:    req.Language,
		TargetWords: req.LetterWords,
		Model:       req.Model,
		Temperature: req.Temperature,
	})
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

type extractSkillsRequest struct {
	Text string `json:"text" validate:"required"`
	Kind string `json:"kind" validate:"required,oneof=cv job"`
}

// handleExtractSkills extracts a normalized skill list from free text.
func (s *Server) handleExtractSkills(w http.ResponseWriter, r *http.Request) {
	var req extractSkillsRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	extracted, err := s.deps.Extractor.Extract(r.Context(), req.Text, skills.Kind(req.Kind))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"skills": extracted,
		"count":  len(extracted),
	})
}

type matchSkillsRequest struct {
	CVSkills  []string `json:"cv_skills" validate:"required"`
	JobSkills []string `json:"job_skills" validate:"required"`
}

// handleMatchSkills compares two skill lists by embedding similarity.
func (s *Server) handleMatchSkills(w http.ResponseWriter, r *http.Request) {
	var req matchSkillsRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	comparison, err := s.deps.Comparator.Compare(r.Context(), req.CVSkills, req.JobSkills)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"comparison": comparison})
}

type uploadRequest struct {
	SessionID string `json:"session_id"`
	CVText    string `json:"cv_text"`
	JobText   string `json:"job_text"`
}

// maxUploadBytes bounds the size of one uploaded document.
const maxUploadBytes = 2 << 20

// handleUpload stores cleaned document text in a session and indexes it
// for retrieval. Documents arrive either as JSON fields or as multipart
// .txt files ("cv" and "job" form fields); other file types are
// rejected, PDF parsing is an external concern. Either document may be
// uploaded on its own.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := s.parseUploadForm(r, &req); err != nil {
			s.errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
	} else if err := s.decodeRequest(r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	cvText := ingestion.CleanUpload(req.CVText)
	jobText := ingestion.CleanUpload(req.JobText)
	if cvText == "" && jobText == "" {
		err := &ErrValidation{Field: "cv_text", Message: "at least one of cv_text and job_text is required"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	session := s.registry.GetOrCreate(req.SessionID)
	session.Lock()
	defer session.Unlock()

	if cvText != "" {
		session.SetCV(cvText)
		if err := session.CVIndex().IndexDocument(r.Context(), cvText); err != nil {
			s.errorResponse(w, http.StatusBadGateway, "failed to index CV: "+err.Error())
			return
		}
	}
	if jobText != "" {
		session.SetJob(jobText)
		if err := session.JobIndex().IndexDocument(r.Context(), jobText); err != nil {
			s.errorResponse(w, http.StatusBadGateway, "failed to index job posting: "+err.Error())
			return
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"session_id": session.ID,
		"cv_chars":   len(cvText),
		"job_chars":  len(jobText),
	})
}

// parseUploadForm fills an uploadRequest from multipart .txt uploads.
func (s *Server) parseUploadForm(r *http.Request, req *uploadRequest) error {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return &ErrValidation{Field: "form", Message: "invalid multipart form: " + err.Error()}
	}
	req.SessionID = r.FormValue("session_id")

	for field, dst := range map[string]*string{"cv": &req.CVText, "job": &req.JobText} {
		file, header, err := r.FormFile(field)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				continue
			}
			return &ErrValidation{Field: field, Message: err.Error()}
		}

		if !strings.EqualFold(filepath.Ext(header.Filename), ".txt") {
			_ = file.Close()
			return &ErrValidation{Field: field, Message: "only .txt uploads are supported"}
		}

		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		_ = file.Close()
		if err != nil {
			return &ErrValidation{Field: field, Message: "reading upload: " + err.Error()}
		}
		*dst = string(data)
	}

	return nil
}

type ingestJobRequest struct {
	SessionID  string `json:"session_id"`
	URL        string `json:"url" validate:"required,url"`
	UseBrowser bool   `json:"use_browser"`
}

// handleIngestJob fetches a job posting URL, cleans its text, and
// stores it in a session.
func (s *Server) handleIngestJob(w http.ResponseWriter, r *http.Request) {
	var req ingestJobRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	text, meta, err := ingestion.IngestFromURL(r.Context(), req.URL, req.UseBrowser || s.useBrowser)
	if err != nil {
		ingestErr := &ErrIngestFailed{URL: req.URL, Cause: err}
		s.errorResponse(w, HTTPStatus(ingestErr), ingestErr.Error())
		return
	}

	session := s.registry.GetOrCreate(req.SessionID)
	session.Lock()
	defer session.Unlock()

	session.SetJob(text)
	if err := session.JobIndex().IndexDocument(r.Context(), text); err != nil {
		s.errorResponse(w, http.StatusBadGateway, "failed to index job posting: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"session_id": session.ID,
		"text":       text,
		"metadata":   meta,
	})
}
