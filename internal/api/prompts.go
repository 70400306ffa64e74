package api

import (
	"net/http"
	"strconv"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	"github.com/lueurxax/tolgee-ai/internal/core/prompt"
)

const defaultPromptPageSize = 20

func (s *Server) listPrompts(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	limit, err := queryInt(r, "limit", defaultPromptPageSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	prompts, total, err := s.prompts.List(r.Context(), projectID, r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	page := promptPage{Items: make([]promptModel, 0, len(prompts)), Total: total}
	for _, p := range prompts {
		page.Items = append(page.Items, toPromptModel(p))
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) defaultPrompt(w http.ResponseWriter, r *http.Request) {
	if _, err := pathID(r, "projectId"); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPromptModel(s.prompts.Default()))
}

func (s *Server) getPrompt(w http.ResponseWriter, r *http.Request) {
	projectID, promptID, err := promptPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.prompts.Get(r.Context(), projectID, promptID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPromptModel(p))
}

func (s *Server) createPrompt(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req promptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.prompts.Create(r.Context(), projectID, prompt.Request(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPromptModel(created))
}

func (s *Server) updatePrompt(w http.ResponseWriter, r *http.Request) {
	projectID, promptID, err := promptPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req promptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.prompts.Update(r.Context(), projectID, promptID, prompt.Request(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPromptModel(updated))
}

func (s *Server) deletePrompt(w http.ResponseWriter, r *http.Request) {
	projectID, promptID, err := promptPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.prompts.Delete(r.Context(), projectID, promptID); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) promptVariables(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	keyID, err := queryID(r, "keyId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	languageID, err := queryID(r, "targetLanguageId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	vars, err := s.prompts.Variables(r.Context(), projectID, keyID, languageID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": vars})
}

func (s *Server) runPlayground(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	userID, err := strconv.ParseInt(r.Header.Get(headerUserID), 10, 64)
	if err != nil {
		s.writeError(w, r, validationError(headerUserID))
		return
	}

	var req promptRunRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.prompts.Playground(r.Context(), projectID, userID, prompt.RunRequest(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPromptRunResponse(resp))
}

// translate machine-translates one key with a stored prompt, an inline
// template or the default prompt, and stores the result.
func (s *Server) translate(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req translateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		s.writeError(w, r, validationError("priority"))
		return
	}

	if priority == nil {
		priority = domain.PriorityPtr(domain.PriorityHigh)
	}

	run := prompt.RunRequest{
		Template:         req.Template,
		KeyID:            req.KeyID,
		TargetLanguageID: req.TargetLanguageID,
		Provider:         req.Provider,
	}

	if run.Template == "" {
		stored, err := s.prompts.FindOrDefault(r.Context(), projectID, req.PromptID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		run.Template = stored.Template

		if run.Provider == "" {
			run.Provider = stored.ProviderName
		}
	}

	mt, err := s.prompts.TranslateAndUpdate(r.Context(), projectID, run, priority)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, translateResponse{
		Output:             mt.Translated,
		ContextDescription: mt.ContextDescription,
		Price:              mt.Price,
		Usage:              mt.Usage,
	})
}

func promptPath(r *http.Request) (int64, int64, error) {
	projectID, err := pathID(r, "projectId")
	if err != nil {
		return 0, 0, err
	}

	promptID, err := pathID(r, "promptId")
	if err != nil {
		return 0, 0, err
	}

	return projectID, promptID, nil
}
