package api

import (
	"net/http"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
)

func (s *Server) listProviders(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathID(r, "organizationId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	providers, err := s.providers.List(r.Context(), orgID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProviderModels(providers))
}

func (s *Server) listServerProviders(w http.ResponseWriter, r *http.Request) {
	if _, err := pathID(r, "organizationId"); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProviderModels(s.providers.ListServer()))
}

func (s *Server) createProvider(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathID(r, "organizationId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req providerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.providers.Create(r.Context(), orgID, req.toService())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProviderModel(created))
}

func (s *Server) updateProvider(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathID(r, "organizationId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := pathID(r, "providerId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req providerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.providers.Update(r.Context(), orgID, id, req.toService())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProviderModel(updated))
}

func (s *Server) deleteProvider(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathID(r, "organizationId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := pathID(r, "providerId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.providers.Delete(r.Context(), orgID, id); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// runPrompt sends raw messages to a logical provider of the organization.
func (s *Server) runPrompt(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathID(r, "organizationId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req runRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		s.writeError(w, r, validationError("priority"))
		return
	}

	messages := make([]domain.Message, 0, len(req.Messages))

	for _, m := range req.Messages {
		switch domain.MessageType(m.Type) {
		case domain.MessageText:
			messages = append(messages, domain.TextMessage(m.Text))
		case domain.MessageImage:
			messages = append(messages, domain.ImageMessage(m.Image))
		default:
			s.writeError(w, r, validationError("messages.type", m.Type))
			return
		}
	}

	result, err := s.prompts.Run(r.Context(), orgID, messages, req.Provider, priority)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPromptResultModel(result))
}
