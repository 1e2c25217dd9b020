package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jfoote22/3d-ah-fi-server/internal/domain"
)

type savePromptRequest struct {
	Text string `json:"text"`
}

func (a *App) SavedPromptsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.Prompts.ListByUser(r.Context(), a.currentUserID(r))
	if err != nil {
		a.Logger.Error().Err(err).Msg("list saved prompts")
		a.error(w, http.StatusInternalServerError, "internal", "could not load prompts")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) SavedPromptsSave(w http.ResponseWriter, r *http.Request) {
	var req savePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "text is required")
		return
	}
	p := domain.SavedPrompt{
		ID:        uuid.NewString(),
		UserID:    a.currentUserID(r),
		Text:      req.Text,
		CreatedAt: time.Now(),
	}
	if err := a.Prompts.Save(r.Context(), p); err != nil {
		a.Logger.Error().Err(err).Msg("save prompt")
		a.error(w, http.StatusInternalServerError, "internal", "could not save prompt")
		return
	}
	a.json(w, http.StatusOK, p)
}

// SavedPromptsDelete removes one of the caller's prompts. Another user's
// prompt reads as missing, not forbidden.
func (a *App) SavedPromptsDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Prompts.DeleteByID(r.Context(), a.currentUserID(r), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "prompt not found")
			return
		}
		a.Logger.Error().Err(err).Msg("delete prompt")
		a.error(w, http.StatusInternalServerError, "internal", "could not delete prompt")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true})
}
