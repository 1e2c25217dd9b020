package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jfoote22/3d-ah-fi-server/internal/providers"
	"github.com/jfoote22/3d-ah-fi-server/internal/providers/prompt"
)

type promptEnhanceRequest struct {
	Template        string            `json:"template"`
	Variables       map[string]string `json:"variables"`
	EnhancementType string            `json:"enhancementType"`
}

type promptEnhanceResponse struct {
	GeneratedPrompt string `json:"generatedPrompt"`
}

// PromptsEnhance renders the caller's template and asks the language model
// to expand it into a richer generation prompt.
func (a *App) PromptsEnhance(w http.ResponseWriter, r *http.Request) {
	var req promptEnhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Template) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "template is required")
		return
	}
	if !a.Enhancer.HasCredentials() {
		a.configError(w, "prompt enhancement")
		return
	}

	instruction := prompt.RenderTemplate(req.Template, req.Variables)
	generated, err := providers.CallWithTimeout(r.Context(), "anthropic", a.Config.ImageTimeout,
		func(ctx context.Context) (string, error) {
			return a.Enhancer.GeneratePrompt(ctx, instruction)
		})
	if err != nil {
		a.providerError(w, r, err, "")
		return
	}

	if t := strings.TrimSpace(req.EnhancementType); t != "" {
		a.session(r).SetEnhancementType(t)
	}

	a.json(w, http.StatusOK, promptEnhanceResponse{GeneratedPrompt: generated})
}
