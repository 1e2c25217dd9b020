package handlers

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/jfoote22/3d-ah-fi-server/internal/domain"
	"github.com/jfoote22/3d-ah-fi-server/internal/infra"
	"github.com/jfoote22/3d-ah-fi-server/internal/middleware"
	"github.com/jfoote22/3d-ah-fi-server/internal/providers"
	"github.com/jfoote22/3d-ah-fi-server/internal/storage"
	"github.com/jfoote22/3d-ah-fi-server/internal/workflow"
)

// App is the dependency container shared by all request handlers.
type App struct {
	Config    *infra.Config
	Logger    infra.Logger
	Images    ImageGenerator
	Meshes    MeshGenerator
	BGRemoval BackgroundRemover
	Enhancer  PromptEnhancer
	Creations domain.CreationRepository
	Prompts   domain.PromptRepository
	Blobs     *storage.FileStore
	Sessions  *workflow.SessionManager

	// requestSeq correlates log lines within one process lifetime only.
	requestSeq atomic.Int64
}

type errorResponse struct {
	Error       string `json:"error"`
	Code        string `json:"code,omitempty"`
	IsTimeout   bool   `json:"isTimeout,omitempty"`
	CurrentStep string `json:"currentStep,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorResponse{Error: message, Code: errCode})
}

// providerError maps a provider failure to its HTTP status and envelope.
// currentStep rides along on slow-capability timeouts so the client can show
// where the vendor got stuck.
func (a *App) providerError(w http.ResponseWriter, r *http.Request, err error, currentStep string) {
	kind := providers.Classify(err)
	resp := errorResponse{
		Error:     providers.UserMessage(err),
		IsTimeout: kind == providers.KindTimeout,
	}
	if resp.IsTimeout {
		resp.CurrentStep = currentStep
	}
	if a.Config != nil && a.Config.Development() {
		resp.Detail = err.Error()
	}
	a.Logger.Error().
		Err(err).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Int("status", kind.HTTPStatus()).
		Msg("provider call failed")
	a.json(w, kind.HTTPStatus(), resp)
}

// configError reports a missing provider credential distinctly from
// transient failures so operators can tell them apart.
func (a *App) configError(w http.ResponseWriter, provider string) {
	a.error(w, http.StatusInternalServerError, "not_configured",
		provider+" credentials are not configured on the server")
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// session returns the caller's workflow store.
func (a *App) session(r *http.Request) *workflow.Store {
	return a.Sessions.Get(a.currentUserID(r))
}

func (a *App) nextRequestSeq() int64 {
	return a.requestSeq.Add(1)
}
