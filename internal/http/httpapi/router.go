// Package httpapi assembles the HTTP surface: middleware wiring, the /v1
// route tree, and static blob serving.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jfoote22/3d-ah-fi-server/internal/http/handlers"
	"github.com/jfoote22/3d-ah-fi-server/internal/middleware"
)

// NewRouter builds the full route tree around the handler container.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.CORS(app.Config.CORSOrigins))
	if app.Config.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
	}

	r.Get("/healthz", app.Health)

	if app.Blobs != nil {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(app.Blobs.BasePath())))
		r.Handle("/static/*", fs)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Auth(app.Config.JWTSecret))

		r.Post("/images/generate", app.ImagesGenerate)
		r.Post("/images/transform", app.ImagesTransform)
		r.Post("/images/background-removal", app.ImagesRemoveBackground)
		r.Post("/models/generate", app.ModelsGenerate)
		r.Post("/prompts/enhance", app.PromptsEnhance)

		r.Route("/workflow", func(r chi.Router) {
			r.Get("/", app.WorkflowGet)
			r.Post("/step", app.WorkflowStep)
			r.Post("/reset", app.WorkflowReset)
			r.Post("/prompt", app.WorkflowSetPrompt)
			r.Post("/select-image", app.WorkflowSelectImage)
			r.Post("/onboarding/dismiss", app.WorkflowDismissOnboarding)
		})

		r.Route("/creations", func(r chi.Router) {
			r.Get("/", app.CreationsList)
			r.Post("/", app.CreationsSave)
			r.Get("/export", app.CreationsExport)
			r.Delete("/{id}", app.CreationsDelete)
		})

		r.Route("/saved-prompts", func(r chi.Router) {
			r.Get("/", app.SavedPromptsList)
			r.Post("/", app.SavedPromptsSave)
			r.Delete("/{id}", app.SavedPromptsDelete)
		})
	})

	return r
}
