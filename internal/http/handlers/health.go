package handlers

import "net/http"

type healthResponse struct {
	Status    string          `json:"status"`
	Providers map[string]bool `json:"providers"`
}

// Health reports liveness plus which providers have credentials, so a
// deployment can be sanity-checked without burning vendor credits.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, healthResponse{
		Status: "ok",
		Providers: map[string]bool{
			"images":             a.Images.HasCredentials(),
			"meshes":             a.Meshes.HasCredentials(),
			"background_removal": a.BGRemoval.HasCredentials(),
			"prompt_enhancement": a.Enhancer.HasCredentials(),
		},
	})
}
