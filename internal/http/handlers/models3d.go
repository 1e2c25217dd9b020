package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jfoote22/3d-ah-fi-server/internal/domain"
	"github.com/jfoote22/3d-ah-fi-server/internal/providers"
	"github.com/jfoote22/3d-ah-fi-server/internal/providers/mesh"
)

type modelGenerateRequest struct {
	Prompt   string `json:"prompt"`
	ImageURL string `json:"imageUrl"`
	ImageID  string `json:"imageId"`
}

type modelGenerateResponse struct {
	ModelURL       string  `json:"modelUrl"`
	GenerationTime float64 `json:"generationTime"`
	SourceImageURL string  `json:"sourceImageUrl,omitempty"`
	Prompt         string  `json:"prompt,omitempty"`
}

// ModelsGenerate kicks off mesh generation from a prompt and, optionally, a
// previously generated image. Mesh tasks are by far the slowest capability,
// so timeout responses carry the vendor's last reported stage.
func (a *App) ModelsGenerate(w http.ResponseWriter, r *http.Request) {
	var req modelGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt is required")
		return
	}
	if !a.Meshes.HasCredentials() {
		a.configError(w, "mesh provider")
		return
	}

	sess := a.session(r)
	sourceURL := strings.TrimSpace(req.ImageURL)
	sourceID := strings.TrimSpace(req.ImageID)
	if sourceID != "" {
		if img, ok := sess.Image(sourceID); ok {
			sourceURL = img.URL
		}
	}

	var mu sync.Mutex
	lastStage := "queued"
	onProgress := func(stage string) {
		mu.Lock()
		lastStage = stage
		mu.Unlock()
	}

	start := time.Now()
	res, err := providers.CallWithTimeout(r.Context(), "meshy", a.Config.Gen3DTimeout,
		func(ctx context.Context) (*mesh.Result, error) {
			return a.Meshes.GenerateModel(ctx, mesh.GenerateRequest{
				Prompt:     req.Prompt,
				ImageURL:   sourceURL,
				OnProgress: onProgress,
			})
		})
	if err != nil {
		mu.Lock()
		stage := lastStage
		mu.Unlock()
		a.providerError(w, r, err, stage)
		return
	}
	elapsed := time.Since(start).Seconds()

	sess.AddGeneratedModel(domain.Model3D{
		ID:             uuid.NewString(),
		URL:            res.MeshURL,
		SourceImageID:  sourceID,
		Prompt:         req.Prompt,
		Timestamp:      time.Now(),
		GenerationTime: elapsed,
	})

	a.json(w, http.StatusOK, modelGenerateResponse{
		ModelURL:       res.MeshURL,
		GenerationTime: elapsed,
		SourceImageURL: sourceURL,
		Prompt:         req.Prompt,
	})
}
