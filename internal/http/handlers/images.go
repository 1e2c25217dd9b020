package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jfoote22/3d-ah-fi-server/internal/domain"
	"github.com/jfoote22/3d-ah-fi-server/internal/providers"
	"github.com/jfoote22/3d-ah-fi-server/internal/providers/replicate"
)

// Image-to-image tuning caps; values above these are clamped, never rejected.
const (
	maxStrength       = 1.0
	maxGuidanceScale  = 20.0
	maxInferenceSteps = 50
)

type imageGenerateRequest struct {
	Prompt           string `json:"prompt"`
	AspectRatio      string `json:"aspect_ratio"`
	Seed             int    `json:"seed"`
	NegativePrompt   string `json:"negativePrompt"`
	PersonGeneration string `json:"personGeneration"`
}

type imageGenerateResponse struct {
	ImageURL         string  `json:"imageUrl"`
	Model            string  `json:"model"`
	GenerationTime   float64 `json:"generationTime"`
	Prompt           string  `json:"prompt"`
	AspectRatio      string  `json:"aspectRatio,omitempty"`
	Seed             int     `json:"seed,omitempty"`
	NegativePrompt   string  `json:"negativePrompt,omitempty"`
	PersonGeneration string  `json:"personGeneration,omitempty"`
}

func (a *App) ImagesGenerate(w http.ResponseWriter, r *http.Request) {
	seq := a.nextRequestSeq()
	var req imageGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt is required")
		return
	}
	if !a.Images.HasCredentials() {
		a.configError(w, "image provider")
		return
	}

	a.Logger.Info().Int64("seq", seq).Str("model", a.Images.ImageModel()).Msg("image generation requested")
	start := time.Now()
	res, err := providers.CallWithTimeout(r.Context(), "replicate", a.Config.ImageTimeout,
		func(ctx context.Context) (*replicate.Result, error) {
			return a.Images.GenerateImage(ctx, replicate.GenerateRequest{
				Prompt:           req.Prompt,
				AspectRatio:      req.AspectRatio,
				Seed:             req.Seed,
				NegativePrompt:   req.NegativePrompt,
				PersonGeneration: req.PersonGeneration,
			})
		})
	if err != nil {
		a.providerError(w, r, err, "")
		return
	}
	elapsed := time.Since(start).Seconds()

	img := domain.GeneratedImage{
		ID:        uuid.NewString(),
		URL:       res.URL,
		Prompt:    req.Prompt,
		Timestamp: time.Now(),
		Meta: &domain.ImageMeta{
			Model:          res.Model,
			GenerationTime: elapsed,
			Seed:           req.Seed,
			AspectRatio:    req.AspectRatio,
		},
	}
	sess := a.session(r)
	sess.SetPrompt(req.Prompt)
	sess.AddPromptToHistory(req.Prompt)
	sess.AddGeneratedImage(img)

	a.json(w, http.StatusOK, imageGenerateResponse{
		ImageURL:         res.URL,
		Model:            res.Model,
		GenerationTime:   elapsed,
		Prompt:           req.Prompt,
		AspectRatio:      req.AspectRatio,
		Seed:             req.Seed,
		NegativePrompt:   req.NegativePrompt,
		PersonGeneration: req.PersonGeneration,
	})
}

type imageTransformRequest struct {
	Prompt         string  `json:"prompt"`
	Image          string  `json:"image"`
	Strength       float64 `json:"strength"`
	GuidanceScale  float64 `json:"guidance_scale"`
	InferenceSteps int     `json:"num_inference_steps"`
	Seed           int     `json:"seed"`
	NegativePrompt string  `json:"negative_prompt"`
}

func (a *App) ImagesTransform(w http.ResponseWriter, r *http.Request) {
	var req imageTransformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt is required")
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "image is required")
		return
	}
	if !a.Images.HasCredentials() {
		a.configError(w, "image provider")
		return
	}

	if req.Strength > maxStrength {
		req.Strength = maxStrength
	}
	if req.Strength < 0 {
		req.Strength = 0
	}
	if req.GuidanceScale > maxGuidanceScale {
		req.GuidanceScale = maxGuidanceScale
	}
	if req.InferenceSteps > maxInferenceSteps {
		req.InferenceSteps = maxInferenceSteps
	}

	start := time.Now()
	res, err := providers.CallWithTimeout(r.Context(), "replicate", a.Config.ImageTimeout,
		func(ctx context.Context) (*replicate.Result, error) {
			return a.Images.TransformImage(ctx, replicate.TransformRequest{
				Prompt:         req.Prompt,
				ImageURL:       req.Image,
				Strength:       req.Strength,
				GuidanceScale:  req.GuidanceScale,
				InferenceSteps: req.InferenceSteps,
				Seed:           req.Seed,
				NegativePrompt: req.NegativePrompt,
			})
		})
	if err != nil {
		a.providerError(w, r, err, "")
		return
	}
	elapsed := time.Since(start).Seconds()

	sess := a.session(r)
	sess.AddPromptToHistory(req.Prompt)
	sess.AddGeneratedImage(domain.GeneratedImage{
		ID:        uuid.NewString(),
		URL:       res.URL,
		Prompt:    req.Prompt,
		Timestamp: time.Now(),
		Meta: &domain.ImageMeta{
			Model:          res.Model,
			GenerationTime: elapsed,
			Seed:           req.Seed,
		},
	})

	a.json(w, http.StatusOK, imageGenerateResponse{
		ImageURL:       res.URL,
		Model:          res.Model,
		GenerationTime: elapsed,
		Prompt:         req.Prompt,
		Seed:           req.Seed,
		NegativePrompt: req.NegativePrompt,
	})
}
