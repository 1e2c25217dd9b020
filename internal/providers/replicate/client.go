// Package replicate implements a minimal client for a Replicate-style
// predictions API: create a prediction against a model, then poll it until
// the vendor reports a terminal status.
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfoote22/3d-ah-fi-server/internal/infra"
	"github.com/jfoote22/3d-ah-fi-server/internal/providers"
)

const providerName = "replicate"

// ErrMissingAPIToken indicates that the client was configured without credentials.
var ErrMissingAPIToken = errors.New("replicate: api token is required")

// Options configures the Replicate client.
type Options struct {
	APIToken     string
	BaseURL      string
	ImageModel   string
	Img2ImgModel string
	HTTPClient   *http.Client
	Logger       *infra.Logger
	PollInterval time.Duration
}

// Client performs HTTP calls to the predictions API.
type Client struct {
	apiToken     string
	baseURL      string
	imageModel   string
	img2imgModel string
	httpClient   *http.Client
	logger       *infra.Logger
	pollInterval time.Duration
}

// GenerateRequest captures the inputs for text-to-image generation.
type GenerateRequest struct {
	Prompt           string
	AspectRatio      string
	Seed             int
	NegativePrompt   string
	PersonGeneration string
}

// TransformRequest captures the inputs for image-to-image generation.
// Strength, GuidanceScale and InferenceSteps are clamped by the caller.
type TransformRequest struct {
	Prompt         string
	ImageURL       string
	Strength       float64
	GuidanceScale  float64
	InferenceSteps int
	Seed           int
	NegativePrompt string
}

// Result is the normalized outcome of a prediction.
type Result struct {
	URL   string
	Model string
}

type predictionRequest struct {
	Input map[string]any `json:"input"`
}

type predictionResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

type errorDetail struct {
	Detail string `json:"detail"`
	Title  string `json:"title"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.replicate.com/v1"
	}
	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = "black-forest-labs/flux-schnell"
	}
	img2imgModel := strings.TrimSpace(opts.Img2ImgModel)
	if img2imgModel == "" {
		img2imgModel = "stability-ai/sdxl"
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiToken:     strings.TrimSpace(opts.APIToken),
		baseURL:      baseURL,
		imageModel:   imageModel,
		img2imgModel: img2imgModel,
		httpClient:   httpClient,
		logger:       logger,
		pollInterval: pollInterval,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiToken != ""
}

// ImageModel returns the configured text-to-image model identifier.
func (c *Client) ImageModel() string { return c.imageModel }

// Img2ImgModel returns the configured image-to-image model identifier.
func (c *Client) Img2ImgModel() string { return c.img2imgModel }

// GenerateImage runs one text-to-image prediction and returns the image URL.
func (c *Client) GenerateImage(ctx context.Context, req GenerateRequest) (*Result, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, providers.NewError(providers.KindBadRequest, providerName, "prompt is required")
	}
	input := map[string]any{"prompt": prompt}
	if req.AspectRatio != "" {
		input["aspect_ratio"] = req.AspectRatio
	}
	if req.Seed > 0 {
		input["seed"] = req.Seed
	}
	if neg := strings.TrimSpace(req.NegativePrompt); neg != "" {
		input["negative_prompt"] = neg
	}
	if req.PersonGeneration != "" {
		input["person_generation"] = req.PersonGeneration
	}
	return c.predict(ctx, c.imageModel, input)
}

// TransformImage runs one image-to-image prediction and returns the image URL.
func (c *Client) TransformImage(ctx context.Context, req TransformRequest) (*Result, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, providers.NewError(providers.KindBadRequest, providerName, "prompt is required")
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		return nil, providers.NewError(providers.KindBadRequest, providerName, "image is required")
	}
	input := map[string]any{
		"prompt": prompt,
		"image":  req.ImageURL,
	}
	if req.Strength > 0 {
		input["prompt_strength"] = req.Strength
	}
	if req.GuidanceScale > 0 {
		input["guidance_scale"] = req.GuidanceScale
	}
	if req.InferenceSteps > 0 {
		input["num_inference_steps"] = req.InferenceSteps
	}
	if req.Seed > 0 {
		input["seed"] = req.Seed
	}
	if neg := strings.TrimSpace(req.NegativePrompt); neg != "" {
		input["negative_prompt"] = neg
	}
	return c.predict(ctx, c.img2imgModel, input)
}

func (c *Client) predict(ctx context.Context, model string, input map[string]any) (*Result, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIToken
	}

	created, err := c.createPrediction(ctx, model, input)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("model", model).Str("prediction", created.ID).Msg("prediction created")

	pred := created
	for !terminalStatus(pred.Status) {
		select {
		case <-ctx.Done():
			return nil, providers.WrapError(providers.Classify(ctx.Err()), providerName, ctx.Err())
		case <-time.After(c.pollInterval):
		}
		pred, err = c.getPrediction(ctx, created.ID)
		if err != nil {
			return nil, err
		}
	}

	if pred.Status != "succeeded" {
		msg := strings.TrimSpace(pred.Error)
		if msg == "" {
			msg = "prediction " + pred.Status
		}
		return nil, providers.NewError(providers.Classify(errors.New(msg)), providerName, msg)
	}
	url := firstOutputURL(pred.Output)
	if url == "" {
		return nil, providers.NewError(providers.KindInternal, providerName, "prediction succeeded without output")
	}
	return &Result{URL: url, Model: model}, nil
}

func (c *Client) createPrediction(ctx context.Context, model string, input map[string]any) (*predictionResponse, error) {
	body, err := json.Marshal(predictionRequest{Input: input})
	if err != nil {
		return nil, fmt.Errorf("replicate: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s/predictions", c.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("replicate: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)
	return c.do(httpReq)
}

func (c *Client) getPrediction(ctx context.Context, id string) (*predictionResponse, error) {
	endpoint := fmt.Sprintf("%s/predictions/%s", c.baseURL, id)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("replicate: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)
	return c.do(httpReq)
}

func (c *Client) do(req *http.Request) (*predictionResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, providers.WrapError(providers.Classify(err), providerName, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("replicate: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var detail errorDetail
		msg := strings.TrimSpace(string(raw))
		if err := json.Unmarshal(raw, &detail); err == nil {
			if detail.Detail != "" {
				msg = detail.Detail
			} else if detail.Title != "" {
				msg = detail.Title
			}
		}
		return nil, providers.NewError(providers.KindFromStatus(resp.StatusCode), providerName,
			fmt.Sprintf("status %d: %s", resp.StatusCode, msg))
	}

	var decoded predictionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("replicate: decode response: %w", err)
	}
	return &decoded, nil
}

func terminalStatus(status string) bool {
	switch status {
	case "succeeded", "failed", "canceled":
		return true
	}
	return false
}

// firstOutputURL handles both output shapes the predictions API uses: a bare
// string or a list of strings.
func firstOutputURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return many[0]
	}
	return ""
}
