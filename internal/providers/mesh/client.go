// Package mesh implements a client for a Meshy-style 3D generation task API.
// Mesh generation runs for minutes, so the vendor hands back a task id which
// is polled until it reaches a terminal state.
package mesh

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

const providerName = "mesh"

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("mesh: api key is required")

// Options configures the mesh client.
type Options struct {
	APIKey       string
	BaseURL      string
	Model        string
	HTTPClient   *http.Client
	Logger       *infra.Logger
	PollInterval time.Duration
}

// Client performs HTTP calls to the 3D task API.
type Client struct {
	apiKey       string
	baseURL      string
	model        string
	httpClient   *http.Client
	logger       *infra.Logger
	pollInterval time.Duration
}

// GenerateRequest captures the inputs for mesh generation. When ImageURL is
// set the vendor conditions the mesh on that image, otherwise it works from
// the prompt alone.
type GenerateRequest struct {
	Prompt   string
	ImageURL string

	// OnProgress, when set, receives the vendor's stage description each
	// time the task is polled. The gateway uses the last reported stage in
	// its timeout responses.
	OnProgress func(stage string)
}

// Result is the normalized outcome of a mesh task.
type Result struct {
	MeshURL string
	Model   string
}

type taskCreateRequest struct {
	Mode     string `json:"mode"`
	Prompt   string `json:"prompt"`
	ImageURL string `json:"image_url,omitempty"`
	AIModel  string `json:"ai_model"`
}

type taskCreateResponse struct {
	Result string `json:"result"`
}

type taskStatusResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Progress  int    `json:"progress"`
	ModelURLs struct {
		GLB string `json:"glb"`
		OBJ string `json:"obj"`
	} `json:"model_urls"`
	TaskError struct {
		Message string `json:"message"`
	} `json:"task_error"`
}

type errorDetail struct {
	Message string `json:"message"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.meshy.ai/v2"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "meshy-4"
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
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
		apiKey:       strings.TrimSpace(opts.APIKey),
		baseURL:      baseURL,
		model:        model,
		httpClient:   httpClient,
		logger:       logger,
		pollInterval: pollInterval,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// GenerateModel creates one mesh task and polls it to completion.
func (c *Client) GenerateModel(ctx context.Context, req GenerateRequest) (*Result, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, providers.NewError(providers.KindBadRequest, providerName, "prompt is required")
	}

	taskID, err := c.createTask(ctx, prompt, strings.TrimSpace(req.ImageURL))
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("task", taskID).Msg("mesh task created")

	for {
		select {
		case <-ctx.Done():
			return nil, providers.WrapError(providers.Classify(ctx.Err()), providerName, ctx.Err())
		case <-time.After(c.pollInterval):
		}

		status, err := c.getTask(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if req.OnProgress != nil {
			req.OnProgress(stageFor(status))
		}
		switch status.Status {
		case "SUCCEEDED":
			url := status.ModelURLs.GLB
			if url == "" {
				url = status.ModelURLs.OBJ
			}
			if url == "" {
				return nil, providers.NewError(providers.KindInternal, providerName, "task succeeded without mesh url")
			}
			return &Result{MeshURL: url, Model: c.model}, nil
		case "FAILED", "CANCELED", "EXPIRED":
			msg := strings.TrimSpace(status.TaskError.Message)
			if msg == "" {
				msg = "task " + strings.ToLower(status.Status)
			}
			return nil, providers.NewError(providers.Classify(errors.New(msg)), providerName, msg)
		}
	}
}

func (c *Client) createTask(ctx context.Context, prompt, imageURL string) (string, error) {
	mode := "preview"
	payload := taskCreateRequest{Mode: mode, Prompt: prompt, ImageURL: imageURL, AIModel: c.model}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("mesh: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/text-to-3d", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("mesh: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", providers.WrapError(providers.Classify(err), providerName, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("mesh: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", vendorError(resp.StatusCode, raw)
	}
	var decoded taskCreateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("mesh: decode response: %w", err)
	}
	if decoded.Result == "" {
		return "", providers.NewError(providers.KindInternal, providerName, "empty task id")
	}
	return decoded.Result, nil
}

func (c *Client) getTask(ctx context.Context, id string) (*taskStatusResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/text-to-3d/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("mesh: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.WrapError(providers.Classify(err), providerName, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mesh: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, vendorError(resp.StatusCode, raw)
	}
	var decoded taskStatusResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("mesh: decode response: %w", err)
	}
	return &decoded, nil
}

func vendorError(status int, raw []byte) error {
	msg := strings.TrimSpace(string(raw))
	var detail errorDetail
	if err := json.Unmarshal(raw, &detail); err == nil && detail.Message != "" {
		msg = detail.Message
	}
	return providers.NewError(providers.KindFromStatus(status), providerName,
		fmt.Sprintf("status %d: %s", status, msg))
}

func stageFor(status *taskStatusResponse) string {
	switch status.Status {
	case "PENDING":
		return "queued"
	case "IN_PROGRESS":
		return fmt.Sprintf("generating (%d%%)", status.Progress)
	default:
		return strings.ToLower(status.Status)
	}
}
