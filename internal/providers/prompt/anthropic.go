package prompt

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

	"github.com/jfoote22/3d-ah-fi-server/internal/providers"
)

const (
	providerName          = "anthropic"
	anthropicVersion      = "2023-06-01"
	anthropicDefaultModel = "claude-3-5-haiku-latest"
	anthropicTimeout      = 30 * time.Second
	maxOutputTokens       = 1024
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("anthropic: api key is required")

// AnthropicOptions configures the Anthropic messages client.
type AnthropicOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// AnthropicEnhancer calls the messages API to rewrite prompts.
type AnthropicEnhancer struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

const systemPrompt = "You improve image generation prompts. Reply with the improved prompt text only, no preamble and no quotes."

// NewAnthropicEnhancer constructs an enhancer with sane defaults.
func NewAnthropicEnhancer(opts AnthropicOptions) *AnthropicEnhancer {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = anthropicDefaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: anthropicTimeout}
	}
	return &AnthropicEnhancer{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		baseURL: baseURL,
		client:  client,
	}
}

// HasCredentials reports whether the enhancer can perform remote calls.
func (a *AnthropicEnhancer) HasCredentials() bool {
	return a.apiKey != ""
}

// Model returns the configured model identifier.
func (a *AnthropicEnhancer) Model() string { return a.model }

// GeneratePrompt sends the rendered instruction and returns the model's reply.
func (a *AnthropicEnhancer) GeneratePrompt(ctx context.Context, instruction string) (string, error) {
	if !a.HasCredentials() {
		return "", ErrMissingAPIKey
	}
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return "", providers.NewError(providers.KindBadRequest, providerName, "instruction is required")
	}

	payload := anthropicRequest{
		Model:     a.model,
		MaxTokens: maxOutputTokens,
		System:    systemPrompt,
		Messages:  []anthropicMessage{{Role: "user", Content: instruction}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("anthropic: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("anthropic: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", providers.WrapError(providers.Classify(err), providerName, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("anthropic: read response: %w", err)
	}

	var decoded anthropicResponse
	if unmarshalErr := json.Unmarshal(raw, &decoded); unmarshalErr == nil && decoded.Error != nil {
		return "", providers.NewError(providers.KindFromStatus(resp.StatusCode), providerName, decoded.Error.Message)
	}
	if resp.StatusCode >= 300 {
		return "", providers.NewError(providers.KindFromStatus(resp.StatusCode), providerName,
			fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	for _, block := range decoded.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", providers.NewError(providers.KindInternal, providerName, "empty completion")
}

var _ Enhancer = (*AnthropicEnhancer)(nil)
