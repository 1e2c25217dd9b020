// Package bgremoval implements a client for a remove.bg-style background
// segmentation API: the source image goes up as multipart form data and the
// cut-out comes back as raw image bytes plus credit accounting headers.
package bgremoval

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jfoote22/3d-ah-fi-server/internal/providers"
)

const providerName = "bgremoval"

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("bgremoval: api key is required")

// Options configures the background removal client.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Client performs HTTP calls to the background removal API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// RemoveRequest carries the uploaded image and optional vendor tuning.
type RemoveRequest struct {
	Filename     string
	Data         []byte
	Transparency string
}

// Result is the cut-out image plus credit accounting from the vendor.
type Result struct {
	Data             []byte
	ContentType      string
	CreditsConsumed  float64
	RemainingCredits float64
}

type errorResponse struct {
	Errors []struct {
		Title string `json:"title"`
	} `json:"errors"`
}

// NewClient constructs a client with sane defaults.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.remove.bg/v1.0"
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// RemoveBackground uploads one image and returns the cut-out.
func (c *Client) RemoveBackground(ctx context.Context, req RemoveRequest) (*Result, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	if len(req.Data) == 0 {
		return nil, providers.NewError(providers.KindBadRequest, providerName, "image_file is required")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	filename := req.Filename
	if filename == "" {
		filename = "image.png"
	}
	part, err := mw.CreateFormFile("image_file", filename)
	if err != nil {
		return nil, fmt.Errorf("bgremoval: build form: %w", err)
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, fmt.Errorf("bgremoval: write form: %w", err)
	}
	if req.Transparency != "" {
		if err := mw.WriteField("transparency_handling", req.Transparency); err != nil {
			return nil, fmt.Errorf("bgremoval: write field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("bgremoval: close form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/removebg", &body)
	if err != nil {
		return nil, fmt.Errorf("bgremoval: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.WrapError(providers.Classify(err), providerName, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("bgremoval: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && len(detail.Errors) > 0 && detail.Errors[0].Title != "" {
			msg = detail.Errors[0].Title
		}
		return nil, providers.NewError(providers.KindFromStatus(resp.StatusCode), providerName,
			fmt.Sprintf("status %d: %s", resp.StatusCode, msg))
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return &Result{
		Data:             raw,
		ContentType:      contentType,
		CreditsConsumed:  headerFloat(resp.Header, "X-Credits-Charged"),
		RemainingCredits: headerFloat(resp.Header, "X-Credits-Remaining"),
	}, nil
}

func headerFloat(h http.Header, key string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(h.Get(key)), 64)
	if err != nil {
		return 0
	}
	return v
}
