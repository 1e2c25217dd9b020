package mesh

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jfoote22/3d-ah-fi-server/internal/providers"
)

func TestGenerateModelPollsTaskToCompletion(t *testing.T) {
	var polls int
	mux := http.NewServeMux()
	mux.HandleFunc("POST /text-to-3d", func(w http.ResponseWriter, r *http.Request) {
		var req taskCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Prompt != "a ceramic mug" {
			t.Errorf("prompt = %q", req.Prompt)
		}
		if req.ImageURL != "https://example.com/mug.png" {
			t.Errorf("image_url = %q", req.ImageURL)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"result": "task-1"})
	})
	mux.HandleFunc("GET /text-to-3d/task-1", func(w http.ResponseWriter, r *http.Request) {
		polls++
		switch {
		case polls == 1:
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "task-1", "status": "PENDING"})
		case polls == 2:
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "task-1", "status": "IN_PROGRESS", "progress": 60})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "task-1", "status": "SUCCEEDED", "progress": 100,
				"model_urls": map[string]string{"glb": "https://cdn.example.com/mug.glb"},
			})
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(Options{APIKey: "k", BaseURL: srv.URL, PollInterval: time.Millisecond})

	var mu sync.Mutex
	var stages []string
	res, err := client.GenerateModel(context.Background(), GenerateRequest{
		Prompt:   "a ceramic mug",
		ImageURL: "https://example.com/mug.png",
		OnProgress: func(stage string) {
			mu.Lock()
			stages = append(stages, stage)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MeshURL != "https://cdn.example.com/mug.glb" {
		t.Fatalf("mesh url = %q", res.MeshURL)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(stages) < 3 {
		t.Fatalf("stages = %v, want at least 3", stages)
	}
	if stages[0] != "queued" {
		t.Fatalf("first stage = %q", stages[0])
	}
	if stages[1] != "generating (60%)" {
		t.Fatalf("second stage = %q", stages[1])
	}
}

func TestGenerateModelTaskFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /text-to-3d", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"result": "task-2"})
	})
	mux.HandleFunc("GET /text-to-3d/task-2", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "task-2", "status": "FAILED",
			"task_error": map[string]string{"message": "mesh reconstruction failed"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(Options{APIKey: "k", BaseURL: srv.URL, PollInterval: time.Millisecond})
	_, err := client.GenerateModel(context.Background(), GenerateRequest{Prompt: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGenerateModelVendorQuota(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /text-to-3d", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "quota exhausted"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(Options{APIKey: "k", BaseURL: srv.URL})
	_, err := client.GenerateModel(context.Background(), GenerateRequest{Prompt: "x"})
	if got := providers.Classify(err); got != providers.KindRateLimited {
		t.Fatalf("kind = %v, want rate limited", got)
	}
}

func TestGenerateModelContextCancellation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /text-to-3d", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"result": "task-3"})
	})
	mux.HandleFunc("GET /text-to-3d/task-3", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "task-3", "status": "PENDING"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(Options{APIKey: "k", BaseURL: srv.URL, PollInterval: 10 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	_, err := client.GenerateModel(ctx, GenerateRequest{Prompt: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := providers.Classify(err); got != providers.KindTimeout {
		t.Fatalf("kind = %v, want timeout", got)
	}
}

func TestGenerateModelRequiresCredentials(t *testing.T) {
	client := NewClient(Options{})
	if _, err := client.GenerateModel(context.Background(), GenerateRequest{Prompt: "x"}); err != ErrMissingAPIKey {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}
