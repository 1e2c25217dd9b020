package bgremoval

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jfoote22/3d-ah-fi-server/internal/providers"
)

func TestRemoveBackgroundSuccess(t *testing.T) {
	cutout := []byte{0x89, 'P', 'N', 'G'}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "key-1" {
			t.Errorf("api key header = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("image_file")
		if err != nil {
			t.Fatalf("image_file missing: %v", err)
		}
		defer file.Close()
		if header.Filename != "photo.jpg" {
			t.Errorf("filename = %q", header.Filename)
		}
		if got := r.FormValue("transparency_handling"); got != "return_input_if_non_transparent" {
			t.Errorf("transparency_handling = %q", got)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("X-Credits-Charged", "1")
		w.Header().Set("X-Credits-Remaining", "41.5")
		_, _ = w.Write(cutout)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Options{APIKey: "key-1", BaseURL: srv.URL})
	res, err := client.RemoveBackground(context.Background(), RemoveRequest{
		Filename:     "photo.jpg",
		Data:         []byte("jpeg-bytes"),
		Transparency: "return_input_if_non_transparent",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(res.Data, cutout) {
		t.Fatalf("data = %v", res.Data)
	}
	if res.ContentType != "image/png" {
		t.Fatalf("content type = %q", res.ContentType)
	}
	if res.CreditsConsumed != 1 || res.RemainingCredits != 41.5 {
		t.Fatalf("credits = %v / %v", res.CreditsConsumed, res.RemainingCredits)
	}
}

func TestRemoveBackgroundVendorErrors(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
		want   providers.Kind
	}{
		{"payment required", http.StatusPaymentRequired, `{"errors":[{"title":"Insufficient credits"}]}`, providers.KindPaymentRequired},
		{"rate limited", http.StatusTooManyRequests, `{"errors":[{"title":"Rate limit exceeded"}]}`, providers.KindRateLimited},
		{"bad input", http.StatusBadRequest, `{"errors":[{"title":"File too large"}]}`, providers.KindBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(srv.Close)

			client := NewClient(Options{APIKey: "k", BaseURL: srv.URL})
			_, err := client.RemoveBackground(context.Background(), RemoveRequest{Data: []byte("x")})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := providers.Classify(err); got != tc.want {
				t.Fatalf("kind = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRemoveBackgroundRequiresImage(t *testing.T) {
	client := NewClient(Options{APIKey: "k"})
	_, err := client.RemoveBackground(context.Background(), RemoveRequest{})
	if got := providers.Classify(err); got != providers.KindBadRequest {
		t.Fatalf("kind = %v, want bad request", got)
	}
}

func TestRemoveBackgroundRequiresCredentials(t *testing.T) {
	client := NewClient(Options{})
	if _, err := client.RemoveBackground(context.Background(), RemoveRequest{Data: []byte("x")}); err != ErrMissingAPIKey {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}
