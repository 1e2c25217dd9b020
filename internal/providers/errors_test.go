package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestClassifyTaggedErrors(t *testing.T) {
	err := NewError(KindPaymentRequired, "replicate", "billing required")
	if got := Classify(err); got != KindPaymentRequired {
		t.Fatalf("kind = %v, want payment required", got)
	}
	wrapped := fmt.Errorf("generate image: %w", err)
	if got := Classify(wrapped); got != KindPaymentRequired {
		t.Fatalf("wrapped kind = %v, want payment required", got)
	}
}

func TestClassifySubstringFallback(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want Kind
	}{
		{"payment required text", errors.New("provider said 402 Payment Required"), KindPaymentRequired},
		{"rate limit text", errors.New("HTTP 429 Too Many Requests"), KindRateLimited},
		{"unauthorized text", errors.New("401 unauthorized"), KindUnauthorized},
		{"unprocessable text", errors.New("input was unprocessable"), KindUnprocessable},
		{"timeout text", errors.New("request timed out"), KindTimeout},
		{"context deadline", context.DeadlineExceeded, KindTimeout},
		{"unknown", errors.New("something exploded"), KindInternal},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("Classify(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestKindHTTPStatus(t *testing.T) {
	pairs := map[Kind]int{
		KindBadRequest:      http.StatusBadRequest,
		KindUnauthorized:    http.StatusUnauthorized,
		KindPaymentRequired: http.StatusPaymentRequired,
		KindNotFound:        http.StatusNotFound,
		KindUnprocessable:   http.StatusUnprocessableEntity,
		KindRateLimited:     http.StatusTooManyRequests,
		KindTimeout:         http.StatusGatewayTimeout,
		KindInternal:        http.StatusInternalServerError,
	}
	for kind, want := range pairs {
		if got := kind.HTTPStatus(); got != want {
			t.Fatalf("kind %v status = %d, want %d", kind, got, want)
		}
	}
}

func TestKindFromStatus(t *testing.T) {
	if got := KindFromStatus(http.StatusPaymentRequired); got != KindPaymentRequired {
		t.Fatalf("402 kind = %v", got)
	}
	if got := KindFromStatus(http.StatusForbidden); got != KindUnauthorized {
		t.Fatalf("403 kind = %v", got)
	}
	if got := KindFromStatus(http.StatusTeapot); got != KindInternal {
		t.Fatalf("418 kind = %v", got)
	}
}

func TestUserMessageBillingRemedy(t *testing.T) {
	msg := UserMessage(errors.New("402 Payment Required"))
	if msg == "" {
		t.Fatal("expected non-empty message")
	}
	if want := "billing"; !strings.Contains(msg, want) {
		t.Fatalf("message %q should mention %q", msg, want)
	}
}
