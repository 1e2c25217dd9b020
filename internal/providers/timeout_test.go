package providers

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCallWithTimeoutReturnsResult(t *testing.T) {
	got, err := CallWithTimeout(context.Background(), "test", time.Second, func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("got %q", got)
	}
}

func TestCallWithTimeoutExpires(t *testing.T) {
	deadline := 30 * time.Millisecond
	start := time.Now()
	_, err := CallWithTimeout(context.Background(), "slow", deadline, func(ctx context.Context) (string, error) {
		select {
		case <-time.After(2 * time.Second):
			return "too late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected timeout error")
	}
	if got := Classify(err); got != KindTimeout {
		t.Fatalf("kind = %v, want timeout", got)
	}
	// The caller must be released near the deadline, not near the provider's
	// actual latency.
	if elapsed > time.Second {
		t.Fatalf("call took %v, want ~%v", elapsed, deadline)
	}
}

func TestCallWithTimeoutPropagatesProviderError(t *testing.T) {
	want := errors.New("vendor exploded")
	_, err := CallWithTimeout(context.Background(), "test", time.Second, func(ctx context.Context) (int, error) {
		return 0, want
	})
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func TestCallWithTimeoutCancelledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CallWithTimeout(ctx, "test", time.Second, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if err == nil {
		t.Fatal("expected error from cancelled parent")
	}
	if Classify(err) == KindTimeout {
		t.Fatalf("cancellation must not be reported as timeout: %v", err)
	}
}
