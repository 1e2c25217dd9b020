// Package providers holds the error taxonomy and call helpers shared by all
// vendor clients. Each client maps the vendor's HTTP statuses to a closed set
// of error kinds at the source; free-text classification survives only as the
// last-resort default for unexpected message shapes.
package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Kind is the closed set of provider failure categories.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindPaymentRequired
	KindNotFound
	KindUnprocessable
	KindRateLimited
	KindTimeout
)

// Error is a provider failure tagged with its kind and originating vendor.
type Error struct {
	Kind     Kind
	Provider string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Provider + ": " + e.Message
	}
	if e.Err != nil {
		return e.Provider + ": " + e.Err.Error()
	}
	return e.Provider + ": provider error"
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a tagged provider error.
func NewError(kind Kind, provider, message string) *Error {
	return &Error{Kind: kind, Provider: provider, Message: message}
}

// WrapError tags an underlying error with a kind and provider name.
func WrapError(kind Kind, provider string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Provider: provider, Message: err.Error(), Err: err}
}

// KindFromStatus maps a vendor HTTP status to an error kind.
func KindFromStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindUnauthorized
	case http.StatusPaymentRequired:
		return KindPaymentRequired
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnprocessableEntity:
		return KindUnprocessable
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindInternal
	}
}

// HTTPStatus returns the status the gateway should surface for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindPaymentRequired:
		return http.StatusPaymentRequired
	case KindNotFound:
		return http.StatusNotFound
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Classify resolves any error to a kind. Tagged errors keep their kind;
// context expiry maps to timeout; everything else falls through to the
// legacy substring rules.
func Classify(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "402") || strings.Contains(msg, "payment required"):
		return KindPaymentRequired
	case strings.Contains(msg, "429") || strings.Contains(msg, "too many requests"):
		return KindRateLimited
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized"):
		return KindUnauthorized
	case strings.Contains(msg, "422") || strings.Contains(msg, "unprocessable"):
		return KindUnprocessable
	case strings.Contains(msg, "timed out") || strings.Contains(msg, "timeout"):
		return KindTimeout
	default:
		return KindInternal
	}
}

// UserMessage returns a remedy-oriented message for billing and quota
// failures and the raw error text otherwise.
func UserMessage(err error) string {
	switch Classify(err) {
	case KindPaymentRequired:
		return "provider billing required: set up billing with the provider and try again (" + err.Error() + ")"
	case KindRateLimited:
		return "provider rate limit reached: wait a moment and try again"
	case KindTimeout:
		return "generation timed out: try a simpler prompt"
	default:
		return err.Error()
	}
}
