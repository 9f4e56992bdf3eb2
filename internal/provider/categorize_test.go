package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kjstillabower/travel-discovery-service/internal/circuitbreaker"
)

// TestCategorizeError verifies sentinel, wrapped and message-based classification.
func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ""},
		{"deadline", context.DeadlineExceeded, ErrorCategoryTimeout},
		{"canceled", context.Canceled, ErrorCategoryTimeout},
		{"breaker open", fmt.Errorf("%w: %w", ErrProviderUnavailable, circuitbreaker.ErrOpen), ErrorCategoryCircuitOpen},
		{"unauthorized", fmt.Errorf("%w: %w", ErrProviderUnavailable, ErrUnauthorized), ErrorCategoryUnauthorized},
		{"rate limited", ErrRateLimited, ErrorCategoryRateLimited},
		{"upstream", fmt.Errorf("x: %w", ErrUpstreamFailure), ErrorCategoryUpstream},
		{"malformed", fmt.Errorf("%w: %w", ErrProviderUnavailable, ErrMalformedResponse), ErrorCategoryParsing},
		{"empty translation", fmt.Errorf("%w: %w", ErrTranslationFailed, ErrEmptyResult), ErrorCategoryEmptyResult},
		{"not found", ErrNotFound, ErrorCategoryNotFound},
		{"translation failed", ErrTranslationFailed, ErrorCategoryTranslationFailed},
		{"connection in message", errors.New("dial tcp: connection refused"), ErrorCategoryNetwork},
		{"unknown", errors.New("something else"), ErrorCategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategorizeError(tt.err); got != tt.want {
				t.Errorf("CategorizeError() = %v, want %v", got, tt.want)
			}
		})
	}
}
