package provider

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/kjstillabower/travel-discovery-service/internal/circuitbreaker"
)

// ErrorCategory is a stable label for error classification in metrics and logs.
type ErrorCategory string

const (
	ErrorCategoryTimeout           ErrorCategory = "timeout"
	ErrorCategoryNetwork           ErrorCategory = "network"
	ErrorCategoryCircuitOpen       ErrorCategory = "circuit_open"
	ErrorCategoryUnauthorized      ErrorCategory = "unauthorized"
	ErrorCategoryRateLimited       ErrorCategory = "rate_limited"
	ErrorCategoryUpstream          ErrorCategory = "upstream_status"
	ErrorCategoryParsing           ErrorCategory = "parsing"
	ErrorCategoryEmptyResult       ErrorCategory = "empty_result"
	ErrorCategoryNotFound          ErrorCategory = "not_found"
	ErrorCategoryTranslationFailed ErrorCategory = "translation_failed"
	ErrorCategoryUnknown           ErrorCategory = "unknown"
)

// CategorizeError maps an error to a stable ErrorCategory. Most specific cause wins.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorCategoryTimeout
	}
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return ErrorCategoryCircuitOpen
	}
	if errors.Is(err, ErrUnauthorized) {
		return ErrorCategoryUnauthorized
	}
	if errors.Is(err, ErrRateLimited) {
		return ErrorCategoryRateLimited
	}
	if errors.Is(err, ErrUpstreamFailure) {
		return ErrorCategoryUpstream
	}
	if errors.Is(err, ErrMalformedResponse) {
		return ErrorCategoryParsing
	}
	if errors.Is(err, ErrEmptyResult) {
		return ErrorCategoryEmptyResult
	}
	if errors.Is(err, ErrNotFound) {
		return ErrorCategoryNotFound
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrorCategoryTimeout
		}
		return ErrorCategoryNetwork
	}

	errStr := err.Error()
	if strings.Contains(errStr, "timeout") {
		return ErrorCategoryTimeout
	}
	if strings.Contains(errStr, "connection") || strings.Contains(errStr, "network") {
		return ErrorCategoryNetwork
	}
	if errors.Is(err, ErrTranslationFailed) {
		return ErrorCategoryTranslationFailed
	}
	return ErrorCategoryUnknown
}
