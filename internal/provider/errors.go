package provider

import "errors"

// Sentinel errors shared by every provider integration. Transport and status
// failures always wrap ErrProviderUnavailable so callers can branch on one value.
var (
	ErrNotFound            = errors.New("not found")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrTranslationFailed   = errors.New("translation failed")

	ErrRateLimited       = errors.New("rate limited")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUpstreamFailure   = errors.New("upstream failure")
	ErrMalformedResponse = errors.New("malformed response")
	ErrEmptyResult       = errors.New("empty result")
)
