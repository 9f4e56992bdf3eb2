package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kjstillabower/travel-discovery-service/internal/provider"
)

// HuggingFaceBackend calls one model on the HuggingFace Inference API.
type HuggingFaceBackend struct {
	caller *provider.Caller
	url    string
	token  string
}

// NewHuggingFaceBackend returns a backend posting to {baseURL}/models/{model}.
// token is sent as a bearer credential when non-empty.
func NewHuggingFaceBackend(caller *provider.Caller, baseURL, model, token string) (*HuggingFaceBackend, error) {
	if caller == nil {
		return nil, fmt.Errorf("translation caller is required")
	}
	model = strings.Trim(strings.TrimSpace(model), "/")
	if model == "" {
		return nil, fmt.Errorf("translation model is required")
	}
	return &HuggingFaceBackend{
		caller: caller,
		url:    strings.TrimRight(baseURL, "/") + "/models/" + model,
		token:  token,
	}, nil
}

// HuggingFaceFactory returns a BackendFactory that builds HuggingFaceBackends sharing caller.
func HuggingFaceFactory(caller *provider.Caller, baseURL, token string) BackendFactory {
	return func(model string) (Backend, error) {
		return NewHuggingFaceBackend(caller, baseURL, model, token)
	}
}

// Translate implements Backend. It returns the raw response body for Normalize.
func (b *HuggingFaceBackend) Translate(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return b.caller.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if b.token != "" {
			req.Header.Set("Authorization", "Bearer "+b.token)
		}
		return req, nil
	})
}
