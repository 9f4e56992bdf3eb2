package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjstillabower/travel-discovery-service/internal/provider"
)

func TestHuggingFaceBackend_Translate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/Helsinki-NLP/opus-mt-en-vi", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Good morning", body["inputs"])

		_, _ = w.Write([]byte(`[{"translation_text":"Chào buổi sáng"}]`))
	}))
	defer server.Close()

	caller := provider.NewCaller("huggingface", 2*time.Second)
	r := NewRouter(HuggingFaceFactory(caller, server.URL+"/", "hf_test"), Models{})

	got, err := r.Translate(context.Background(), "Good morning", "en", "vi")
	require.NoError(t, err)
	assert.Equal(t, "Chào buổi sáng", got)
}

func TestHuggingFaceBackend_NoTokenOmitsAuthorization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"translation_text":"Thank you"}`))
	}))
	defer server.Close()

	b, err := NewHuggingFaceBackend(provider.NewCaller("huggingface", time.Second), server.URL, DefaultModelVIEN, "")
	require.NoError(t, err)
	raw, err := b.Translate(context.Background(), "Cảm ơn")
	require.NoError(t, err)
	got, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, "Thank you", got)
}

func TestHuggingFaceBackend_StatusFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		cause  error
	}{
		{"unauthorized", http.StatusUnauthorized, provider.ErrUnauthorized},
		{"model loading", http.StatusServiceUnavailable, provider.ErrUpstreamFailure},
		{"rate limited", http.StatusTooManyRequests, provider.ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))
			defer server.Close()

			r := NewRouter(HuggingFaceFactory(provider.NewCaller("huggingface", time.Second), server.URL, ""), Models{})
			got, err := r.Translate(context.Background(), "Hello", "en", "vi")
			require.Error(t, err)
			assert.Empty(t, got)
			assert.ErrorIs(t, err, provider.ErrTranslationFailed)
			assert.ErrorIs(t, err, provider.ErrProviderUnavailable)
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestNewHuggingFaceBackend_Validation(t *testing.T) {
	_, err := NewHuggingFaceBackend(nil, "http://x", "m", "")
	assert.Error(t, err)
	_, err = NewHuggingFaceBackend(provider.NewCaller("huggingface", time.Second), "http://x", " ", "")
	assert.Error(t, err)
}
