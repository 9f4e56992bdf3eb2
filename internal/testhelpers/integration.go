//go:build integration
// +build integration

package testhelpers

import (
	"os"
	"testing"
	"time"

	"github.com/kjstillabower/travel-discovery-service/internal/geocode"
	"github.com/kjstillabower/travel-discovery-service/internal/poi"
	"github.com/kjstillabower/travel-discovery-service/internal/provider"
	"github.com/kjstillabower/travel-discovery-service/internal/service"
	"github.com/kjstillabower/travel-discovery-service/internal/translate"
	"github.com/kjstillabower/travel-discovery-service/internal/weather"
)

// IntegrationTestConfig holds provider endpoints for tests against the live services.
type IntegrationTestConfig struct {
	NominatimURL   string
	OverpassURL    string
	OpenMeteoURL   string
	HuggingFaceURL string
	// HuggingFaceToken is optional; without it translation tests are skipped.
	HuggingFaceToken string
	UserAgent        string
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips the test unless LIVE_PROVIDERS=1, since every call reaches a public API.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	t.Helper()
	if os.Getenv("LIVE_PROVIDERS") != "1" {
		t.Skip("LIVE_PROVIDERS not set, skipping integration test")
	}
	return IntegrationTestConfig{
		NominatimURL:     envOr("NOMINATIM_URL", "https://nominatim.openstreetmap.org/search"),
		OverpassURL:      envOr("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		OpenMeteoURL:     envOr("OPEN_METEO_URL", "https://api.open-meteo.com/v1/forecast"),
		HuggingFaceURL:   envOr("HUGGINGFACE_URL", "https://api-inference.huggingface.co"),
		HuggingFaceToken: os.Getenv("HUGGINGFACE_TOKEN"),
		UserAgent:        envOr("USER_AGENT", "vietnam-discovery-app-integration"),
	}
}

// SetupIntegrationService wires a DiscoveryService against the live providers.
func SetupIntegrationService(t *testing.T, cfg IntegrationTestConfig) *service.DiscoveryService {
	t.Helper()
	geocoder := geocode.NewNominatimClient(
		provider.NewCaller("nominatim", 10*time.Second, provider.WithUserAgent(cfg.UserAgent)),
		cfg.NominatimURL, geocode.DefaultLocaleSuffix)
	searcher := poi.NewOverpassClient(
		provider.NewCaller("overpass", 30*time.Second, provider.WithUserAgent(cfg.UserAgent)),
		cfg.OverpassURL)
	forecaster := weather.NewOpenMeteoClient(
		provider.NewCaller("open-meteo", 10*time.Second, provider.WithUserAgent(cfg.UserAgent)),
		cfg.OpenMeteoURL)
	translator := translate.NewRouter(
		translate.HuggingFaceFactory(provider.NewCaller("huggingface", 30*time.Second), cfg.HuggingFaceURL, cfg.HuggingFaceToken),
		translate.Models{ENVI: translate.DefaultModelENVI, VIEN: translate.DefaultModelVIEN})
	return service.NewDiscoveryService(geocoder, searcher, forecaster, translator)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
