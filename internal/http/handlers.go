package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/travel-discovery-service/internal/lifecycle"
	"github.com/kjstillabower/travel-discovery-service/internal/observability"
	"github.com/kjstillabower/travel-discovery-service/internal/provider"
	"github.com/kjstillabower/travel-discovery-service/internal/service"
	"github.com/kjstillabower/travel-discovery-service/internal/traffic"
	"github.com/kjstillabower/travel-discovery-service/internal/translate"
	"github.com/kjstillabower/travel-discovery-service/internal/validation"
)

// Version is reported by the info and health endpoints. Overridden at build time with -ldflags.
var Version = "dev"

// HealthConfig holds thresholds and static facts reported by the health handler.
type HealthConfig struct {
	DegradedWindow   time.Duration
	DegradedErrorPct int
	// Services maps each capability (location, poi, weather, translation) to the provider serving it.
	Services              map[string]string
	TranslationConfigured bool
}

// InputLimits bounds user-supplied strings. Zero values disable the corresponding check.
type InputLimits struct {
	PlaceNameMinLen int
	PlaceNameMaxLen int
	TextMaxLen      int
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	discovery        *service.DiscoveryService
	healthConfig     *HealthConfig
	limits           InputLimits
	logger           *zap.Logger
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(discovery *service.DiscoveryService, healthConfig *HealthConfig, limits InputLimits, logger *zap.Logger) *Handler {
	return &Handler{
		discovery:    discovery,
		healthConfig: healthConfig,
		limits:       limits,
		logger:       logger,
	}
}

// GetInfo handles GET /.
func (h *Handler) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Vietnam travel discovery API",
		"service":    observability.ServiceName,
		"version":    Version,
		"tech_stack": "OpenStreetMap (Nominatim, Overpass) + Open-Meteo + HuggingFace",
		"endpoints": map[string]string{
			"coordinates": "POST /api/coordinates",
			"pois":        "POST /api/pois",
			"weather":     "POST /api/weather",
			"translate":   "POST /api/translate",
			"explore":     "POST /api/explore",
			"health":      "GET /health",
			"metrics":     "GET /metrics",
		},
		"started_at": lifecycle.StartTime().UTC().Format(time.RFC3339),
	})
}

// PostCoordinates handles POST /api/coordinates.
func (h *Handler) PostCoordinates(w http.ResponseWriter, r *http.Request) {
	name, ok := h.decodeLocation(w, r)
	if !ok {
		return
	}
	coord, err := h.discovery.Resolve(r.Context(), name)
	if err != nil {
		writeServiceError(w, r, name, err)
		return
	}
	writeJSON(w, http.StatusOK, coord)
}

// PostPOIs handles POST /api/pois. Always 200: provider failures yield the fallback list.
func (h *Handler) PostPOIs(w http.ResponseWriter, r *http.Request) {
	var req coordinateRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.discovery.Search(r.Context(), req.coordinate()))
}

// PostWeather handles POST /api/weather. The body is JSON null when no reading is available.
func (h *Handler) PostWeather(w http.ResponseWriter, r *http.Request) {
	var req coordinateRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	info, ok := h.discovery.Current(r.Context(), req.coordinate())
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// PostTranslate handles POST /api/translate.
func (h *Handler) PostTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	text, err := validation.ValidateText(req.Text, h.limits.TextMaxLen)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	source, err := validation.ValidateLanguage(req.SourceLang, translate.DefaultSource)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "source_lang: "+err.Error())
		return
	}
	target, err := validation.ValidateLanguage(req.TargetLang, translate.DefaultTarget)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "target_lang: "+err.Error())
		return
	}

	out, err := h.discovery.Translate(r.Context(), text, source, target)
	if err != nil {
		writeServiceError(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusOK, translateResponse{TranslatedText: out})
}

// PostExplore handles POST /api/explore.
func (h *Handler) PostExplore(w http.ResponseWriter, r *http.Request) {
	name, ok := h.decodeLocation(w, r)
	if !ok {
		return
	}
	result, err := h.discovery.Explore(r.Context(), name)
	if err != nil {
		writeServiceError(w, r, name, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) decodeLocation(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req locationRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return "", false
	}
	name, err := validation.ValidatePlaceName(req.LocationName, h.limits.PlaceNameMinLen, h.limits.PlaceNameMaxLen)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_LOCATION", err.Error())
		return "", false
	}
	return name, true
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	resp := map[string]interface{}{
		"status":                 result.status,
		"service":                observability.ServiceName,
		"version":                Version,
		"services":               map[string]string{},
		"checks":                 h.providerChecks(),
		"huggingface_configured": false,
		"uptime_seconds":         int64(lifecycle.Uptime().Seconds()),
		"timestamp":              time.Now().UTC().Format(time.RFC3339),
	}
	if h.healthConfig != nil {
		if h.healthConfig.Services != nil {
			resp["services"] = h.healthConfig.Services
		}
		resp["huggingface_configured"] = h.healthConfig.TranslationConfigured
	}
	writeJSON(w, result.statusCode, resp)
}

// computeHealthStatus evaluates conditions in priority order: shutting-down > degraded > healthy.
func (h *Handler) computeHealthStatus() healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if h.healthConfig == nil || h.healthConfig.DegradedWindow <= 0 || h.healthConfig.DegradedErrorPct <= 0 {
		return healthResult{"healthy", http.StatusOK, ""}
	}
	errs, total := traffic.ErrorRate(h.healthConfig.DegradedWindow)
	if total > 0 && errorPct(errs, total) >= float64(h.healthConfig.DegradedErrorPct) {
		return healthResult{"degraded", http.StatusServiceUnavailable, "error_rate_breach"}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

// providerChecks reports each provider seen in the window as healthy or unhealthy
// using the same error threshold as the overall status.
func (h *Handler) providerChecks() map[string]string {
	checks := make(map[string]string)
	if h.healthConfig == nil || h.healthConfig.DegradedWindow <= 0 {
		return checks
	}
	for _, s := range traffic.Snapshot(h.healthConfig.DegradedWindow) {
		if h.healthConfig.DegradedErrorPct > 0 && errorPct(s.Errors, s.Errors+s.Successes) >= float64(h.healthConfig.DegradedErrorPct) {
			checks[s.Provider] = "unhealthy"
		} else {
			checks[s.Provider] = "healthy"
		}
	}
	return checks
}

func errorPct(errs, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(errs) * 100 / float64(total)
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code, message,
// and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": observability.CorrelationID(r.Context()),
		},
	})
}

// writeServiceError maps a DiscoveryService error onto a status code and logs the cause at DEBUG.
// location names the place in not-found messages and may be empty.
func writeServiceError(w http.ResponseWriter, r *http.Request, location string, err error) {
	observability.LoggerFromContext(r.Context()).Debug("request failed",
		zap.String("category", string(provider.CategorizeError(err))),
		zap.Error(err))

	switch {
	case errors.Is(err, provider.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "LOCATION_NOT_FOUND", fmt.Sprintf("no coordinates found for %q", location))
	case errors.Is(err, provider.ErrTranslationFailed):
		writeError(w, r, http.StatusBadGateway, "TRANSLATION_FAILED", "Translation failed")
	case errors.Is(err, context.DeadlineExceeded) && r.Context().Err() != nil:
		writeError(w, r, http.StatusGatewayTimeout, "REQUEST_TIMEOUT", "Request timed out")
	default:
		writeError(w, r, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Location provider unavailable")
	}
}

// GetTestStatus handles GET /test. Returns the upstream outcome windows behind the health status.
func (h *Handler) GetTestStatus(w http.ResponseWriter, r *http.Request) {
	window := 60 * time.Second
	if h.healthConfig != nil && h.healthConfig.DegradedWindow > 0 {
		window = h.healthConfig.DegradedWindow
	}
	errs, total := traffic.ErrorRate(window)
	cfg := make(map[string]interface{})
	if h.healthConfig != nil {
		cfg["degraded_error_pct"] = h.healthConfig.DegradedErrorPct
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"upstream_calls_in_window":  total,
		"upstream_errors_in_window": errs,
		"denied_requests_in_window": traffic.DenialCount(window),
		"providers":                 traffic.Snapshot(window),
		"window_length":             window.String(),
		"state":                     h.computeHealthStatus().status,
		"config":                    cfg,
	})
}

// PostTestAction handles POST /test/{action} for reset and shutdown.
func (h *Handler) PostTestAction(w http.ResponseWriter, r *http.Request) {
	switch action := mux.Vars(r)["action"]; action {
	case "reset":
		traffic.Reset()
		lifecycle.SetShuttingDown(false)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":      true,
			"action":  "reset",
			"message": "Upstream outcome windows and shutdown flag cleared",
		})
	case "shutdown":
		lifecycle.SetShuttingDown(true)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":      true,
			"action":  "shutdown",
			"message": "Shutting-down flag set",
		})
	default:
		writeError(w, r, http.StatusNotFound, "UNKNOWN_ACTION", "unknown test action: "+action)
	}
}
