package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/travel-discovery-service/internal/observability"
)

// RouterConfig configures NewRouter.
type RouterConfig struct {
	RequestTimeout     time.Duration
	ExploreTimeout     time.Duration // 0 uses RequestTimeout
	Limiter            *rate.Limiter // nil disables rate limiting
	CORSAllowedOrigins []string
	TestingMode        bool
}

// NewRouter wires the handler routes and middleware. The rate limit and request timeouts
// apply to /api only so health checks and scrapes are never throttled. Explore chains three
// providers and gets its own, longer deadline.
func NewRouter(h *Handler, logger *zap.Logger, cfg RouterConfig) http.Handler {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.HandleFunc("/", h.GetInfo).Methods("GET")
	router.HandleFunc("/health", h.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler()).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(RateLimitMiddleware(cfg.Limiter))
	exploreTimeout := cfg.ExploreTimeout
	if exploreTimeout <= 0 {
		exploreTimeout = cfg.RequestTimeout
	}
	api.Handle("/coordinates", withTimeout(cfg.RequestTimeout, h.PostCoordinates)).Methods("POST")
	api.Handle("/pois", withTimeout(cfg.RequestTimeout, h.PostPOIs)).Methods("POST")
	api.Handle("/weather", withTimeout(cfg.RequestTimeout, h.PostWeather)).Methods("POST")
	api.Handle("/translate", withTimeout(cfg.RequestTimeout, h.PostTranslate)).Methods("POST")
	api.Handle("/explore", withTimeout(exploreTimeout, h.PostExplore)).Methods("POST")

	if cfg.TestingMode {
		logger.Warn("Testing mode enabled; /test endpoint exposed")
		router.HandleFunc("/test", h.GetTestStatus).Methods("GET")
		router.HandleFunc("/test/{action}", h.PostTestAction).Methods("POST")
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		return router
	}
	return CORSMiddleware(cfg.CORSAllowedOrigins)(router)
}

// withTimeout applies TimeoutMiddleware to a single route. A non-positive timeout leaves it unbounded.
func withTimeout(timeout time.Duration, fn http.HandlerFunc) http.Handler {
	if timeout <= 0 {
		return fn
	}
	return TimeoutMiddleware(timeout)(fn)
}
