package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/travel-discovery-service/internal/circuitbreaker"
	"github.com/kjstillabower/travel-discovery-service/internal/config"
	"github.com/kjstillabower/travel-discovery-service/internal/geocode"
	httphandler "github.com/kjstillabower/travel-discovery-service/internal/http"
	"github.com/kjstillabower/travel-discovery-service/internal/lifecycle"
	"github.com/kjstillabower/travel-discovery-service/internal/observability"
	"github.com/kjstillabower/travel-discovery-service/internal/poi"
	"github.com/kjstillabower/travel-discovery-service/internal/provider"
	"github.com/kjstillabower/travel-discovery-service/internal/service"
	"github.com/kjstillabower/travel-discovery-service/internal/translate"
	"github.com/kjstillabower/travel-discovery-service/internal/weather"
)

const inFlightCheckInterval = 100 * time.Millisecond

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	newCaller := func(name string, p config.Provider) *provider.Caller {
		opts := []provider.Option{provider.WithUserAgent(cfg.UserAgent)}
		if cfg.CircuitBreaker.Enabled {
			cb := circuitbreaker.New(circuitbreaker.Config{
				Name:             name,
				FailureThreshold: cfg.CircuitBreaker.FailureThreshold,
				SuccessThreshold: cfg.CircuitBreaker.SuccessThreshold,
				OpenTimeout:      cfg.CircuitBreaker.OpenTimeout,
				OnStateChange: func(name string, from, to circuitbreaker.State) {
					logger.Warn("circuit breaker transition",
						zap.String("provider", name),
						zap.String("from", from.String()),
						zap.String("to", to.String()))
					observability.RecordCircuitBreakerTransition(name, from.String(), to.String(), int(to))
				},
			})
			observability.CircuitBreakerState.WithLabelValues(name).Set(0)
			opts = append(opts, provider.WithBreaker(cb))
		}
		return provider.NewCaller(name, p.Timeout, opts...)
	}

	geocoder := geocode.NewNominatimClient(newCaller("nominatim", cfg.Geocoding), cfg.Geocoding.URL, cfg.GeocodingLocaleSuffix)
	searcher := poi.NewOverpassClient(newCaller("overpass", cfg.Overpass), cfg.Overpass.URL)
	forecaster := weather.NewOpenMeteoClient(newCaller("open-meteo", cfg.Weather), cfg.Weather.URL)
	translator := translate.NewRouter(
		translate.HuggingFaceFactory(newCaller("huggingface", cfg.Translation), cfg.Translation.URL, cfg.HuggingFaceToken),
		translate.Models{ENVI: cfg.TranslationModelENVI, VIEN: cfg.TranslationModelVIEN},
	)
	if cfg.HuggingFaceToken == "" {
		logger.Warn("HUGGINGFACE_TOKEN not set; translation requests are unauthenticated and may be throttled")
	}
	if cfg.CircuitBreaker.Enabled {
		logger.Info("circuit breakers enabled",
			zap.Int("failure_threshold", cfg.CircuitBreaker.FailureThreshold),
			zap.Duration("open_timeout", cfg.CircuitBreaker.OpenTimeout))
	}

	discovery := service.NewDiscoveryService(geocoder, searcher, forecaster, translator)

	healthConfig := &httphandler.HealthConfig{
		DegradedWindow:   cfg.DegradedWindow,
		DegradedErrorPct: cfg.DegradedErrorPct,
		Services: map[string]string{
			"location":    "OpenStreetMap/Nominatim",
			"poi":         "OpenStreetMap/Overpass",
			"weather":     "Open-Meteo",
			"translation": "HuggingFace",
		},
		TranslationConfigured: cfg.HuggingFaceToken != "",
	}
	limits := httphandler.InputLimits{
		PlaceNameMinLen: cfg.PlaceNameMinLen,
		PlaceNameMaxLen: cfg.PlaceNameMaxLen,
		TextMaxLen:      cfg.TextMaxLen,
	}
	handler := httphandler.NewHandler(discovery, healthConfig, limits, logger)

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	router := httphandler.NewRouter(handler, logger, httphandler.RouterConfig{
		RequestTimeout:     cfg.RequestTimeout,
		ExploreTimeout:     cfg.ExploreTimeout,
		Limiter:            limiter,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		TestingMode:        cfg.TestingMode,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: max(cfg.RequestTimeout, cfg.ExploreTimeout) + 5*time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	logger.Info("waiting for in-flight requests", zap.Int64("count", httphandler.InFlightCount()))
	if err := httphandler.WaitForInFlight(shutdownCtx, inFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
