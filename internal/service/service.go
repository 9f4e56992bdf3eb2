package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kjstillabower/travel-discovery-service/internal/geocode"
	"github.com/kjstillabower/travel-discovery-service/internal/models"
	"github.com/kjstillabower/travel-discovery-service/internal/observability"
	"github.com/kjstillabower/travel-discovery-service/internal/poi"
	"github.com/kjstillabower/travel-discovery-service/internal/provider"
	"github.com/kjstillabower/travel-discovery-service/internal/translate"
	"github.com/kjstillabower/travel-discovery-service/internal/weather"
)

// maxWeatherFanout bounds concurrent weather lookups during Explore.
const maxWeatherFanout = poi.MaxResults

// DiscoveryService is the entry point used by the HTTP layer. Each operation calls
// exactly one provider client, except Explore which chains them.
type DiscoveryService struct {
	geocoder   geocode.Geocoder
	pois       poi.Searcher
	weather    weather.Provider
	translator translate.Translator
}

// NewDiscoveryService creates a DiscoveryService over the given provider clients.
func NewDiscoveryService(geocoder geocode.Geocoder, pois poi.Searcher, weather weather.Provider, translator translate.Translator) *DiscoveryService {
	return &DiscoveryService{
		geocoder:   geocoder,
		pois:       pois,
		weather:    weather,
		translator: translator,
	}
}

// Resolve returns the coordinate of a named place. A miss returns an error
// wrapping provider.ErrNotFound; a provider failure wraps provider.ErrProviderUnavailable.
func (s *DiscoveryService) Resolve(ctx context.Context, name string) (models.Coordinate, error) {
	name = normalizeName(name)
	start := time.Now()
	logger := observability.LoggerFromContext(ctx)

	coord, found, err := s.geocoder.Resolve(ctx, name)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("resolve %q: %w", name, err)
	}
	if !found {
		return models.Coordinate{}, fmt.Errorf("resolve %q: %w", name, provider.ErrNotFound)
	}
	logger.Debug("location resolved",
		zap.String("location", name),
		zap.Float64("lat", coord.Lat),
		zap.Float64("lng", coord.Lng),
		zap.Duration("duration", time.Since(start)))
	return coord, nil
}

// Search returns up to five POIs around center. It never fails.
func (s *DiscoveryService) Search(ctx context.Context, center models.Coordinate) []models.PointOfInterest {
	return s.pois.Search(ctx, center)
}

// Current returns the weather at c; ok is false when no reading is available.
func (s *DiscoveryService) Current(ctx context.Context, c models.Coordinate) (models.WeatherInfo, bool) {
	return s.weather.Current(ctx, c)
}

// Translate translates text between languages. Failures wrap provider.ErrTranslationFailed.
func (s *DiscoveryService) Translate(ctx context.Context, text, source, target string) (string, error) {
	return s.translator.Translate(ctx, text, source, target)
}

// Explore resolves name, searches around it and attaches current weather to
// every POI that has a reading. Only the resolve step can fail.
func (s *DiscoveryService) Explore(ctx context.Context, name string) (models.Exploration, error) {
	start := time.Now()
	logger := observability.LoggerFromContext(ctx)

	center, err := s.Resolve(ctx, name)
	if err != nil {
		return models.Exploration{}, err
	}

	pois := s.pois.Search(ctx, center)
	enriched := s.attachWeather(ctx, pois)

	logger.Debug("exploration served",
		zap.String("location", normalizeName(name)),
		zap.Int("pois", len(pois)),
		zap.Int("with_weather", enriched),
		zap.Duration("duration", time.Since(start)))
	return models.Exploration{Center: center, POIs: pois}, nil
}

// attachWeather fetches weather for each POI concurrently and sets it in place.
// It returns how many POIs received a reading.
func (s *DiscoveryService) attachWeather(ctx context.Context, pois []models.PointOfInterest) int {
	readings := make([]*models.WeatherInfo, len(pois))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWeatherFanout)
	for i := range pois {
		g.Go(func() error {
			if w, ok := s.weather.Current(gctx, pois[i].Coordinates); ok {
				readings[i] = &w
			}
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for i, w := range readings {
		if w != nil {
			pois[i].Weather = w
			n++
		}
	}
	return n
}

// normalizeName trims surrounding whitespace and collapses internal runs of spaces.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
