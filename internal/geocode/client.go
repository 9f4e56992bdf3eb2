package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kjstillabower/travel-discovery-service/internal/models"
	"github.com/kjstillabower/travel-discovery-service/internal/observability"
	"github.com/kjstillabower/travel-discovery-service/internal/provider"
)

// DefaultLocaleSuffix biases free-text queries toward Vietnam.
const DefaultLocaleSuffix = ", Vietnam"

// Geocoder resolves a place name to a coordinate.
//
// A provider answer with zero matches is not an error: found is false and err is nil.
// err is non-nil only when the provider could not be asked, and then wraps
// provider.ErrProviderUnavailable.
type Geocoder interface {
	Resolve(ctx context.Context, name string) (coord models.Coordinate, found bool, err error)
}

// NominatimClient resolves names using the Nominatim search API.
type NominatimClient struct {
	caller       *provider.Caller
	apiURL       string
	localeSuffix string
}

// NewNominatimClient returns a client for the search endpoint at apiURL.
// An empty localeSuffix leaves queries unqualified.
func NewNominatimClient(caller *provider.Caller, apiURL, localeSuffix string) *NominatimClient {
	return &NominatimClient{caller: caller, apiURL: apiURL, localeSuffix: localeSuffix}
}

// Nominatim encodes coordinates as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve implements Geocoder and returns the provider's best match.
func (c *NominatimClient) Resolve(ctx context.Context, name string) (models.Coordinate, bool, error) {
	logger := observability.LoggerFromContext(ctx)
	query := c.Query(name)

	var places []nominatimPlace
	if err := c.caller.DoJSON(ctx, c.buildRequest(query), &places); err != nil {
		observability.GeocodeLookupsTotal.WithLabelValues("error").Inc()
		logger.Debug("geocode failed",
			zap.String("query", query),
			zap.String("category", string(provider.CategorizeError(err))),
			zap.Error(err))
		return models.Coordinate{}, false, err
	}
	if len(places) == 0 {
		observability.GeocodeLookupsTotal.WithLabelValues("not_found").Inc()
		logger.Debug("geocode matched nothing", zap.String("query", query))
		return models.Coordinate{}, false, nil
	}

	coord, err := parsePlace(places[0])
	if err != nil {
		observability.GeocodeLookupsTotal.WithLabelValues("error").Inc()
		err = fmt.Errorf("%w: %w", provider.ErrProviderUnavailable, err)
		logger.Warn("geocode returned an unusable match", zap.String("query", query), zap.Error(err))
		return models.Coordinate{}, false, err
	}

	observability.GeocodeLookupsTotal.WithLabelValues("found").Inc()
	logger.Debug("geocode resolved",
		zap.String("query", query),
		zap.String("match", places[0].DisplayName),
		zap.Float64("lat", coord.Lat),
		zap.Float64("lng", coord.Lng))
	return coord, true, nil
}

// Query returns the free-text query sent for name.
func (c *NominatimClient) Query(name string) string {
	return strings.TrimSpace(name) + c.localeSuffix
}

func (c *NominatimClient) buildRequest(query string) provider.RequestBuilder {
	return func(ctx context.Context) (*http.Request, error) {
		u, err := url.Parse(c.apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid geocoding API URL: %w", err)
		}
		params := url.Values{}
		params.Set("q", query)
		params.Set("format", "json")
		params.Set("limit", "1")
		u.RawQuery = params.Encode()
		return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	}
}

func parsePlace(p nominatimPlace) (models.Coordinate, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(p.Lat), 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("%w: lat %q", provider.ErrMalformedResponse, p.Lat)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(p.Lon), 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("%w: lon %q", provider.ErrMalformedResponse, p.Lon)
	}
	coord := models.Coordinate{Lat: lat, Lng: lng}
	if err := coord.Validate(); err != nil {
		return models.Coordinate{}, fmt.Errorf("%w: %w", provider.ErrMalformedResponse, err)
	}
	return coord, nil
}
