package weather

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/kjstillabower/travel-discovery-service/internal/models"
	"github.com/kjstillabower/travel-discovery-service/internal/observability"
	"github.com/kjstillabower/travel-discovery-service/internal/provider"
)

const (
	// maxAbsTemperature rejects readings no thermometer reports, in °C.
	maxAbsTemperature = 1000
	// maxWeatherCode is the top of the WMO 4677 present-weather code range.
	maxWeatherCode = 99
)

// Provider returns the current conditions at a coordinate. ok is false when
// no reading is available; weather is an optional enrichment and never fails a request.
type Provider interface {
	Current(ctx context.Context, center models.Coordinate) (models.WeatherInfo, bool)
}

// OpenMeteoClient reads current temperature and weather code from Open-Meteo.
type OpenMeteoClient struct {
	caller *provider.Caller
	apiURL string
}

// NewOpenMeteoClient returns a client for the forecast endpoint at apiURL.
func NewOpenMeteoClient(caller *provider.Caller, apiURL string) *OpenMeteoClient {
	return &OpenMeteoClient{caller: caller, apiURL: apiURL}
}

type openMeteoResponse struct {
	Current *struct {
		Temperature *float64 `json:"temperature_2m"`
		WeatherCode *float64 `json:"weather_code"`
	} `json:"current"`
}

// Current implements Provider. Any failure (transport, status, missing fields) yields ok=false.
func (c *OpenMeteoClient) Current(ctx context.Context, center models.Coordinate) (models.WeatherInfo, bool) {
	logger := observability.LoggerFromContext(ctx)

	info, err := c.fetch(ctx, center)
	if err != nil {
		observability.WeatherLookupsTotal.WithLabelValues("absent").Inc()
		logger.Warn("weather unavailable",
			zap.Float64("lat", center.Lat),
			zap.Float64("lng", center.Lng),
			zap.String("category", string(provider.CategorizeError(err))),
			zap.Error(err))
		return models.WeatherInfo{}, false
	}
	observability.WeatherLookupsTotal.WithLabelValues("ok").Inc()
	return info, true
}

func (c *OpenMeteoClient) fetch(ctx context.Context, center models.Coordinate) (models.WeatherInfo, error) {
	var resp openMeteoResponse
	if err := c.caller.DoJSON(ctx, c.buildRequest(center), &resp); err != nil {
		return models.WeatherInfo{}, err
	}
	return mapResponse(resp)
}

func (c *OpenMeteoClient) buildRequest(center models.Coordinate) provider.RequestBuilder {
	return func(ctx context.Context) (*http.Request, error) {
		u, err := url.Parse(c.apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid weather API URL: %w", err)
		}
		params := url.Values{}
		params.Set("latitude", strconv.FormatFloat(center.Lat, 'f', -1, 64))
		params.Set("longitude", strconv.FormatFloat(center.Lng, 'f', -1, 64))
		params.Set("current", "temperature_2m,weather_code")
		u.RawQuery = params.Encode()
		return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	}
}

func mapResponse(resp openMeteoResponse) (models.WeatherInfo, error) {
	if resp.Current == nil || resp.Current.Temperature == nil || resp.Current.WeatherCode == nil {
		return models.WeatherInfo{}, fmt.Errorf("%w: current temperature or weather code missing", provider.ErrMalformedResponse)
	}
	temp := *resp.Current.Temperature
	if math.IsNaN(temp) || math.Abs(temp) > maxAbsTemperature {
		return models.WeatherInfo{}, fmt.Errorf("%w: temperature %v", provider.ErrMalformedResponse, temp)
	}
	code := *resp.Current.WeatherCode
	if math.IsNaN(code) || code != math.Trunc(code) || code < 0 || code > maxWeatherCode {
		return models.WeatherInfo{}, fmt.Errorf("%w: weather code %v", provider.ErrMalformedResponse, code)
	}
	cond := Classify(int(code))
	return models.WeatherInfo{
		Temperature: int(math.RoundToEven(temp)),
		Description: cond.Description,
		Icon:        cond.Icon,
	}, nil
}
