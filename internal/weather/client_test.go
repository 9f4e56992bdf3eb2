package weather

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjstillabower/travel-discovery-service/internal/models"
	"github.com/kjstillabower/travel-discovery-service/internal/provider"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *OpenMeteoClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOpenMeteoClient(provider.NewCaller("open-meteo", timeout), server.URL+"/v1/forecast")
}

func TestOpenMeteoClient_Current_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "21.0285", q.Get("latitude"))
		assert.Equal(t, "105.8542", q.Get("longitude"))
		assert.Equal(t, "temperature_2m,weather_code", q.Get("current"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current":{"time":"2026-10-19T09:00","temperature_2m":27.6,"weather_code":2}}`))
	}, 2*time.Second)

	got, ok := client.Current(context.Background(), models.Coordinate{Lat: 21.0285, Lng: 105.8542})
	require.True(t, ok)
	assert.Equal(t, models.WeatherInfo{Temperature: 28, Description: "Mây rải rác", Icon: "partly-cloudy"}, got)
}

func TestOpenMeteoClient_Current_UnknownCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":-3.2,"weather_code":42}}`))
	}, time.Second)

	got, ok := client.Current(context.Background(), models.Coordinate{Lat: 10, Lng: 106})
	require.True(t, ok)
	assert.Equal(t, -3, got.Temperature)
	assert.Equal(t, Unknown.Description, got.Description)
	assert.Equal(t, Unknown.Icon, got.Icon)
}

func TestOpenMeteoClient_Current_RoundsHalfToEven(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":24.5,"weather_code":0}}`))
	}, time.Second)

	got, ok := client.Current(context.Background(), models.Coordinate{})
	require.True(t, ok)
	assert.Equal(t, 24, got.Temperature)
}

// TestOpenMeteoClient_Current_Absent verifies every failure mode yields ok=false instead of an error.
func TestOpenMeteoClient_Current_Absent(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"bad request", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":true,"reason":"Latitude must be in range"}`))
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		}},
		{"missing current", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"latitude":21.0}`))
		}},
		{"missing temperature", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"current":{"weather_code":1}}`))
		}},
		{"missing weather code", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"current":{"temperature_2m":20}}`))
		}},
		{"wrong field type", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"current":{"temperature_2m":"hot","weather_code":1}}`))
		}},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}},
		{"fractional weather code", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"current":{"temperature_2m":20,"weather_code":2.9}}`))
		}},
		{"negative weather code", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"current":{"temperature_2m":20,"weather_code":-1}}`))
		}},
		{"weather code beyond int range", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"current":{"temperature_2m":20,"weather_code":1e20}}`))
		}},
		{"temperature beyond int range", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"current":{"temperature_2m":1e300,"weather_code":2}}`))
		}},
		{"implausible temperature", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"current":{"temperature_2m":-1000.5,"weather_code":0}}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler, 100*time.Millisecond)
			got, ok := client.Current(context.Background(), models.Coordinate{Lat: 1, Lng: 2})
			assert.False(t, ok)
			assert.Equal(t, models.WeatherInfo{}, got)
		})
	}
}

func TestMapResponse_RejectsUnrepresentableValues(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	tests := []struct {
		name string
		temp float64
		code float64
	}{
		{"huge temperature with fractional code", 1e300, 2.9},
		{"fractional code", 25, 61.5},
		{"code above table", 25, 100},
		{"minus infinity temperature", math.Inf(-1), 0},
		{"NaN code", 25, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp openMeteoResponse
			resp.Current = &struct {
				Temperature *float64 `json:"temperature_2m"`
				WeatherCode *float64 `json:"weather_code"`
			}{Temperature: f(tt.temp), WeatherCode: f(tt.code)}

			info, err := mapResponse(resp)
			require.ErrorIs(t, err, provider.ErrMalformedResponse)
			assert.Equal(t, models.WeatherInfo{}, info)
		})
	}
}

func TestMapResponse_AcceptsIntegralCodeAndBoundaryTemperature(t *testing.T) {
	temp, code := -999.6, 95.0
	var resp openMeteoResponse
	resp.Current = &struct {
		Temperature *float64 `json:"temperature_2m"`
		WeatherCode *float64 `json:"weather_code"`
	}{Temperature: &temp, WeatherCode: &code}

	info, err := mapResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, -1000, info.Temperature)
	assert.Equal(t, Classify(95), Condition{Description: info.Description, Icon: info.Icon})
}
