package poi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjstillabower/travel-discovery-service/internal/models"
	"github.com/kjstillabower/travel-discovery-service/internal/provider"
)

var hanoi = models.Coordinate{Lat: 21.0285, Lng: 105.8542}

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *OverpassClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOverpassClient(provider.NewCaller("overpass", timeout), server.URL+"/api/interpreter")
}

func TestOverpassClient_Search_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		query := r.PostForm.Get("data")
		assert.Contains(t, query, "[out:json]")
		assert.Contains(t, query, `node["historic"](20.928500,105.754200,21.128500,105.954200);`)
		assert.Contains(t, query, "out body 5;")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"elements":[
			{"type":"node","id":1,"lat":21.0287,"lon":105.8524,"tags":{"name":"Hồ Hoàn Kiếm","natural":"water","tourism":"attraction"}},
			{"type":"node","id":2,"lat":21.0245,"lon":105.8412,"tags":{"historic":"monument","description":"Xây năm 1070"}},
			{"type":"node","id":3,"lat":21.0368,"lon":105.8346,"tags":{"name":"Bảo tàng Hồ Chí Minh","tourism":"museum"}}
		]}`))
	}, 2*time.Second)

	got := client.Search(context.Background(), hanoi)
	require.Len(t, got, 3)

	assert.Equal(t, models.PointOfInterest{
		Name:        "Hồ Hoàn Kiếm",
		Description: "Điểm tham quan du lịch nổi tiếng",
		Coordinates: models.Coordinate{Lat: 21.0287, Lng: 105.8524},
	}, got[0])
	assert.Equal(t, UnnamedPOI, got[1].Name)
	assert.Equal(t, "Di tích lịch sử quan trọng, kiến trúc đặc sắc. Xây năm 1070", got[1].Description)
	assert.Equal(t, "Bảo tàng Hồ Chí Minh", got[2].Name)
}

func TestOverpassClient_Search_TruncatesPreservingOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var elems []string
		for i := 0; i < 8; i++ {
			elems = append(elems, fmt.Sprintf(`{"type":"node","id":%d,"lat":21.0%d,"lon":105.8,"tags":{"name":"P%d","tourism":"viewpoint"}}`, i, i, i))
		}
		_, _ = w.Write([]byte(`{"elements":[` + strings.Join(elems, ",") + `]}`))
	}, time.Second)

	got := client.Search(context.Background(), hanoi)
	require.Len(t, got, MaxResults)
	for i, p := range got {
		assert.Equal(t, fmt.Sprintf("P%d", i), p.Name)
	}
}

func TestOverpassClient_Search_SkipsElementsWithoutCoordinates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"elements":[
			{"type":"way","id":1,"tags":{"name":"No coords","tourism":"attraction"}},
			{"type":"node","id":2,"lat":21.03,"lon":105.85,"tags":{"name":"Has coords","natural":"peak"}}
		]}`))
	}, time.Second)

	got := client.Search(context.Background(), hanoi)
	require.Len(t, got, 1)
	assert.Equal(t, "Has coords", got[0].Name)
}

// TestOverpassClient_Search_Fallback verifies every failure mode returns the fallback list.
func TestOverpassClient_Search_Fallback(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"empty elements", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"elements":[]}`))
		}},
		{"missing elements", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}},
		{"only coordinate-less elements", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"elements":[{"type":"relation","id":9,"tags":{"name":"x"}}]}`))
		}},
		{"too many requests", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"gateway timeout", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusGatewayTimeout)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<?xml version="1.0"?><osm/>`))
		}},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler, 100*time.Millisecond)
			got := client.Search(context.Background(), hanoi)
			assert.Equal(t, Fallback(hanoi), got)
			assert.Equal(t, got, client.Search(context.Background(), hanoi), "fallback must be idempotent")
		})
	}
}

func TestBuildQuery(t *testing.T) {
	q := BuildQuery(models.Coordinate{Lat: 10, Lng: 106})
	assert.Contains(t, q, `node["tourism"~"attraction|museum|viewpoint|artwork|gallery"](9.900000,105.900000,10.100000,106.100000);`)
	assert.Contains(t, q, `node["natural"~"beach|cave|peak|waterfall"](9.900000,105.900000,10.100000,106.100000);`)
}
