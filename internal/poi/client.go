package poi

import (
	"context"
	"errors"
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

const (
	// SearchRadius is the half-width of the bounding box, in degrees (roughly 10 km).
	SearchRadius = 0.1
	// MaxResults caps the number of POIs returned by a search.
	MaxResults = 5
	// UnnamedPOI is used when the provider record has no name tag.
	UnnamedPOI = "Địa điểm không tên"
)

// errNoElements marks a successful provider call that matched nothing.
var errNoElements = errors.New("no elements")

// Searcher finds points of interest around a coordinate. It never fails:
// provider problems degrade to the deterministic Fallback list.
type Searcher interface {
	Search(ctx context.Context, center models.Coordinate) []models.PointOfInterest
}

// OverpassClient queries an Overpass API interpreter for tourism, historic and natural features.
type OverpassClient struct {
	caller *provider.Caller
	apiURL string
}

// NewOverpassClient returns a client posting queries to the interpreter at apiURL.
func NewOverpassClient(caller *provider.Caller, apiURL string) *OverpassClient {
	return &OverpassClient{caller: caller, apiURL: apiURL}
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type string      `json:"type"`
	ID   int64       `json:"id"`
	Lat  *float64    `json:"lat"`
	Lon  *float64    `json:"lon"`
	Tags models.Tags `json:"tags"`
}

// Search implements Searcher. Provider order is preserved and at most MaxResults are returned.
func (c *OverpassClient) Search(ctx context.Context, center models.Coordinate) []models.PointOfInterest {
	logger := observability.LoggerFromContext(ctx)

	pois, err := c.search(ctx, center)
	if err != nil {
		reason := "provider_error"
		if errors.Is(err, errNoElements) {
			reason = "empty"
			logger.Debug("poi search matched nothing, using fallback",
				zap.Float64("lat", center.Lat), zap.Float64("lng", center.Lng))
		} else {
			logger.Warn("poi search failed, using fallback",
				zap.Float64("lat", center.Lat),
				zap.Float64("lng", center.Lng),
				zap.String("category", string(provider.CategorizeError(err))),
				zap.Error(err))
		}
		observability.POISearchesTotal.WithLabelValues("fallback", reason).Inc()
		return Fallback(center)
	}
	observability.POISearchesTotal.WithLabelValues("live", "").Inc()
	return pois
}

func (c *OverpassClient) search(ctx context.Context, center models.Coordinate) ([]models.PointOfInterest, error) {
	var resp overpassResponse
	if err := c.caller.DoJSON(ctx, c.buildRequest(BuildQuery(center)), &resp); err != nil {
		return nil, err
	}
	pois := normalize(resp.Elements)
	if len(pois) == 0 {
		return nil, errNoElements
	}
	return pois, nil
}

func (c *OverpassClient) buildRequest(query string) provider.RequestBuilder {
	return func(ctx context.Context) (*http.Request, error) {
		form := url.Values{}
		form.Set("data", query)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}
}

// BuildQuery renders the Overpass QL query for the bounding box around center.
func BuildQuery(center models.Coordinate) string {
	bbox := strings.Join([]string{
		formatDegrees(center.Lat - SearchRadius),
		formatDegrees(center.Lng - SearchRadius),
		formatDegrees(center.Lat + SearchRadius),
		formatDegrees(center.Lng + SearchRadius),
	}, ",")

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	fmt.Fprintf(&b, "  node[\"tourism\"~\"attraction|museum|viewpoint|artwork|gallery\"](%s);\n", bbox)
	fmt.Fprintf(&b, "  node[\"historic\"](%s);\n", bbox)
	fmt.Fprintf(&b, "  node[\"natural\"~\"beach|cave|peak|waterfall\"](%s);\n", bbox)
	fmt.Fprintf(&b, ");\nout body %d;\n", MaxResults)
	return b.String()
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// normalize truncates to the first MaxResults elements, then drops any without coordinates.
func normalize(elements []overpassElement) []models.PointOfInterest {
	if len(elements) > MaxResults {
		elements = elements[:MaxResults]
	}
	pois := make([]models.PointOfInterest, 0, len(elements))
	for _, el := range elements {
		if el.Lat == nil || el.Lon == nil {
			continue
		}
		coord := models.Coordinate{Lat: *el.Lat, Lng: *el.Lon}
		if coord.Validate() != nil {
			continue
		}
		pois = append(pois, models.PointOfInterest{
			Name:        el.Tags.GetOr("name", UnnamedPOI),
			Description: Describe(el.Tags),
			Coordinates: coord,
		})
	}
	return pois
}
