package models

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate is returned by Coordinate.Validate for NaN, infinite or out-of-range values.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a WGS84 point. Lat is in [-90, 90], Lng in [-180, 180].
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate reports whether both components are finite and within range.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: lat %v", ErrInvalidCoordinate, c.Lat)
	}
	if math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: lng %v", ErrInvalidCoordinate, c.Lng)
	}
	return nil
}

// Offset returns a new coordinate shifted by dLat and dLng degrees.
func (c Coordinate) Offset(dLat, dLng float64) Coordinate {
	return Coordinate{Lat: c.Lat + dLat, Lng: c.Lng + dLng}
}

// WeatherInfo is the normalized current-conditions reading attached to a location.
type WeatherInfo struct {
	Temperature int    `json:"temperature"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// PointOfInterest is a named, located feature returned by POI search.
// Weather is nil unless an enrichment step attached a reading.
type PointOfInterest struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Coordinates Coordinate   `json:"coordinates"`
	Weather     *WeatherInfo `json:"weather,omitempty"`
}

// Exploration is the combined result of resolving a place and surveying its surroundings.
type Exploration struct {
	Center Coordinate        `json:"center"`
	POIs   []PointOfInterest `json:"pois"`
}
