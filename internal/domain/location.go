package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate is returned for coordinates that are not finite numbers.
var ErrInvalidCoordinate = errors.New("coordinate must be a finite number")

// Location identifies a point on earth.
type Location struct {
	Lat float64 `json:"lat" yaml:"lat" mapstructure:"lat"`
	Lon float64 `json:"lon" yaml:"lon" mapstructure:"lon"`
}

// NewLocation validates and builds a location. Geographic bounds are left to the
// forecast service.
func NewLocation(lat, lon float64) (Location, error) {
	if !isFinite(lat) {
		return Location{}, fmt.Errorf("%w: latitude %v", ErrInvalidCoordinate, lat)
	}
	if !isFinite(lon) {
		return Location{}, fmt.Errorf("%w: longitude %v", ErrInvalidCoordinate, lon)
	}
	return Location{Lat: lat, Lon: lon}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
