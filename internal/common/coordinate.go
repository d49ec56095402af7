package common

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Coordinate is a WGS84 point as entered in the form or picked on the map
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks that latitude is in [-90,90] and longitude in [-180,180]
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return &InvalidCoordinateError{Coordinate: c, Reason: "latitude must be between -90 and 90"}
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return &InvalidCoordinateError{Coordinate: c, Reason: "longitude must be between -180 and 180"}
	}
	return nil
}

// Point returns the coordinate as an orb point (longitude first, as GeoJSON expects)
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// String formats the coordinate the way the form displays it
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Latitude, c.Longitude)
}

// WrapLongitude folds a longitude from a wrapped map view back into [-180,180]
func WrapLongitude(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	wrapped := math.Mod(lon+180, 360)
	if wrapped < 0 {
		wrapped += 360
	}
	return wrapped - 180
}
