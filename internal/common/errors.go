package common

import (
	"fmt"
	"time"
)

// InvalidRangeError is returned when a date range starts after it ends
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("start date %s is after end date %s", FormatISO8601(e.Start), FormatISO8601(e.End))
}

// InvalidCoordinateError is returned for a latitude or longitude out of range
type InvalidCoordinateError struct {
	Coordinate Coordinate
	Reason     string
	Missing    bool // no coordinate was given at all
}

// ErrCoordinateRequired is returned when latitude or longitude is left empty
var ErrCoordinateRequired = &InvalidCoordinateError{Reason: "latitude and longitude are required", Missing: true}

func (e *InvalidCoordinateError) Error() string {
	if e.Missing {
		return "invalid coordinate: " + e.Reason
	}
	return fmt.Sprintf("invalid coordinate (%v, %v): %s", e.Coordinate.Latitude, e.Coordinate.Longitude, e.Reason)
}
