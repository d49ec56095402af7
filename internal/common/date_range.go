package common

import (
	"fmt"
	"time"
)

// DateRange is an inclusive range of calendar dates
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParseDateRange parses two ISO 8601 dates (YYYY-MM-DD) into a DateRange.
// Ordering is not checked here; see Validate.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := ParseISO8601(start)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := ParseISO8601(end)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	return DateRange{Start: s, End: e}, nil
}

// Validate returns an InvalidRangeError when the start date is after the end date
func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return &InvalidRangeError{Start: r.Start, End: r.End}
	}
	return nil
}

// Interval renders the range as a closed datetime interval covering the whole
// end day, e.g. 2025-12-01T00:00:00Z/2025-12-31T23:59:59Z
func (r DateRange) Interval() string {
	start := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(r.End.Year(), r.End.Month(), r.End.Day(), 23, 59, 59, 0, time.UTC)
	return start.Format(time.RFC3339) + "/" + end.Format(time.RFC3339)
}

// String formats the range as "<start> to <end>"
func (r DateRange) String() string {
	return fmt.Sprintf("%s to %s", FormatISO8601(r.Start), FormatISO8601(r.End))
}
