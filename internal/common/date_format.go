package common

import (
	"fmt"
	"time"
)

// Standard date format constants
const (
	// ISO8601Date is the calendar date format used by the form, the settings
	// file and the catalog datetime interval
	ISO8601Date = "2006-01-02"

	// AcquisitionTime is the format used when showing a scene's capture time
	AcquisitionTime = time.RFC3339
)

// ParseISO8601 parses a date string in ISO 8601 format (YYYY-MM-DD)
func ParseISO8601(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("date string is empty")
	}
	return time.Parse(ISO8601Date, dateStr)
}

// FormatISO8601 formats a time.Time to ISO 8601 date string (YYYY-MM-DD)
func FormatISO8601(t time.Time) string {
	return t.Format(ISO8601Date)
}
