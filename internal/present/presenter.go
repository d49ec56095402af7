package present

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"scene-finder/internal/common"
	"scene-finder/internal/scene"
	"scene-finder/internal/stac"
)

const (
	MessageBestFound   = "Best available image found"
	MessageNoneFound   = "No images found. Try expanding the date range or increasing cloud cover tolerance."
	MessageSearchError = "Search failed. Check your connection and try again."
	ThumbnailCaption   = common.DisplayNameSentinel2 + " thumbnail"
)

// Present maps a selection outcome to the payload shown in the result panel
func Present(result scene.SelectionResult, locationLabel string, coord common.Coordinate, dateRange common.DateRange) DisplayPayload {
	payload := DisplayPayload{
		Heading: fmt.Sprintf("Searching imagery for %s", locationLabel),
		Context: []string{
			fmt.Sprintf("Coordinates: %s", coord),
			fmt.Sprintf("Date range: %s", dateRange),
			fmt.Sprintf("Found %d matching scenes", result.Considered),
		},
	}

	if !result.Found() {
		payload.Kind = KindWarning
		payload.Message = MessageNoneFound
		return payload
	}

	best := result.Best
	payload.Kind = KindSuccess
	payload.Message = MessageBestFound
	payload.Fields = []Field{
		{Label: LabelSceneID, Value: best.ID},
		{Label: LabelAcquisition, Value: best.Datetime.UTC().Format(common.AcquisitionTime)},
		{Label: LabelCloudCover, Value: FormatCloudCover(best.CloudCover)},
		{Label: LabelBoundingBox, Value: FormatBBox(best.Bound())},
	}
	if best.HasThumbnail() {
		payload.Image = &Image{Href: best.Thumbnail, Caption: ThumbnailCaption}
	}
	return payload
}

// Failure maps a failed submission to an error payload. Validation errors
// keep their message; catalog failures get a generic one.
func Failure(err error) DisplayPayload {
	var rangeErr *common.InvalidRangeError
	var coordErr *common.InvalidCoordinateError
	var transportErr *stac.TransportError

	switch {
	case errors.As(err, &rangeErr):
		return DisplayPayload{Kind: KindError, Message: "Start date must not be after end date: " + rangeErr.Error()}
	case errors.As(err, &coordErr):
		return DisplayPayload{Kind: KindError, Message: "Invalid location: " + coordErr.Reason}
	case errors.Is(err, stac.ErrRateLimited):
		return DisplayPayload{Kind: KindError, Message: "The imagery catalog is busy. Wait a moment and try again."}
	case errors.As(err, &transportErr):
		return DisplayPayload{Kind: KindError, Message: MessageSearchError}
	default:
		return DisplayPayload{Kind: KindError, Message: err.Error()}
	}
}

// PointSelected acknowledges a map click
func PointSelected(coord common.Coordinate) DisplayPayload {
	return DisplayPayload{
		Kind:    KindSuccess,
		Message: fmt.Sprintf("Selected point: %s", coord),
	}
}

// FormatCloudCover renders a percentage with two decimals, e.g. "5.00%"
func FormatCloudCover(cloud *float64) string {
	if cloud == nil {
		return "unknown"
	}
	return fmt.Sprintf("%.2f%%", *cloud)
}

// FormatBBox renders west, south, east, north as "[w, s, e, n]"
func FormatBBox(b orb.Bound) string {
	edges := []float64{b.Left(), b.Bottom(), b.Right(), b.Top()}
	parts := make([]string, len(edges))
	for i, v := range edges {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
