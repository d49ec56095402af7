package scene

import (
	"time"

	"github.com/paulmach/orb"
)

// Record is one candidate scene returned by the catalog
type Record struct {
	ID         string         `json:"id"`
	Datetime   time.Time      `json:"datetime"`
	CloudCover *float64       `json:"cloudCover,omitempty"` // nil when the catalog omits eo:cloud_cover
	BBox       [4]float64     `json:"bbox"`                 // west, south, east, north
	Thumbnail  string         `json:"thumbnail,omitempty"`  // empty when the item has no thumbnail asset
	Properties map[string]any `json:"properties,omitempty"`
}

// HasThumbnail reports whether the record carries a preview image
func (r Record) HasThumbnail() bool {
	return r.Thumbnail != ""
}

// Bound returns the bounding box as an orb.Bound
func (r Record) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{r.BBox[0], r.BBox[1]},
		Max: orb.Point{r.BBox[2], r.BBox[3]},
	}
}

// SelectionResult is either a best record or NoneFound
type SelectionResult struct {
	Best       *Record `json:"best,omitempty"`
	Considered int     `json:"considered"`
}

// NoneFound is the result of selecting from an empty candidate list
var NoneFound = SelectionResult{}

// Found reports whether a best record was selected
func (r SelectionResult) Found() bool {
	return r.Best != nil
}
