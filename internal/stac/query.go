package stac

import (
	"fmt"

	"github.com/paulmach/orb/geojson"

	"scene-finder/internal/common"
)

// Query is a single item search against the catalog. Build one per submission.
type Query struct {
	Collections       []string          `json:"collections"`
	Point             common.Coordinate `json:"point"`
	DateRange         common.DateRange  `json:"dateRange"`
	CloudCoverCeiling float64           `json:"cloudCoverCeiling"`
	Limit             int               `json:"limit"`
}

// SearchBody is the STAC API item-search request body
type SearchBody struct {
	Collections []string                      `json:"collections"`
	Intersects  *geojson.Geometry             `json:"intersects"`
	Datetime    string                        `json:"datetime"`
	Query       map[string]map[string]float64 `json:"query,omitempty"`
	Limit       int                           `json:"limit,omitempty"`
}

// Body renders the query as a STAC item-search request body
func (q Query) Body() SearchBody {
	return SearchBody{
		Collections: append([]string(nil), q.Collections...),
		Intersects:  geojson.NewGeometry(q.Point.Point()),
		Datetime:    q.DateRange.Interval(),
		Query: map[string]map[string]float64{
			common.CloudCoverProperty: {"lt": q.CloudCoverCeiling},
		},
		Limit: q.Limit,
	}
}

// Builder turns form values into a Query using fixed catalog policy
type Builder struct {
	Collections []string
	Limit       int // page size requested from the catalog
}

// NewBuilder returns a builder searching a single collection
func NewBuilder(collection string, limit int) Builder {
	return Builder{Collections: []string{collection}, Limit: limit}
}

// Build validates the inputs and returns the query. It performs no I/O.
// A start date after the end date yields *common.InvalidRangeError.
func (b Builder) Build(coord common.Coordinate, dateRange common.DateRange, cloudCoverCeiling float64) (Query, error) {
	if err := dateRange.Validate(); err != nil {
		return Query{}, err
	}
	if err := coord.Validate(); err != nil {
		return Query{}, err
	}
	if cloudCoverCeiling <= 0 || cloudCoverCeiling > 100 {
		return Query{}, fmt.Errorf("cloud cover ceiling must be in (0, 100], got %v", cloudCoverCeiling)
	}
	if len(b.Collections) == 0 {
		return Query{}, fmt.Errorf("no collection configured")
	}

	return Query{
		Collections:       append([]string(nil), b.Collections...),
		Point:             coord,
		DateRange:         dateRange,
		CloudCoverCeiling: cloudCoverCeiling,
		Limit:             b.Limit,
	}, nil
}
