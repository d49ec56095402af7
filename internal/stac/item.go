package stac

import (
	"fmt"
	"time"

	"github.com/paulmach/orb/geojson"

	"scene-finder/internal/common"
	"scene-finder/internal/scene"
)

// Asset is a file attached to an item, keyed by role name in Item.Assets
type Asset struct {
	Href  string   `json:"href"`
	Type  string   `json:"type,omitempty"`
	Title string   `json:"title,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Item is a STAC item (a GeoJSON feature describing one scene)
type Item struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Collection string            `json:"collection,omitempty"`
	BBox       []float64         `json:"bbox,omitempty"`
	Geometry   *geojson.Geometry `json:"geometry"`
	Properties map[string]any    `json:"properties"`
	Assets     map[string]Asset  `json:"assets"`
}

// Link is a STAC link; rel="next" drives pagination
type Link struct {
	Rel    string         `json:"rel"`
	Href   string         `json:"href"`
	Method string         `json:"method,omitempty"`
	Body   map[string]any `json:"body,omitempty"`
	Merge  bool           `json:"merge,omitempty"`
}

// ItemCollection is one page of search results
type ItemCollection struct {
	Type     string `json:"type"`
	Features []Item `json:"features"`
	Links    []Link `json:"links,omitempty"`
}

// NextLink returns the rel="next" link, if any
func (c ItemCollection) NextLink() (Link, bool) {
	for _, link := range c.Links {
		if link.Rel == "next" {
			return link, true
		}
	}
	return Link{}, false
}

// Record converts the item into the catalog-neutral scene record
func (i Item) Record() (scene.Record, error) {
	if i.ID == "" {
		return scene.Record{}, fmt.Errorf("item has no id")
	}

	acquired, err := i.datetime()
	if err != nil {
		return scene.Record{}, fmt.Errorf("item %s: %w", i.ID, err)
	}

	bbox, err := i.bbox()
	if err != nil {
		return scene.Record{}, fmt.Errorf("item %s: %w", i.ID, err)
	}

	record := scene.Record{
		ID:         i.ID,
		Datetime:   acquired,
		CloudCover: i.cloudCover(),
		BBox:       bbox,
		Properties: i.Properties,
	}
	if thumb, ok := i.Assets[common.ThumbnailAssetRole]; ok {
		record.Thumbnail = thumb.Href
	}
	return record, nil
}

// datetime reads properties.datetime, falling back to start_datetime when the
// item describes a range
func (i Item) datetime() (time.Time, error) {
	for _, key := range []string{"datetime", "start_datetime"} {
		raw, ok := i.Properties[key].(string)
		if !ok || raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid %s %q: %w", key, raw, err)
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("item has no datetime")
}

func (i Item) cloudCover() *float64 {
	switch v := i.Properties[common.CloudCoverProperty].(type) {
	case float64:
		return &v
	default:
		return nil
	}
}

// bbox returns west, south, east, north. A 3D bbox drops its elevation
// values; an item without bbox falls back to its geometry's bound.
func (i Item) bbox() ([4]float64, error) {
	switch len(i.BBox) {
	case 4:
		return [4]float64{i.BBox[0], i.BBox[1], i.BBox[2], i.BBox[3]}, nil
	case 6:
		return [4]float64{i.BBox[0], i.BBox[1], i.BBox[3], i.BBox[4]}, nil
	case 0:
		if i.Geometry == nil || i.Geometry.Geometry() == nil {
			return [4]float64{}, fmt.Errorf("item has neither bbox nor geometry")
		}
		b := i.Geometry.Geometry().Bound()
		return [4]float64{b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()}, nil
	default:
		return [4]float64{}, fmt.Errorf("bbox has %d values", len(i.BBox))
	}
}
