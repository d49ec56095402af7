package scene

import (
	"sort"

	"scene-finder/internal/common"
)

// EffectiveCloudCover returns the value used for ordering: the record's
// cloud cover, or 100 when the catalog did not report one
func EffectiveCloudCover(r Record) float64 {
	if r.CloudCover == nil {
		return common.WorstCloudCover
	}
	return *r.CloudCover
}

// Rank returns a copy of records ordered by cloud cover ascending.
// Records with equal cloud cover keep the catalog's relative order.
func Rank(records []Record) []Record {
	ranked := make([]Record, len(records))
	copy(ranked, records)

	sort.SliceStable(ranked, func(i, j int) bool {
		return EffectiveCloudCover(ranked[i]) < EffectiveCloudCover(ranked[j])
	})
	return ranked
}

// Select picks the clearest scene. An empty input yields NoneFound.
func Select(records []Record) SelectionResult {
	if len(records) == 0 {
		return NoneFound
	}

	best := Rank(records)[0]
	return SelectionResult{Best: &best, Considered: len(records)}
}
