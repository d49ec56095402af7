package scene

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string, cloud *float64) Record {
	return Record{ID: id, CloudCover: cloud}
}

func ids(records []Record) []string {
	return lo.Map(records, func(r Record, _ int) string { return r.ID })
}

func TestSelect_Empty(t *testing.T) {
	result := Select(nil)
	assert.False(t, result.Found())
	assert.Equal(t, NoneFound, result)

	assert.False(t, Select([]Record{}).Found())
}

func TestSelect_MissingCloudCoverCountsAsWorst(t *testing.T) {
	records := []Record{
		record("X", lo.ToPtr(23.4)),
		record("Y", lo.ToPtr(5.0)),
		record("Z", nil),
	}

	result := Select(records)
	require.True(t, result.Found())
	assert.Equal(t, "Y", result.Best.ID)
	assert.Equal(t, 3, result.Considered)
	assert.Equal(t, []string{"Y", "X", "Z"}, ids(Rank(records)))
}

func TestSelect_TiesKeepCatalogOrder(t *testing.T) {
	a := record("A", lo.ToPtr(5.0))
	b := record("B", lo.ToPtr(5.0))

	assert.Equal(t, "A", Select([]Record{a, b}).Best.ID)
	assert.Equal(t, "B", Select([]Record{b, a}).Best.ID)

	assert.Equal(t, []string{"A", "B"}, ids(Rank([]Record{a, b})))
	assert.Equal(t, []string{"B", "A"}, ids(Rank([]Record{b, a})))
}

func TestSelect_MissingTiesWithExplicitHundred(t *testing.T) {
	records := []Record{
		record("missing", nil),
		record("hundred", lo.ToPtr(100.0)),
	}
	assert.Equal(t, "missing", Select(records).Best.ID)
}

func TestSelect_AllMissing(t *testing.T) {
	records := []Record{record("first", nil), record("second", nil)}

	result := Select(records)
	require.True(t, result.Found())
	assert.Equal(t, "first", result.Best.ID)
	assert.Nil(t, result.Best.CloudCover)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	records := []Record{
		record("X", lo.ToPtr(23.4)),
		record("Y", lo.ToPtr(5.0)),
	}
	_ = Rank(records)
	assert.Equal(t, []string{"X", "Y"}, ids(records))
}

func TestSelect_BestIsMinimum(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 200; round++ {
		n := 1 + rng.Intn(12)
		records := make([]Record, n)
		for i := range records {
			var cloud *float64
			if rng.Intn(5) > 0 {
				// Coarse values so ties are common
				cloud = lo.ToPtr(float64(rng.Intn(8)) * 2.5)
			}
			records[i] = record(fmt.Sprintf("S%02d", i), cloud)
		}

		result := Select(records)
		require.True(t, result.Found())

		best := EffectiveCloudCover(*result.Best)
		firstMin := -1
		for i, r := range records {
			assert.LessOrEqual(t, best, EffectiveCloudCover(r))
			if firstMin < 0 && EffectiveCloudCover(r) == best {
				firstMin = i
			}
		}
		assert.Equal(t, records[firstMin].ID, result.Best.ID)
	}
}

func TestRecordBound(t *testing.T) {
	r := Record{BBox: [4]float64{-123, 37, -122, 38}}
	b := r.Bound()
	assert.Equal(t, -123.0, b.Min.Lon())
	assert.Equal(t, 38.0, b.Max.Lat())
	assert.False(t, r.HasThumbnail())
}
