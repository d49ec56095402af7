package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-finder/internal/common"
	"scene-finder/internal/config"
	"scene-finder/internal/present"
	"scene-finder/internal/search"
)

const catalogPage = `{
  "type": "FeatureCollection",
  "features": [
    {"id": "X", "bbox": [-123, 37, -122, 38], "properties": {"datetime": "2025-12-03T19:03:26Z", "eo:cloud_cover": 23.4}, "assets": {}},
    {"id": "Y", "bbox": [-123, 37, -122, 38], "properties": {"datetime": "2025-12-08T19:03:20Z", "eo:cloud_cover": 5.0}, "assets": {}},
    {"id": "Z", "bbox": [-123, 37, -122, 38], "properties": {"datetime": "2025-12-18T19:03:20Z"}, "assets": {}}
  ]
}`

func newTestApp(t *testing.T, handler http.HandlerFunc) *App {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	settings := config.DefaultSettings()
	settings.CatalogURL = server.URL
	settings.InstallID = "test-install"

	app := NewApp(settings, zerolog.Nop())
	app.settingsPath = filepath.Join(t.TempDir(), "settings.json")
	return app
}

func formFor(app *App) search.Form {
	defaults := app.GetFormDefaults()
	return search.Form{
		LocationName: defaults.LocationName,
		Latitude:     lo.ToPtr(defaults.Coordinate.Latitude),
		Longitude:    lo.ToPtr(defaults.Coordinate.Longitude),
		StartDate:    defaults.StartDate,
		EndDate:      defaults.EndDate,
	}
}

func TestGetFormDefaults(t *testing.T) {
	app := newTestApp(t, http.NotFound)

	defaults := app.GetFormDefaults()
	assert.Equal(t, "Input Location Name", defaults.LocationName)
	assert.Equal(t, common.Coordinate{Latitude: 37.8199, Longitude: -122.4783}, defaults.Coordinate)
	assert.Equal(t, "2025-12-01", defaults.StartDate)
	assert.Equal(t, "2025-12-31", defaults.EndDate)
	assert.Equal(t, 15.0, defaults.CloudCoverCeiling)
	assert.Equal(t, 12, defaults.Zoom)
}

func TestCoordinateMethods(t *testing.T) {
	app := newTestApp(t, http.NotFound)

	_, err := app.SetCoordinateFromInput(lo.ToPtr(1.0), lo.ToPtr(2.0))
	require.NoError(t, err)
	got, err := app.SetCoordinateFromMapClick(10, 20)
	require.NoError(t, err)

	assert.Equal(t, common.Coordinate{Latitude: 10, Longitude: 20}, got)
	assert.Equal(t, got, app.GetCoordinate())
	assert.Equal(t, got, app.GetFormDefaults().Coordinate)

	app.ResetCoordinate()
	assert.Equal(t, common.Coordinate{Latitude: 37.8199, Longitude: -122.4783}, app.GetCoordinate())
}

func TestSetCoordinateFromInput_EmptyField(t *testing.T) {
	app := newTestApp(t, http.NotFound)

	got, err := app.SetCoordinateFromInput(nil, lo.ToPtr(20.0))
	var coordErr *common.InvalidCoordinateError
	require.ErrorAs(t, err, &coordErr)
	assert.True(t, coordErr.Missing)
	assert.Equal(t, common.Coordinate{Latitude: 37.8199, Longitude: -122.4783}, got)
	assert.Equal(t, got, app.GetCoordinate())
}

func TestSearchImagery(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, catalogPage)
	})

	payload := app.SearchImagery(formFor(app))
	assert.Equal(t, present.KindSuccess, payload.Kind)
	require.NotEmpty(t, payload.Fields)
	assert.Equal(t, "Y", payload.Fields[0].Value)
	assert.Nil(t, payload.Image)
	assert.Equal(t, search.StateIdle, app.GetSearchState())
}

func TestSearchImagery_Failures(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusBadGateway)
	})

	payload := app.SearchImagery(formFor(app))
	assert.Equal(t, present.KindError, payload.Kind)
	assert.Equal(t, present.MessageSearchError, payload.Message)

	form := formFor(app)
	form.StartDate, form.EndDate = form.EndDate, form.StartDate
	payload = app.SearchImagery(form)
	assert.Equal(t, present.KindError, payload.Kind)
	assert.Contains(t, payload.Message, "Start date must not be after end date")
}

func TestSearchImagery_EmptyCoordinate(t *testing.T) {
	var calls int32
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		io.WriteString(w, catalogPage)
	})

	form := formFor(app)
	form.Longitude = nil

	payload := app.SearchImagery(form)
	assert.Equal(t, present.KindError, payload.Kind)
	assert.Contains(t, payload.Message, "latitude and longitude are required")
	assert.Zero(t, atomic.LoadInt32(&calls))
	assert.Equal(t, common.Coordinate{Latitude: 37.8199, Longitude: -122.4783}, app.GetCoordinate())
}

func TestSearchImagery_SaveSettingsDuringSearch(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var inFlight, maxInFlight int32
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		io.WriteString(w, catalogPage)
	})

	done := make(chan present.DisplayPayload, 1)
	go func() { done <- app.SearchImagery(formFor(app)) }()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("search never reached the catalog")
	}

	settings, err := app.GetSettings()
	require.NoError(t, err)
	settings.CloudCoverCeiling = 40
	require.NoError(t, app.SaveSettings(settings))

	assert.Equal(t, search.StateQuerying, app.GetSearchState())
	payload := app.SearchImagery(formFor(app))
	assert.Equal(t, present.KindWarning, payload.Kind)
	assert.Equal(t, MessageSearchBusy, payload.Message)

	close(release)
	select {
	case first := <-done:
		assert.Equal(t, present.KindSuccess, first.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("first search never finished")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
	assert.Equal(t, search.StateIdle, app.GetSearchState())

	// The saved settings apply to the next search
	payload = app.SearchImagery(formFor(app))
	assert.Equal(t, present.KindSuccess, payload.Kind)
}

func TestSearchImagery_RateLimited(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	payload := app.SearchImagery(formFor(app))
	assert.Equal(t, present.KindError, payload.Kind)
	assert.True(t, app.IsRateLimited())
	require.NotNil(t, app.GetRateLimitStatus())

	app.ManualRetryRateLimit()
	assert.False(t, app.IsRateLimited())
}

func TestSaveSettings(t *testing.T) {
	app := newTestApp(t, http.NotFound)

	settings, err := app.GetSettings()
	require.NoError(t, err)
	settings.CloudCoverCeiling = 30
	settings.DefaultCenterLat = 30.0444
	settings.DefaultCenterLon = 31.2357
	settings.InstallID = "ignored"
	require.NoError(t, app.SaveSettings(settings))

	loaded, err := config.LoadSettingsFrom(app.GetSettingsPath())
	require.NoError(t, err)
	assert.Equal(t, 30.0, loaded.CloudCoverCeiling)
	assert.Equal(t, "test-install", loaded.InstallID)
	assert.Equal(t, 30.0, app.GetFormDefaults().CloudCoverCeiling)

	// The new default applies on reset, not to the current coordinate
	assert.Equal(t, 37.8199, app.GetCoordinate().Latitude)
	app.ResetCoordinate()
	assert.Equal(t, common.Coordinate{Latitude: 30.0444, Longitude: 31.2357}, app.GetCoordinate())

	bad := *settings
	bad.CloudCoverCeiling = 0
	assert.Error(t, app.SaveSettings(&bad))
}
