package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsFrom_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	settings, err := LoadSettingsFrom(path)
	require.NoError(t, err)

	defaults := DefaultSettings()
	assert.Equal(t, defaults.CatalogURL, settings.CatalogURL)
	assert.Equal(t, defaults.Collection, settings.Collection)
	assert.Equal(t, 15.0, settings.CloudCoverCeiling)
	assert.Equal(t, 37.8199, settings.DefaultCenterLat)
	assert.Equal(t, -122.4783, settings.DefaultCenterLon)
	assert.NotEmpty(t, settings.InstallID)
}

func TestLoadSettingsFrom_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "cloudCoverCeiling": 30,
  "defaultCenterLat": 30.0444,
  "defaultCenterLon": 31.2357,
  "installID": "abc"
}`), 0644))

	settings, err := LoadSettingsFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 30.0, settings.CloudCoverCeiling)
	assert.Equal(t, 30.0444, settings.DefaultCenterLat)
	assert.Equal(t, 31.2357, settings.DefaultCenterLon)
	assert.Equal(t, "abc", settings.InstallID)
	// Untouched keys keep their defaults
	assert.Equal(t, DefaultSettings().CatalogURL, settings.CatalogURL)
	assert.Equal(t, 12, settings.DefaultZoom)
}

func TestLoadSettingsFrom_EnvironmentWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"catalogURL": "https://file.example/v1"}`), 0644))
	t.Setenv("SCENEFINDER_CATALOGURL", "https://env.example/v1")
	t.Setenv("SCENEFINDER_PAGELIMIT", "25")

	settings, err := LoadSettingsFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example/v1", settings.CatalogURL)
	assert.Equal(t, 25, settings.PageLimit)
}

func TestLoadSettingsFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := LoadSettingsFrom(path)
	assert.Error(t, err)
}

func TestSaveSettingsTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	settings := DefaultSettings()
	settings.CloudCoverCeiling = 42.5
	settings.InstallID = "install-1"
	require.NoError(t, SaveSettingsTo(path, settings))

	loaded, err := LoadSettingsFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 42.5, loaded.CloudCoverCeiling)
	assert.Equal(t, "install-1", loaded.InstallID)
}

func TestValidateSettings(t *testing.T) {
	assert.NoError(t, ValidateSettings(DefaultSettings()))

	tests := []struct {
		name   string
		mutate func(s *UserSettings)
	}{
		{"empty catalog", func(s *UserSettings) { s.CatalogURL = "" }},
		{"empty collection", func(s *UserSettings) { s.Collection = "" }},
		{"zero ceiling", func(s *UserSettings) { s.CloudCoverCeiling = 0 }},
		{"ceiling above 100", func(s *UserSettings) { s.CloudCoverCeiling = 101 }},
		{"zero page limit", func(s *UserSettings) { s.PageLimit = 0 }},
		{"negative timeout", func(s *UserSettings) { s.RequestTimeoutSeconds = -1 }},
		{"bad latitude", func(s *UserSettings) { s.DefaultCenterLat = 120 }},
		{"bad date", func(s *UserSettings) { s.DefaultStartDate = "yesterday" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)
			assert.Error(t, ValidateSettings(s))
		})
	}
}

func TestRepairSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "catalogURL": "https://catalog.example/v1",
  "cloudCoverCeiling": 0,
  "defaultCenterLat": 123,
  "defaultStartDate": "2025-12-31",
  "defaultEndDate": "2025-12-01",
  "installID": "abc"
}`), 0644))

	settings, err := LoadSettingsFrom(path)
	require.NoError(t, err)
	require.Error(t, ValidateSettings(settings))

	repaired := RepairSettings(settings)
	assert.ElementsMatch(t, []string{
		"cloudCoverCeiling", "defaultCenterLat", "defaultCenterLon", "defaultStartDate", "defaultEndDate",
	}, repaired)
	require.NoError(t, ValidateSettings(settings))

	defaults := DefaultSettings()
	assert.Equal(t, 15.0, settings.CloudCoverCeiling)
	assert.Equal(t, defaults.DefaultCoordinate(), settings.DefaultCoordinate())
	assert.Equal(t, "2025-12-01", settings.DefaultStartDate)
	// Valid fields survive
	assert.Equal(t, "https://catalog.example/v1", settings.CatalogURL)
	assert.Equal(t, "abc", settings.InstallID)
}

func TestRepairSettings_DefaultsGetInstallID(t *testing.T) {
	settings := DefaultSettings()
	assert.Empty(t, RepairSettings(settings))
	assert.NotEmpty(t, settings.InstallID)
	assert.NoError(t, ValidateSettings(settings))
}
