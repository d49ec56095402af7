package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"scene-finder/internal/common"
)

// EnvPrefix prefixes environment overrides, e.g. SCENEFINDER_CATALOGURL
const EnvPrefix = "SCENEFINDER"

// UserSettings represents persistent user preferences
type UserSettings struct {
	// Catalog settings
	CatalogURL            string  `json:"catalogURL" mapstructure:"catalogURL"`
	Collection            string  `json:"collection" mapstructure:"collection"`
	CloudCoverCeiling     float64 `json:"cloudCoverCeiling" mapstructure:"cloudCoverCeiling"`
	PageLimit             int     `json:"pageLimit" mapstructure:"pageLimit"`
	MaxItems              int     `json:"maxItems" mapstructure:"maxItems"`
	RequestTimeoutSeconds int     `json:"requestTimeoutSeconds" mapstructure:"requestTimeoutSeconds"` // 0 disables the timeout

	// Form defaults. DefaultCenterLat/Lon is the only place the initial
	// coordinate is defined; both the coordinate state and the form read it.
	DefaultLocationName string  `json:"defaultLocationName" mapstructure:"defaultLocationName"`
	DefaultCenterLat    float64 `json:"defaultCenterLat" mapstructure:"defaultCenterLat"`
	DefaultCenterLon    float64 `json:"defaultCenterLon" mapstructure:"defaultCenterLon"`
	DefaultStartDate    string  `json:"defaultStartDate" mapstructure:"defaultStartDate"`
	DefaultEndDate      string  `json:"defaultEndDate" mapstructure:"defaultEndDate"`

	// Map settings
	DefaultZoom int    `json:"defaultZoom" mapstructure:"defaultZoom"`
	MapTileURL  string `json:"mapTileURL" mapstructure:"mapTileURL"`

	// Diagnostics
	LogLevel  string `json:"logLevel" mapstructure:"logLevel"` // "debug", "info", "warn", "error"
	InstallID string `json:"installID" mapstructure:"installID"`
}

// DefaultSettings returns default user settings
func DefaultSettings() *UserSettings {
	return &UserSettings{
		CatalogURL:            common.DefaultCatalogURL,
		Collection:            common.CollectionSentinel2L2A,
		CloudCoverCeiling:     common.DefaultCloudCoverCeiling,
		PageLimit:             100,
		MaxItems:              1000,
		RequestTimeoutSeconds: 60,
		DefaultLocationName:   "Input Location Name",
		DefaultCenterLat:      37.8199, // Golden Gate Bridge
		DefaultCenterLon:      -122.4783,
		DefaultStartDate:      "2025-12-01",
		DefaultEndDate:        "2025-12-31",
		DefaultZoom:           12,
		MapTileURL:            "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		LogLevel:              "info",
	}
}

// DefaultCoordinate returns the configured initial coordinate
func (s *UserSettings) DefaultCoordinate() common.Coordinate {
	return common.Coordinate{Latitude: s.DefaultCenterLat, Longitude: s.DefaultCenterLon}
}

// GetSettingsPath returns the OS-specific settings file path
func GetSettingsPath() string {
	homeDir, _ := os.UserHomeDir()

	// Use unified directory structure: ~/.walkthru-earth/scene-finder/settings/
	baseDir := filepath.Join(homeDir, ".walkthru-earth", "scene-finder", "settings")

	return filepath.Join(baseDir, "settings.json")
}

// LoadSettingsFrom layers defaults, the settings file at path (if present)
// and SCENEFINDER_* environment variables, in that order of precedence.
func LoadSettingsFrom(settingsPath string) (*UserSettings, error) {
	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("catalogURL", defaults.CatalogURL)
	v.SetDefault("collection", defaults.Collection)
	v.SetDefault("cloudCoverCeiling", defaults.CloudCoverCeiling)
	v.SetDefault("pageLimit", defaults.PageLimit)
	v.SetDefault("maxItems", defaults.MaxItems)
	v.SetDefault("requestTimeoutSeconds", defaults.RequestTimeoutSeconds)
	v.SetDefault("defaultLocationName", defaults.DefaultLocationName)
	v.SetDefault("defaultCenterLat", defaults.DefaultCenterLat)
	v.SetDefault("defaultCenterLon", defaults.DefaultCenterLon)
	v.SetDefault("defaultStartDate", defaults.DefaultStartDate)
	v.SetDefault("defaultEndDate", defaults.DefaultEndDate)
	v.SetDefault("defaultZoom", defaults.DefaultZoom)
	v.SetDefault("mapTileURL", defaults.MapTileURL)
	v.SetDefault("logLevel", defaults.LogLevel)
	v.SetDefault("installID", "")

	// If file doesn't exist, defaults and environment still apply
	if _, err := os.Stat(settingsPath); err == nil {
		v.SetConfigFile(settingsPath)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse settings: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var settings UserSettings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	if settings.InstallID == "" {
		settings.InstallID = uuid.NewString()
	}

	return &settings, nil
}

// SaveSettingsTo writes settings as indented JSON to settingsPath
func SaveSettingsTo(settingsPath string, settings *UserSettings) error {
	// Ensure directory exists
	dir := filepath.Dir(settingsPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(settingsPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// ValidateSettings validates settings before they are saved
func ValidateSettings(settings *UserSettings) error {
	if settings.CatalogURL == "" {
		return fmt.Errorf("catalog URL cannot be empty")
	}
	if settings.Collection == "" {
		return fmt.Errorf("collection cannot be empty")
	}
	if settings.CloudCoverCeiling <= 0 || settings.CloudCoverCeiling > 100 {
		return fmt.Errorf("cloud cover ceiling must be between 0 and 100")
	}
	if settings.PageLimit <= 0 {
		return fmt.Errorf("page limit must be positive")
	}
	if settings.MaxItems < 0 {
		return fmt.Errorf("max items cannot be negative")
	}
	if settings.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("request timeout cannot be negative")
	}
	if err := settings.DefaultCoordinate().Validate(); err != nil {
		return fmt.Errorf("invalid default location: %w", err)
	}
	if _, err := common.ParseDateRange(settings.DefaultStartDate, settings.DefaultEndDate); err != nil {
		return fmt.Errorf("invalid default dates: %w", err)
	}

	return nil
}

// RepairSettings resets every invalid field to its default and assigns an
// install id when none is set. It returns the keys that were reset, so a
// single bad value in the settings file does not discard the rest.
func RepairSettings(settings *UserSettings) []string {
	defaults := DefaultSettings()
	var repaired []string

	if settings.CatalogURL == "" {
		settings.CatalogURL = defaults.CatalogURL
		repaired = append(repaired, "catalogURL")
	}
	if settings.Collection == "" {
		settings.Collection = defaults.Collection
		repaired = append(repaired, "collection")
	}
	if settings.CloudCoverCeiling <= 0 || settings.CloudCoverCeiling > 100 {
		settings.CloudCoverCeiling = defaults.CloudCoverCeiling
		repaired = append(repaired, "cloudCoverCeiling")
	}
	if settings.PageLimit <= 0 {
		settings.PageLimit = defaults.PageLimit
		repaired = append(repaired, "pageLimit")
	}
	if settings.MaxItems < 0 {
		settings.MaxItems = defaults.MaxItems
		repaired = append(repaired, "maxItems")
	}
	if settings.RequestTimeoutSeconds < 0 {
		settings.RequestTimeoutSeconds = defaults.RequestTimeoutSeconds
		repaired = append(repaired, "requestTimeoutSeconds")
	}
	if settings.DefaultCoordinate().Validate() != nil {
		settings.DefaultCenterLat = defaults.DefaultCenterLat
		settings.DefaultCenterLon = defaults.DefaultCenterLon
		repaired = append(repaired, "defaultCenterLat", "defaultCenterLon")
	}
	if _, err := common.ParseDateRange(settings.DefaultStartDate, settings.DefaultEndDate); err != nil {
		settings.DefaultStartDate = defaults.DefaultStartDate
		settings.DefaultEndDate = defaults.DefaultEndDate
		repaired = append(repaired, "defaultStartDate", "defaultEndDate")
	}
	if settings.DefaultZoom <= 0 {
		settings.DefaultZoom = defaults.DefaultZoom
		repaired = append(repaired, "defaultZoom")
	}
	if settings.MapTileURL == "" {
		settings.MapTileURL = defaults.MapTileURL
		repaired = append(repaired, "mapTileURL")
	}
	if settings.InstallID == "" {
		settings.InstallID = uuid.NewString()
	}

	return repaired
}
