package main

import (
	"scene-finder/internal/config"
)

// ===================
// Settings Management
// ===================

// GetSettings returns current user settings
func (a *App) GetSettings() (*config.UserSettings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Return a copy to prevent external modifications
	settingsCopy := *a.settings
	return &settingsCopy, nil
}

// SaveSettings saves user settings to disk and updates app state.
// Catalog settings apply to the next submission.
func (a *App) SaveSettings(settings *config.UserSettings) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := config.ValidateSettings(settings); err != nil {
		return err
	}

	// The install id is not user-editable
	settings.InstallID = a.settings.InstallID

	if err := config.SaveSettingsTo(a.settingsPath, settings); err != nil {
		return err
	}

	a.settings = settings
	a.coords.SetDefault(settings.DefaultCoordinate())
	a.configureSearch(settings)

	a.log.Info().
		Str("catalog", settings.CatalogURL).
		Float64("cloud_cover_ceiling", settings.CloudCoverCeiling).
		Msg("settings saved")

	return nil
}

// GetSettingsPath returns the OS-specific settings file path
func (a *App) GetSettingsPath() string {
	return a.settingsPath
}

// ResetCoordinate moves the form and the map back to the configured default
func (a *App) ResetCoordinate() {
	a.coords.Reset()
}
