package main

import (
	"embed"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"scene-finder/internal/config"
	"scene-finder/internal/logging"
)

//go:embed all:frontend/dist
var assets embed.FS

// isDevMode detects if running under `wails dev`
func isDevMode() bool {
	return os.Getenv("WAILS_DEV_SERVER") != "" || os.Getenv("FRONTEND_DEVSERVER_URL") != ""
}

func main() {
	devMode := os.Getenv("DEV_MODE") == "1" || isDevMode()

	// Load user settings
	settingsPath := config.GetSettingsPath()
	settings, loadErr := config.LoadSettingsFrom(settingsPath)
	if loadErr != nil {
		settings = config.DefaultSettings()
	}

	repaired := config.RepairSettings(settings)

	log := logging.Setup(settings.LogLevel, devMode)
	if loadErr != nil {
		log.Warn().Err(loadErr).Msg("failed to load settings, using defaults")
	}
	if len(repaired) > 0 {
		log.Warn().Strs("fields", repaired).Msg("invalid settings replaced with defaults")
	}
	log.Info().Str("path", settingsPath).Msg("settings loaded")

	// First run: persist defaults so the install id stays stable
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := config.SaveSettingsTo(settingsPath, settings); err != nil {
			log.Warn().Err(err).Msg("failed to write initial settings")
		}
	}

	// Create an instance of the app structure
	app := NewApp(settings, log)

	err := wails.Run(&options.App{
		Title:  "Scene Finder",
		Width:  960,
		Height: 900,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		Logger:           logging.NewWailsAdapter(log),
		LogLevel:         logging.WailsLevel(settings.LogLevel),
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind: []interface{}{
			app,
		},
	})

	if err != nil {
		log.Error().Err(err).Msg("application exited with error")
		os.Exit(1)
	}
}
