package main

import (
	"context"
	"errors"
	goruntime "runtime"
	"sync"
	"time"

	"github.com/posthog/posthog-go"
	"github.com/rs/zerolog"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"scene-finder/internal/common"
	"scene-finder/internal/config"
	"scene-finder/internal/present"
	"scene-finder/internal/ratelimit"
	"scene-finder/internal/search"
	"scene-finder/internal/session"
	"scene-finder/internal/stac"
)

// Linker flags
var (
	PostHogKey  string
	PostHogHost string
	AppVersion  string = "0.0.0-dev"
)

// Events emitted to the frontend
const (
	EventCoordinateChanged = "coordinate-changed"
	EventSearchState       = "search-state"
	EventRateLimited       = "rate-limit"
	EventRateLimitCleared  = "rate-limit-cleared"
)

// MessageSearchBusy answers a submit made while another search is running
const MessageSearchBusy = "A search is already running."

// FormDefaults seeds the search form and the map on first load
type FormDefaults struct {
	LocationName      string            `json:"locationName"`
	Coordinate        common.Coordinate `json:"coordinate"`
	StartDate         string            `json:"startDate"`
	EndDate           string            `json:"endDate"`
	CloudCoverCeiling float64           `json:"cloudCoverCeiling"`
	Zoom              int               `json:"zoom"`
	TileURL           string            `json:"tileURL"`
}

// CoordinateUpdate is emitted after every coordinate change so the number
// fields and the map marker re-render from the same value
type CoordinateUpdate struct {
	Coordinate common.Coordinate       `json:"coordinate"`
	Source     session.Source          `json:"source"`
	Notice     *present.DisplayPayload `json:"notice,omitempty"`
}

// App struct
type App struct {
	ctx          context.Context
	log          zerolog.Logger
	settings     *config.UserSettings
	settingsPath string
	mu           sync.Mutex
	phClient     posthog.Client

	coords      *session.CoordinateState
	catalog     *stac.Client
	rateLimiter *ratelimit.Handler
	searcher    *search.Service
}

// NewApp creates a new App application struct
func NewApp(settings *config.UserSettings, log zerolog.Logger) *App {
	a := &App{
		log:          log,
		settings:     settings,
		settingsPath: config.GetSettingsPath(),
	}

	// Initialize PostHog
	if PostHogKey != "" {
		phConfig := posthog.Config{
			Endpoint: PostHogHost,
		}
		client, err := posthog.NewWithConfig(PostHogKey, phConfig)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize PostHog")
		} else {
			a.phClient = client
		}
	}

	a.rateLimiter = ratelimit.NewHandler(nil, log)
	a.coords = session.NewCoordinateState(settings.DefaultCoordinate())
	a.coords.Subscribe(a.emitCoordinate)
	a.configureSearch(settings)

	return a
}

// configureSearch builds the catalog client from settings. The search
// service is created once and only reconfigured afterwards, so a save
// during a running search cannot start a second one.
func (a *App) configureSearch(settings *config.UserSettings) {
	a.catalog = stac.NewClient(settings.CatalogURL,
		stac.WithTimeout(time.Duration(settings.RequestTimeoutSeconds)*time.Second),
		stac.WithMaxItems(settings.MaxItems),
		stac.WithRateLimiter(a.rateLimiter),
		stac.WithLogger(a.log),
	)
	builder := stac.NewBuilder(settings.Collection, settings.PageLimit)

	if a.searcher != nil {
		a.searcher.Reconfigure(a.catalog, builder, settings.CloudCoverCeiling)
		return
	}

	a.searcher = search.NewService(
		a.catalog,
		a.coords,
		builder,
		search.WithCloudCoverCeiling(settings.CloudCoverCeiling),
		search.WithLogger(a.log.With().Str("component", "search").Logger()),
		search.OnStateChange(func(state search.State) {
			a.emit(EventSearchState, state)
		}),
		search.OnOutcome(a.trackSearch),
	)
}

// startup is called when the app starts
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	a.rateLimiter.SetOnRateLimit(func(event ratelimit.RateLimitEvent) {
		a.emit(EventRateLimited, event)
	})
	a.rateLimiter.SetOnRecovered(func(provider string) {
		a.emit(EventRateLimitCleared, provider)
	})

	a.log.Info().
		Str("version", AppVersion).
		Str("catalog", a.settings.CatalogURL).
		Str("collection", a.settings.Collection).
		Msg("scene finder started")

	// Track app start
	a.TrackEvent("app_started", map[string]interface{}{
		"version": a.GetAppVersion(),
		"os":      goruntime.GOOS,
		"arch":    goruntime.GOARCH,
	})
}

// shutdown cleans up resources
func (a *App) shutdown(ctx context.Context) {
	if a.phClient != nil {
		a.phClient.Close()
	}
}

// TrackEvent sends an event to PostHog
func (a *App) TrackEvent(event string, props map[string]interface{}) {
	if a.phClient == nil {
		return
	}
	a.mu.Lock()
	installID := a.settings.InstallID
	a.mu.Unlock()

	a.phClient.Enqueue(posthog.Capture{
		DistinctId: installID,
		Event:      event,
		Properties: props,
	})
}

// trackSearch reports a finished submission without location details
func (a *App) trackSearch(outcome search.Outcome) {
	props := map[string]interface{}{
		"candidates":  outcome.Candidates,
		"found":       outcome.Found,
		"duration_ms": outcome.Duration.Milliseconds(),
	}
	if outcome.Err != nil {
		props["error"] = errorKind(outcome.Err)
	}
	a.TrackEvent("imagery_search", props)
}

func errorKind(err error) string {
	var rangeErr *common.InvalidRangeError
	var coordErr *common.InvalidCoordinateError
	var transportErr *stac.TransportError
	switch {
	case errors.As(err, &rangeErr):
		return "invalid_range"
	case errors.As(err, &coordErr):
		return "invalid_coordinate"
	case errors.Is(err, stac.ErrRateLimited):
		return "rate_limited"
	case errors.As(err, &transportErr):
		return "transport"
	default:
		return "invalid_input"
	}
}

// emit sends an event to the frontend once the runtime is available
func (a *App) emit(name string, data ...interface{}) {
	if a.ctx == nil {
		return
	}
	wailsRuntime.EventsEmit(a.ctx, name, data...)
}

func (a *App) emitCoordinate(change session.Change) {
	update := CoordinateUpdate{Coordinate: change.Coordinate, Source: change.Source}
	if change.Source == session.SourceMapClick {
		notice := present.PointSelected(change.Coordinate)
		update.Notice = &notice
	}
	a.emit(EventCoordinateChanged, update)
}

// GetAppVersion returns the current application version
func (a *App) GetAppVersion() string {
	return AppVersion
}

// GetFormDefaults returns the initial form values and map view
func (a *App) GetFormDefaults() FormDefaults {
	a.mu.Lock()
	defer a.mu.Unlock()

	return FormDefaults{
		LocationName:      a.settings.DefaultLocationName,
		Coordinate:        a.coords.Current(),
		StartDate:         a.settings.DefaultStartDate,
		EndDate:           a.settings.DefaultEndDate,
		CloudCoverCeiling: a.settings.CloudCoverCeiling,
		Zoom:              a.settings.DefaultZoom,
		TileURL:           a.settings.MapTileURL,
	}
}

// GetCoordinate returns the authoritative coordinate
func (a *App) GetCoordinate() common.Coordinate {
	return a.coords.Current()
}

// SetCoordinateFromInput is called when the user edits the number fields.
// An empty field arrives as nil and leaves the coordinate unchanged.
func (a *App) SetCoordinateFromInput(lat, lon *float64) (common.Coordinate, error) {
	if lat == nil || lon == nil {
		return a.coords.Current(), common.ErrCoordinateRequired
	}
	return a.coords.SetFromInput(*lat, *lon)
}

// SetCoordinateFromMapClick is called when the user clicks the map
func (a *App) SetCoordinateFromMapClick(lat, lon float64) (common.Coordinate, error) {
	return a.coords.SetFromMapClick(lat, lon)
}

// SearchImagery runs one submission and returns what the result panel shows.
// Failures come back as an error payload rather than a rejected promise.
func (a *App) SearchImagery(form search.Form) present.DisplayPayload {
	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	payload, err := a.searcher.TrySubmit(ctx, form)
	if errors.Is(err, search.ErrBusy) {
		return present.DisplayPayload{Kind: present.KindWarning, Message: MessageSearchBusy}
	}
	if err != nil {
		return present.Failure(err)
	}
	return payload
}

// GetSearchState returns the lifecycle state of the current submission
func (a *App) GetSearchState() search.State {
	return a.searcher.State()
}
