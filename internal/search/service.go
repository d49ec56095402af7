package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"scene-finder/internal/common"
	"scene-finder/internal/present"
	"scene-finder/internal/scene"
	"scene-finder/internal/session"
	"scene-finder/internal/stac"
)

// ErrBusy is returned by TrySubmit while another submission is running
var ErrBusy = errors.New("a search is already running")

// Catalog executes a query against the external imagery catalog
type Catalog interface {
	Search(ctx context.Context, q stac.Query) ([]scene.Record, error)
}

// Outcome summarises a finished submission for analytics and logs
type Outcome struct {
	RequestID  string
	Candidates int
	Found      bool
	Duration   time.Duration
	Err        error
}

// Service runs one submission at a time from form to display payload
type Service struct {
	coords *session.CoordinateState
	log    zerolog.Logger

	onState   func(State)
	onOutcome func(Outcome)

	run sync.Mutex // held for the whole submission

	mu      sync.Mutex // guards the fields below
	catalog Catalog
	builder stac.Builder
	ceiling float64
	state   State
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the service logger
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithCloudCoverCeiling sets the ceiling used when the form leaves it empty
func WithCloudCoverCeiling(ceiling float64) Option {
	return func(s *Service) { s.ceiling = ceiling }
}

// OnStateChange registers a callback for every lifecycle transition
func OnStateChange(fn func(State)) Option {
	return func(s *Service) { s.onState = fn }
}

// OnOutcome registers a callback invoked once per finished submission
func OnOutcome(fn func(Outcome)) Option {
	return func(s *Service) { s.onOutcome = fn }
}

// NewService creates a submission service
func NewService(catalog Catalog, coords *session.CoordinateState, builder stac.Builder, opts ...Option) *Service {
	s := &Service{
		catalog: catalog,
		coords:  coords,
		builder: builder,
		ceiling: common.DefaultCloudCoverCeiling,
		log:     zerolog.Nop(),
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports where the current submission is in its lifecycle
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reconfigure replaces the catalog, the query builder and the default
// ceiling. A submission already running finishes with the previous values;
// the next one uses the new ones.
func (s *Service) Reconfigure(catalog Catalog, builder stac.Builder, ceiling float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = catalog
	s.builder = builder
	s.ceiling = ceiling
}

// TrySubmit is Submit, except that it returns ErrBusy instead of waiting
// when another submission is in flight
func (s *Service) TrySubmit(ctx context.Context, form Form) (present.DisplayPayload, error) {
	if !s.run.TryLock() {
		return present.DisplayPayload{}, ErrBusy
	}
	defer s.run.Unlock()
	return s.submit(ctx, form)
}

// Submit runs a full search for form. Submissions are serialised: a call
// made while another is running waits for it to finish.
//
// The form's coordinate is written into the coordinate state first, so the
// query always uses the same value the number fields and the map show.
// Zero matching scenes is not an error; it yields a warning payload.
func (s *Service) Submit(ctx context.Context, form Form) (present.DisplayPayload, error) {
	s.run.Lock()
	defer s.run.Unlock()
	return s.submit(ctx, form)
}

func (s *Service) submit(ctx context.Context, form Form) (payload present.DisplayPayload, err error) {
	started := time.Now()
	outcome := Outcome{RequestID: uuid.NewString()}
	log := s.log.With().Str("request_id", outcome.RequestID).Logger()

	defer func() {
		s.setState(StateIdle)
		outcome.Duration = time.Since(started)
		outcome.Err = err
		if err != nil {
			log.Warn().Err(err).Dur("duration", outcome.Duration).Msg("search failed")
		}
		if s.onOutcome != nil {
			s.onOutcome(outcome)
		}
	}()

	s.mu.Lock()
	catalog, builder, defaultCeiling := s.catalog, s.builder, s.ceiling
	s.mu.Unlock()

	coord, err := s.reconcile(form)
	if err != nil {
		return present.DisplayPayload{}, err
	}

	dateRange, err := common.ParseDateRange(form.StartDate, form.EndDate)
	if err != nil {
		return present.DisplayPayload{}, err
	}

	ceiling := form.CloudCoverCeiling
	if ceiling == 0 {
		ceiling = defaultCeiling
	}

	query, err := builder.Build(coord, dateRange, ceiling)
	if err != nil {
		return present.DisplayPayload{}, err
	}

	log.Info().
		Str("location", form.LocationName).
		Float64("lat", coord.Latitude).
		Float64("lon", coord.Longitude).
		Str("datetime", dateRange.Interval()).
		Float64("cloud_cover_lt", ceiling).
		Msg("searching catalog")

	s.setState(StateQuerying)
	records, err := catalog.Search(ctx, query)
	if err != nil {
		return present.DisplayPayload{}, err
	}

	s.setState(StateSelecting)
	result := scene.Select(records)
	outcome.Candidates = result.Considered
	outcome.Found = result.Found()

	s.setState(StatePresenting)
	payload = present.Present(result, form.LocationName, coord, dateRange)

	event := log.Info().Int("candidates", result.Considered)
	if result.Found() {
		event = event.Str("scene_id", result.Best.ID).Float64("cloud_cover", scene.EffectiveCloudCover(*result.Best))
	}
	event.Dur("duration", time.Since(started)).Msg("search finished")

	return payload, nil
}

// reconcile makes the form's coordinate the authoritative one
func (s *Service) reconcile(form Form) (common.Coordinate, error) {
	if form.Latitude == nil || form.Longitude == nil {
		return common.Coordinate{}, common.ErrCoordinateRequired
	}
	lat, lon := *form.Latitude, *form.Longitude

	current := s.coords.Current()
	if current.Latitude == lat && current.Longitude == lon {
		return current, nil
	}
	return s.coords.SetFromInput(lat, lon)
}

func (s *Service) setState(state State) {
	s.mu.Lock()
	changed := s.state != state
	s.state = state
	s.mu.Unlock()

	if changed && s.onState != nil {
		s.onState(state)
	}
}
