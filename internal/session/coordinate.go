package session

import (
	"sync"

	"scene-finder/internal/common"
)

// Source identifies which surface wrote the current coordinate
type Source string

const (
	SourceDefault  Source = "default"
	SourceInput    Source = "input"
	SourceMapClick Source = "map"
)

// Change is delivered to subscribers after every mutation
type Change struct {
	Coordinate common.Coordinate `json:"coordinate"`
	Source     Source            `json:"source"`
}

// CoordinateState holds the authoritative coordinate shared by the number
// fields and the map marker. Both mutation paths overwrite the whole value
// (last writer wins) and subscribers are notified before the mutation
// returns, so no surface shows a stale coordinate once the event is handled.
//
// One event handler writes per interaction cycle; the mutex only guards
// against Wails dispatching bound calls on separate goroutines.
type CoordinateState struct {
	mu          sync.Mutex
	def         common.Coordinate
	current     common.Coordinate
	source      Source
	subscribers []func(Change)
}

// NewCoordinateState creates a state initialised to the configured default
func NewCoordinateState(def common.Coordinate) *CoordinateState {
	return &CoordinateState{
		def:     def,
		current: def,
		source:  SourceDefault,
	}
}

// Current returns the authoritative coordinate
func (s *CoordinateState) Current() common.Coordinate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// LastSource reports which surface wrote the current coordinate
func (s *CoordinateState) LastSource() Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Subscribe registers fn to be called synchronously after every change
func (s *CoordinateState) Subscribe(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// SetFromInput overwrites the coordinate with values typed into the form
func (s *CoordinateState) SetFromInput(lat, lon float64) (common.Coordinate, error) {
	coord := common.Coordinate{Latitude: lat, Longitude: lon}
	if err := coord.Validate(); err != nil {
		return s.Current(), err
	}
	s.set(coord, SourceInput)
	return coord, nil
}

// SetFromMapClick overwrites the coordinate with a point picked on the map.
// Longitudes from a wrapped world view are folded back into [-180,180].
func (s *CoordinateState) SetFromMapClick(lat, lon float64) (common.Coordinate, error) {
	coord := common.Coordinate{Latitude: lat, Longitude: common.WrapLongitude(lon)}
	if err := coord.Validate(); err != nil {
		return s.Current(), err
	}
	s.set(coord, SourceMapClick)
	return coord, nil
}

// Reset restores the configured default coordinate
func (s *CoordinateState) Reset() common.Coordinate {
	s.mu.Lock()
	def := s.def
	s.mu.Unlock()

	s.set(def, SourceDefault)
	return def
}

// SetDefault replaces the configured default without touching the current value
func (s *CoordinateState) SetDefault(def common.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.def = def
}

func (s *CoordinateState) set(coord common.Coordinate, source Source) {
	s.mu.Lock()
	s.current = coord
	s.source = source
	subscribers := make([]func(Change), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	change := Change{Coordinate: coord, Source: source}
	for _, fn := range subscribers {
		fn(change)
	}
}
