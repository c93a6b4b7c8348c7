package geocode

import (
	"context"
	"sync"
	"time"

	"geo-dispatch-service/internal/domain"
	"geo-dispatch-service/internal/ports"
)

// StubGeocoder is a canned ports.Geocoder for tests and offline runs. It
// answers from a fixed query table and counts calls so tests can assert how
// many provider round trips a flow would have cost.
type StubGeocoder struct {
	mu       sync.Mutex
	forward  map[string]domain.Coordinate
	reverse  map[string]string
	calls    int
	failWith error
}

func NewStubGeocoder() *StubGeocoder {
	return &StubGeocoder{
		forward: make(map[string]domain.Coordinate),
		reverse: make(map[string]string),
	}
}

// Answer registers a forward result for an exact query string.
func (s *StubGeocoder) Answer(query string, c domain.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forward[query] = c
}

// AnswerReverse registers a reverse result keyed by Coordinate.String().
func (s *StubGeocoder) AnswerReverse(point domain.Coordinate, display string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reverse[point.String()] = display
}

// FailWith makes every lookup return err instead of consulting the tables.
func (s *StubGeocoder) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// Calls reports how many Forward and Reverse invocations were made.
func (s *StubGeocoder) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *StubGeocoder) Forward(ctx context.Context, query string, countryRestricted bool, timeout time.Duration) (domain.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinate{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failWith != nil {
		return domain.Coordinate{}, s.failWith
	}
	if c, ok := s.forward[query]; ok {
		return c, nil
	}
	return domain.Coordinate{}, ports.Geo(ports.GeoNoResult, "no match for %q", query)
}

func (s *StubGeocoder) Reverse(ctx context.Context, point domain.Coordinate, timeout time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failWith != nil {
		return "", s.failWith
	}
	if name, ok := s.reverse[point.String()]; ok {
		return name, nil
	}
	return "", ports.Geo(ports.GeoNoResult, "no address at %s", point)
}
