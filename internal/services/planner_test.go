package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geo-dispatch-service/internal/adapters/cache"
	"geo-dispatch-service/internal/adapters/geocode"
	"geo-dispatch-service/internal/domain"
	"geo-dispatch-service/internal/ports"
)

type fakeHubRepo struct {
	hubs map[string]domain.Hub
}

func (f *fakeHubRepo) ListActiveHubs(_ context.Context) ([]domain.Hub, error) {
	out := make([]domain.Hub, 0, len(f.hubs))
	for _, h := range f.hubs {
		out = append(out, h)
	}
	return out, nil
}

func (f *fakeHubRepo) GetHub(_ context.Context, id string) (domain.Hub, error) {
	if h, ok := f.hubs[id]; ok {
		return h, nil
	}
	return domain.Hub{}, ports.Geo(ports.GeoNoResult, "hub %q not found", id)
}

func testPlanner(stub *geocode.StubGeocoder, hubs map[string]domain.Hub) *RoutePlanner {
	resolver := NewResolver(stub, cache.NewMemoryGeocodeCache(10*time.Minute), nil, ResolverConfig{
		MaxCandidates:     3,
		PerRequestTimeout: time.Second,
		OriginTimeout:     time.Second,
		DefaultCity:       "Hồ Chí Minh",
		Country:           "Việt Nam",
	})
	return NewRoutePlanner(resolver, &fakeHubRepo{hubs: hubs}, PlannerConfig{
		MaxStopsToGeocode: 8,
		Optimizer:         OptimizerConfig{TwoOptPasses: 40, Epsilon: 1e-9},
	})
}

func TestPlanTwoStopsSkipsGeocoding(t *testing.T) {
	stub := geocode.NewStubGeocoder()
	p := testPlanner(stub, nil)

	res, err := p.Plan(context.Background(), PlanRequest{Stops: []StopInput{
		{ID: "1", Address: "123 Nguyễn Trãi, Quận 5"},
		{ID: "2", Address: "45 Lê Lợi, Quận 1"},
	}})
	require.NoError(t, err)

	assert.Zero(t, stub.Calls(), "two stops have one order, no provider needed")
	assert.Equal(t, []int{1, 2}, []int{res.Stops[0].Sequence, res.Stops[1].Sequence})
	assert.Contains(t, res.MapsURL, "maps/dir")
	assert.Contains(t, res.MapsURL, "destination=45+L%C3%AA+L%E1%BB%A3i%2C+Qu%E1%BA%ADn+1")
}

func TestPlanSequencesByDistanceFromPin(t *testing.T) {
	stub := geocode.NewStubGeocoder()
	stub.Answer("Xa 9, Việt Nam", domain.Coordinate{Lat: 10.90, Lng: 106.90})
	stub.Answer("Gần 7, Việt Nam", domain.Coordinate{Lat: 10.78, Lng: 106.71})
	stub.Answer("Giữa 8, Việt Nam", domain.Coordinate{Lat: 10.83, Lng: 106.80})
	p := testPlanner(stub, nil)

	res, err := p.Plan(context.Background(), PlanRequest{
		OriginText: "10.776,106.700",
		Stops: []StopInput{
			{ID: "far", Address: "Xa 9"},
			{ID: "near", Address: "Gần 7"},
			{ID: "mid", Address: "Giữa 8"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Origin)

	require.Len(t, res.Stops, 3)
	assert.Equal(t, "near", res.Stops[0].ID)
	assert.Equal(t, "mid", res.Stops[1].ID)
	assert.Equal(t, "far", res.Stops[2].ID)
	assert.Positive(t, res.TotalKm)
	assert.Contains(t, res.MapsURL, "origin=10.776%2C106.7")
}

func TestPlanHubOrigin(t *testing.T) {
	stub := geocode.NewStubGeocoder()
	stub.Answer("A 1, Việt Nam", domain.Coordinate{Lat: 10.70, Lng: 106.60})
	stub.Answer("B 2, Việt Nam", domain.Coordinate{Lat: 10.71, Lng: 106.61})
	stub.Answer("C 3, Việt Nam", domain.Coordinate{Lat: 10.72, Lng: 106.62})
	hub := domain.Hub{
		ID: "hub-q5", Name: "Kho Quận 5", Code: "Q5",
		Address: "123 Nguyễn Trãi, Quận 5",
		Coord:   &domain.Coordinate{Lat: 10.7546, Lng: 106.6634},
	}
	p := testPlanner(stub, map[string]domain.Hub{"hub-q5": hub})

	res, err := p.Plan(context.Background(), PlanRequest{
		HubID: "hub-q5",
		Stops: []StopInput{{Address: "A 1"}, {Address: "B 2"}, {Address: "C 3"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Kho Quận 5", res.OriginLabel)
	require.NotNil(t, res.Origin)
	assert.Equal(t, *hub.Coord, *res.Origin)
	assert.Empty(t, res.Warnings)
}

func TestPlanUnknownHubFails(t *testing.T) {
	p := testPlanner(geocode.NewStubGeocoder(), nil)

	_, err := p.Plan(context.Background(), PlanRequest{
		HubID: "nope",
		Stops: []StopInput{{Address: "A 1"}, {Address: "B 2"}, {Address: "C 3"}},
	})
	require.Error(t, err)
}

func TestPlanFailedStopsTrailWithWarnings(t *testing.T) {
	stub := geocode.NewStubGeocoder()
	stub.Answer("A 1, Việt Nam", domain.Coordinate{Lat: 10.70, Lng: 106.60})
	stub.Answer("C 3, Việt Nam", domain.Coordinate{Lat: 10.71, Lng: 106.61})
	p := testPlanner(stub, nil)

	res, err := p.Plan(context.Background(), PlanRequest{Stops: []StopInput{
		{ID: "a", Address: "A 1"},
		{ID: "b", Address: "123 đường không tồn tại"},
		{ID: "c", Address: "C 3"},
	}})
	require.NoError(t, err)

	require.Len(t, res.Stops, 3)
	assert.Equal(t, "b", res.Stops[2].ID, "unresolved stop rides at the end")
	assert.Nil(t, res.Stops[2].Coord)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "could not be located")
}

func TestPlanGeocodeBudget(t *testing.T) {
	stub := geocode.NewStubGeocoder()
	resolver := NewResolver(stub, cache.NewMemoryGeocodeCache(10*time.Minute), nil, ResolverConfig{
		MaxCandidates:     3,
		PerRequestTimeout: time.Second,
		OriginTimeout:     time.Second,
		DefaultCity:       "Hồ Chí Minh",
		Country:           "Việt Nam",
	})
	p := NewRoutePlanner(resolver, &fakeHubRepo{}, PlannerConfig{
		MaxStopsToGeocode: 2,
		Optimizer:         OptimizerConfig{TwoOptPasses: 40, Epsilon: 1e-9},
	})

	stub.Answer("A 1, Việt Nam", domain.Coordinate{Lat: 10.70, Lng: 106.60})
	stub.Answer("B 2, Việt Nam", domain.Coordinate{Lat: 10.71, Lng: 106.61})
	stub.Answer("C 3, Việt Nam", domain.Coordinate{Lat: 10.72, Lng: 106.62})

	res, err := p.Plan(context.Background(), PlanRequest{Stops: []StopInput{
		{ID: "a", Address: "A 1"},
		{ID: "b", Address: "B 2"},
		{ID: "c", Address: "C 3"},
	}})
	require.NoError(t, err)

	var budgetWarnings int
	for _, w := range res.Warnings {
		if strings.Contains(w, "geocode budget") {
			budgetWarnings++
		}
	}
	assert.Equal(t, 1, budgetWarnings)
	assert.Nil(t, res.Stops[2].Coord, "stop past the budget stays ungeocoded")
}

func TestPlanCancelledContext(t *testing.T) {
	p := testPlanner(geocode.NewStubGeocoder(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Plan(ctx, PlanRequest{Stops: []StopInput{
		{Address: "A 1"}, {Address: "B 2"}, {Address: "C 3"},
	}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlanNoStops(t *testing.T) {
	p := testPlanner(geocode.NewStubGeocoder(), nil)

	_, err := p.Plan(context.Background(), PlanRequest{})
	kind, ok := ports.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ports.GeoEmptyInput, kind)
}
