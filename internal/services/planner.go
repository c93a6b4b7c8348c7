package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"geo-dispatch-service/internal/domain"
	"geo-dispatch-service/internal/ports"
)

// PlannerConfig bounds how much provider work one plan request may cost.
type PlannerConfig struct {
	MaxStopsToGeocode int
	Optimizer         OptimizerConfig
}

// StopInput is one delivery address as submitted by the dispatcher.
type StopInput struct {
	ID      string
	Address string
}

// PlanRequest describes a route to sequence. Origin is optional and comes
// either as free text (address or "lat,lng" pin) or as a hub id; HubID
// wins when both are set.
type PlanRequest struct {
	OriginText string
	HubID      string
	Stops      []StopInput
}

// PlanResult is a sequenced route with its Google Maps deep link. Warnings
// report per-stop degradations that did not fail the plan.
type PlanResult struct {
	OriginLabel string
	OriginQuery string
	Origin      *domain.Coordinate
	Stops       []domain.Stop
	TotalKm     float64
	MapsURL     string
	Warnings    []string
}

// RoutePlanner assembles route plans: origin resolution, budgeted stop
// geocoding, sequencing, and the shareable directions link.
type RoutePlanner struct {
	resolver *Resolver
	hubs     ports.HubRepository
	cfg      PlannerConfig
}

func NewRoutePlanner(resolver *Resolver, hubs ports.HubRepository, cfg PlannerConfig) *RoutePlanner {
	return &RoutePlanner{resolver: resolver, hubs: hubs, cfg: cfg}
}

// Plan sequences the requested stops. Geocoding is best effort: a stop
// that cannot be located rides along at the end of the route with a
// warning instead of failing the whole plan. Only context cancellation and
// invalid input abort.
func (p *RoutePlanner) Plan(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	if len(req.Stops) == 0 {
		return nil, ports.Geo(ports.GeoEmptyInput, "no stops to plan")
	}

	res := &PlanResult{}

	if err := p.resolveOrigin(ctx, req, res); err != nil {
		return nil, err
	}

	stops := make([]domain.Stop, len(req.Stops))
	for i, in := range req.Stops {
		stops[i] = domain.Stop{ID: in.ID, Address: strings.TrimSpace(in.Address)}
	}

	// One or two stops have exactly one visiting order, skip the
	// provider round trips and link the raw addresses.
	if len(stops) <= 2 {
		for i := range stops {
			if c, ok := domain.ParseLatLng(stops[i].Address); ok {
				stops[i].Coord = &c
			}
			stops[i].Sequence = i + 1
		}
		res.Stops = stops
		p.finish(res)
		return res, nil
	}

	geocoded := 0
	for i := range stops {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("plan aborted: %w", err)
		}
		if stops[i].Address == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("stop %d has no address", i+1))
			continue
		}
		if geocoded >= p.cfg.MaxStopsToGeocode {
			res.Warnings = append(res.Warnings, fmt.Sprintf("stop %d skipped, geocode budget of %d reached", i+1, p.cfg.MaxStopsToGeocode))
			continue
		}

		geocoded++
		c, err := p.resolver.ResolveAddress(ctx, stops[i].Address)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("plan aborted: %w", err)
			}
			p.warnStopFailure(res, i+1, stops[i].Address, err)
			continue
		}
		stops[i].Coord = &c
	}

	res.Stops = OptimizeOpenRoute(stops, res.Origin, p.cfg.Optimizer)
	p.finish(res)
	return res, nil
}

func (p *RoutePlanner) resolveOrigin(ctx context.Context, req PlanRequest, res *PlanResult) error {
	switch {
	case req.HubID != "":
		hub, err := p.hubs.GetHub(ctx, req.HubID)
		if err != nil {
			return fmt.Errorf("resolve origin hub: %w", err)
		}
		res.OriginLabel = hub.Name
		res.OriginQuery = hub.Address

		if hub.Coord == nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("hub %s has no stored coordinates, geocoding its address", hub.Code))
		}
		c, err := p.resolver.ResolveHub(ctx, hub)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("plan aborted: %w", err)
			}
			res.Warnings = append(res.Warnings, fmt.Sprintf("hub %s could not be located, planning without an origin", hub.Code))
			log.Printf("level=warn msg=\"hub geocode failed\" hub=%s err=%v", hub.ID, err)
			return nil
		}
		res.Origin = &c

	case strings.TrimSpace(req.OriginText) != "":
		res.OriginLabel = strings.TrimSpace(req.OriginText)
		res.OriginQuery = res.OriginLabel

		c, err := p.resolver.ResolveOrigin(ctx, req.OriginText)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("plan aborted: %w", err)
			}
			res.Warnings = append(res.Warnings, fmt.Sprintf("origin %q could not be located, planning without it", res.OriginLabel))
			return nil
		}
		res.Origin = &c
	}
	return nil
}

// warnStopFailure surfaces the first two failures with their cause; later
// ones collapse to counts so a mostly-bad batch does not flood the reply.
func (p *RoutePlanner) warnStopFailure(res *PlanResult, position int, addr string, err error) {
	detailed := 0
	for _, w := range res.Warnings {
		if strings.Contains(w, "could not be located:") {
			detailed++
		}
	}
	if detailed < 2 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("stop %d %q could not be located: %v", position, addr, err))
	} else {
		res.Warnings = append(res.Warnings, fmt.Sprintf("stop %d %q could not be located", position, addr))
	}
}

// finish derives the aggregate fields once stops are sequenced.
func (p *RoutePlanner) finish(res *PlanResult) {
	res.TotalKm = PathLengthKm(res.Stops, res.Origin)

	items := make([]string, 0, len(res.Stops))
	for _, s := range res.Stops {
		if s.Coord != nil && s.Coord.Valid() {
			items = append(items, s.Coord.String())
		} else if s.Address != "" {
			items = append(items, s.Address)
		}
	}

	originItem := res.OriginQuery
	if res.Origin != nil {
		originItem = res.Origin.String()
	}
	res.MapsURL = BuildDirectionsURL(items, originItem)
}
