package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"geo-dispatch-service/internal/api/dto"
	"geo-dispatch-service/internal/platform/obs"
	"geo-dispatch-service/internal/services"
)

const maxStopsPerRequest = 50

// Planner is the slice of the route planner the routes endpoint needs.
type Planner interface {
	Plan(ctx context.Context, req services.PlanRequest) (*services.PlanResult, error)
}

type RoutesHandler struct {
	planner Planner
}

func NewRoutesHandler(planner Planner) *RoutesHandler {
	return &RoutesHandler{planner: planner}
}

// Optimize handles POST /routes/optimize.
func (h *RoutesHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req dto.OptimizeRouteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if len(req.Stops) == 0 {
		writeError(w, http.StatusBadRequest, "stops must not be empty")
		return
	}
	if len(req.Stops) > maxStopsPerRequest {
		writeError(w, http.StatusBadRequest, "too many stops in one request")
		return
	}
	for i, s := range req.Stops {
		if strings.TrimSpace(s.Address) == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("stop %d has an empty address", i+1))
			return
		}
	}

	plan := services.PlanRequest{
		OriginText: req.Origin,
		HubID:      req.HubID,
	}
	for _, s := range req.Stops {
		plan.Stops = append(plan.Stops, services.StopInput{ID: s.ID, Address: s.Address})
	}

	var err error
	defer obs.Time(r.Context(), "routes.optimize")(&err)

	res, err := h.planner.Plan(r.Context(), plan)
	if err != nil {
		writeGeoError(w, err)
		return
	}

	resp := dto.OptimizeRouteResponse{
		OriginLabel: res.OriginLabel,
		TotalKm:     res.TotalKm,
		MapsURL:     res.MapsURL,
		Warnings:    res.Warnings,
		Stops:       make([]dto.SequencedStop, 0, len(res.Stops)),
	}
	if res.Origin != nil {
		resp.Origin = &dto.LatLng{Lat: res.Origin.Lat, Lng: res.Origin.Lng}
	}
	for _, s := range res.Stops {
		item := dto.SequencedStop{ID: s.ID, Address: s.Address, Sequence: s.Sequence}
		if s.Coord != nil {
			item.Lat = &s.Coord.Lat
			item.Lng = &s.Coord.Lng
		}
		resp.Stops = append(resp.Stops, item)
	}

	writeJSON(w, http.StatusOK, resp)
}
