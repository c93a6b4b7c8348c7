package handlers

import (
	"context"
	"net/http"
	"strconv"

	"geo-dispatch-service/internal/address"
	"geo-dispatch-service/internal/api/dto"
	"geo-dispatch-service/internal/domain"
	"geo-dispatch-service/internal/ports"
)

// AddressResolver is the slice of the resolver the geocode endpoints need.
type AddressResolver interface {
	ResolveAddress(ctx context.Context, text string) (domain.Coordinate, error)
	ReverseAddress(ctx context.Context, point domain.Coordinate) (string, error)
	Candidates(text string) []string
}

type GeocodeHandler struct {
	resolver AddressResolver
}

func NewGeocodeHandler(resolver AddressResolver) *GeocodeHandler {
	return &GeocodeHandler{resolver: resolver}
}

// Lookup handles GET /geocode?q=. Failures are 200 with ok=false and the
// candidate list so a dispatcher can see what was tried; only a missing
// query is a client error.
func (h *GeocodeHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	resp := dto.GeocodeResponse{
		Input:      q,
		Normalized: address.Normalize(q),
		Candidates: h.resolver.Candidates(q),
	}

	c, err := h.resolver.ResolveAddress(r.Context(), q)
	if err != nil {
		resp.Error = err.Error()
		if kind, ok := ports.KindOf(err); ok {
			resp.ErrorKind = string(kind)
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp.OK = true
	resp.Lat = &c.Lat
	resp.Lng = &c.Lng
	writeJSON(w, http.StatusOK, resp)
}

// Reverse handles GET /reverse?lat=&lng=.
func (h *GeocodeHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if errLat != nil || errLng != nil {
		writeError(w, http.StatusBadRequest, "lat and lng must be decimal numbers")
		return
	}

	point := domain.Coordinate{Lat: lat, Lng: lng}
	if !point.Valid() {
		writeError(w, http.StatusBadRequest, "coordinate out of range")
		return
	}

	name, err := h.resolver.ReverseAddress(r.Context(), point)
	if err != nil {
		writeGeoError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReverseResponse{Lat: lat, Lng: lng, Address: name})
}
