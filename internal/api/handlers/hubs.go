package handlers

import (
	"net/http"
	"strconv"

	"geo-dispatch-service/internal/api/dto"
	"geo-dispatch-service/internal/domain"
	"geo-dispatch-service/internal/ports"
)

type HubsHandler struct {
	hubs ports.HubRepository
}

func NewHubsHandler(hubs ports.HubRepository) *HubsHandler {
	return &HubsHandler{hubs: hubs}
}

func hubItem(h domain.Hub) dto.HubItem {
	item := dto.HubItem{ID: h.ID, Name: h.Name, Code: h.Code, Address: h.Address}
	if h.Coord != nil {
		item.Lat = &h.Coord.Lat
		item.Lng = &h.Coord.Lng
	}
	return item
}

// List handles GET /hubs.
func (h *HubsHandler) List(w http.ResponseWriter, r *http.Request) {
	hubs, err := h.hubs.ListActiveHubs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	items := make([]dto.HubItem, 0, len(hubs))
	for _, hub := range hubs {
		items = append(items, hubItem(hub))
	}
	writeJSON(w, http.StatusOK, items)
}

// Nearest handles GET /hubs/nearest?lat=&lng=, returning the closest
// geocoded hub by straight-line distance.
func (h *HubsHandler) Nearest(w http.ResponseWriter, r *http.Request) {
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

	hubs, err := h.hubs.ListActiveHubs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	nearest := domain.NearestHub(hubs, point)
	if nearest == nil {
		writeError(w, http.StatusNotFound, "no hub with known coordinates")
		return
	}

	writeJSON(w, http.StatusOK, dto.NearestHubResponse{
		Hub:        hubItem(*nearest),
		DistanceKm: domain.HaversineKm(point, *nearest.Coord),
	})
}
