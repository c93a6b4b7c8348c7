// Package dto defines the request and response shapes of the HTTP API.
package dto

// OptimizeRouteRequest is the POST /routes/optimize body. Origin accepts an
// address or a raw "lat,lng" pin; hub_id takes precedence when both are
// set.
type OptimizeRouteRequest struct {
	Origin string             `json:"origin,omitempty"`
	HubID  string             `json:"hub_id,omitempty"`
	Stops  []OptimizeStopItem `json:"stops"`
}

type OptimizeStopItem struct {
	ID      string `json:"id,omitempty"`
	Address string `json:"address"`
}

type OptimizeRouteResponse struct {
	OriginLabel string          `json:"origin_label,omitempty"`
	Origin      *LatLng         `json:"origin,omitempty"`
	Stops       []SequencedStop `json:"stops"`
	TotalKm     float64         `json:"total_km"`
	MapsURL     string          `json:"maps_url"`
	Warnings    []string        `json:"warnings,omitempty"`
}

type SequencedStop struct {
	ID       string   `json:"id,omitempty"`
	Address  string   `json:"address"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
	Sequence int      `json:"sequence"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
