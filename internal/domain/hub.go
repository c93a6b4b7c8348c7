package domain

// Hub is a dispatch depot that routes may depart from.
// Hubs are loaded read-only per request; this subsystem never mutates them
// (back-filling a missing coordinate into storage is the caller's concern).
type Hub struct {
	ID      string
	Name    string
	Code    string
	Address string
	Coord   *Coordinate
}

// NearestHub returns the hub closest to point by haversine distance,
// considering only hubs with a known coordinate. Returns nil when no hub
// qualifies. Ties keep the earlier hub in the input order.
func NearestHub(hubs []Hub, point Coordinate) *Hub {
	var best *Hub
	bestDist := 0.0

	for i := range hubs {
		if hubs[i].Coord == nil {
			continue
		}
		d := HaversineKm(point, *hubs[i].Coord)
		if best == nil || d < bestDist {
			best = &hubs[i]
			bestDist = d
		}
	}

	return best
}
