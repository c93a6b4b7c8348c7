package domain

// Stop is a single delivery point inside a route.
//
// A Stop belongs to exactly one Route at a time; routes hold their own
// copies, so reordering one route never mutates another. Coord is nil until
// the address has been geocoded (or when geocoding failed).
type Stop struct {
	ID       string
	Address  string
	Coord    *Coordinate
	Sequence int
}

// Route is the ordered output of route optimization.
//
// Invariant: Stops contains every input stop exactly once, and stops without
// a coordinate always follow the coordinate-bearing ones, keeping their
// original relative order among themselves.
type Route struct {
	Origin *Coordinate
	Stops  []Stop
}

// TotalKm sums the haversine length of the route, including the leg from the
// origin to the first stop when an origin is set. Stops without coordinates
// contribute nothing.
func (r Route) TotalKm() float64 {
	total := 0.0
	var prev *Coordinate = r.Origin

	for i := range r.Stops {
		cur := r.Stops[i].Coord
		if cur == nil {
			continue
		}
		if prev != nil {
			total += HaversineKm(*prev, *cur)
		}
		prev = cur
	}

	return total
}
