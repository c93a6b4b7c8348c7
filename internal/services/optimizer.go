package services

import (
	"geo-dispatch-service/internal/domain"
)

// OptimizerConfig bounds the 2-opt refinement. Defaults of 40 passes and a
// 1e-9 km epsilon finish well under a millisecond for realistic route
// sizes.
type OptimizerConfig struct {
	TwoOptPasses int
	Epsilon      float64
}

// OptimizeOpenRoute orders stops into a short open path: nearest-neighbor
// construction followed by bounded 2-opt refinement that keeps the first
// stop fixed. Stops without coordinates are appended after the sequenced
// ones in their submitted order. The returned slice has Sequence set from
// 1; the input is not modified.
func OptimizeOpenRoute(stops []domain.Stop, origin *domain.Coordinate, cfg OptimizerConfig) []domain.Stop {
	located := make([]domain.Stop, 0, len(stops))
	unlocated := make([]domain.Stop, 0)
	for _, s := range stops {
		if s.Coord != nil && s.Coord.Valid() {
			located = append(located, s)
		} else {
			unlocated = append(unlocated, s)
		}
	}

	// One or two located stops have nothing to optimize; they keep their
	// submitted order even when an origin would favor the other one first.
	ordered := located
	if len(located) > 2 {
		ordered = nearestNeighborPath(located, origin)
		twoOptRefine(ordered, cfg)
	}

	out := make([]domain.Stop, 0, len(stops))
	out = append(out, ordered...)
	out = append(out, unlocated...)
	for i := range out {
		out[i].Sequence = i + 1
	}
	return out
}

// nearestNeighborPath builds an initial order by repeatedly visiting the
// closest unvisited stop. With an origin the walk starts at the stop
// nearest to it, otherwise at the first submitted stop. Ties keep the
// earlier-submitted stop, so the result is deterministic.
func nearestNeighborPath(stops []domain.Stop, origin *domain.Coordinate) []domain.Stop {
	if len(stops) == 0 {
		return nil
	}

	remaining := make([]domain.Stop, len(stops))
	copy(remaining, stops)

	start := 0
	if origin != nil && origin.Valid() {
		best := domain.HaversineKm(*origin, *remaining[0].Coord)
		for i := 1; i < len(remaining); i++ {
			if d := domain.HaversineKm(*origin, *remaining[i].Coord); d < best {
				best = d
				start = i
			}
		}
	}

	out := make([]domain.Stop, 0, len(remaining))
	out = append(out, remaining[start])
	remaining = append(remaining[:start], remaining[start+1:]...)

	for len(remaining) > 0 {
		cur := *out[len(out)-1].Coord
		next := 0
		best := domain.HaversineKm(cur, *remaining[0].Coord)
		for i := 1; i < len(remaining); i++ {
			if d := domain.HaversineKm(cur, *remaining[i].Coord); d < best {
				best = d
				next = i
			}
		}
		out = append(out, remaining[next])
		remaining = append(remaining[:next], remaining[next+1:]...)
	}
	return out
}

// twoOptRefine untangles crossings in place by reversing path segments
// whenever that shortens the open path. The first stop stays fixed. Stops
// after the configured pass budget or when a full pass yields no
// improvement above epsilon.
func twoOptRefine(path []domain.Stop, cfg OptimizerConfig) {
	n := len(path)
	if n <= 3 || cfg.TwoOptPasses <= 0 {
		return
	}

	for pass := 0; pass < cfg.TwoOptPasses; pass++ {
		improved := false
		for i := 0; i < n-3; i++ {
			for k := i + 1; k <= n-2; k++ {
				// Replacing edges (i, i+1) and (k, k+1) with (i, k) and
				// (i+1, k+1) is the only length change a reversal causes.
				a, b := *path[i].Coord, *path[i+1].Coord
				c, d := *path[k].Coord, *path[k+1].Coord

				current := domain.HaversineKm(a, b) + domain.HaversineKm(c, d)
				proposed := domain.HaversineKm(a, c) + domain.HaversineKm(b, d)
				if current-proposed > cfg.Epsilon {
					reverse(path, i+1, k)
					improved = true
				}
			}
		}
		if !improved {
			return
		}
	}
}

func reverse(path []domain.Stop, i, k int) {
	for i < k {
		path[i], path[k] = path[k], path[i]
		i++
		k--
	}
}

// PathLengthKm sums the open-path distance over coordinate-bearing stops,
// including the origin leg when an origin is given.
func PathLengthKm(stops []domain.Stop, origin *domain.Coordinate) float64 {
	return domain.Route{Origin: origin, Stops: stops}.TotalKm()
}
