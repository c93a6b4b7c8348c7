package domain

import (
	"math"
	"strconv"
	"strings"
)

// Immutable geographic coordinate (latitude, longitude).
type Coordinate struct {
	Lat float64
	Lng float64
}

// Valid reports whether the coordinate lies inside the WGS84 ranges.
// Validity is a precondition for every distance computation in this package.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// String renders the coordinate as "lat,lng" with locale-invariant decimals,
// the form accepted by mapping deep links and by ParseLatLng.
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// Mean Earth radius in kilometers.
const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in kilometers.
func HaversineKm(a, b Coordinate) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180.0
	dLng := (b.Lng - a.Lng) * math.Pi / 180.0

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180.0)*math.Cos(b.Lat*math.Pi/180.0)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ParseLatLng parses coordinate text of the form "lat,lng" (also "lat;lng"
// or "lat lng"). Returns false for anything that is not a valid pair.
func ParseLatLng(input string) (Coordinate, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(input, ";", ","))
	if s == "" {
		return Coordinate{}, false
	}

	sep := ","
	if !strings.Contains(s, ",") {
		sep = " "
	}

	fields := make([]string, 0, 2)
	for _, p := range strings.Split(s, sep) {
		p = strings.TrimSpace(p)
		if p != "" {
			fields = append(fields, p)
		}
	}
	if len(fields) != 2 {
		return Coordinate{}, false
	}

	lat, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Coordinate{}, false
	}
	lng, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Coordinate{}, false
	}

	c := Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return Coordinate{}, false
	}
	return c, true
}
