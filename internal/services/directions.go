package services

import (
	"net/url"
	"strings"
)

const (
	mapsSearchBase = "https://www.google.com/maps/search/?api=1"
	mapsDirBase    = "https://www.google.com/maps/dir/?api=1&travelmode=driving"
)

// BuildDirectionsURL builds a Google Maps deep link for a sequenced route.
// Items may be addresses or "lat,lng" strings. A single stop with no origin
// becomes a place search; otherwise a driving directions link with the last
// stop as destination and the ones between as waypoints. With no origin the
// first stop takes its place. Empty items are skipped; the result is ""
// when no stops remain, whether or not an origin was given.
func BuildDirectionsURL(stops []string, origin string) string {
	items := make([]string, 0, len(stops))
	for _, s := range stops {
		if s = strings.TrimSpace(s); s != "" {
			items = append(items, s)
		}
	}
	origin = strings.TrimSpace(origin)

	if len(items) == 0 {
		return ""
	}

	if origin == "" {
		if len(items) == 1 {
			return mapsSearchBase + "&query=" + url.QueryEscape(items[0])
		}
		origin, items = items[0], items[1:]
	}

	dest := items[len(items)-1]
	waypoints := items[:len(items)-1]

	var b strings.Builder
	b.WriteString(mapsDirBase)
	b.WriteString("&origin=")
	b.WriteString(url.QueryEscape(origin))
	b.WriteString("&destination=")
	b.WriteString(url.QueryEscape(dest))

	if len(waypoints) > 0 {
		b.WriteString("&waypoints=")
		for i, w := range waypoints {
			if i > 0 {
				b.WriteString("|")
			}
			b.WriteString(url.QueryEscape(w))
		}
	}
	return b.String()
}
