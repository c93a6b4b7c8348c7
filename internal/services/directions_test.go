package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDirectionsURLSingleStopNoOrigin(t *testing.T) {
	got := BuildDirectionsURL([]string{"123 Nguyễn Trãi, Quận 5"}, "")
	assert.Equal(t,
		"https://www.google.com/maps/search/?api=1&query=123+Nguy%E1%BB%85n+Tr%C3%A3i%2C+Qu%E1%BA%ADn+5",
		got)
}

func TestBuildDirectionsURLWithOrigin(t *testing.T) {
	got := BuildDirectionsURL(
		[]string{"10.7,106.6", "10.8,106.7"},
		"10.75,106.65",
	)
	assert.Equal(t,
		"https://www.google.com/maps/dir/?api=1&travelmode=driving"+
			"&origin=10.75%2C106.65"+
			"&destination=10.8%2C106.7"+
			"&waypoints=10.7%2C106.6",
		got)
}

func TestBuildDirectionsURLNoOriginPromotesFirstStop(t *testing.T) {
	got := BuildDirectionsURL([]string{"A", "B", "C"}, "")
	assert.Equal(t,
		"https://www.google.com/maps/dir/?api=1&travelmode=driving"+
			"&origin=A&destination=C&waypoints=B",
		got)
}

func TestBuildDirectionsURLWaypointsJoinedWithPipe(t *testing.T) {
	got := BuildDirectionsURL([]string{"A", "B", "C", "D"}, "O")
	assert.Contains(t, got, "&waypoints=A|B|C")
	assert.Contains(t, got, "&destination=D")
	assert.Contains(t, got, "&origin=O")
}

func TestBuildDirectionsURLSkipsEmptyItems(t *testing.T) {
	got := BuildDirectionsURL([]string{"  ", "A", ""}, "")
	assert.Equal(t,
		"https://www.google.com/maps/search/?api=1&query=A",
		got)
}

func TestBuildDirectionsURLNothing(t *testing.T) {
	// No resolvable stops means no link, even when an origin is known.
	assert.Equal(t, "", BuildDirectionsURL(nil, ""))
	assert.Equal(t, "", BuildDirectionsURL(nil, "Kho Quận 5"))
	assert.Equal(t, "", BuildDirectionsURL([]string{"", "  "}, "Kho Quận 5"))
}
