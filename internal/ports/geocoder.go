// Package ports defines the interfaces and error taxonomy the services
// layer depends on. Adapters implement these; services never import
// adapter packages directly.
package ports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"geo-dispatch-service/internal/domain"
)

// GeoErrorKind classifies geocoding failures so callers can decide whether
// to retry, try the next candidate, or give up.
type GeoErrorKind string

const (
	GeoEmptyInput        GeoErrorKind = "empty_input"
	GeoTooVague          GeoErrorKind = "too_vague"
	GeoRateLimited       GeoErrorKind = "rate_limited"
	GeoForbidden         GeoErrorKind = "forbidden"
	GeoTimeout           GeoErrorKind = "timeout"
	GeoMalformedResponse GeoErrorKind = "malformed_response"
	GeoNoResult          GeoErrorKind = "no_result"
	GeoParseFailure      GeoErrorKind = "parse_failure"
	GeoUpstreamFailure   GeoErrorKind = "upstream_failure"
)

// GeoError carries a failure classification along with a human-readable
// message. It is the only error type the geocode adapters return.
type GeoError struct {
	Kind GeoErrorKind
	Msg  string
}

func (e *GeoError) Error() string {
	return fmt.Sprintf("geocode %s: %s", e.Kind, e.Msg)
}

// Geo builds a classified geocode error.
func Geo(kind GeoErrorKind, format string, args ...any) *GeoError {
	return &GeoError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the classification from an error chain. The second return
// is false when the error is not a GeoError.
func KindOf(err error) (GeoErrorKind, bool) {
	var ge *GeoError
	if errors.As(err, &ge) {
		return ge.Kind, true
	}
	return "", false
}

// Geocoder resolves text to coordinates and coordinates to text against an
// external provider. Implementations serialize their own outbound traffic;
// callers may invoke them concurrently. timeout bounds one attempt, not the
// retry budget.
type Geocoder interface {
	Forward(ctx context.Context, query string, countryRestricted bool, timeout time.Duration) (domain.Coordinate, error)
	Reverse(ctx context.Context, point domain.Coordinate, timeout time.Duration) (string, error)
}
