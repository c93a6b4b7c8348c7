// Package handlers implements the HTTP endpoints. Handlers depend on
// narrow local interfaces so tests can stand in fakes without the full
// service wiring.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"geo-dispatch-service/internal/adapters/repositories"
	"geo-dispatch-service/internal/api/dto"
	"geo-dispatch-service/internal/ports"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("level=error msg=\"encode response\" err=%v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

// writeGeoError maps the geocode failure taxonomy onto HTTP statuses.
// Client-side problems are 4xx; provider trouble surfaces as gateway
// errors rather than pretending the service itself broke.
func writeGeoError(w http.ResponseWriter, err error) {
	if errors.Is(err, repositories.ErrHubNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	kind, ok := ports.KindOf(err)
	if !ok {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch kind {
	case ports.GeoEmptyInput, ports.GeoTooVague:
		writeError(w, http.StatusBadRequest, err.Error())
	case ports.GeoNoResult:
		writeError(w, http.StatusNotFound, err.Error())
	case ports.GeoRateLimited:
		writeError(w, http.StatusTooManyRequests, err.Error())
	case ports.GeoTimeout:
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case ports.GeoForbidden, ports.GeoMalformedResponse, ports.GeoParseFailure, ports.GeoUpstreamFailure:
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
