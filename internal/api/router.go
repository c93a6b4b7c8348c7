// Package api wires the HTTP surface: routing, request ids, and access
// logging.
package api

import (
	"net/http"

	"geo-dispatch-service/internal/api/handlers"
	"geo-dispatch-service/internal/ports"
)

// NewRouter builds the service mux with the middleware chain applied.
func NewRouter(resolver handlers.AddressResolver, planner handlers.Planner, hubs ports.HubRepository) http.Handler {
	geocodeH := handlers.NewGeocodeHandler(resolver)
	hubsH := handlers.NewHubsHandler(hubs)
	routesH := handlers.NewRoutesHandler(planner)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handlers.Health())
	mux.HandleFunc("GET /geocode", geocodeH.Lookup)
	mux.HandleFunc("GET /reverse", geocodeH.Reverse)
	mux.HandleFunc("GET /hubs", hubsH.List)
	mux.HandleFunc("GET /hubs/nearest", hubsH.Nearest)
	mux.HandleFunc("POST /routes/optimize", routesH.Optimize)

	return requestIDMiddleware(loggingMiddleware(mux))
}
