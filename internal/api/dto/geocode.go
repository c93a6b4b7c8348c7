package dto

// GeocodeResponse is the GET /geocode diagnostic reply. A failed lookup is
// still a 200 with ok=false so dispatchers can inspect the candidates that
// were tried.
type GeocodeResponse struct {
	OK         bool     `json:"ok"`
	Input      string   `json:"input"`
	Normalized string   `json:"normalized"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
	Error      string   `json:"error,omitempty"`
	ErrorKind  string   `json:"error_kind,omitempty"`
	Candidates []string `json:"candidates"`
}

type ReverseResponse struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

type HubItem struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Code    string   `json:"code"`
	Address string   `json:"address"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

type NearestHubResponse struct {
	Hub        HubItem `json:"hub"`
	DistanceKm float64 `json:"distance_km"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
