package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"geo-dispatch-service/internal/domain"
	"geo-dispatch-service/internal/ports"
)

// ClientConfig holds the provider endpoint and the identification Nominatim's
// usage policy requires. Email and UserAgent must identify the operator;
// anonymous clients get blocked.
type ClientConfig struct {
	BaseURL        string
	Email          string
	UserAgent      string
	AcceptLanguage string
	CountryCode    string
	RetryBudget    int
	ForwardBackoff time.Duration
	ReverseBackoff time.Duration
}

// NominatimClient implements ports.Geocoder against a Nominatim instance.
// All outbound requests pass through the shared RateGate.
type NominatimClient struct {
	http  *http.Client
	gate  *RateGate
	cfg   ClientConfig
	sleep func(ctx context.Context, d time.Duration) error
}

func NewNominatimClient(httpClient *http.Client, gate *RateGate, cfg ClientConfig) *NominatimClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &NominatimClient{http: httpClient, gate: gate, cfg: cfg, sleep: sleepCtx}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type reverseResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Forward resolves a free-text query to a coordinate. countryRestricted
// adds the configured countrycodes filter; the caller retries without it
// when the restricted query finds nothing. timeout bounds each attempt
// separately, not the 429 backoff between attempts.
func (c *NominatimClient) Forward(ctx context.Context, query string, countryRestricted bool, timeout time.Duration) (domain.Coordinate, error) {
	if query == "" {
		return domain.Coordinate{}, ports.Geo(ports.GeoEmptyInput, "empty query")
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	q.Set("addressdetails", "0")
	if countryRestricted && c.cfg.CountryCode != "" {
		q.Set("countrycodes", c.cfg.CountryCode)
	}
	if c.cfg.Email != "" {
		q.Set("email", c.cfg.Email)
	}
	q.Set("q", query)

	body, err := c.fetch(ctx, c.cfg.BaseURL+"/search?"+q.Encode(), timeout, c.cfg.ForwardBackoff)
	if err != nil {
		return domain.Coordinate{}, err
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return domain.Coordinate{}, ports.Geo(ports.GeoMalformedResponse, "decode search response: %v", err)
	}
	if len(results) == 0 {
		return domain.Coordinate{}, ports.Geo(ports.GeoNoResult, "no match for %q", query)
	}

	return parseCoordinate(results[0].Lat, results[0].Lon)
}

// Reverse resolves a coordinate to its nearest display address at
// street-level zoom.
func (c *NominatimClient) Reverse(ctx context.Context, point domain.Coordinate, timeout time.Duration) (string, error) {
	if !point.Valid() {
		return "", ports.Geo(ports.GeoEmptyInput, "coordinate out of range")
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	q.Set("zoom", "18")
	if c.cfg.Email != "" {
		q.Set("email", c.cfg.Email)
	}
	q.Set("lat", strconv.FormatFloat(point.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(point.Lng, 'f', -1, 64))

	body, err := c.fetch(ctx, c.cfg.BaseURL+"/reverse?"+q.Encode(), timeout, c.cfg.ReverseBackoff)
	if err != nil {
		return "", err
	}

	var result reverseResult
	if err := json.Unmarshal(body, &result); err != nil {
		return "", ports.Geo(ports.GeoMalformedResponse, "decode reverse response: %v", err)
	}
	if result.DisplayName == "" {
		return "", ports.Geo(ports.GeoNoResult, "no address at %s", point)
	}

	return result.DisplayName, nil
}

// fetch performs one rate-gated request with a bounded number of retries on
// 429. The gate is held for the whole attempt sequence so retries do not
// interleave with other callers.
func (c *NominatimClient) fetch(ctx context.Context, rawURL string, timeout, backoff time.Duration) ([]byte, error) {
	if err := c.gate.Acquire(ctx); err != nil {
		return nil, ports.Geo(ports.GeoTimeout, "waiting for rate gate: %v", err)
	}
	defer c.gate.Release()

	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryBudget; attempt++ {
		if attempt > 0 {
			log.Printf("level=warn msg=\"provider throttled, retrying\" backoff=%s url=%s", backoff, rawURL)
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, ports.Geo(ports.GeoTimeout, "backoff interrupted: %v", err)
			}
		}

		body, retryable, err := c.attempt(ctx, rawURL, timeout)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

func (c *NominatimClient) attempt(ctx context.Context, rawURL string, timeout time.Duration) (body []byte, retryable bool, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")
	if c.cfg.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", c.cfg.AcceptLanguage)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, false, ports.Geo(ports.GeoTimeout, "provider did not answer within %s", timeout)
		}
		return nil, false, ports.Geo(ports.GeoTimeout, "connection failure: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, false, ports.Geo(ports.GeoMalformedResponse, "read response: %v", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, ports.Geo(ports.GeoRateLimited, "provider throttled the request")
	case resp.StatusCode == http.StatusForbidden:
		return nil, false, ports.Geo(ports.GeoForbidden, "provider rejected the client, check User-Agent and email")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, false, ports.Geo(ports.GeoUpstreamFailure, "provider returned %d: %s", resp.StatusCode, trim160(raw))
	}

	return raw, false, nil
}

func parseCoordinate(lat, lon string) (domain.Coordinate, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return domain.Coordinate{}, ports.Geo(ports.GeoParseFailure, "latitude %q: %v", lat, err)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return domain.Coordinate{}, ports.Geo(ports.GeoParseFailure, "longitude %q: %v", lon, err)
	}
	c := domain.Coordinate{Lat: la, Lng: lo}
	if !c.Valid() {
		return domain.Coordinate{}, ports.Geo(ports.GeoParseFailure, "coordinate %s out of range", c)
	}
	return c, nil
}

// trim160 bounds error detail pulled from provider response bodies.
func trim160(b []byte) string {
	s := string(b)
	if len(s) > 160 {
		return s[:160]
	}
	return s
}
