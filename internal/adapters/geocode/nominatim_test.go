package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"geo-dispatch-service/internal/domain"
	"geo-dispatch-service/internal/ports"
)

func testClient(t *testing.T, handler http.Handler) (*NominatimClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewNominatimClient(srv.Client(), NewRateGate(0), ClientConfig{
		BaseURL:        srv.URL,
		Email:          "ops@example.com",
		UserAgent:      "geo-dispatch-service/1.0 (ops@example.com)",
		AcceptLanguage: "vi-VN,vi;q=0.9,en;q=0.8",
		CountryCode:    "vn",
		RetryBudget:    1,
		ForwardBackoff: time.Millisecond,
		ReverseBackoff: time.Millisecond,
	})
	return c, srv
}

func TestForwardSuccess(t *testing.T) {
	var gotQuery, gotUA string
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		if cc := r.URL.Query().Get("countrycodes"); cc != "vn" {
			t.Errorf("countrycodes = %q, want vn", cc)
		}
		if f := r.URL.Query().Get("format"); f != "jsonv2" {
			t.Errorf("format = %q, want jsonv2", f)
		}
		w.Write([]byte(`[{"lat":"10.762622","lon":"106.660172","display_name":"Q5"}]`))
	}))

	got, err := c.Forward(context.Background(), "123 Nguyễn Trãi, Quận 5", true, time.Second)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	want := domain.Coordinate{Lat: 10.762622, Lng: 106.660172}
	if got != want {
		t.Fatalf("Forward = %v, want %v", got, want)
	}
	if gotQuery != "123 Nguyễn Trãi, Quận 5" {
		t.Errorf("q = %q", gotQuery)
	}
	if !strings.Contains(gotUA, "ops@example.com") {
		t.Errorf("User-Agent %q missing contact", gotUA)
	}
}

func TestForwardUnrestrictedOmitsCountry(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("countrycodes") {
			t.Error("countrycodes present on unrestricted query")
		}
		w.Write([]byte(`[{"lat":"1","lon":"2"}]`))
	}))

	if _, err := c.Forward(context.Background(), "somewhere", false, time.Second); err != nil {
		t.Fatalf("Forward: %v", err)
	}
}

func TestForwardRetriesOnceOn429(t *testing.T) {
	var hits int
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[{"lat":"10.5","lon":"106.25"}]`))
	}))

	got, err := c.Forward(context.Background(), "addr", true, time.Second)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if hits != 2 {
		t.Fatalf("hits = %d, want 2", hits)
	}
	if got.Lat != 10.5 || got.Lng != 106.25 {
		t.Fatalf("Forward = %v", got)
	}
}

func TestForwardGivesUpAfterRetryBudget(t *testing.T) {
	var hits int
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := c.Forward(context.Background(), "addr", true, time.Second)
	if kind, ok := ports.KindOf(err); !ok || kind != ports.GeoRateLimited {
		t.Fatalf("err = %v, want rate_limited", err)
	}
	if hits != 2 {
		t.Fatalf("hits = %d, want 2", hits)
	}
}

func TestForwardForbiddenNotRetried(t *testing.T) {
	var hits int
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := c.Forward(context.Background(), "addr", true, time.Second)
	if kind, ok := ports.KindOf(err); !ok || kind != ports.GeoForbidden {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if hits != 1 {
		t.Fatalf("hits = %d, want 1", hits)
	}
}

func TestForwardEmptyResultSet(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	_, err := c.Forward(context.Background(), "nowhere at all", true, time.Second)
	if kind, ok := ports.KindOf(err); !ok || kind != ports.GeoNoResult {
		t.Fatalf("err = %v, want no_result", err)
	}
}

func TestForwardMalformedBody(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>down for maintenance</html>`))
	}))

	_, err := c.Forward(context.Background(), "addr", true, time.Second)
	if kind, ok := ports.KindOf(err); !ok || kind != ports.GeoMalformedResponse {
		t.Fatalf("err = %v, want malformed_response", err)
	}
}

func TestForwardUnparsableCoordinates(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"not-a-number","lon":"106.6"}]`))
	}))

	_, err := c.Forward(context.Background(), "addr", true, time.Second)
	if kind, ok := ports.KindOf(err); !ok || kind != ports.GeoParseFailure {
		t.Fatalf("err = %v, want parse_failure", err)
	}
}

func TestForwardUpstreamErrorTruncatesBody(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(strings.Repeat("x", 500)))
	}))

	_, err := c.Forward(context.Background(), "addr", true, time.Second)
	if kind, ok := ports.KindOf(err); !ok || kind != ports.GeoUpstreamFailure {
		t.Fatalf("err = %v, want upstream_failure", err)
	}
	if len(err.Error()) > 250 {
		t.Fatalf("error message not truncated: %d bytes", len(err.Error()))
	}
}

func TestForwardTimeout(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	_, err := c.Forward(context.Background(), "addr", true, 30*time.Millisecond)
	if kind, ok := ports.KindOf(err); !ok || kind != ports.GeoTimeout {
		t.Fatalf("err = %v, want timeout", err)
	}
}

func TestReverseSuccess(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if z := r.URL.Query().Get("zoom"); z != "18" {
			t.Errorf("zoom = %q, want 18", z)
		}
		if lat := r.URL.Query().Get("lat"); lat != "10.762622" {
			t.Errorf("lat = %q", lat)
		}
		w.Write([]byte(`{"lat":"10.762622","lon":"106.660172","display_name":"123 Nguyễn Trãi, Quận 5, Hồ Chí Minh"}`))
	}))

	got, err := c.Reverse(context.Background(), domain.Coordinate{Lat: 10.762622, Lng: 106.660172}, time.Second)
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if got != "123 Nguyễn Trãi, Quận 5, Hồ Chí Minh" {
		t.Fatalf("Reverse = %q", got)
	}
}

func TestReverseNoAddress(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))

	_, err := c.Reverse(context.Background(), domain.Coordinate{Lat: 0, Lng: 0}, time.Second)
	if kind, ok := ports.KindOf(err); !ok || kind != ports.GeoNoResult {
		t.Fatalf("err = %v, want no_result", err)
	}
}
