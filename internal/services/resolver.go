// Package services implements the application flows: address resolution
// with caching and fallback, route sequencing, and plan assembly.
package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"geo-dispatch-service/internal/address"
	"geo-dispatch-service/internal/domain"
	"geo-dispatch-service/internal/ports"
)

// ResolverConfig carries the resolution tunables. Zero values are not
// usable, load it from config.
type ResolverConfig struct {
	MaxCandidates     int
	PerRequestTimeout time.Duration
	OriginTimeout     time.Duration
	DefaultCity       string
	Country           string
}

// Resolver turns free-text addresses into coordinates through a cache tier,
// a durable store tier, and finally the geocoding provider with candidate
// fallback. Safe for concurrent use.
type Resolver struct {
	geocoder ports.Geocoder
	cache    ports.GeocodeCache
	store    ports.GeocodeStore
	cfg      ResolverConfig

	revMu    sync.Mutex
	revCache map[string]string
}

func NewResolver(geocoder ports.Geocoder, cache ports.GeocodeCache, store ports.GeocodeStore, cfg ResolverConfig) *Resolver {
	return &Resolver{
		geocoder: geocoder,
		cache:    cache,
		store:    store,
		cfg:      cfg,
		revCache: make(map[string]string),
	}
}

// ResolveAddress resolves a delivery stop address.
func (r *Resolver) ResolveAddress(ctx context.Context, text string) (domain.Coordinate, error) {
	return r.resolveKeyed(ctx, "addr|", text, r.cfg.PerRequestTimeout)
}

// ResolveOrigin resolves a route origin. Origins accept a raw "lat,lng"
// pin and get a longer provider timeout since the whole plan depends on
// them.
func (r *Resolver) ResolveOrigin(ctx context.Context, text string) (domain.Coordinate, error) {
	return r.resolveKeyed(ctx, "origin|", text, r.cfg.OriginTimeout)
}

// ResolveHub resolves a hub's address, keyed by hub id so hub edits do not
// collide with plain address entries.
func (r *Resolver) ResolveHub(ctx context.Context, hub domain.Hub) (domain.Coordinate, error) {
	if hub.Coord != nil && hub.Coord.Valid() {
		return *hub.Coord, nil
	}
	return r.resolveKeyed(ctx, "hub|"+hub.ID+"|", hub.Address, r.cfg.OriginTimeout)
}

// Candidates exposes the fallback query variants for an address, used by
// the diagnostic endpoint.
func (r *Resolver) Candidates(text string) []string {
	return address.Candidates(text, r.cfg.DefaultCity, r.cfg.Country)
}

func (r *Resolver) resolveKeyed(ctx context.Context, prefix, text string, timeout time.Duration) (domain.Coordinate, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Coordinate{}, ports.Geo(ports.GeoEmptyInput, "empty address")
	}

	// A raw "lat,lng" pin needs no provider at all.
	if c, ok := domain.ParseLatLng(text); ok {
		return c, nil
	}

	key := prefix + address.NormalizeKey(text)

	if c, ok := r.cache.Get(ctx, key); ok {
		return c, nil
	}
	if r.cache.RecentlyFailed(ctx, key) {
		return domain.Coordinate{}, ports.Geo(ports.GeoNoResult, "recently failed to resolve %q, retry later", text)
	}

	if r.store != nil {
		stored, err := r.store.GetMany(ctx, []string{key})
		if err != nil {
			log.Printf("level=warn msg=\"geocode store lookup failed\" key=%s err=%v", key, err)
		} else if c, ok := stored[key]; ok {
			r.cache.Put(ctx, key, c)
			return c, nil
		}
	}

	if address.TooVague(text) {
		r.cache.MarkFailed(ctx, key)
		return domain.Coordinate{}, ports.Geo(ports.GeoTooVague, "address %q is too vague to geocode", text)
	}

	c, err := r.resolveViaProvider(ctx, text, timeout)
	if err != nil {
		// A cancelled request says nothing about the address itself.
		if ctx.Err() != nil {
			return domain.Coordinate{}, err
		}
		if kind, ok := ports.KindOf(err); !ok || kind != ports.GeoForbidden {
			r.cache.MarkFailed(ctx, key)
		}
		return domain.Coordinate{}, err
	}

	r.cache.Put(ctx, key, c)
	if r.store != nil {
		if err := r.store.PutMany(ctx, map[string]domain.Coordinate{key: c}); err != nil {
			log.Printf("level=warn msg=\"geocode store write failed\" key=%s err=%v", key, err)
		}
	}
	return c, nil
}

// resolveViaProvider walks the candidate variants, trying each
// country-restricted first and unrestricted second, stopping at the first
// hit. At most MaxCandidates variants are consumed.
func (r *Resolver) resolveViaProvider(ctx context.Context, text string, timeout time.Duration) (domain.Coordinate, error) {
	candidates := r.Candidates(text)
	if len(candidates) == 0 {
		return domain.Coordinate{}, ports.Geo(ports.GeoEmptyInput, "no usable query for %q", text)
	}
	if len(candidates) > r.cfg.MaxCandidates {
		candidates = candidates[:r.cfg.MaxCandidates]
	}

	var lastErr error
	for _, q := range candidates {
		for _, restricted := range []bool{true, false} {
			if err := ctx.Err(); err != nil {
				return domain.Coordinate{}, fmt.Errorf("geocode aborted: %w", err)
			}

			c, err := r.geocoder.Forward(ctx, q, restricted, timeout)
			if err == nil {
				return c, nil
			}

			if kind, ok := ports.KindOf(err); ok && kind == ports.GeoForbidden {
				return domain.Coordinate{}, err
			}
			lastErr = err
		}
	}

	if lastErr == nil {
		lastErr = ports.Geo(ports.GeoNoResult, "no candidate matched for %q", text)
	}
	return domain.Coordinate{}, lastErr
}

// ReverseAddress resolves a coordinate back to a display address. Results
// are cached by coordinate rounded to six decimals, about 11cm, precise
// enough to identify a doorstep.
func (r *Resolver) ReverseAddress(ctx context.Context, point domain.Coordinate) (string, error) {
	if !point.Valid() {
		return "", ports.Geo(ports.GeoEmptyInput, "coordinate out of range")
	}

	key := fmt.Sprintf("rev|%.6f|%.6f", point.Lat, point.Lng)

	r.revMu.Lock()
	if name, ok := r.revCache[key]; ok {
		r.revMu.Unlock()
		return name, nil
	}
	r.revMu.Unlock()

	name, err := r.geocoder.Reverse(ctx, point, r.cfg.PerRequestTimeout)
	if err != nil {
		return "", err
	}

	r.revMu.Lock()
	r.revCache[key] = name
	r.revMu.Unlock()
	return name, nil
}

// IsNotFound reports whether err means the address could not be located, as
// opposed to an infrastructure failure.
func IsNotFound(err error) bool {
	kind, ok := ports.KindOf(err)
	if !ok {
		return false
	}
	switch kind {
	case ports.GeoNoResult, ports.GeoTooVague, ports.GeoEmptyInput:
		return true
	}
	return false
}
