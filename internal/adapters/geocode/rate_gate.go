// Package geocode implements the Nominatim-backed geocoding adapter and the
// request pacing it requires. The public Nominatim instance allows at most
// one request per second per client; everything here exists to honor that.
package geocode

import (
	"context"
	"time"
)

// RateGate serializes outbound provider calls and enforces a minimum
// spacing between consecutive request starts. At most one caller holds the
// gate at a time; the rest queue on Acquire.
type RateGate struct {
	slot     chan struct{}
	interval time.Duration
	last     time.Time
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRateGate builds a gate with the given minimum spacing between
// request starts.
func NewRateGate(interval time.Duration) *RateGate {
	g := &RateGate{
		slot:     make(chan struct{}, 1),
		interval: interval,
		now:      time.Now,
		sleep:    sleepCtx,
	}
	g.slot <- struct{}{}
	return g
}

// Acquire blocks until the caller may start a provider request, or until
// ctx is done. On success the caller must Release exactly once. The spacing
// delay is spent while holding the slot so a cancelled waiter cannot let a
// later caller jump the interval.
func (g *RateGate) Acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-g.slot:
	}

	if wait := g.interval - g.now().Sub(g.last); wait > 0 {
		if err := g.sleep(ctx, wait); err != nil {
			g.slot <- struct{}{}
			return err
		}
	}

	g.last = g.now()
	return nil
}

// Release returns the gate after the provider call completes.
func (g *RateGate) Release() {
	g.slot <- struct{}{}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
