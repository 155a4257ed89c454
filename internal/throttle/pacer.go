// Package throttle spaces out calls to external services.
package throttle

import (
	"context"
	"time"
)

// Pacer enforces a fixed minimum gap between successive outbound calls. The
// first call never waits. It is not safe for concurrent use; the pipeline is
// sequential.
type Pacer struct {
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// NewPacer returns a pacer with the given gap; zero disables pausing.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval, now: time.Now}
}

// Wait blocks until the gap since the previous call has elapsed or ctx ends.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	if !p.last.IsZero() && p.interval > 0 {
		if remaining := p.interval - p.now().Sub(p.last); remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	p.last = p.now()
	return nil
}
