package session

import "time"

// Backoff computes reconnect delays: Base doubled per retry, capped at
// Cap. Attempts are unbounded; reconnection never gives up on its own,
// only explicit teardown cancels it.
type Backoff struct {
	Base time.Duration
	Cap  time.Duration
}

// DefaultBackoff matches the channel's reconnect policy: 1s base, 30s cap.
func DefaultBackoff() Backoff {
	return Backoff{Base: time.Second, Cap: 30 * time.Second}
}

// Delay returns the wait before reconnect attempt number retry (the
// first scheduled retry is 1). Overflow past the cap clamps to Cap.
func (b Backoff) Delay(retry int) time.Duration {
	if retry < 0 {
		retry = 0
	}
	d := b.Base
	for i := 0; i < retry; i++ {
		d *= 2
		if d >= b.Cap {
			return b.Cap
		}
	}
	if d > b.Cap {
		return b.Cap
	}
	return d
}
