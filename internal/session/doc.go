// Package session owns the realtime channel lifecycle for a chat room.
//
// Manager is a small state machine:
//
//	Idle -> Connecting -> Open -> (drop) -> Reconnecting -> Connecting -> ...
//
// with Closed reachable only through an explicit Close. Reconnection uses
// the Backoff policy object (capped exponential delay, unbounded
// attempts) so the retry schedule is testable without a socket. Sends are
// guarded: while the channel is anything but Open they fail with
// domain.ErrNotOpen instead of queueing.
package session
