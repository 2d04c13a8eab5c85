// Package room tracks a chat room's expiry countdown.
//
// The controller decrements the remaining minutes once per minute. With
// at most one minute left it raises a non-dismissible warning that ticks
// down its own 60 seconds; when either countdown reaches zero it invokes
// the expire callback exactly once. Stop cancels both tickers on every
// teardown path so nothing fires against a torn-down session.
package room
