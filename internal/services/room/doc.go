// Package room creates, joins, and leaves chat rooms.
//
// It runs the group key distribution against the room API and persists
// the resulting session descriptor so a later chat session can restore
// the room without re-joining.
package room
