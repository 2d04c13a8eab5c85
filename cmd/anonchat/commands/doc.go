// Package commands defines the anonchat CLI and wires dependencies for subcommands.
//
// Commands
//
//   - create   Create a room and establish its group key as host
//   - join     Run the key exchange against an existing room
//   - chat     Restore a stored session and chat interactively
//   - leave    Forget a room's stored session
//   - rooms    List rooms with a stored session
//
// # Implementation
//
// The root command builds a dependency graph (descriptor store, room API
// client, room service) before any subcommand runs, so handlers can use a
// shared app context. The chat command additionally dials the realtime
// endpoint and runs the message pipeline until the session ends.
package commands
