// Package relay provides the HTTP implementation of the domain.RoomClient
// interface used by anonchat.
//
// The room API owns room creation, joining, participant listing, message
// history, and room metadata; the realtime channel itself lives in
// internal/session. This package offers a concrete JSON-over-HTTP client.
//
// Supported operations include:
//   - Creating a room (the caller becomes host).
//   - Joining a room with a published RSA public key, receiving the
//     wrapped group key in return.
//   - Fetching message history, the participant roster, and room info.
//
// All requests accept a context for cancellation and deadlines. Non-2xx
// statuses come back as *APIError carrying the API's field-level
// validation messages.
package relay
