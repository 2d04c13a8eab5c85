// Package pipeline composes the cipher, the group keyring, and the
// realtime channel into the message flow of a chat session.
//
// Outbound: plaintext is sealed under the group key, appended to the
// local state as a pending message with a fresh correlation id, and sent
// as a send_message frame. Inbound: a single dispatcher switches on the
// server event's response_type and applies a pure transition to State;
// transport callbacks never mutate state directly, they feed Apply.
//
// Reconciliation is idempotent: the first echo carrying a pending
// message's correlation id promotes it in place to delivered with the
// server-assigned id; duplicate echoes change nothing and never
// re-append.
package pipeline
