// Package store persists room descriptors on disk.
//
// Each room gets one file under the configured home directory, sealed
// with a passphrase-derived key so the group key and RSA private key are
// never written in the clear. All methods are concurrency-safe via
// internal locking.
package store
