// Package nest implements a lightweight file-backed key-value cache.
//
// A nest is identified by a human-readable name and addressed internally by
// the digest of that name; its contents live in a single <hash>.<ext> file
// under a storage directory. Keys are never stored in plain text: each key is
// digested with the nest's algorithm before it reaches the underlying store.
//
// Instances are created through a Registry, which guarantees that at most one
// canonical in-memory copy exists per hash. Later constructions for the same
// name start from a snapshot of the canonical copy. Mutations are tracked
// (IsChanged/Changed) and only persisted when Write is called.
//
// The package-level functions (New, Exists, Destroy, Call, ...) operate on a
// process-wide default Registry; tests and embedders should build their own
// with NewRegistry.
package nest
