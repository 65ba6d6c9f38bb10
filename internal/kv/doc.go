// Package kv provides the insertion-ordered key/value container that backs
// every nest. Keys are plain strings; values are whatever the caller stores.
// Iteration order (Keys, Pairs) always follows insertion order so that
// serialised snapshots are deterministic across runs.
package kv
