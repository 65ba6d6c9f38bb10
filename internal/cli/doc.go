// Package cli wires the nest registry to a cobra command tree. Every command
// loads configuration (file, NEST_* environment, flags), initialises the
// structured logger and resolves caches through the same facade convention
// the library exposes, so `nest get userSettings theme` and
// `nest.Call("userSettings", "theme")` address the same file.
package cli
