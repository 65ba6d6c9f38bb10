// Package digest maps algorithm names to hash constructors and renders
// hex digests of strings. Names follow the conventions of common scripting
// hosts (md5, sha256, sha3-256, crc32b, xxh64, ...) so cache files written
// under one name stay addressable by that same name.
package digest
