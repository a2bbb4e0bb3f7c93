// Package identifier mints and parses media package identifiers.
//
// Two textual schemes are understood. The primary scheme is a canonical UUID
// string produced by UUIDBuilder. The legacy handle scheme ("10.NNNN/local",
// optionally prefixed with "hdl://") is still found in older manifests and is
// parsed by HandleBuilder. ParseWithFallback tries the primary scheme first and
// falls back to handles, which is how manifests are read.
package identifier
