// Package config loads, normalizes, and validates mpkg configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the MPKG_WORKSPACE_DIR environment fallback. The
// Config type gathers the workspace and log locations, logging format, and the
// manifest codec policy (lenient decoding, reference hop bound, checksum
// algorithm, handle authority) in one place.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
