// Package manifest holds the in-memory record of every element belonging to
// one media package.
//
// # Key Types
//
// Element: one asset (Track, Catalog, Attachment, or Unclassified). Kind is
// derived from the concrete type. Elements carry a flavor, a tag set, opaque
// locator/mimetype/checksum fields, and an optional Reference to another
// element.
//
// Manifest: the mutable collection for one package. It assigns element
// identifiers ("track-1", "catalog-2", ...), enforces identifier uniqueness,
// tracks the package duration from the first track added, and answers
// queries by identifier, flavor, tag, and reference. All operations run under
// a per-manifest mutex.
//
// Reference: a (type, identifier, properties) pointer. References are
// followed through derivation chains by Manifest.IsReachable with a cycle
// guard and a hop limit.
//
// Elements never point back at their manifest; the manifest addresses them
// by identifier.
package manifest
