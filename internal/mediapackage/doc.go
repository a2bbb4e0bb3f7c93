// Package mediapackage is the facade callers use to work with one media
// package.
//
// A Package wraps a manifest.Manifest together with the element builder and
// serializer used to read and write it. Element additions and removals are
// forwarded to the manifest and then announced to registered observers,
// synchronously and in registration order. Observer failures (returned errors
// or panics) are logged and never undo the mutation or reach the caller.
//
// LoadFile, SaveFile, and Update read and write manifest documents on disk.
// Writers hold an advisory lock next to the manifest file and replace the
// file atomically.
package mediapackage
