// Package manifestxml encodes a manifest.Manifest to the canonical
// mediapackage XML document and decodes such documents back.
//
// The codec owns the document frame: the mediapackage root with its id,
// start, and duration attributes, and the media, metadata, attachments, and
// unclassified groups. Per-element markup is delegated to an
// ElementSerializer on encode and an ElementBuilder on decode, exchanged as
// generic Node trees.
//
// Decoding follows a fixed leniency policy. An unparseable start attribute is
// logged and ignored while an unparseable duration fails the decode. With
// IgnoreMissingElements set, catalogs and attachments that fail to build or
// lack a location are skipped; tracks always fail the decode.
package manifestxml
