package manifestxml

import "mpkg/internal/manifest"

// Attribute leniency. A bad start is logged and dropped; a bad duration is
// fatal. Callers depend on both behaviors.
const (
	startParseLenient    = true
	durationParseLenient = false
)

// elementLeniency reports which kinds may be skipped under
// IgnoreMissingElements, both for builder failures and for missing
// locations. Tracks are never skipped.
var elementLeniency = map[manifest.Kind]bool{
	manifest.KindTrack:      false,
	manifest.KindCatalog:    true,
	manifest.KindAttachment: true,
}

// decodedKinds are read from documents in this order. Unclassified elements
// only exist in memory.
var decodedKinds = []manifest.Kind{
	manifest.KindTrack,
	manifest.KindCatalog,
	manifest.KindAttachment,
}

func skippable(kind manifest.Kind, ignoreMissing bool) bool {
	return ignoreMissing && elementLeniency[kind]
}
