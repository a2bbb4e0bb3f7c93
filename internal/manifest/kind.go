package manifest

import (
	"fmt"
	"strings"
)

// Kind classifies an element.
type Kind int

const (
	KindTrack Kind = iota
	KindCatalog
	KindAttachment
	KindUnclassified
)

// Kinds lists every kind in wire order.
var Kinds = []Kind{KindTrack, KindCatalog, KindAttachment, KindUnclassified}

const kindCount = 4

func (k Kind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindCatalog:
		return "catalog"
	case KindAttachment:
		return "attachment"
	case KindUnclassified:
		return "unclassified"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// idPrefix is the prefix of synthesized element identifiers.
func (k Kind) idPrefix() string {
	if k == KindUnclassified {
		return "unknown"
	}
	return k.String()
}

func (k Kind) valid() bool {
	return k >= KindTrack && k <= KindUnclassified
}

// ParseKind accepts the kind names used on the command line and in
// references ("other" and "unknown" are aliases for unclassified).
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "track", "tracks":
		return KindTrack, nil
	case "catalog", "catalogs":
		return KindCatalog, nil
	case "attachment", "attachments":
		return KindAttachment, nil
	case "unclassified", "other", "unknown", "element":
		return KindUnclassified, nil
	default:
		return 0, fmt.Errorf("unknown element kind %q", value)
	}
}
