package manifest

import (
	"fmt"
	"strings"

	"github.com/ryanuber/go-glob"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Wildcard matches any flavor type or subtype in pattern comparisons.
const Wildcard = "*"

// Flavor is a "type/subtype" classifier such as "presenter/source".
type Flavor struct {
	Type    string
	Subtype string
}

// NewFlavor trims and lower-cases both parts.
func NewFlavor(typ, subtype string) Flavor {
	return Flavor{
		Type:    normalizePart(typ),
		Subtype: normalizePart(subtype),
	}
}

// A Caser is stateful, so each call gets its own.
func normalizePart(value string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(value))
}

// ParseFlavor parses "type/subtype".
func ParseFlavor(value string) (Flavor, error) {
	typ, subtype, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok || strings.TrimSpace(typ) == "" || strings.TrimSpace(subtype) == "" {
		return Flavor{}, fmt.Errorf("unable to create element flavor from %q", value)
	}
	return NewFlavor(typ, subtype), nil
}

// IsZero reports whether the flavor is unset.
func (f Flavor) IsZero() bool {
	return f.Type == "" && f.Subtype == ""
}

func (f Flavor) String() string {
	if f.IsZero() {
		return ""
	}
	return f.Type + "/" + f.Subtype
}

// Equal is exact comparison of both parts.
func (f Flavor) Equal(other Flavor) bool {
	return f.Type == other.Type && f.Subtype == other.Subtype
}

// Matches compares both parts as glob patterns, either side may carry the
// wildcard.
func (f Flavor) Matches(other Flavor) bool {
	if f.IsZero() || other.IsZero() {
		return false
	}
	return partMatches(f.Type, other.Type) && partMatches(f.Subtype, other.Subtype)
}

func partMatches(a, b string) bool {
	return glob.Glob(a, b) || glob.Glob(b, a)
}

// Compare orders flavors by their string form.
func (f Flavor) Compare(other Flavor) int {
	return strings.Compare(f.String(), other.String())
}

type flavorPolicy int

const (
	flavorExact flavorPolicy = iota
	flavorPattern
)

// Catalog queries match flavors as patterns. Every other kind requires exact
// equality. Callers rely on the difference; do not unify it.
var flavorPolicies = [kindCount]flavorPolicy{
	KindTrack:        flavorExact,
	KindCatalog:      flavorPattern,
	KindAttachment:   flavorExact,
	KindUnclassified: flavorExact,
}

func flavorMatches(kind Kind, candidate, query Flavor) bool {
	if !kind.valid() {
		return false
	}
	switch flavorPolicies[kind] {
	case flavorPattern:
		return candidate.Matches(query)
	default:
		return candidate.Equal(query)
	}
}
