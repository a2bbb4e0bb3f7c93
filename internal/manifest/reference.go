package manifest

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	// ReferenceTypePackage is the reference type pointing at a media package.
	ReferenceTypePackage = "mediapackage"
	// ReferenceSelf is the identifier of the enclosing package.
	ReferenceSelf = "self"
)

// Reference points at another element (or an external entity) by type and
// identifier, optionally parameterized by properties.
type Reference struct {
	Type       string
	Identifier string
	Properties map[string]string
}

// NewReference builds a reference without properties.
func NewReference(typ, identifier string) Reference {
	return Reference{Type: typ, Identifier: identifier}
}

// SelfReference points at the enclosing package.
func SelfReference() Reference {
	return NewReference(ReferenceTypePackage, ReferenceSelf)
}

// ReferenceTo builds a reference to el using its kind name as type.
func ReferenceTo(el Element) Reference {
	return NewReference(el.Kind().String(), el.ID())
}

// WithProperty returns a copy of r carrying key=value.
func (r Reference) WithProperty(key, value string) Reference {
	out := r.clone()
	if out.Properties == nil {
		out.Properties = make(map[string]string, 1)
	}
	out.Properties[key] = value
	return out
}

// Property returns the named property.
func (r Reference) Property(key string) (string, bool) {
	value, ok := r.Properties[key]
	return value, ok
}

func (r Reference) clone() Reference {
	r.Properties = maps.Clone(r.Properties)
	return r
}

// key identifies the logical target regardless of properties.
func (r Reference) key() string {
	return r.Type + ":" + r.Identifier
}

// String renders "self" for the package self reference and
// "type:identifier[;key=value...]" otherwise, properties sorted by key.
func (r Reference) String() string {
	var b strings.Builder
	if r.Type == ReferenceTypePackage && r.Identifier == ReferenceSelf {
		b.WriteString(ReferenceSelf)
	} else {
		b.WriteString(r.key())
	}
	for _, k := range slices.Sorted(maps.Keys(r.Properties)) {
		b.WriteByte(';')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(r.Properties[k])
	}
	return b.String()
}

// ParseReference is the inverse of Reference.String.
func ParseReference(value string) (Reference, error) {
	parts := strings.Split(strings.TrimSpace(value), ";")
	head := strings.TrimSpace(parts[0])

	var ref Reference
	if head == ReferenceSelf {
		ref = SelfReference()
	} else {
		typ, identifier, ok := strings.Cut(head, ":")
		typ, identifier = strings.TrimSpace(typ), strings.TrimSpace(identifier)
		if !ok || typ == "" || identifier == "" {
			return Reference{}, fmt.Errorf("reference %q is malformed", value)
		}
		ref = NewReference(typ, identifier)
	}
	for _, part := range parts[1:] {
		if strings.TrimSpace(part) == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return Reference{}, fmt.Errorf("reference %q has malformed property %q", value, part)
		}
		ref = ref.WithProperty(k, strings.TrimSpace(v))
	}
	return ref, nil
}

// MatchesStrict reports whether type, identifier, and properties are all
// equal. A nil reference never matches.
func MatchesStrict(a, b *Reference) bool {
	if !MatchesTypeIdentifier(a, b) {
		return false
	}
	return maps.Equal(a.Properties, b.Properties)
}

// MatchesTypeIdentifier compares type and identifier, ignoring properties.
func MatchesTypeIdentifier(a, b *Reference) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Type == b.Type && a.Identifier == b.Identifier
}
