package manifest

import (
	"slices"
	"strings"
)

// Element is one asset inside a manifest.
type Element interface {
	Kind() Kind
	ID() string
	Flavor() Flavor
	Tags() []string
	HasTag(tag string) bool
	// Reference returns the element this one refers to, or nil.
	Reference() *Reference
	URI() string
	MimeType() string
	Checksum() Checksum
	Description() string
	Size() int64
}

// IdentifierSetter is implemented by elements that accept a synthesized
// identifier on insertion. Elements without it must arrive with an ID.
type IdentifierSetter interface {
	SetID(id string)
}

// Base carries the fields shared by every element kind. Embed it in concrete
// element types; it does not satisfy Element on its own.
type Base struct {
	id          string
	flavor      Flavor
	tags        []string
	reference   *Reference
	uri         string
	mimeType    string
	checksum    Checksum
	description string
	size        int64
}

func (b *Base) ID() string          { return b.id }
func (b *Base) SetID(id string)     { b.id = strings.TrimSpace(id) }
func (b *Base) Flavor() Flavor      { return b.flavor }
func (b *Base) SetFlavor(f Flavor)  { b.flavor = f }
func (b *Base) URI() string         { return b.uri }
func (b *Base) SetURI(uri string)   { b.uri = strings.TrimSpace(uri) }
func (b *Base) MimeType() string    { return b.mimeType }
func (b *Base) Checksum() Checksum  { return b.checksum }
func (b *Base) Description() string { return b.description }
func (b *Base) Size() int64         { return b.size }

func (b *Base) SetMimeType(mimeType string) { b.mimeType = strings.TrimSpace(mimeType) }

func (b *Base) SetChecksum(c Checksum) { b.checksum = c }

func (b *Base) SetDescription(description string) { b.description = strings.TrimSpace(description) }

// SetSize records the content length in bytes; negative means unknown.
func (b *Base) SetSize(size int64) {
	if size < 0 {
		size = -1
	}
	b.size = size
}

// Tags returns a sorted copy of the tag set.
func (b *Base) Tags() []string {
	out := slices.Clone(b.tags)
	slices.Sort(out)
	return out
}

func (b *Base) HasTag(tag string) bool {
	return slices.Contains(b.tags, strings.TrimSpace(tag))
}

// AddTag adds tag to the set; blank and repeated tags are ignored.
func (b *Base) AddTag(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" || b.HasTag(tag) {
		return
	}
	b.tags = append(b.tags, tag)
}

func (b *Base) RemoveTag(tag string) {
	tag = strings.TrimSpace(tag)
	b.tags = slices.DeleteFunc(b.tags, func(t string) bool { return t == tag })
}

func (b *Base) ClearTags() { b.tags = nil }

func (b *Base) Reference() *Reference {
	if b.reference == nil {
		return nil
	}
	ref := b.reference.clone()
	return &ref
}

// ReferTo points this element at ref.
func (b *Base) ReferTo(ref Reference) {
	ref = ref.clone()
	b.reference = &ref
}

func (b *Base) ClearReference() { b.reference = nil }

// Track is an audio/video media element.
type Track struct {
	Base
	duration int64
}

// NewTrack returns a track with unknown duration.
func NewTrack(flavor Flavor, uri string) *Track {
	t := &Track{duration: DurationUnset}
	t.init(flavor, uri)
	return t
}

func (*Track) Kind() Kind { return KindTrack }

// Duration is the track length in milliseconds, DurationUnset when unknown.
func (t *Track) Duration() int64 { return t.duration }

func (t *Track) SetDuration(ms int64) { t.duration = ms }

// Catalog is a metadata document such as a Dublin Core record.
type Catalog struct{ Base }

func NewCatalog(flavor Flavor, uri string) *Catalog {
	c := &Catalog{}
	c.init(flavor, uri)
	return c
}

func (*Catalog) Kind() Kind { return KindCatalog }

// Attachment is an auxiliary file such as a slide image.
type Attachment struct{ Base }

func NewAttachment(flavor Flavor, uri string) *Attachment {
	a := &Attachment{}
	a.init(flavor, uri)
	return a
}

func (*Attachment) Kind() Kind { return KindAttachment }

// Unclassified is an element of no known kind.
type Unclassified struct{ Base }

func NewUnclassified(flavor Flavor, uri string) *Unclassified {
	u := &Unclassified{}
	u.init(flavor, uri)
	return u
}

func (*Unclassified) Kind() Kind { return KindUnclassified }

// NewElement builds an empty element of the given kind.
func NewElement(kind Kind, flavor Flavor, uri string) Element {
	switch kind {
	case KindTrack:
		return NewTrack(flavor, uri)
	case KindCatalog:
		return NewCatalog(flavor, uri)
	case KindAttachment:
		return NewAttachment(flavor, uri)
	default:
		return NewUnclassified(flavor, uri)
	}
}

func (b *Base) init(flavor Flavor, uri string) {
	b.flavor = flavor
	b.SetURI(uri)
	b.size = -1
}

// Compare is the natural order of elements within one kind: by locator,
// then by identifier.
func Compare(a, b Element) int {
	if c := strings.Compare(a.URI(), b.URI()); c != 0 {
		return c
	}
	return strings.Compare(a.ID(), b.ID())
}

func trackDuration(el Element) (int64, bool) {
	t, ok := el.(interface{ Duration() int64 })
	if !ok || el.Kind() != KindTrack {
		return 0, false
	}
	return t.Duration(), true
}
