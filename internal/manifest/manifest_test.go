package manifest

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"mpkg/internal/identifier"
)

func newTestManifest(t *testing.T, opts ...Option) *Manifest {
	t.Helper()
	id, err := identifier.UUIDBuilder{}.New()
	if err != nil {
		t.Fatalf("mint id: %v", err)
	}
	return New(id, opts...)
}

func mustFlavor(t *testing.T, value string) Flavor {
	t.Helper()
	f, err := ParseFlavor(value)
	if err != nil {
		t.Fatalf("ParseFlavor(%q): %v", value, err)
	}
	return f
}

func trackWithDuration(t *testing.T, uri string, ms int64) *Track {
	t.Helper()
	tr := NewTrack(mustFlavor(t, "presenter/source"), uri)
	tr.SetDuration(ms)
	return tr
}

func TestAddSynthesizesIdentifiersPerKind(t *testing.T) {
	m := newTestManifest(t)
	f := mustFlavor(t, "a/b")
	elements := []Element{
		NewTrack(f, "t1.mp4"),
		NewCatalog(f, "c1.xml"),
		NewTrack(f, "t2.mp4"),
		NewAttachment(f, "a1.png"),
		NewUnclassified(f, "x1.bin"),
	}
	for _, el := range elements {
		if err := m.Add(el); err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
	}
	want := []string{"track-1", "catalog-1", "track-2", "attachment-1", "unknown-1"}
	for i, el := range elements {
		if el.ID() != want[i] {
			t.Fatalf("element %d: got id %q want %q", i, el.ID(), want[i])
		}
	}
}

func TestAddDoesNotReuseIdentifiersAfterRemoval(t *testing.T) {
	m := newTestManifest(t)
	f := mustFlavor(t, "a/b")
	first := NewCatalog(f, "c1.xml")
	if err := m.Add(first); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := m.Remove(first); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	second := NewCatalog(f, "c2.xml")
	if err := m.Add(second); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if second.ID() != "catalog-2" {
		t.Fatalf("expected catalog-2, got %q", second.ID())
	}
}

func TestAddSkipsSynthesizedIdentifierAlreadyTaken(t *testing.T) {
	m := newTestManifest(t)
	f := mustFlavor(t, "a/b")
	explicit := NewTrack(f, "t0.mp4")
	explicit.SetID("track-2")
	if err := m.Add(explicit); err != nil {
		t.Fatalf("Add: %v", err)
	}
	next := NewTrack(f, "t1.mp4")
	if err := m.Add(next); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if next.ID() != "track-3" {
		t.Fatalf("expected track-3, got %q", next.ID())
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	m := newTestManifest(t)
	f := mustFlavor(t, "a/b")
	a := NewAttachment(f, "a.png")
	a.SetID("shared")
	if err := m.Add(a); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := m.Add(a); !errors.Is(err, ErrDuplicateIdentifier) {
		t.Fatalf("expected ErrDuplicateIdentifier for same element, got %v", err)
	}
	b := NewCatalog(f, "b.xml")
	b.SetID("shared")
	if err := m.Add(b); !errors.Is(err, ErrDuplicateIdentifier) {
		t.Fatalf("expected ErrDuplicateIdentifier across kinds, got %v", err)
	}
	if m.Size() != 1 {
		t.Fatalf("expected one element, got %d", m.Size())
	}
}

type foreignElement struct {
	id string
}

func (f foreignElement) Kind() Kind            { return KindAttachment }
func (f foreignElement) ID() string            { return f.id }
func (f foreignElement) Flavor() Flavor        { return Flavor{} }
func (f foreignElement) Tags() []string        { return nil }
func (f foreignElement) HasTag(string) bool    { return false }
func (f foreignElement) Reference() *Reference { return nil }
func (f foreignElement) URI() string           { return "foreign" }
func (f foreignElement) MimeType() string      { return "" }
func (f foreignElement) Checksum() Checksum    { return Checksum{} }
func (f foreignElement) Description() string   { return "" }
func (f foreignElement) Size() int64           { return -1 }

func TestAddForeignElementWithoutIdentifier(t *testing.T) {
	m := newTestManifest(t)
	if err := m.Add(foreignElement{}); !errors.Is(err, ErrMissingIdentifier) {
		t.Fatalf("expected ErrMissingIdentifier, got %v", err)
	}
	if err := m.Add(foreignElement{id: "given"}); err != nil {
		t.Fatalf("foreign element with id should be accepted: %v", err)
	}
	if m.Count(KindAttachment) != 1 {
		t.Fatalf("expected one attachment, got %d", m.Count(KindAttachment))
	}
}

func TestAddAndRemoveNil(t *testing.T) {
	m := newTestManifest(t)
	if err := m.Add(nil); !errors.Is(err, ErrNilElement) {
		t.Fatalf("expected ErrNilElement from Add, got %v", err)
	}
	if _, err := m.Remove(nil); !errors.Is(err, ErrNilElement) {
		t.Fatalf("expected ErrNilElement from Remove, got %v", err)
	}
}

func TestDurationFirstTrackWinsAndResets(t *testing.T) {
	m := newTestManifest(t)
	if m.Duration() != DurationUnset {
		t.Fatalf("expected unset duration, got %d", m.Duration())
	}

	only := trackWithDuration(t, "only.mp4", 5000)
	if err := m.Add(only); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if m.Duration() != 5000 {
		t.Fatalf("expected 5000, got %d", m.Duration())
	}
	if _, err := m.Remove(only); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if m.Duration() != 0 {
		t.Fatalf("expected duration reset to 0, got %d", m.Duration())
	}

	m2 := newTestManifest(t)
	if err := m2.Add(trackWithDuration(t, "first.mp4", 1000)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := m2.Add(trackWithDuration(t, "second.mp4", 9999)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if m2.Duration() != 1000 {
		t.Fatalf("expected first track to win with 1000, got %d", m2.Duration())
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	m := newTestManifest(t)
	f := mustFlavor(t, "a/b")
	if err := m.Add(NewCatalog(f, "c.xml")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	removed, err := m.Remove(NewCatalog(f, "other.xml"))
	if err != nil {
		t.Fatalf("Remove of absent element returned error: %v", err)
	}
	if removed != nil {
		t.Fatalf("expected nothing removed, got %s", removed.ID())
	}
	if m.Size() != 1 {
		t.Fatalf("expected size 1, got %d", m.Size())
	}
}

func TestCountsStayConsistent(t *testing.T) {
	m := newTestManifest(t)
	f := mustFlavor(t, "a/b")
	var added []Element
	for i := 0; i < 12; i++ {
		el := NewElement(Kinds[i%len(Kinds)], f, fmt.Sprintf("file-%d", i))
		if err := m.Add(el); err != nil {
			t.Fatalf("Add: %v", err)
		}
		added = append(added, el)
	}
	for i, el := range added {
		if i%3 == 0 {
			if _, err := m.Remove(el); err != nil {
				t.Fatalf("Remove: %v", err)
			}
		}
	}
	total := 0
	for _, k := range Kinds {
		total += m.Count(k)
	}
	if total != m.Size() {
		t.Fatalf("counts %d do not add up to size %d", total, m.Size())
	}
	seen := map[string]bool{}
	for _, el := range m.Elements() {
		if seen[el.ID()] {
			t.Fatalf("duplicate identifier %q", el.ID())
		}
		seen[el.ID()] = true
	}
}

func TestByIDRequiresMatchingKind(t *testing.T) {
	m := newTestManifest(t)
	c := NewCatalog(mustFlavor(t, "a/b"), "c.xml")
	if err := m.Add(c); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got, ok := m.ByID(KindCatalog, c.ID()); !ok || got != c {
		t.Fatalf("expected catalog lookup to succeed")
	}
	if _, ok := m.ByID(KindTrack, c.ID()); ok {
		t.Fatalf("expected lookup with another kind to be absent")
	}
}

func TestByFlavorPolicies(t *testing.T) {
	m := newTestManifest(t)
	tr := NewTrack(mustFlavor(t, "presenter/source"), "t.mp4")
	cat := NewCatalog(mustFlavor(t, "dublincore/episode"), "c.xml")
	att := NewAttachment(mustFlavor(t, "slides/preview"), "a.png")
	for _, el := range []Element{tr, cat, att} {
		if err := m.Add(el); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	tests := []struct {
		name   string
		kind   Kind
		flavor string
		want   int
	}{
		{"track exact", KindTrack, "presenter/source", 1},
		{"track wildcard is literal", KindTrack, "presenter/*", 0},
		{"catalog exact", KindCatalog, "dublincore/episode", 1},
		{"catalog wildcard subtype", KindCatalog, "dublincore/*", 1},
		{"catalog wildcard type", KindCatalog, "*/episode", 1},
		{"catalog mismatch", KindCatalog, "mpeg-7/*", 0},
		{"attachment wildcard is literal", KindAttachment, "*/*", 0},
		{"flavor normalised", KindAttachment, " Slides/Preview ", 1},
	}
	for _, tt := range tests {
		got := m.ByFlavor(tt.kind, mustFlavor(t, tt.flavor))
		if len(got) != tt.want {
			t.Errorf("%s: got %d elements, want %d", tt.name, len(got), tt.want)
		}
	}
}

func TestByTagAndUnclassified(t *testing.T) {
	m := newTestManifest(t)
	f := mustFlavor(t, "a/b")
	tr := NewTrack(f, "t.mp4")
	tr.AddTag("publish")
	tr.AddTag("publish")
	other := NewUnclassified(mustFlavor(t, "x/y"), "x.bin")
	other.AddTag("publish")
	for _, el := range []Element{tr, NewTrack(f, "u.mp4"), other} {
		if err := m.Add(el); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if got := m.ByTag(KindTrack, "publish"); len(got) != 1 || got[0] != tr {
		t.Fatalf("unexpected tag matches: %v", got)
	}
	if len(tr.Tags()) != 1 {
		t.Fatalf("expected tag set semantics, got %v", tr.Tags())
	}
	if got := m.Unclassified(Flavor{}); len(got) != 1 {
		t.Fatalf("expected one unclassified element, got %d", len(got))
	}
	if m.HasUnclassified(f) {
		t.Fatalf("expected no unclassified element with flavor %s", f)
	}
	if !m.HasUnclassified(mustFlavor(t, "x/y")) {
		t.Fatalf("expected unclassified element with flavor x/y")
	}
	if !m.HasKind(KindTrack) || m.HasKind(KindCatalog) {
		t.Fatalf("unexpected HasKind results")
	}
}

func TestConcurrentAdds(t *testing.T) {
	m := newTestManifest(t)
	f := mustFlavor(t, "a/b")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := m.Add(NewTrack(f, fmt.Sprintf("t%d.mp4", i))); err != nil {
				t.Errorf("Add: %v", err)
			}
			_ = m.ByFlavor(KindTrack, f)
		}(i)
	}
	wg.Wait()
	if m.Count(KindTrack) != 50 {
		t.Fatalf("expected 50 tracks, got %d", m.Count(KindTrack))
	}
	seen := map[string]bool{}
	for _, el := range m.Elements() {
		if seen[el.ID()] {
			t.Fatalf("duplicate identifier %q", el.ID())
		}
		seen[el.ID()] = true
	}
}

func TestRemoveReturnsStoredElement(t *testing.T) {
	m := newTestManifest(t)
	f := mustFlavor(t, "a/b")
	stored := NewCatalog(f, "stored.xml")
	if err := m.Add(stored); err != nil {
		t.Fatalf("Add: %v", err)
	}
	lookalike := NewCatalog(f, "lookalike.xml")
	lookalike.SetID(stored.ID())

	removed, err := m.Remove(lookalike)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed != Element(stored) {
		t.Fatalf("expected the stored element back, got %v", removed)
	}
	if again, _ := m.Remove(lookalike); again != nil {
		t.Fatalf("second Remove should find nothing, got %s", again.ID())
	}
}
