package manifest

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"mpkg/internal/identifier"
	"mpkg/internal/logging"
)

const (
	// DurationUnset marks an unknown duration.
	DurationUnset int64 = -1
	// DefaultMaxReferenceHops bounds derivation chain walks.
	DefaultMaxReferenceHops = 32
)

// Option configures a Manifest.
type Option func(*Manifest)

// WithMaxReferenceHops overrides the derivation walk bound. Values below one
// fall back to the default.
func WithMaxReferenceHops(hops int) Option {
	return func(m *Manifest) {
		if hops > 0 {
			m.maxHops = hops
		}
	}
}

// WithLogger attaches a logger for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manifest) {
		m.logger = logging.NewComponentLogger(logger, "manifest")
	}
}

// Manifest is the authoritative element collection of one media package.
// Elements are kept in insertion order; per-kind counts are derived from the
// collection so they cannot drift.
type Manifest struct {
	mu       sync.Mutex
	id       identifier.ID
	start    time.Time
	duration int64
	elements []Element
	// minted counts insertions per kind for identifier synthesis; it never
	// decreases so identifiers are not reused after removal.
	minted  [kindCount]int
	maxHops int
	logger  *slog.Logger
}

// New returns an empty manifest for the package id.
func New(id identifier.ID, opts ...Option) *Manifest {
	m := &Manifest{
		id:       id,
		duration: DurationUnset,
		maxHops:  DefaultMaxReferenceHops,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manifest) ID() identifier.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

func (m *Manifest) SetID(id identifier.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = id
}

// Start is the recording start; the zero time means unset.
func (m *Manifest) Start() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.start
}

func (m *Manifest) SetStart(start time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.start = start
}

// Duration in milliseconds: DurationUnset, zero for known-empty, or the
// duration of the first track added.
func (m *Manifest) Duration() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

// SetDuration overrides the package duration, as when read from a document.
func (m *Manifest) SetDuration(ms int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = ms
}

// MaxReferenceHops reports the derivation walk bound.
func (m *Manifest) MaxReferenceHops() int {
	return m.maxHops
}

// Add inserts el, synthesizing "<kind>-<n>" when it has no identifier.
//
// Only the first track added to a manifest with unset duration sets it. Later
// tracks are not checked against it.
func (m *Manifest) Add(el Element) error {
	if el == nil {
		return ErrNilElement
	}
	kind := el.Kind()
	if !kind.valid() {
		return fmt.Errorf("add element: unsupported kind %s", kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.Contains(m.elements, el) {
		return fmt.Errorf("%w: element %q already added", ErrDuplicateIdentifier, el.ID())
	}
	id := el.ID()
	if id == "" {
		setter, ok := el.(IdentifierSetter)
		if !ok {
			return fmt.Errorf("%w: %s element of type %T", ErrMissingIdentifier, kind, el)
		}
		id = m.nextIDLocked(kind)
		setter.SetID(id)
	} else if m.indexByIDLocked(id) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateIdentifier, id)
	}

	m.minted[kind]++
	m.elements = append(m.elements, el)
	if d, ok := trackDuration(el); ok && m.duration == DurationUnset {
		m.duration = d
	}
	m.logger.Debug("element added",
		logging.String("element_id", id),
		logging.String("kind", kind.String()),
	)
	return nil
}

// nextIDLocked returns the first free "<prefix>-<n>" at or after the
// post-insertion count for kind.
func (m *Manifest) nextIDLocked(kind Kind) string {
	for n := m.minted[kind] + 1; ; n++ {
		candidate := kind.idPrefix() + "-" + strconv.Itoa(n)
		if m.indexByIDLocked(candidate) < 0 {
			return candidate
		}
	}
}

// Remove deletes the stored element matching el and returns it, or nil when
// nothing matched. Removing the last track resets the duration to zero.
func (m *Manifest) Remove(el Element) (Element, error) {
	if el == nil {
		return nil, ErrNilElement
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOfLocked(el)
	if idx < 0 {
		return nil, nil
	}
	removed := m.elements[idx]
	m.elements = slices.Delete(m.elements, idx, idx+1)
	if removed.Kind() == KindTrack && m.countLocked(KindTrack) == 0 {
		m.duration = 0
	}
	m.logger.Debug("element removed",
		logging.String("element_id", removed.ID()),
		logging.String("kind", removed.Kind().String()),
	)
	return removed, nil
}

// Contains reports membership by identity or by kind and identifier.
func (m *Manifest) Contains(el Element) bool {
	if el == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexOfLocked(el) >= 0
}

func (m *Manifest) indexOfLocked(el Element) int {
	if idx := slices.Index(m.elements, el); idx >= 0 {
		return idx
	}
	id := el.ID()
	if id == "" {
		return -1
	}
	return slices.IndexFunc(m.elements, func(e Element) bool {
		return e.Kind() == el.Kind() && e.ID() == id
	})
}

func (m *Manifest) indexByIDLocked(id string) int {
	return slices.IndexFunc(m.elements, func(e Element) bool { return e.ID() == id })
}

func (m *Manifest) countLocked(kind Kind) int {
	n := 0
	for _, e := range m.elements {
		if e.Kind() == kind {
			n++
		}
	}
	return n
}

// Elements returns a snapshot in insertion order.
func (m *Manifest) Elements() []Element {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.elements)
}

// Size is the number of elements.
func (m *Manifest) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.elements)
}

// Count is the number of elements of kind.
func (m *Manifest) Count(kind Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countLocked(kind)
}

func (m *Manifest) HasKind(kind Kind) bool {
	return m.Count(kind) > 0
}

// ByKind returns the elements of kind in insertion order.
func (m *Manifest) ByKind(kind Kind) []Element {
	return m.filter(func(e Element) bool { return e.Kind() == kind })
}

// ByID finds the element of kind with identifier id. An element with that
// identifier but another kind is not a match.
func (m *Manifest) ByID(kind Kind, id string) (Element, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.elements {
		if e.Kind() == kind && e.ID() == id {
			return e, true
		}
	}
	return nil, false
}

// ByFlavor returns elements of kind whose flavor matches under that kind's
// comparison policy.
func (m *Manifest) ByFlavor(kind Kind, flavor Flavor) []Element {
	return m.filter(func(e Element) bool {
		return e.Kind() == kind && flavorMatches(kind, e.Flavor(), flavor)
	})
}

// ByTag returns elements of kind carrying tag.
func (m *Manifest) ByTag(kind Kind, tag string) []Element {
	return m.filter(func(e Element) bool {
		return e.Kind() == kind && e.HasTag(tag)
	})
}

// Unclassified returns elements that are not tracks, catalogs, or
// attachments. A non-zero flavor filters by exact equality.
func (m *Manifest) Unclassified(flavor Flavor) []Element {
	return m.filter(func(e Element) bool {
		if e.Kind() != KindUnclassified {
			return false
		}
		return flavor.IsZero() || e.Flavor().Equal(flavor)
	})
}

// HasUnclassified reports whether Unclassified(flavor) is non-empty.
func (m *Manifest) HasUnclassified(flavor Flavor) bool {
	return len(m.Unclassified(flavor)) > 0
}

func (m *Manifest) filter(keep func(Element) bool) []Element {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Element
	for _, e := range m.elements {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
