package mediapackage

import (
	"fmt"
	"log/slog"
	"sync"

	"mpkg/internal/elementbuilder"
	"mpkg/internal/identifier"
	"mpkg/internal/logging"
	"mpkg/internal/manifest"
	"mpkg/internal/manifestxml"
)

// Package is one media package: its manifest plus the collaborators that
// read and write its elements.
type Package struct {
	manifest   *manifest.Manifest
	builder    manifestxml.ElementBuilder
	serializer manifestxml.ElementSerializer
	idBuilder  identifier.Builder
	legacyIDs  identifier.Builder
	render     manifestxml.RenderContext
	decode     manifestxml.Options
	logger     *slog.Logger

	obsMu        sync.Mutex
	observers    []registration
	nextObserver uint64
}

// Option configures a Package.
type Option func(*Package)

// WithBuilder sets the element builder used by Load and AddFromLocator.
func WithBuilder(b manifestxml.ElementBuilder) Option {
	return func(p *Package) {
		if b != nil {
			p.builder = b
		}
	}
}

// WithSerializer sets the element serializer used by Save.
func WithSerializer(s manifestxml.ElementSerializer) Option {
	return func(p *Package) {
		if s != nil {
			p.serializer = s
		}
	}
}

// WithIdentifierBuilders sets the primary and legacy identifier schemes.
func WithIdentifierBuilders(primary, legacy identifier.Builder) Option {
	return func(p *Package) {
		if primary != nil {
			p.idBuilder = primary
		}
		if legacy != nil {
			p.legacyIDs = legacy
		}
	}
}

// WithRenderContext sets the target Save renders element locators for.
func WithRenderContext(ctx manifestxml.RenderContext) Option {
	return func(p *Package) {
		p.render = ctx
	}
}

// WithIgnoreMissingElements makes Load skip broken catalogs and attachments.
func WithIgnoreMissingElements(ignore bool) Option {
	return func(p *Package) {
		p.decode.IgnoreMissingElements = ignore
	}
}

// WithManifestOptions are applied to manifests created or loaded by the
// package.
func WithManifestOptions(opts ...manifest.Option) Option {
	return func(p *Package) {
		p.decode.ManifestOptions = append(p.decode.ManifestOptions, opts...)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Package) {
		p.logger = logger
	}
}

func newPackage(opts []Option) *Package {
	p := &Package{
		builder:    elementbuilder.New(),
		serializer: elementbuilder.Serializer{},
		idBuilder:  identifier.UUIDBuilder{},
		legacyIDs:  identifier.NewHandleBuilder(identifier.DefaultHandleAuthority),
	}
	for _, opt := range opts {
		opt(p)
	}
	base := p.logger
	p.logger = logging.NewComponentLogger(base, "mediapackage")
	p.decode.Logger = base
	p.decode.IDBuilder = p.idBuilder
	p.decode.LegacyIDBuilder = p.legacyIDs
	return p
}

// New creates an empty package with a freshly minted identifier.
func New(opts ...Option) (*Package, error) {
	p := newPackage(opts)
	id, err := p.idBuilder.New()
	if err != nil {
		return nil, fmt.Errorf("mint package identifier: %w", err)
	}
	p.attach(manifest.New(id, p.manifestOptions()...))
	return p, nil
}

// Wrap builds a package around an existing manifest.
func Wrap(m *manifest.Manifest, opts ...Option) *Package {
	p := newPackage(opts)
	p.attach(m)
	return p
}

func (p *Package) manifestOptions() []manifest.Option {
	return append([]manifest.Option{manifest.WithLogger(p.decode.Logger)}, p.decode.ManifestOptions...)
}

func (p *Package) attach(m *manifest.Manifest) {
	p.manifest = m
	p.logger = p.logger.With(logging.String(logging.FieldPackageID, m.ID().String()))
}

// ID is the package identifier.
func (p *Package) ID() identifier.ID {
	return p.manifest.ID()
}

// Manifest exposes the underlying manifest for queries. Mutate through the
// package so observers are notified.
func (p *Package) Manifest() *manifest.Manifest {
	return p.manifest
}

// Builder is the element builder in use.
func (p *Package) Builder() manifestxml.ElementBuilder {
	return p.builder
}

// Add inserts el and notifies observers.
func (p *Package) Add(el manifest.Element) error {
	if err := p.manifest.Add(el); err != nil {
		return err
	}
	p.logger.Info("element added",
		logging.String(logging.FieldElementID, el.ID()),
		logging.String("kind", el.Kind().String()),
		logging.String("flavor", el.Flavor().String()),
	)
	p.notify(elementAdded, el)
	return nil
}

// AddFromLocator builds an element for uri with the package builder and adds
// it.
func (p *Package) AddFromLocator(uri string, kind manifest.Kind, flavor manifest.Flavor) (manifest.Element, error) {
	el, err := p.builder.ElementFromLocator(uri, kind, flavor)
	if err != nil {
		return nil, fmt.Errorf("build %s from %q: %w", kind, uri, err)
	}
	if err := p.Add(el); err != nil {
		return nil, err
	}
	return el, nil
}

// Remove deletes el when present and notifies observers with the element
// that was stored. Removing an element that is not in the package does
// nothing.
func (p *Package) Remove(el manifest.Element) error {
	_, err := p.remove(el)
	return err
}

func (p *Package) remove(el manifest.Element) (manifest.Element, error) {
	removed, err := p.manifest.Remove(el)
	if err != nil || removed == nil {
		return nil, err
	}
	p.logger.Info("element removed",
		logging.String(logging.FieldElementID, removed.ID()),
		logging.String("kind", removed.Kind().String()),
	)
	p.notify(elementRemoved, removed)
	return removed, nil
}

// RemoveByID removes the element with identifier id, whatever its kind. It
// reports whether an element was found.
func (p *Package) RemoveByID(id string) (manifest.Element, bool, error) {
	el, ok := p.manifest.ElementByReference(manifest.NewReference("", id))
	if !ok {
		return nil, false, nil
	}
	removed, err := p.remove(el)
	if err != nil {
		return nil, true, err
	}
	return removed, removed != nil, nil
}
