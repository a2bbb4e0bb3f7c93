package manifestxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"mpkg/internal/identifier"
	"mpkg/internal/logging"
	"mpkg/internal/manifest"
)

// Options controls Decode.
type Options struct {
	// IgnoreMissingElements skips catalogs and attachments that fail to
	// build or have no location. Tracks always fail the decode.
	IgnoreMissingElements bool
	// IDBuilder parses and mints package identifiers; UUIDs when nil.
	IDBuilder identifier.Builder
	// LegacyIDBuilder parses identifiers the primary scheme rejects; the
	// default handle authority when nil.
	LegacyIDBuilder identifier.Builder
	// ManifestOptions are applied to the decoded manifest.
	ManifestOptions []manifest.Option
	Logger          *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.IDBuilder == nil {
		o.IDBuilder = identifier.UUIDBuilder{}
	}
	if o.LegacyIDBuilder == nil {
		o.LegacyIDBuilder = identifier.NewHandleBuilder(identifier.DefaultHandleAuthority)
	}
	o.Logger = logging.NewComponentLogger(o.Logger, "manifestxml")
	return o
}

// Read parses a mediapackage document from r.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", manifest.ErrMalformedManifest, err)
	}
	return &doc, nil
}

// Decode parses a mediapackage document from r and builds its manifest.
func Decode(r io.Reader, b ElementBuilder, opts Options) (*manifest.Manifest, error) {
	doc, err := Read(r)
	if err != nil {
		return nil, err
	}
	return DecodeDocument(doc, b, opts)
}

// Unmarshal is Decode over a byte slice.
func Unmarshal(data []byte, b ElementBuilder, opts Options) (*manifest.Manifest, error) {
	return Decode(bytes.NewReader(data), b, opts)
}

// DecodeDocument builds the manifest described by doc. It returns the first
// failure, wrapped in *ElementError when a single element node caused it.
func DecodeDocument(doc *Document, b ElementBuilder, opts Options) (*manifest.Manifest, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", manifest.ErrMalformedManifest)
	}
	if b == nil {
		return nil, errors.New("decode: element builder is nil")
	}
	opts = opts.withDefaults()
	logger := opts.Logger

	id, err := decodeID(doc.ID, opts)
	if err != nil {
		return nil, err
	}
	logger = logger.With(logging.String(logging.FieldPackageID, id.String()))

	manifestOpts := append([]manifest.Option{manifest.WithLogger(opts.Logger)}, opts.ManifestOptions...)
	m := manifest.New(id, manifestOpts...)

	if value := strings.TrimSpace(doc.Start); value != "" {
		start, err := ParseTime(value)
		switch {
		case err == nil:
			m.SetStart(start)
		case startParseLenient:
			logging.WarnWithContext(logger, "ignoring unparseable start", "manifest_start_invalid",
				logging.String("start", value),
				logging.Error(err),
				logging.String(logging.FieldImpact, "package start time left unset"),
				logging.String(logging.FieldErrorHint, "write start as UTC date-time, e.g. 2024-01-02T15:04:05Z"),
			)
		default:
			return nil, fmt.Errorf("%w: start %q: %v", manifest.ErrMalformedManifest, value, err)
		}
	}

	if value := strings.TrimSpace(doc.Duration); value != "" {
		duration, err := strconv.ParseInt(value, 10, 64)
		switch {
		case err == nil:
			m.SetDuration(duration)
		case durationParseLenient:
			logging.WarnWithContext(logger, "ignoring unparseable duration", "manifest_duration_invalid",
				logging.String("duration", value),
				logging.Error(err),
			)
		default:
			return nil, fmt.Errorf("%w: duration %q: %v", manifest.ErrMalformedManifest, value, err)
		}
	}

	for _, kind := range decodedKinds {
		if err := decodeGroup(m, doc, kind, b, opts.IgnoreMissingElements, logger); err != nil {
			return nil, err
		}
	}
	if n := len(doc.Nodes(manifest.KindUnclassified)); n > 0 {
		logger.Debug("unclassified group not decoded", logging.Int("nodes", n))
	}
	return m, nil
}

func decodeID(value string, opts Options) (identifier.ID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		id, err := opts.IDBuilder.New()
		if err != nil {
			return identifier.ID{}, fmt.Errorf("mint package identifier: %w", err)
		}
		return id, nil
	}
	id, err := identifier.ParseWithFallback(value, opts.IDBuilder, opts.LegacyIDBuilder)
	if err != nil {
		return identifier.ID{}, fmt.Errorf("%w: id: %v", manifest.ErrMalformedManifest, err)
	}
	return id, nil
}

func decodeGroup(m *manifest.Manifest, doc *Document, kind manifest.Kind, b ElementBuilder, ignoreMissing bool, logger *slog.Logger) error {
	name := ElementName(kind)
	index := 0
	for _, node := range doc.Nodes(kind) {
		if node.Name() != name {
			continue
		}
		nodeID, _ := node.Attr("id")
		elementLogger := logger.With(
			logging.String(logging.FieldElementID, nodeID),
			logging.String("kind", kind.String()),
		)

		el, err := b.ElementFromNode(node)
		if err == nil && el == nil {
			err = errors.New("builder returned no element")
		}
		if err != nil {
			if skippable(kind, ignoreMissing) {
				logging.WarnWithContext(elementLogger, "skipping element that failed to parse", "element_parse_failed",
					logging.Int("index", index),
					logging.Error(err),
					logging.String(logging.FieldImpact, kind.String()+" dropped from manifest"),
					logging.String(logging.FieldErrorHint, "inspect the element markup in the source document"),
				)
				index++
				continue
			}
			return &ElementError{Kind: kind, Index: index, ElementID: nodeID, Err: fmt.Errorf("%w: %w", manifest.ErrElementParse, err)}
		}

		if strings.TrimSpace(el.URI()) == "" {
			if skippable(kind, ignoreMissing) {
				logging.WarnWithContext(elementLogger, "skipping element without location", "element_location_missing",
					logging.Int("index", index),
					logging.String(logging.FieldImpact, kind.String()+" dropped from manifest"),
					logging.String(logging.FieldErrorHint, "add a url to the element or remove it"),
				)
				index++
				continue
			}
			return &ElementError{Kind: kind, Index: index, ElementID: el.ID(), Err: manifest.ErrMissingElementFile}
		}

		if err := m.Add(el); err != nil {
			return &ElementError{Kind: kind, Index: index, ElementID: el.ID(), Err: err}
		}
		index++
	}
	return nil
}
