package elementbuilder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"mpkg/internal/logging"
	"mpkg/internal/manifest"
	"mpkg/internal/manifestxml"
	"mpkg/internal/mediaprobe"
)

// mutableElement is satisfied by every element type in package manifest.
type mutableElement interface {
	manifest.Element
	SetID(id string)
	SetMimeType(mimeType string)
	SetChecksum(c manifest.Checksum)
	SetDescription(description string)
	SetSize(size int64)
	AddTag(tag string)
	ReferTo(ref manifest.Reference)
}

// Builder creates elements from XML nodes and file locators.
type Builder struct {
	fs        vfs.FileSystem
	baseDir   string
	algorithm string
	prober    mediaprobe.Prober
	logger    *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithFileSystem reads local files from fs instead of the OS.
func WithFileSystem(fs vfs.FileSystem) Option {
	return func(b *Builder) {
		if fs != nil {
			b.fs = fs
		}
	}
}

// WithBaseDir resolves relative file locators against dir.
func WithBaseDir(dir string) Option {
	return func(b *Builder) {
		b.baseDir = strings.TrimSpace(dir)
	}
}

// WithChecksumAlgorithm selects the digest for ElementFromLocator.
func WithChecksumAlgorithm(algorithm string) Option {
	return func(b *Builder) {
		if algorithm = strings.TrimSpace(algorithm); algorithm != "" {
			b.algorithm = algorithm
		}
	}
}

// WithProber reads track durations from local media files with p.
func WithProber(p mediaprobe.Prober) Option {
	return func(b *Builder) {
		b.prober = p
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logging.NewComponentLogger(logger, "elementbuilder")
	}
}

// New returns a Builder reading from the OS filesystem.
func New(opts ...Option) *Builder {
	b := &Builder{
		fs:        osfs.New(),
		algorithm: manifest.DefaultChecksumAlgorithm,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BaseDir reports the directory relative locators resolve against.
func (b *Builder) BaseDir() string {
	return b.baseDir
}

// ElementFromNode parses one track, catalog, attachment, or element node.
func (b *Builder) ElementFromNode(node manifestxml.Node) (manifest.Element, error) {
	kind, ok := manifestxml.KindForElementName(node.Name())
	if !ok {
		return nil, fmt.Errorf("unsupported element node <%s>", node.Name())
	}

	var flavor manifest.Flavor
	if value, ok := node.Attr("type"); ok && value != "" {
		f, err := manifest.ParseFlavor(value)
		if err != nil {
			return nil, err
		}
		flavor = f
	}

	el, ok := manifest.NewElement(kind, flavor, resolveLocator(node.ChildText("url"), b.baseDir)).(mutableElement)
	if !ok {
		return nil, fmt.Errorf("element kind %s cannot be populated", kind)
	}
	if id, ok := node.Attr("id"); ok {
		el.SetID(id)
	}
	if value, ok := node.Attr("ref"); ok && value != "" {
		ref, err := manifest.ParseReference(value)
		if err != nil {
			return nil, err
		}
		el.ReferTo(ref)
	}

	el.SetDescription(node.ChildText("description"))
	if tags, ok := node.Child("tags"); ok {
		for _, tag := range tags.ChildrenNamed("tag") {
			el.AddTag(tag.Text())
		}
	}
	el.SetMimeType(node.ChildText("mimetype"))

	if c, ok := node.Child("checksum"); ok {
		typ, _ := c.Attr("type")
		if typ == "" || c.Text() == "" {
			return nil, errors.New("checksum requires a type and a value")
		}
		el.SetChecksum(manifest.NewChecksum(typ, c.Text()))
	}

	if value := node.ChildText("size"); value != "" {
		size, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("size %q: %w", value, err)
		}
		el.SetSize(size)
	}

	if track, ok := el.(*manifest.Track); ok {
		if value := node.ChildText("duration"); value != "" {
			duration, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("duration %q: %w", value, err)
			}
			if duration <= 0 {
				return nil, fmt.Errorf("duration must be positive, got %d", duration)
			}
			track.SetDuration(duration)
		}
	}
	return el, nil
}

// ElementFromLocator builds an element for uri. Local files are inspected for
// mimetype, size, and checksum; remote URLs are taken as they are.
func (b *Builder) ElementFromLocator(uri string, kind manifest.Kind, flavor manifest.Flavor) (manifest.Element, error) {
	uri = resolveLocator(uri, b.baseDir)
	if uri == "" {
		return nil, fmt.Errorf("%w: empty locator", manifest.ErrMissingElementFile)
	}
	el, ok := manifest.NewElement(kind, flavor, uri).(mutableElement)
	if !ok {
		return nil, fmt.Errorf("element kind %s cannot be populated", kind)
	}

	path, local := localPath(uri)
	if !local {
		b.logger.Debug("remote locator not inspected", logging.String("uri", uri))
		return el, nil
	}

	info, err := b.fs.Stat(path)
	if err != nil {
		if errors.Is(err, vfs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", manifest.ErrMissingElementFile, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", manifest.ErrMissingElementFile, path)
	}
	el.SetSize(info.Size())

	mime, err := b.detectMimeType(path)
	if err != nil {
		return nil, err
	}
	el.SetMimeType(mime)

	sum, err := b.checksum(path)
	if err != nil {
		return nil, err
	}
	el.SetChecksum(sum)

	if track, ok := el.(*manifest.Track); ok && b.prober != nil {
		b.probeDuration(track, path)
	}

	b.logger.Debug("element built from file",
		logging.String("path", path),
		logging.String("kind", kind.String()),
		logging.String("mimetype", mime),
		logging.Int64("size", info.Size()),
	)
	return el, nil
}

func (b *Builder) detectMimeType(path string) (string, error) {
	f, err := b.fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	mime, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("detect mimetype of %s: %w", path, err)
	}
	return mime.String(), nil
}

func (b *Builder) checksum(path string) (manifest.Checksum, error) {
	f, err := b.fs.Open(path)
	if err != nil {
		return manifest.Checksum{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return manifest.ComputeChecksum(b.algorithm, f)
}

// probeDuration sets the track duration from the media file. Probe failures
// leave the duration unset.
func (b *Builder) probeDuration(track *manifest.Track, path string) {
	info, err := b.prober.Probe(context.Background(), path)
	if err != nil {
		logging.WarnWithContext(b.logger, "media probe failed", "track_probe_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "track duration left unset"),
			logging.String(logging.FieldErrorHint, "check that ffprobe is installed and the file is a media container"),
		)
		return
	}
	if ms := info.DurationMillis(); ms > 0 {
		track.SetDuration(ms)
	}
}
