package mediapackage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"mpkg/internal/logging"
	"mpkg/internal/manifestxml"
)

// ErrLocked is returned when another writer holds the manifest lock past the
// caller's deadline.
var ErrLocked = errors.New("manifest is locked by another writer")

const lockRetryDelay = 50 * time.Millisecond

// Load decodes a package from r.
func Load(r io.Reader, opts ...Option) (*Package, error) {
	p := newPackage(opts)
	m, err := manifestxml.Decode(r, p.builder, p.decode)
	if err != nil {
		return nil, err
	}
	p.attach(m)
	return p, nil
}

// LoadFile decodes the package stored at path.
func LoadFile(path string, opts ...Option) (*Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	p, err := Load(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return p, nil
}

// Save writes the package document to w.
func (p *Package) Save(w io.Writer) error {
	doc, err := manifestxml.Encode(p.manifest, p.serializer, p.render)
	if err != nil {
		return err
	}
	return manifestxml.Write(w, doc)
}

// SaveFile writes the package to path under the manifest lock, replacing the
// file atomically.
func (p *Package) SaveFile(ctx context.Context, path string) error {
	unlock, err := lockManifest(ctx, path)
	if err != nil {
		return err
	}
	defer unlock()
	return p.writeFile(ctx, path)
}

func (p *Package) writeFile(ctx context.Context, path string) error {
	logger := logging.WithContext(logging.WithOperation(ctx, "save"), p.logger)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := p.Save(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	logger.Debug("manifest written",
		logging.String("path", path),
		logging.Int("elements", p.manifest.Size()),
	)
	return nil
}

// Update loads the package at path, applies fn, and saves the result, all
// under the manifest lock. When create is set a missing file starts an empty
// package. Nothing is written if fn fails.
func Update(ctx context.Context, path string, create bool, fn func(*Package) error, opts ...Option) error {
	unlock, err := lockManifest(ctx, path)
	if err != nil {
		return err
	}
	defer unlock()

	p, err := LoadFile(path, opts...)
	if err != nil {
		if !create || !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if p, err = New(opts...); err != nil {
			return err
		}
	}
	if err := fn(p); err != nil {
		return err
	}
	return p.writeFile(ctx, path)
}

func lockManifest(ctx context.Context, path string) (func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create manifest directory: %w", err)
	}
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLocked, path, err)
		}
		return nil, fmt.Errorf("acquire manifest lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return func() { _ = lock.Unlock() }, nil
}
