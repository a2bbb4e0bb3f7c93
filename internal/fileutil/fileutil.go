// Package fileutil copies media files into package directories.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mpkg/internal/manifest"
)

// CopyVerified copies src to dst and checks the copy against the source by
// size and by a digest of algorithm. dst is replaced atomically and removed
// on mismatch. It returns the source checksum.
func CopyVerified(src, dst, algorithm string) (manifest.Checksum, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return manifest.Checksum{}, fmt.Errorf("stat source: %w", err)
	}
	if srcInfo.IsDir() {
		return manifest.Checksum{}, fmt.Errorf("copy %s: source is a directory", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return manifest.Checksum{}, err
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return manifest.Checksum{}, fmt.Errorf("create destination directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*")
	if err != nil {
		return manifest.Checksum{}, err
	}
	defer os.Remove(tmp.Name())

	sum, err := manifest.ComputeChecksum(algorithm, io.TeeReader(in, tmp))
	if err != nil {
		tmp.Close()
		return manifest.Checksum{}, fmt.Errorf("copy %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return manifest.Checksum{}, err
	}

	if err := verify(tmp.Name(), srcInfo.Size(), sum); err != nil {
		return manifest.Checksum{}, err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return manifest.Checksum{}, fmt.Errorf("place copy: %w", err)
	}
	return sum, nil
}

func verify(path string, size int64, want manifest.Checksum) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() != size {
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", size, info.Size())
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	got, err := manifest.ComputeChecksum(want.Type, f)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("copy checksum mismatch: source %s, copy %s", want, got)
	}
	return nil
}
