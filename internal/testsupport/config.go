package testsupport

import (
	"path/filepath"
	"testing"

	"mpkg/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkspaceDir = filepath.Join(base, "workspace")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLenientDecoding enables ignore_missing_elements on the test config.
func WithLenientDecoding() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Manifest.IgnoreMissingElements = true
	}
}

// WithChecksumAlgorithm overrides the checksum algorithm on the test config.
func WithChecksumAlgorithm(algorithm string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Manifest.ChecksumAlgorithm = algorithm
	}
}

// WithoutLogDir clears the log directory so no log file is written.
func WithoutLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.LogDir = ""
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkspaceDir)
}
