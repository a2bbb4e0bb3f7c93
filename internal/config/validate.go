package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
)

var (
	supportedLogFormats         = []string{"console", "json"}
	supportedLogLevels          = []string{"debug", "info", "warn", "error"}
	supportedChecksumAlgorithms = []string{"md5", "sha1", "sha256", "blake3"}

	handleAuthorityPattern = regexp.MustCompile(`^(10\.)?\d{4}$`)
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateManifest(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.WorkspaceDir == "" {
		return errors.New("paths.workspace_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !slices.Contains(supportedLogFormats, c.Logging.Format) {
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	if !slices.Contains(supportedLogLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateManifest() error {
	if c.Manifest.MaxReferenceHops < 1 {
		return errors.New("manifest.max_reference_hops must be positive")
	}
	if !slices.Contains(supportedChecksumAlgorithms, c.Manifest.ChecksumAlgorithm) {
		return fmt.Errorf("manifest.checksum_algorithm: unsupported value %q", c.Manifest.ChecksumAlgorithm)
	}
	if !handleAuthorityPattern.MatchString(c.Manifest.HandleAuthority) {
		return fmt.Errorf("manifest.handle_authority: %q is not a 4-digit naming authority", c.Manifest.HandleAuthority)
	}
	return nil
}
