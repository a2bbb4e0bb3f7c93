package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeManifest()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.WorkspaceDir) == "" {
		if value, ok := os.LookupEnv(envWorkspaceDir); ok && strings.TrimSpace(value) != "" {
			c.Paths.WorkspaceDir = strings.TrimSpace(value)
		} else {
			c.Paths.WorkspaceDir = defaultWorkspaceDir
		}
	}
	var err error
	if c.Paths.WorkspaceDir, err = expandPath(c.Paths.WorkspaceDir); err != nil {
		return fmt.Errorf("paths.workspace_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "text":
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	switch level {
	case "":
		level = defaultLogLevel
	case "warning":
		level = "warn"
	}
	c.Logging.Level = level
}

func (c *Config) normalizeManifest() {
	if c.Manifest.MaxReferenceHops == 0 {
		c.Manifest.MaxReferenceHops = defaultMaxReferenceHops
	}
	algorithm := strings.ToLower(strings.TrimSpace(c.Manifest.ChecksumAlgorithm))
	if algorithm == "" {
		algorithm = defaultChecksumAlgorithm
	}
	c.Manifest.ChecksumAlgorithm = algorithm

	authority := strings.TrimSpace(c.Manifest.HandleAuthority)
	if authority == "" {
		authority = defaultHandleAuthority
	}
	c.Manifest.HandleAuthority = authority
}
