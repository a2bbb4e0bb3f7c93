package main

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mpkg/internal/config"
	"mpkg/internal/elementbuilder"
	"mpkg/internal/identifier"
	"mpkg/internal/logging"
	"mpkg/internal/manifest"
	"mpkg/internal/manifestxml"
	"mpkg/internal/mediapackage"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// logger builds a logger that writes console records to the command's
// stderr and JSON records to the configured log file.
func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		level = *c.logLevelFlag
	}
	return logging.New(logging.Options{
		Level:    level,
		Format:   cfg.Logging.Format,
		Output:   cmd.ErrOrStderr(),
		FilePath: cfg.LogFile(),
	})
}

// packageOptions wires the configured builder, serializer, and decode policy
// for the manifest stored at manifestPath. Relative locators resolve against
// the manifest's directory.
func (c *commandContext) packageOptions(cmd *cobra.Command, manifestPath string, builderOpts ...elementbuilder.Option) ([]mediapackage.Option, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger(cmd)
	if err != nil {
		return nil, err
	}
	baseDir := filepath.Dir(manifestPath)
	builder := elementbuilder.New(append([]elementbuilder.Option{
		elementbuilder.WithBaseDir(baseDir),
		elementbuilder.WithChecksumAlgorithm(cfg.Manifest.ChecksumAlgorithm),
		elementbuilder.WithLogger(logger),
	}, builderOpts...)...)
	return []mediapackage.Option{
		mediapackage.WithBuilder(builder),
		mediapackage.WithRenderContext(manifestxml.RenderContext{BaseDir: baseDir}),
		mediapackage.WithIdentifierBuilders(identifier.UUIDBuilder{}, identifier.NewHandleBuilder(cfg.Manifest.HandleAuthority)),
		mediapackage.WithIgnoreMissingElements(cfg.Manifest.IgnoreMissingElements),
		mediapackage.WithManifestOptions(manifest.WithMaxReferenceHops(cfg.Manifest.MaxReferenceHops)),
		mediapackage.WithLogger(logger),
	}, nil
}

// loadPackage reads the manifest at path with the configured options.
func (c *commandContext) loadPackage(cmd *cobra.Command, path string, extra ...mediapackage.Option) (*mediapackage.Package, string, error) {
	resolved, err := c.manifestPath(path)
	if err != nil {
		return nil, "", err
	}
	opts, err := c.packageOptions(cmd, resolved)
	if err != nil {
		return nil, "", err
	}
	p, err := mediapackage.LoadFile(resolved, append(opts, extra...)...)
	if err != nil {
		return nil, "", err
	}
	return p, resolved, nil
}

// manifestPath resolves a manifest argument. A bare package name such as
// "lecture-1" names <workspace_dir>/lecture-1/manifest.xml.
func (c *commandContext) manifestPath(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", errors.New("manifest path is required")
	}
	if isPackageName(arg) {
		cfg, err := c.ensureConfig()
		if err != nil {
			return "", err
		}
		return filepath.Join(cfg.Paths.WorkspaceDir, arg, manifestFileName), nil
	}
	return config.ExpandPath(arg)
}

const manifestFileName = "manifest.xml"

func isPackageName(arg string) bool {
	return !strings.ContainsAny(arg, `/\`) && !strings.HasPrefix(arg, "~") && filepath.Ext(arg) == ""
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
