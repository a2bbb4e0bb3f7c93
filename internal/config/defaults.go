package config

const (
	defaultWorkspaceDir      = "~/.local/share/mpkg"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultMaxReferenceHops  = 32
	defaultChecksumAlgorithm = "md5"
	defaultHandleAuthority   = "10.0000"

	envWorkspaceDir = "MPKG_WORKSPACE_DIR"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		// WorkspaceDir is filled by normalize from the environment or
		// defaultWorkspaceDir.
		Paths: Paths{},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Manifest: Manifest{
			IgnoreMissingElements: false,
			MaxReferenceHops:      defaultMaxReferenceHops,
			ChecksumAlgorithm:     defaultChecksumAlgorithm,
			HandleAuthority:       defaultHandleAuthority,
		},
	}
}
