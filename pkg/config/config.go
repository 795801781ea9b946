package config

import (
	"fmt"
	"time"
)

// Config holds the resolved gocheck settings for one invocation
type Config struct {
	Mode           string
	WorkspaceRoot  string
	ContainerImage string
	MountPath      string // Where the workspace root appears inside the container
	ToolTimeout    time.Duration

	BuildOnSave bool
	BuildFlags  []string
	BuildTags   string

	LintOnSave bool
	LintTool   string
	LintFlags  []string

	VetOnSave bool
	VetFlags  []string

	CoverOnSave bool

	LogLevel string
	LogFile  string

	HistoryEnabled bool
	HistoryPath    string

	OutputFormat string
	Verbose      bool
}

// Validate checks the settings that cannot be defaulted away
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeLocal, ModeContainer:
	default:
		return fmt.Errorf("invalid mode %q (want %q or %q)", c.Mode, ModeLocal, ModeContainer)
	}

	if c.Mode == ModeContainer && c.ContainerImage == "" {
		return fmt.Errorf("container mode requires an image")
	}

	switch c.OutputFormat {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("invalid output format %q", c.OutputFormat)
	}

	if c.ToolTimeout < 0 {
		return fmt.Errorf("tool timeout cannot be negative: %v", c.ToolTimeout)
	}

	return nil
}

// ContainerMountPath returns the in-container path of the workspace root.
// An empty mount path means the root is mounted at the same location.
func (c *Config) ContainerMountPath() string {
	if c.MountPath != "" {
		return c.MountPath
	}
	return c.WorkspaceRoot
}
