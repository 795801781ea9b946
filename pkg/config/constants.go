package config

import "time"

// Default values for gocheck
const (
	// Execution modes
	ModeLocal     = "local"
	ModeContainer = "container"

	// Container defaults
	DefaultContainerImage = "golang:1.22"
	DefaultWorkspaceEnv   = "GOCHECK_WORKSPACE"
	ContainerNamePrefix   = "gocheck-"

	// Tool defaults
	DefaultLintTool = "golint"

	// Timeout values
	DefaultToolTimeout     = 2 * time.Minute  // Upper bound for a single tool invocation
	DefaultContainerCreate = 60 * time.Second // Image pull plus container start

	// History defaults
	DefaultHistoryPath  = "gocheck-history.db"
	DefaultHistoryLimit = 20

	// Output formats
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)
