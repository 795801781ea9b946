package config

import (
	"github.com/spf13/viper"
)

// SetViperDefaults sets all default configuration values in Viper
func SetViperDefaults() {
	viper.SetDefault("mode", ModeLocal)
	viper.SetDefault("root", "")

	// Container defaults
	viper.SetDefault("container.image", DefaultContainerImage)
	viper.SetDefault("container.mount_path", "")
	viper.SetDefault("tool_timeout", DefaultToolTimeout.String())

	// Check defaults
	viper.SetDefault("build.on_save", true)
	viper.SetDefault("build.flags", []string{})
	viper.SetDefault("build.tags", "")
	viper.SetDefault("lint.on_save", true)
	viper.SetDefault("lint.tool", DefaultLintTool)
	viper.SetDefault("lint.flags", []string{})
	viper.SetDefault("vet.on_save", true)
	viper.SetDefault("vet.flags", []string{})
	viper.SetDefault("cover.on_save", false)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")

	// History defaults
	viper.SetDefault("history.enabled", false)
	viper.SetDefault("history.path", DefaultHistoryPath)

	// Output defaults
	viper.SetDefault("output.format", FormatText)
	viper.SetDefault("verbose", false)
}

// FromViper builds a Config from the current Viper state
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Mode:           v.GetString("mode"),
		WorkspaceRoot:  v.GetString("root"),
		ContainerImage: v.GetString("container.image"),
		MountPath:      v.GetString("container.mount_path"),
		ToolTimeout:    v.GetDuration("tool_timeout"),
		BuildOnSave:    v.GetBool("build.on_save"),
		BuildFlags:     v.GetStringSlice("build.flags"),
		BuildTags:      v.GetString("build.tags"),
		LintOnSave:     v.GetBool("lint.on_save"),
		LintTool:       v.GetString("lint.tool"),
		LintFlags:      v.GetStringSlice("lint.flags"),
		VetOnSave:      v.GetBool("vet.on_save"),
		VetFlags:       v.GetStringSlice("vet.flags"),
		CoverOnSave:    v.GetBool("cover.on_save"),
		LogLevel:       v.GetString("logging.level"),
		LogFile:        v.GetString("logging.file"),
		HistoryEnabled: v.GetBool("history.enabled"),
		HistoryPath:    v.GetString("history.path"),
		OutputFormat:   v.GetString("output.format"),
		Verbose:        v.GetBool("verbose"),
	}
}
