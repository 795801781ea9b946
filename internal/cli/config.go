package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/computerscienceiscool/gocheck/pkg/config"
	"github.com/computerscienceiscool/gocheck/pkg/sandbox"
	"github.com/computerscienceiscool/gocheck/pkg/workspace"
)

func init() {
	setupViper()
}

func setupViper() {
	// Set all default values in Viper
	config.SetViperDefaults()

	// Set default config file name
	viper.SetConfigName("gocheck.config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")

	// Enable environment variables with GOCHECK prefix; nested keys use
	// underscores (GOCHECK_CONTAINER_IMAGE)
	viper.SetEnvPrefix("GOCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}
}

// buildConfig constructs a config.Config from Viper values. An unset
// root resolves to the git worktree around the working directory.
func buildConfig() (*config.Config, error) {
	cfg := config.FromViper(viper.GetViper())

	// Parse timeout duration
	toolTimeout, err := time.ParseDuration(viper.GetString("tool_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid tool-timeout: %w", err)
	}
	cfg.ToolTimeout = toolTimeout

	if cfg.WorkspaceRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root, err := workspace.FindRoot(wd)
		if err != nil {
			return nil, err
		}
		cfg.WorkspaceRoot = root
	}

	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.LintOnSave {
		if err := sandbox.ValidateToolName(cfg.LintTool); err != nil {
			return nil, fmt.Errorf("invalid configuration: lint.tool: %w", err)
		}
	}
	return cfg, nil
}
