package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "gocheck",
	Short: "Run Go build, lint, vet and cover checks and report structured diagnostics",
	Long: `gocheck runs the Go toolchain and linters for a file, either locally or
inside a long-lived Docker container, and turns their output into
diagnostics an editor can display.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Workspace flags
	rootCmd.PersistentFlags().String("root", "", "Workspace root (default: enclosing git worktree)")
	rootCmd.PersistentFlags().String("mode", "", "Where tools run: local or container")

	// Container flags
	rootCmd.PersistentFlags().String("image", "", "Docker image for container mode")
	rootCmd.PersistentFlags().String("mount-path", "", "Workspace mount path inside the container")
	rootCmd.PersistentFlags().String("tool-timeout", "", "Upper bound for a single tool run")

	// Output flags
	rootCmd.PersistentFlags().String("format", "", "Output format: text, json or yaml")
	rootCmd.PersistentFlags().String("log-level", "", "Status log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-file", "", "Also write the status log to this file")
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output")

	bindFlags()
}

// bindFlags binds the persistent flags to their nested config keys
func bindFlags() {
	bind := map[string]string{
		"root":                 "root",
		"mode":                 "mode",
		"container.image":      "image",
		"container.mount_path": "mount-path",
		"tool_timeout":         "tool-timeout",
		"output.format":        "format",
		"logging.level":        "log-level",
		"logging.file":         "log-file",
		"verbose":              "verbose",
	}
	for key, flag := range bind {
		viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}
}

// Execute runs the root command, cancelling running tools on interrupt
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
