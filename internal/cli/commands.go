package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/computerscienceiscool/gocheck/pkg/check"
	"github.com/computerscienceiscool/gocheck/pkg/config"
	"github.com/computerscienceiscool/gocheck/pkg/history"
	"github.com/computerscienceiscool/gocheck/pkg/imports"
	"github.com/computerscienceiscool/gocheck/pkg/install"
	"github.com/computerscienceiscool/gocheck/pkg/sandbox"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Run the enabled checks for a Go file",
	Long:  "Runs build, lint, vet and cover (as configured) for the package of the given file and prints the diagnostics.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

var importsCmd = &cobra.Command{
	Use:   "imports [dir]",
	Short: "List importable packages",
	Long:  "Lists the packages reported by gopkgs, with vendored packages from govendor folded into their import paths.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runImports,
}

var addImportCmd = &cobra.Command{
	Use:   "add-import <file> [package]",
	Short: "Add an import to a Go file",
	Long:  "Adds an import declaration to the file. Without a package argument the importable packages are listed to choose from.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runAddImport,
}

var installCmd = &cobra.Command{
	Use:   "install [dir]",
	Short: "Install the package in a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInstall,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent check runs",
	Long:  "Shows the check runs recorded while history.enabled is set.",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	addImportCmd.Flags().Bool("dry-run", false, "Print the result instead of writing the file")
	historyCmd.Flags().Int("limit", config.DefaultHistoryLimit, "Number of runs to show")

	// Add subcommands to root
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(importsCmd)
	rootCmd.AddCommand(addImportCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(historyCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	file, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if err := sandbox.ValidateSourceFile(file); err != nil {
		return err
	}
	if _, err := os.Stat(file); err != nil {
		return fmt.Errorf("cannot check %s: %w", args[0], err)
	}
	if cfg.Mode == config.ModeContainer {
		if _, err := sandbox.ValidateWorkspacePath(file, cfg.WorkspaceRoot); err != nil {
			return err
		}
	}

	env, err := newEnvironment(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer env.Close()

	report := env.checker().Check(cmd.Context(), file)
	writeProblems(cmd.ErrOrStderr(), report.Missing, report.Failures)

	if cfg.HistoryEnabled {
		if err := recordRun(cmd, cfg, history.FromReport(report, cfg.Mode)); err != nil {
			env.log.Warnf("Could not record check run: %v", err)
		}
	}

	return writeReport(cmd.OutOrStdout(), cfg.OutputFormat, report)
}

func recordRun(cmd *cobra.Command, cfg *config.Config, run history.Run) error {
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(cmd.Context(), run)
}

func listPackages(cmd *cobra.Command, env *environment, dir string) imports.Listing {
	listing := imports.NewLister(env.runner, env.log).List(cmd.Context(), env.remote(dir))
	writeProblems(cmd.ErrOrStderr(), listing.Missing, listing.Failures)
	return listing
}

func runImports(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	dir, err := workingDir(args)
	if err != nil {
		return err
	}

	env, err := newEnvironment(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer env.Close()

	return writeListing(cmd.OutOrStdout(), cfg.OutputFormat, listPackages(cmd, env, dir))
}

func runAddImport(cmd *cobra.Command, args []string) error {
	file := args[0]
	if err := sandbox.ValidateSourceFile(file); err != nil {
		return err
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", file, err)
	}

	var pkg string
	if len(args) == 2 {
		pkg = args[1]
	} else {
		cfg, err := buildConfig()
		if err != nil {
			return err
		}
		env, err := newEnvironment(cmd.Context(), cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		listing := listPackages(cmd, env, filepath.Dir(file))
		env.Close()

		var ok bool
		if pkg, ok = pickPackage(cmd.InOrStdin(), cmd.ErrOrStderr(), listing.Packages); !ok {
			return nil
		}
	}

	out, ok := imports.AddImport(src, pkg)
	if !ok {
		return fmt.Errorf("%s has no package clause to add an import after", file)
	}

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}

	info, err := os.Stat(file)
	if err != nil {
		return err
	}
	return os.WriteFile(file, out, info.Mode().Perm())
}

func runInstall(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	dir, err := workingDir(args)
	if err != nil {
		return err
	}

	env, err := newEnvironment(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer env.Close()

	err = env.installer().Install(cmd.Context(), env.remote(dir))
	if errors.Is(err, install.ErrSkipped) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s is in the module cache; nothing to install\n", dir)
		return nil
	}
	var missing *check.MissingToolError
	if errors.As(err, &missing) {
		writeProblems(cmd.ErrOrStderr(), []*check.MissingToolError{missing}, nil)
		return nil
	}
	return err
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return writeHistory(cmd.OutOrStdout(), cfg.OutputFormat, runs)
}
