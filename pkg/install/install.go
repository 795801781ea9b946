// Package install runs go install for the package in a directory.
package install

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/computerscienceiscool/gocheck/pkg/check"
	"github.com/computerscienceiscool/gocheck/pkg/runner"
	"github.com/computerscienceiscool/gocheck/pkg/statuslog"
	"github.com/computerscienceiscool/gocheck/pkg/workspace"
)

// ErrSkipped is returned when there is nothing to install
var ErrSkipped = errors.New("INSTALL_SKIPPED")

// Env describes the Go environment a directory is installed from
type Env struct {
	GoPath        []string
	ModuleMode    func(dir string) bool
	InModuleCache func(dir string) bool
}

// DefaultEnv reads the environment of the current process
func DefaultEnv() Env {
	return Env{
		GoPath:        workspace.GoPath(),
		ModuleMode:    workspace.IsModuleMode,
		InModuleCache: workspace.InModuleCache,
	}
}

// Installer installs packages through a runner
type Installer struct {
	runner     runner.Runner
	buildFlags []string
	buildTags  string
	env        Env
	log        *statuslog.Logger
}

// NewInstaller creates an installer
func NewInstaller(r runner.Runner, buildFlags []string, buildTags string, env Env, log *statuslog.Logger) *Installer {
	if log == nil {
		log = statuslog.Nop()
	}
	return &Installer{runner: r, buildFlags: buildFlags, buildTags: buildTags, env: env, log: log}
}

// Args builds the go install argument list for dir
func (i *Installer) Args(dir string) []string {
	args := append([]string{"install"}, i.buildFlags...)
	if i.buildTags != "" && !hasTagsFlag(i.buildFlags) {
		args = append(args, "-tags", i.buildTags)
	}
	return append(args, i.target(dir))
}

// Install runs go install in dir. Packages in the module cache are skipped
// with ErrSkipped.
func (i *Installer) Install(ctx context.Context, dir string) error {
	moduleMode := i.env.ModuleMode != nil && i.env.ModuleMode(dir)
	if moduleMode && i.env.InModuleCache != nil && i.env.InModuleCache(dir) {
		i.log.Debugf("Skipping install of %s: it is in the module cache", dir)
		return ErrSkipped
	}

	args := i.Args(dir)
	i.log.Infof("Installing %s", args[len(args)-1])

	res, err := i.runner.Run(ctx, runner.Request{Command: "go", Args: args, Dir: dir})
	if err != nil {
		return err
	}
	if res.ToolMissing {
		return &check.MissingToolError{Tool: "go", Message: "No \"go\" binary could be found on PATH"}
	}
	if res.ExitCode != 0 {
		i.log.Errorf("Installation failed: %s", strings.TrimSpace(res.Stderr))
		return fmt.Errorf("go install failed with exit code %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	i.log.Infof("Installation successful")
	return nil
}

// target is the GOPATH-relative import path outside module mode, "." otherwise
func (i *Installer) target(dir string) string {
	if i.env.ModuleMode != nil && i.env.ModuleMode(dir) {
		return "."
	}
	if p, ok := workspace.ImportPath(i.env.GoPath, dir); ok {
		return p
	}
	return "."
}

func hasTagsFlag(flags []string) bool {
	for _, f := range flags {
		if f == "-tags" || f == "--tags" || strings.HasPrefix(f, "-tags=") || strings.HasPrefix(f, "--tags=") {
			return true
		}
	}
	return false
}
