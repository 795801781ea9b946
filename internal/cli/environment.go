package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/computerscienceiscool/gocheck/pkg/check"
	"github.com/computerscienceiscool/gocheck/pkg/config"
	"github.com/computerscienceiscool/gocheck/pkg/diagnostics"
	"github.com/computerscienceiscool/gocheck/pkg/install"
	"github.com/computerscienceiscool/gocheck/pkg/runner"
	"github.com/computerscienceiscool/gocheck/pkg/sandbox"
	"github.com/computerscienceiscool/gocheck/pkg/statuslog"
)

// containerTempDir holds build and cover artifacts inside the container
const containerTempDir = "/tmp"

// environment is everything one command invocation needs to run tools
type environment struct {
	cfg    *config.Config
	log    *statuslog.Logger
	runner runner.Runner
	paths  diagnostics.PrefixMapper
	closer func() error
}

// newRunner builds the runner for cfg; tests replace it
var newRunner = defaultRunner

func defaultRunner(ctx context.Context, cfg *config.Config, log *statuslog.Logger) (runner.Runner, func() error, error) {
	if cfg.Mode != config.ModeContainer {
		return runner.NewLocalRunner(log, nil), func() error { return nil }, nil
	}

	cli, err := sandbox.NewClient()
	if err != nil {
		return nil, nil, err
	}
	if err := sandbox.CheckDockerAvailability(ctx, cli); err != nil {
		cli.Close()
		return nil, nil, fmt.Errorf("%w: %v", runner.ErrTransport, err)
	}

	provider := sandbox.NewHandleProvider(sandbox.DockerFactory(cli, containerConfig(cfg)))
	return runner.NewContainerRunner(provider, log), cli.Close, nil
}

func containerConfig(cfg *config.Config) sandbox.ContainerConfig {
	return sandbox.ContainerConfig{
		Image:         cfg.ContainerImage,
		WorkspaceRoot: cfg.WorkspaceRoot,
		MountPath:     cfg.MountPath,
		EnvVar:        config.DefaultWorkspaceEnv,
		NamePrefix:    config.ContainerNamePrefix,
		Timeout:       config.DefaultContainerCreate,
	}
}

func newEnvironment(ctx context.Context, cfg *config.Config, stderr io.Writer) (*environment, error) {
	log, err := statuslog.New(cfg.LogLevel, stderr, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	r, closeRunner, err := newRunner(ctx, cfg, log)
	if errors.Is(err, runner.ErrTransport) {
		log.Warnf("Tools will not run: %v", err)
		r, closeRunner, err = runner.Unavailable(err), func() error { return nil }, nil
	}
	if err != nil {
		log.Close()
		return nil, err
	}

	env := &environment{
		cfg:    cfg,
		log:    log,
		runner: r,
		closer: func() error {
			closeRunner()
			return log.Close()
		},
	}
	if cfg.Mode == config.ModeContainer {
		env.paths = diagnostics.PrefixMapper{Remote: cfg.ContainerMountPath(), Local: cfg.WorkspaceRoot}
	}
	return env, nil
}

func (e *environment) Close() error {
	return e.closer()
}

// remote translates a local path into the path the runner sees
func (e *environment) remote(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return e.paths.ToRemote(abs)
}

func (e *environment) checker() *check.Checker {
	opts := []check.Option{check.WithLogger(e.log), check.WithPaths(e.paths)}
	if e.cfg.Mode == config.ModeContainer {
		opts = append(opts,
			check.WithTempDir(containerTempDir),
			check.WithFileReader(check.RunnerFileReader(e.runner)),
		)
	}
	return check.NewChecker(e.cfg, e.runner, opts...)
}

func (e *environment) installer() *install.Installer {
	env := install.DefaultEnv()
	if e.cfg.Mode == config.ModeContainer {
		// The host GOPATH means nothing inside the container
		env.GoPath = nil
	}
	return install.NewInstaller(e.runner, e.cfg.BuildFlags, e.cfg.BuildTags, env, e.log)
}

func workingDir(args []string) (string, error) {
	if len(args) > 0 {
		return filepath.Abs(args[0])
	}
	return os.Getwd()
}
