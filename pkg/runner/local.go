package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"

	"github.com/computerscienceiscool/gocheck/pkg/statuslog"
)

// LocalRunner runs tools as child processes of gocheck
type LocalRunner struct {
	log *statuslog.Logger
	env []string
}

// NewLocalRunner creates a runner for the host. env, when non-nil,
// replaces the inherited environment.
func NewLocalRunner(log *statuslog.Logger, env []string) *LocalRunner {
	if log == nil {
		log = statuslog.Nop()
	}
	return &LocalRunner{log: log, env: env}
}

// Run executes req and waits for it to exit
func (r *LocalRunner) Run(ctx context.Context, req Request) (ExecResult, error) {
	var result ExecResult
	r.log.Trace(req.Command, req.Args)

	cmd := exec.CommandContext(ctx, req.Command, req.Args...)
	cmd.Dir = req.Dir
	cmd.Stdin = req.Stdin
	if r.env != nil {
		cmd.Env = r.env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err == nil {
		return result, nil
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("%s interrupted: %w", req.Command, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	if errors.Is(err, exec.ErrNotFound) || isMissingBinary(err, req.Command) {
		result.ToolMissing = true
		result.ExitCode = -1
		return result, nil
	}

	return result, fmt.Errorf("%w: %s: %v", ErrTransport, req.Command, err)
}

// isMissingBinary reports a start failure for a command given by path.
// A missing working directory fails the same way but names the directory.
func isMissingBinary(err error, command string) bool {
	var pathErr *fs.PathError
	return errors.As(err, &pathErr) && pathErr.Path == command && errors.Is(pathErr.Err, fs.ErrNotExist)
}
