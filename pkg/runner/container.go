package runner

import (
	"context"
	"fmt"

	"github.com/computerscienceiscool/gocheck/pkg/sandbox"
	"github.com/computerscienceiscool/gocheck/pkg/statuslog"
)

// HandleSource yields the container to exec into
type HandleSource interface {
	Get(ctx context.Context) (*sandbox.Handle, error)
}

// ContainerRunner runs tools inside the shared gocheck container
type ContainerRunner struct {
	handles HandleSource
	log     *statuslog.Logger
}

// NewContainerRunner creates a runner backed by handles
func NewContainerRunner(handles HandleSource, log *statuslog.Logger) *ContainerRunner {
	if log == nil {
		log = statuslog.Nop()
	}
	return &ContainerRunner{handles: handles, log: log}
}

// Run execs req inside the container. Request.Dir is a path as the
// container sees it.
func (r *ContainerRunner) Run(ctx context.Context, req Request) (ExecResult, error) {
	var result ExecResult
	r.log.Trace(req.Command, req.Args)

	h, err := r.handles.Get(ctx)
	if err != nil {
		return result, fmt.Errorf("%w: container unavailable: %v", ErrTransport, err)
	}

	out, err := h.Exec(ctx, sandbox.ExecSpec{
		Cmd:        append([]string{req.Command}, req.Args...),
		WorkingDir: req.Dir,
		Stdin:      req.Stdin,
	})
	if err != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("%s interrupted: %w", req.Command, ctx.Err())
		}
		return result, fmt.Errorf("%w: %s: %v", ErrTransport, req.Command, err)
	}

	result.Stdout = out.Stdout
	result.Stderr = out.Stderr
	result.ExitCode = out.ExitCode
	result.ToolMissing = out.NotFound
	return result, nil
}
