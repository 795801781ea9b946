// Package runner executes a single external tool invocation, either as a
// local child process or inside the shared gocheck container, and reports
// what it printed.
package runner

import (
	"context"
	"errors"
	"io"
)

// ErrTransport marks failures of the execution machinery itself (daemon
// unreachable, broken stream) as opposed to anything the tool reported.
var ErrTransport = errors.New("TRANSPORT_FAILURE")

// Request is one tool invocation
type Request struct {
	Command string
	Args    []string
	Dir     string
	Stdin   io.Reader // Optional
}

// ExecResult is what the tool produced. A nonzero ExitCode is a normal
// outcome; ToolMissing means the command could not be found at all.
type ExecResult struct {
	Stdout      string
	Stderr      string
	ExitCode    int
	ToolMissing bool
}

// Output returns the stream a tool writes its findings to
func (r ExecResult) Output(useStderr bool) string {
	if useStderr {
		return r.Stderr
	}
	return r.Stdout
}

// Runner runs a Request once. Cancel ctx to abandon it.
type Runner interface {
	Run(ctx context.Context, req Request) (ExecResult, error)
}

// Unavailable returns a Runner whose every Run fails with err. It stands in
// when the execution machinery could not be set up, so callers still get
// per-tool failures instead of nothing.
func Unavailable(err error) Runner {
	return unavailable{err: err}
}

type unavailable struct {
	err error
}

func (u unavailable) Run(context.Context, Request) (ExecResult, error) {
	return ExecResult{}, u.err
}
