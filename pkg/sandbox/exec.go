package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/pkg/stdcopy"
)

// ExecSpec is one command to run inside a Handle's container
type ExecSpec struct {
	Cmd        []string
	WorkingDir string
	Env        []string
	Stdin      io.Reader // Optional; closed for writing once drained
}

// ExecOutput is the demultiplexed result of an exec
type ExecOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
	NotFound bool // The executable does not exist in the container
}

// Exit codes the runtime uses when it cannot start the executable
const (
	exitCannotExecute = 126
	exitNotFound      = 127
)

// Exec runs spec inside h's container and waits for it to finish. A
// nonzero exit is reported through ExitCode, not as an error; errors mean
// the daemon or the attach stream failed.
func (h *Handle) Exec(ctx context.Context, spec ExecSpec) (ExecOutput, error) {
	var out ExecOutput
	if len(spec.Cmd) == 0 {
		return out, fmt.Errorf("empty command")
	}

	ex, err := h.client.ContainerExecCreate(ctx, h.ID, types.ExecConfig{
		Cmd:          spec.Cmd,
		WorkingDir:   spec.WorkingDir,
		Env:          spec.Env,
		AttachStdin:  spec.Stdin != nil,
		AttachStdout: true,
		AttachStderr: true,
		Tty:          false,
	})
	if err != nil {
		if isNotFoundMessage(err.Error()) {
			out.NotFound = true
			out.ExitCode = exitNotFound
			return out, nil
		}
		return out, fmt.Errorf("failed to create exec: %w", err)
	}

	hj, err := h.client.ContainerExecAttach(ctx, ex.ID, types.ExecStartCheck{Tty: false})
	if err != nil {
		return out, fmt.Errorf("failed to attach to exec: %w", err)
	}
	defer hj.Close()

	// Unblock the stream copy when the caller gives up
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			hj.Close()
		case <-done:
		}
	}()

	// Input the process never reads fails once it exits; the exit code and
	// output already say what happened, so write errors are dropped.
	if spec.Stdin != nil {
		go func() {
			io.Copy(hj.Conn, spec.Stdin)
			hj.CloseWrite()
		}()
	}

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, hj.Reader); err != nil {
		if ctx.Err() != nil {
			return out, fmt.Errorf("exec interrupted: %w", ctx.Err())
		}
		return out, fmt.Errorf("failed to read exec output: %w", err)
	}
	if ctx.Err() != nil {
		return out, fmt.Errorf("exec interrupted: %w", ctx.Err())
	}

	insp, err := h.client.ContainerExecInspect(ctx, ex.ID)
	if err != nil {
		return out, fmt.Errorf("failed to inspect exec: %w", err)
	}

	out.Stdout = stdout.String()
	out.Stderr = stderr.String()
	out.ExitCode = insp.ExitCode
	out.NotFound = isExecNotFound(out)
	return out, nil
}

// isExecNotFound recognises the runtime's report that the command could
// not be started because it does not exist.
func isExecNotFound(out ExecOutput) bool {
	if out.ExitCode != exitNotFound && out.ExitCode != exitCannotExecute {
		return false
	}
	if isNotFoundMessage(out.Stdout) || isNotFoundMessage(out.Stderr) {
		return true
	}
	return out.ExitCode == exitNotFound && out.Stdout == ""
}

func isNotFoundMessage(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "executable file not found") ||
		(strings.Contains(s, "exec:") && strings.Contains(s, "no such file or directory"))
}
