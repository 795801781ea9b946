package check

import (
	"context"
	"fmt"
	"strings"

	"github.com/computerscienceiscool/gocheck/pkg/diagnostics"
	"github.com/computerscienceiscool/gocheck/pkg/runner"
	"github.com/computerscienceiscool/gocheck/pkg/statuslog"
)

// Tool describes one external check invocation
type Tool struct {
	Name      string
	Command   string
	Args      []string
	Dir       string // As seen by the runner
	Severity  diagnostics.Severity
	UseStderr bool // Findings are printed on stderr rather than stdout

	// Missing-tool reporting: InstallHint for installable tools,
	// NotFoundMessage for tools that cannot simply be installed.
	InstallHint     string
	NotFoundMessage string
}

// RunTool runs tool once and parses its findings. A missing binary yields
// a *MissingToolError; a transport failure yields the runner's error. In
// both cases no diagnostics are returned. A nonzero exit is not an error.
func RunTool(ctx context.Context, r runner.Runner, tool Tool, mapper diagnostics.PathMapper, log *statuslog.Logger) ([]diagnostics.Diagnostic, error) {
	if log == nil {
		log = statuslog.Nop()
	}

	res, err := r.Run(ctx, runner.Request{
		Command: tool.Command,
		Args:    tool.Args,
		Dir:     tool.Dir,
	})
	if err != nil {
		return nil, err
	}

	if res.ToolMissing {
		return nil, &MissingToolError{
			Tool:    tool.Command,
			Hint:    tool.InstallHint,
			Message: tool.NotFoundMessage,
		}
	}

	diags := diagnostics.Parse(res.Output(tool.UseStderr), diagnostics.ParseOptions{
		Dir:      tool.Dir,
		Severity: tool.Severity,
		Tool:     tool.Name,
		Mapper:   mapper,
	})

	log.Infof("%s", strings.Join(append([]string{"Finished running tool:", tool.Command}, tool.Args...), " "))
	for _, d := range diags {
		log.Infof("%s:%d: %s", d.File, d.Line, d.Message)
	}
	if res.ExitCode != 0 && len(diags) == 0 {
		log.Debugf("%s exited with code %d and no parsable output", tool.Name, res.ExitCode)
	}

	return diags, nil
}

func (t Tool) String() string {
	return fmt.Sprintf("%s (%s %s)", t.Name, t.Command, strings.Join(t.Args, " "))
}
