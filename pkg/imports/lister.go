package imports

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/computerscienceiscool/gocheck/pkg/check"
	"github.com/computerscienceiscool/gocheck/pkg/runner"
	"github.com/computerscienceiscool/gocheck/pkg/statuslog"
)

// Listing is the merged package list plus whatever kept a source from
// contributing to it
type Listing struct {
	Packages []string                  `json:"packages" yaml:"packages"`
	Missing  []*check.MissingToolError `json:"missing,omitempty" yaml:"missing,omitempty"`
	Failures []check.ToolFailure       `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Lister queries gopkgs and govendor
type Lister struct {
	runner runner.Runner
	log    *statuslog.Logger
}

// NewLister creates a lister that runs its tools through r
func NewLister(r runner.Runner, log *statuslog.Logger) *Lister {
	if log == nil {
		log = statuslog.Nop()
	}
	return &Lister{runner: r, log: log}
}

type source struct {
	lines   []string
	missing *check.MissingToolError
	failure *check.ToolFailure
}

// List runs both package sources concurrently from dir. A source that is
// missing or fails contributes nothing; the other is still used.
func (l *Lister) List(ctx context.Context, dir string) Listing {
	var pkgs, vendor source

	var g errgroup.Group
	g.Go(func() error {
		pkgs = l.query(ctx, "gopkgs", nil, "")
		return nil
	})
	g.Go(func() error {
		vendor = l.query(ctx, "govendor", []string{"list", "-no-status", "+v"}, dir)
		return nil
	})
	_ = g.Wait()

	listing := Listing{Packages: Merge(pkgs.lines, vendor.lines)}
	for _, src := range []source{pkgs, vendor} {
		if src.missing != nil {
			listing.Missing = append(listing.Missing, src.missing)
		}
		if src.failure != nil {
			listing.Failures = append(listing.Failures, *src.failure)
		}
	}
	l.log.Debugf("Listed %d importable packages", len(listing.Packages))
	return listing
}

func (l *Lister) query(ctx context.Context, command string, args []string, dir string) source {
	res, err := l.runner.Run(ctx, runner.Request{Command: command, Args: args, Dir: dir})
	if err != nil {
		l.log.Infof("%s could not run: %v", command, err)
		return source{failure: &check.ToolFailure{Tool: command, Err: err}}
	}
	if res.ToolMissing {
		return source{missing: &check.MissingToolError{Tool: command, Hint: check.InstallHint(command)}}
	}
	if res.ExitCode != 0 {
		// govendor exits nonzero outside a vendored project; its output is
		// still whatever it managed to list.
		l.log.Debugf("%s exited with code %d: %s", command, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return source{lines: splitLines(res.Stdout)}
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
