package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/computerscienceiscool/gocheck/pkg/config"
	"github.com/computerscienceiscool/gocheck/pkg/diagnostics"
	"github.com/computerscienceiscool/gocheck/pkg/runner"
	"github.com/computerscienceiscool/gocheck/pkg/statuslog"
)

// Report is the merged outcome of one Check call
type Report struct {
	File        string                   `json:"file" yaml:"file"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	Missing     []*MissingToolError      `json:"missing,omitempty" yaml:"missing,omitempty"`
	Failures    []ToolFailure            `json:"failures,omitempty" yaml:"failures,omitempty"`
	Duration    time.Duration            `json:"duration" yaml:"duration"`
}

// FileReader reads a file produced by a tool, in the tool's filesystem
type FileReader func(ctx context.Context, name string) ([]byte, error)

// Checker runs the enabled on-save checks for a file
type Checker struct {
	cfg      *config.Config
	runner   runner.Runner
	paths    diagnostics.PrefixMapper
	tmpDir   string
	readFile FileReader
	log      *statuslog.Logger
}

// Option configures a Checker
type Option func(*Checker)

// WithPaths sets the mapping between local paths and the paths the runner
// sees. Container mode maps the mount path to the workspace root.
func WithPaths(m diagnostics.PrefixMapper) Option {
	return func(c *Checker) { c.paths = m }
}

// WithTempDir sets the existing directory build and cover artifacts go
// to, as seen by the runner
func WithTempDir(dir string) Option {
	return func(c *Checker) { c.tmpDir = dir }
}

// WithFileReader sets how the coverage profile is read back
func WithFileReader(fn FileReader) Option {
	return func(c *Checker) { c.readFile = fn }
}

// WithLogger sets the status log
func WithLogger(log *statuslog.Logger) Option {
	return func(c *Checker) { c.log = log }
}

// NewChecker creates a checker. Defaults suit local mode.
func NewChecker(cfg *config.Config, r runner.Runner, opts ...Option) *Checker {
	c := &Checker{
		cfg:    cfg,
		runner: r,
		tmpDir: os.TempDir(),
		readFile: func(_ context.Context, name string) ([]byte, error) {
			return os.ReadFile(name)
		},
		log: statuslog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunnerFileReader reads files by running cat through r; used when the
// artifacts live inside a container.
func RunnerFileReader(r runner.Runner) FileReader {
	return func(ctx context.Context, name string) ([]byte, error) {
		res, err := r.Run(ctx, runner.Request{Command: "cat", Args: []string{name}})
		if err != nil {
			return nil, err
		}
		if res.ExitCode != 0 || res.ToolMissing {
			return nil, fmt.Errorf("read %s: %s", name, strings.TrimSpace(res.Stderr))
		}
		return []byte(res.Stdout), nil
	}
}

type checkResult struct {
	diags   []diagnostics.Diagnostic
	missing *MissingToolError
	failure *ToolFailure
}

type subCheck struct {
	name string
	run  func(ctx context.Context) ([]diagnostics.Diagnostic, error)
}

// Check runs every enabled check for filename concurrently and merges the
// results. A failing check never stops the others; Check always returns a
// report, possibly partial.
func (c *Checker) Check(ctx context.Context, filename string) Report {
	start := time.Now()
	abs, err := filepath.Abs(filename)
	if err != nil {
		abs = filename
	}

	checks := c.plan(abs)
	results := make([]checkResult, len(checks))

	// Sub-checks report through results; the group only joins them.
	var g errgroup.Group
	for i, sc := range checks {
		i, sc := i, sc
		g.Go(func() error {
			tctx := ctx
			if c.cfg.ToolTimeout > 0 {
				var cancel context.CancelFunc
				tctx, cancel = context.WithTimeout(ctx, c.cfg.ToolTimeout)
				defer cancel()
			}
			diags, err := sc.run(tctx)
			results[i] = classify(sc.name, diags, err)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{File: abs, Diagnostics: []diagnostics.Diagnostic{}}
	for _, res := range results {
		report.Diagnostics = append(report.Diagnostics, res.diags...)
		if res.missing != nil {
			report.Missing = append(report.Missing, res.missing)
		}
		if res.failure != nil {
			c.log.Infof("%s could not run: %v", res.failure.Tool, res.failure.Err)
			report.Failures = append(report.Failures, *res.failure)
		}
	}
	report.Duration = time.Since(start)
	return report
}

func classify(name string, diags []diagnostics.Diagnostic, err error) checkResult {
	if err == nil {
		return checkResult{diags: diags}
	}
	var missing *MissingToolError
	if errors.As(err, &missing) {
		return checkResult{missing: missing}
	}
	return checkResult{failure: &ToolFailure{Tool: name, Err: err}}
}

func (c *Checker) plan(file string) []subCheck {
	remote := c.paths.ToRemote(file)
	dir := filepath.Dir(remote)

	var checks []subCheck
	if c.cfg.BuildOnSave {
		t := c.buildTool(remote, dir)
		checks = append(checks, subCheck{t.Name, c.toolRun(t)})
	}
	if c.cfg.LintOnSave {
		t := c.lintTool(remote, dir)
		checks = append(checks, subCheck{t.Name, c.toolRun(t)})
	}
	if c.cfg.VetOnSave {
		t := c.vetTool(remote, dir)
		checks = append(checks, subCheck{t.Name, c.toolRun(t)})
	}
	if c.cfg.CoverOnSave {
		checks = append(checks, subCheck{"cover", func(ctx context.Context) ([]diagnostics.Diagnostic, error) {
			return c.cover(ctx, file, dir)
		}})
	}
	return checks
}

func (c *Checker) toolRun(t Tool) func(ctx context.Context) ([]diagnostics.Diagnostic, error) {
	return func(ctx context.Context) ([]diagnostics.Diagnostic, error) {
		return RunTool(ctx, c.runner, t, c.paths, c.log)
	}
}

func (c *Checker) tagArgs() []string {
	if c.cfg.BuildTags == "" {
		return nil
	}
	return []string{"-tags", c.cfg.BuildTags}
}

func (c *Checker) tmpPath(name string) string {
	return path.Join(filepath.ToSlash(c.tmpDir), name)
}

func (c *Checker) buildTool(file, dir string) Tool {
	args := []string{"build", "-o", c.tmpPath("go-code-check-build")}
	if strings.HasSuffix(file, "_test.go") {
		args = []string{"test", "-c", "-o", c.tmpPath("go-code-check-test")}
	}
	args = append(args, c.tagArgs()...)
	args = append(args, c.cfg.BuildFlags...)
	args = append(args, ".")

	return Tool{
		Name:            "build",
		Command:         "go",
		Args:            args,
		Dir:             dir,
		Severity:        diagnostics.SeverityError,
		UseStderr:       true,
		NotFoundMessage: "No \"go\" binary could be found on PATH",
	}
}

func (c *Checker) lintTool(file, dir string) Tool {
	tool := c.cfg.LintTool
	if tool == "" {
		tool = config.DefaultLintTool
	}
	args := append([]string{}, c.cfg.LintFlags...)
	if tool == "golint" {
		args = append(args, file)
	}
	return Tool{
		Name:        "lint",
		Command:     tool,
		Args:        args,
		Dir:         dir,
		Severity:    diagnostics.SeverityWarning,
		InstallHint: InstallHint(tool),
	}
}

func (c *Checker) vetTool(file, dir string) Tool {
	args := append([]string{"vet"}, c.cfg.VetFlags...)
	args = append(args, file)
	return Tool{
		Name:            "vet",
		Command:         "go",
		Args:            args,
		Dir:             dir,
		Severity:        diagnostics.SeverityWarning,
		UseStderr:       true,
		NotFoundMessage: "No \"go\" binary could be found on PATH",
	}
}

func (c *Checker) cover(ctx context.Context, file, dir string) ([]diagnostics.Diagnostic, error) {
	profile := c.tmpPath("go-code-check-cover.out")
	args := []string{"test", "-coverprofile=" + profile}
	args = append(args, c.tagArgs()...)
	args = append(args, ".")

	res, err := c.runner.Run(ctx, runner.Request{Command: "go", Args: args, Dir: dir})
	if err != nil {
		return nil, err
	}
	if res.ToolMissing {
		return nil, &MissingToolError{Tool: "go", Message: "No \"go\" binary could be found on PATH"}
	}

	data, err := c.readFile(ctx, profile)
	if err != nil {
		if res.ExitCode != 0 {
			return nil, fmt.Errorf("go test exited with code %d: %w", res.ExitCode, err)
		}
		return nil, err
	}

	profiles, err := parseCoverProfile(data)
	if err != nil {
		return nil, err
	}

	diags := uncovered(profiles, file)
	c.log.Infof("Finished running tool: go %s", strings.Join(args, " "))
	return diags, nil
}
