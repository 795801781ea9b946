package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/computerscienceiscool/gocheck/pkg/config"
	"github.com/computerscienceiscool/gocheck/pkg/runner"
	"github.com/computerscienceiscool/gocheck/pkg/statuslog"
)

func init() {
	color.NoColor = true
}

// resetState restores viper and every command flag to their defaults
func resetState(t *testing.T) {
	t.Helper()
	reset := func() {
		viper.Reset()
		setupViper()
		bindFlags()
		resetFlags(rootCmd)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}
	reset()
	t.Cleanup(reset)
}

func resetFlags(cmd *cobra.Command) {
	visit := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(visit)
	cmd.Flags().VisitAll(visit)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

type scriptedRunner struct {
	mu      sync.Mutex
	results map[string]runner.ExecResult
	calls   []runner.Request
}

func (s *scriptedRunner) Run(_ context.Context, req runner.Request) (runner.ExecResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if len(req.Args) > 0 {
		if res, ok := s.results[req.Command+" "+req.Args[0]]; ok {
			return res, nil
		}
	}
	return s.results[req.Command], nil
}

func useRunner(t *testing.T, r runner.Runner) {
	t.Helper()
	orig := newRunner
	newRunner = func(context.Context, *config.Config, *statuslog.Logger) (runner.Runner, func() error, error) {
		return r, func() error { return nil }, nil
	}
	t.Cleanup(func() { newRunner = orig })
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
