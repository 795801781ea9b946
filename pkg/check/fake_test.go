package check

import (
	"context"
	"strings"
	"sync"

	"github.com/computerscienceiscool/gocheck/pkg/runner"
)

type fakeReply struct {
	result runner.ExecResult
	err    error
}

// fakeRunner answers by command name plus first argument ("go vet"),
// falling back to the bare command name ("golint").
type fakeRunner struct {
	mu       sync.Mutex
	replies  map[string]fakeReply
	requests []runner.Request
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{replies: map[string]fakeReply{}}
}

func (f *fakeRunner) on(key string, result runner.ExecResult, err error) *fakeRunner {
	f.replies[key] = fakeReply{result: result, err: err}
	return f
}

func (f *fakeRunner) Run(ctx context.Context, req runner.Request) (runner.ExecResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	if len(req.Args) > 0 {
		if r, ok := f.replies[req.Command+" "+req.Args[0]]; ok {
			return r.result, r.err
		}
	}
	if r, ok := f.replies[req.Command]; ok {
		return r.result, r.err
	}
	return runner.ExecResult{}, nil
}

func (f *fakeRunner) request(prefix string) (runner.Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range f.requests {
		line := strings.Join(append([]string{req.Command}, req.Args...), " ")
		if strings.HasPrefix(line, prefix) {
			return req, true
		}
	}
	return runner.Request{}, false
}
