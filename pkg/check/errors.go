package check

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrToolMissing is wrapped by every MissingToolError
var ErrToolMissing = errors.New("TOOL_MISSING")

// MissingToolError reports a tool binary that could not be found. It is
// never turned into a diagnostic; callers prompt the user to install it.
type MissingToolError struct {
	Tool    string `json:"tool" yaml:"tool"`
	Hint    string `json:"hint,omitempty" yaml:"hint,omitempty"`       // go install path, empty when unknown
	Message string `json:"message,omitempty" yaml:"message,omitempty"` // Shown instead of an install prompt when set
}

func (e *MissingToolError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s not found", ErrToolMissing, e.Tool)
}

func (e *MissingToolError) Unwrap() error {
	return ErrToolMissing
}

// Prompt is the actionable text shown to the user
func (e *MissingToolError) Prompt() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Hint != "" {
		return fmt.Sprintf("The %q command is not available. Install it with: go install %s@latest", e.Tool, e.Hint)
	}
	return fmt.Sprintf("The %q command is not available. Install it and make sure it is on PATH.", e.Tool)
}

// ToolFailure records a check that could not run to completion
type ToolFailure struct {
	Tool string
	Err  error
}

func (f ToolFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Tool, f.Err)
}

type toolFailureView struct {
	Tool  string `json:"tool" yaml:"tool"`
	Error string `json:"error" yaml:"error"`
}

func (f ToolFailure) view() toolFailureView {
	v := toolFailureView{Tool: f.Tool}
	if f.Err != nil {
		v.Error = f.Err.Error()
	}
	return v
}

// MarshalJSON includes the error text, which has no exported fields
func (f ToolFailure) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.view())
}

// MarshalYAML includes the error text
func (f ToolFailure) MarshalYAML() (interface{}, error) {
	return f.view(), nil
}

// installHints maps tool names to their go install paths
var installHints = map[string]string{
	"golint":        "golang.org/x/lint/golint",
	"gometalinter":  "github.com/alecthomas/gometalinter",
	"golangci-lint": "github.com/golangci/golangci-lint/cmd/golangci-lint",
	"staticcheck":   "honnef.co/go/tools/cmd/staticcheck",
	"gopkgs":        "github.com/uudashr/gopkgs/v2/cmd/gopkgs",
	"govendor":      "github.com/kardianos/govendor",
}

// InstallHint returns the go install path for a known tool
func InstallHint(tool string) string {
	return installHints[tool]
}
