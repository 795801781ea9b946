// Package diagnostics turns compiler and linter output into structured
// findings an editor can place next to the offending line.
package diagnostics

import "fmt"

// Severity is the importance the caller attaches to a tool's findings.
// It is never parsed from the tool output itself.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic is a single finding. Values are not modified once a parse
// returns them.
type Diagnostic struct {
	File     string   `json:"file" yaml:"file"`
	Line     int      `json:"line" yaml:"line"`
	Column   int      `json:"column,omitempty" yaml:"column,omitempty"`
	Message  string   `json:"message" yaml:"message"`
	Severity Severity `json:"severity" yaml:"severity"`
	Tool     string   `json:"tool,omitempty" yaml:"tool,omitempty"`
}

// String formats the diagnostic the way compilers print them
func (d Diagnostic) String() string {
	if d.Column > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Column, d.Message)
	}
	return fmt.Sprintf("%s:%d: %s", d.File, d.Line, d.Message)
}
